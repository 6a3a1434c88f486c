package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"

	lerrors "github.com/wippyai/tsload/errors"
)

func newSandbox(t *testing.T) *Sandbox {
	t.Helper()
	s, err := NewSandbox(goja.New())
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	return s
}

func run(t *testing.T, s *Sandbox, path, code string, m Module) error {
	t.Helper()
	prog, err := Compile(path, []byte(code))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	m.Path = path
	if m.Exports == nil {
		m.Exports = s.VM().NewObject()
	}
	if m.Require == nil {
		m.Require = func(spec string) (goja.Value, error) {
			return nil, errors.New("no require in this test")
		}
	}
	return s.Run(prog, m)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile("/src/bad.js", []byte("exports.a = 1;\nexports.b = ;\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}
	var terr *lerrors.TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *TranslationError", err)
	}
	if terr.Path != "/src/bad.js" {
		t.Errorf("Path = %q", terr.Path)
	}
	if terr.Position.Line != 2 {
		t.Errorf("Line = %d, want 2 (%v)", terr.Position.Line, err)
	}
}

func TestWrap(t *testing.T) {
	got := Wrap([]byte("exports.x = 1;"))
	if !strings.HasPrefix(got, wrapperHead+"exports.x") {
		t.Errorf("code must start on the wrapper line: %q", got)
	}
	if !strings.HasSuffix(got, "\n})") {
		t.Errorf("missing tail: %q", got)
	}
}

func TestRun_ExportsIdentity(t *testing.T) {
	s := newSandbox(t)
	exports := s.VM().NewObject()

	err := run(t, s, "/src/a.js", `
exports.viaExports = this === exports;
exports.sameAsModule = module.exports === exports;
exports.file = __filename;
exports.dir = __dirname;
exports.id = module.id;
exports.loadedDuringBody = module.loaded;
`, Module{Exports: exports})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	checks := map[string]any{
		"viaExports":       true,
		"sameAsModule":     true,
		"file":             "/src/a.js",
		"dir":              "/src",
		"id":               "/src/a.js",
		"loadedDuringBody": false,
	}
	for key, want := range checks {
		if got := exports.Get(key).Export(); got != want {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestRun_ModuleExportsAssignmentKeepsIdentity(t *testing.T) {
	s := newSandbox(t)
	exports := s.VM().NewObject()

	err := run(t, s, "/src/a.js", `
var early = module.exports;
module.exports = { name: "replaced", get lazy() { return 42; } };
exports.stillSame = early === module.exports;
`, Module{Exports: exports})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := exports.Get("name").String(); got != "replaced" {
		t.Errorf("name = %q", got)
	}
	if got := exports.Get("lazy").ToInteger(); got != 42 {
		t.Errorf("lazy = %d", got)
	}
	if !exports.Get("stillSame").ToBoolean() {
		t.Error("module.exports must keep its identity after assignment")
	}
}

func TestRun_ModuleExportsPrimitiveThrows(t *testing.T) {
	s := newSandbox(t)
	err := run(t, s, "/src/a.js", `module.exports = 5;`, Module{})
	if err == nil {
		t.Fatal("assigning a primitive should throw")
	}
	if !strings.Contains(err.Error(), "module.exports") {
		t.Errorf("error = %v", err)
	}
}

func TestRun_Require(t *testing.T) {
	s := newSandbox(t)
	exports := s.VM().NewObject()
	dep := s.VM().NewObject()
	_ = dep.Set("answer", 42)

	var asked []string
	err := run(t, s, "/src/a.js", `
exports.answer = require("./dep").answer;
exports.resolved = require.resolve("./dep");
`, Module{
		Exports: exports,
		Require: func(spec string) (goja.Value, error) {
			asked = append(asked, spec)
			return dep, nil
		},
		Resolve: func(spec string) (string, error) {
			return "/src/dep.ts", nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(asked) != 1 || asked[0] != "./dep" {
		t.Errorf("require calls = %v", asked)
	}
	if got := exports.Get("answer").ToInteger(); got != 42 {
		t.Errorf("answer = %d", got)
	}
	if got := exports.Get("resolved").String(); got != "/src/dep.ts" {
		t.Errorf("resolved = %q", got)
	}
}

var errBoom = errors.New("boom from go")

func TestRun_RequireFailureCanBeCaught(t *testing.T) {
	s := newSandbox(t)
	exports := s.VM().NewObject()
	err := run(t, s, "/src/a.js", `
try { require("./missing"); } catch (e) { exports.caught = e.message; }
`, Module{
		Exports: exports,
		Require: func(string) (goja.Value, error) { return nil, errBoom },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := exports.Get("caught").String(); !strings.Contains(got, "boom from go") {
		t.Errorf("caught = %q", got)
	}
}

func TestCause(t *testing.T) {
	s := newSandbox(t)
	err := run(t, s, "/src/a.js", `require("./missing");`, Module{
		Require: func(string) (goja.Value, error) { return nil, errBoom },
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if cause := Cause(err); !errors.Is(cause, errBoom) {
		t.Errorf("Cause = %v, want errBoom", cause)
	}

	err = run(t, s, "/src/b.js", `throw new Error("plain js");`, Module{})
	var ex *goja.Exception
	if !errors.As(Cause(err), &ex) {
		t.Errorf("script error should stay a *goja.Exception, got %T", Cause(err))
	}

	if Cause(errBoom) != errBoom {
		t.Error("non-exception errors pass through")
	}
}

func TestRun_LoadedAfterBody(t *testing.T) {
	s := newSandbox(t)
	exports := s.VM().NewObject()
	err := run(t, s, "/src/a.js", `exports.module = module;`, Module{Exports: exports})
	if err != nil {
		t.Fatal(err)
	}
	loaded, ok := Get(s.VM(), exports, "module", "loaded")
	if !ok || !loaded.ToBoolean() {
		t.Error("module.loaded should be true after the body returns")
	}
}

func TestRun_ModuleExportsFunction(t *testing.T) {
	s := newSandbox(t)
	exports := s.VM().NewObject()

	var replaced *goja.Object
	err := run(t, s, "/src/greet.js", `
module.exports = function greet(name) { return "hello " + name; };
module.exports.extra = 1;
exports.stale = true;
`, Module{
		Exports: exports,
		Replace: func(fn *goja.Object) error {
			replaced = fn
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if replaced == nil {
		t.Fatal("Replace was not called")
	}
	greet, ok := goja.AssertFunction(replaced)
	if !ok {
		t.Fatalf("replacement is %s, want function", TypeOf(replaced))
	}
	out, err := greet(goja.Undefined(), s.VM().ToValue("scing"))
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello scing" {
		t.Errorf("greet = %q", out.String())
	}
	if replaced.Get("extra").ToInteger() != 1 {
		t.Error("later module.exports writes must land on the function")
	}
	if v := replaced.Get("stale"); v != nil && !goja.IsUndefined(v) {
		t.Error("the exports parameter keeps pointing at the original object")
	}
}

func TestRun_ModuleExportsFunctionRejected(t *testing.T) {
	tests := []struct {
		name    string
		replace func(*goja.Object) error
		want    string
	}{
		{"no replace hook", nil, "cannot be assigned a function"},
		{"already shared", func(*goja.Object) error { return errors.New("exports were already handed out") }, "already handed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSandbox(t)
			exports := s.VM().NewObject()
			err := run(t, s, "/src/f.js", `module.exports = function () {};`, Module{
				Exports: exports,
				Replace: tt.replace,
			})
			if err == nil {
				t.Fatal("expected TypeError")
			}
			if !strings.Contains(err.Error(), "TypeError") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v", err)
			}
			if len(ExportNames(exports)) != 0 {
				t.Errorf("exports must stay untouched, got %v", ExportNames(exports))
			}
		})
	}
}
