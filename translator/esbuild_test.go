package translator

import (
	"errors"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"

	lerrors "github.com/wippyai/tsload/errors"
)

func TestESBuild_StripsAnnotations(t *testing.T) {
	src := `
interface EngineConfig {
  id: string;
  tags?: string[];
}
type EngineId = 'lari-core' | 'bane-core';
const engine: EngineConfig = { id: 'lari-core', tags: ['primary'] };
function pick(id: EngineId): EngineConfig | undefined {
  return id === engine.id ? engine : undefined;
}
exports.engine = engine;
exports.pick = pick;
`
	out, err := NewESBuild().Translate([]byte(src), "/repo/engines.ts")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	js := string(out)
	for _, gone := range []string{"interface", "EngineConfig |", ": EngineId"} {
		if strings.Contains(js, gone) {
			t.Errorf("output still contains %q:\n%s", gone, js)
		}
	}
	for _, kept := range []string{"exports.engine = engine", "exports.pick = pick", "lari-core"} {
		if !strings.Contains(js, kept) {
			t.Errorf("output lost %q:\n%s", kept, js)
		}
	}
}

func TestESBuild_ToleratesTypeErrors(t *testing.T) {
	src := "const n: number = 'not a number';\nexports.n = n;\n"
	if _, err := NewESBuild().Translate([]byte(src), "/repo/n.ts"); err != nil {
		t.Fatalf("type inconsistency should translate, got %v", err)
	}
}

func TestESBuild_ModuleSyntaxBecomesCommonJS(t *testing.T) {
	src := "import { b } from './b';\nexport const a: number = b + 1;\n"
	out, err := NewESBuild().Translate([]byte(src), "/repo/a.ts")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	js := string(out)
	if !strings.Contains(js, `require("./b")`) {
		t.Errorf("dependency reference not preserved:\n%s", js)
	}
	if !strings.Contains(js, "module.exports") {
		t.Errorf("expected CommonJS export wiring:\n%s", js)
	}
}

func TestESBuild_SyntaxError(t *testing.T) {
	src := "const ok = 1;\nconst broken: = 2;\n"
	_, err := NewESBuild().Translate([]byte(src), "/repo/broken.ts")
	if err == nil {
		t.Fatal("expected a translation error")
	}

	var terr *lerrors.TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *TranslationError", err)
	}
	if terr.Path != "/repo/broken.ts" {
		t.Errorf("Path = %q", terr.Path)
	}
	if terr.Position.Line != 2 {
		t.Errorf("Line = %d, want 2", terr.Position.Line)
	}
	if terr.Message == "" {
		t.Error("Message is empty")
	}
}

func TestESBuild_SourceMaps(t *testing.T) {
	tr, err := NewESBuildWithConfig(&ESBuildConfig{SourceMaps: true})
	if err != nil {
		t.Fatal(err)
	}
	out, err := tr.Translate([]byte("const a: number = 1;\nexports.a = a;\n"), "/repo/a.ts")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "sourceMappingURL=data:") {
		t.Errorf("expected inline source map:\n%s", out)
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		want    api.Target
		wantErr bool
	}{
		{"es2020", api.ES2020, false},
		{"ES2017", api.ES2017, false},
		{" esnext ", api.ESNext, false},
		{"es3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NewESBuildWithConfig(&ESBuildConfig{Target: "es1999"}); err == nil {
		t.Error("NewESBuildWithConfig should reject unknown targets")
	}
}

func TestLoaderFor(t *testing.T) {
	tests := map[string]api.Loader{
		"/a.ts":  api.LoaderTS,
		"/a.mts": api.LoaderTS,
		"/a.tsx": api.LoaderTSX,
		"/a.js":  api.LoaderJS,
		"/a.cjs": api.LoaderJS,
		"/a.jsx": api.LoaderJSX,
		"/a.src": api.LoaderTS,
	}
	for path, want := range tests {
		if got := LoaderFor(path); got != want {
			t.Errorf("LoaderFor(%s) = %v, want %v", path, got, want)
		}
	}
}

func TestByExtension(t *testing.T) {
	upper := Func(func(src []byte, _ string) ([]byte, error) {
		return []byte(strings.ToUpper(string(src))), nil
	})
	b := &ByExtension{
		Default:    Identity,
		Extensions: map[string]Translator{".up": upper},
	}

	out, _ := b.Translate([]byte("abc"), "/x.up")
	if string(out) != "ABC" {
		t.Errorf("extension dispatch: got %q", out)
	}
	out, _ = b.Translate([]byte("abc"), "/x.ts")
	if string(out) != "abc" {
		t.Errorf("default dispatch: got %q", out)
	}
}
