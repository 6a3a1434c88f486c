package host

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dop251/goja"

	lerrors "github.com/wippyai/tsload/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNode_NativeModule(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterNativeModule("registry-kit", func(vm *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").(*goja.Object)
		_ = exports.Set("version", "1.2.3")
	})

	vm := goja.New()
	node := reg.Enable(vm)

	// a node_modules directory with the same name must not shadow the native module
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "node_modules", "registry-kit", "index.js"), "module.exports = { version: 'disk' };")

	v, err := node.Require(dir, "registry-kit")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if got := v.ToObject(vm).Get("version").String(); got != "1.2.3" {
		t.Errorf("version = %q, want native 1.2.3", got)
	}
	if !reg.IsNative("node:registry-kit") {
		t.Error("IsNative should accept the node: prefix")
	}
}

func TestNode_NodeModulesAnchoredAtDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "left-pad", "package.json"), `{"main": "lib/pad.js"}`)
	writeFile(t, filepath.Join(root, "node_modules", "left-pad", "lib", "pad.js"), `
module.exports = function pad(s, n) {
  while (s.length < n) s = ' ' + s;
  return s;
};`)
	deep := filepath.Join(root, "scing", "lari", "planner")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	vm := goja.New()
	node := NewRegistry().Enable(vm)

	v, err := node.Require(deep, "left-pad")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	pad, ok := goja.AssertFunction(v)
	if !ok {
		t.Fatalf("left-pad export is %T, want function", v.Export())
	}
	out, err := pad(goja.Undefined(), vm.ToValue("ab"), vm.ToValue(4))
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "  ab" {
		t.Errorf("pad = %q", out.String())
	}
}

func TestNode_Missing(t *testing.T) {
	dir := t.TempDir()
	vm := goja.New()
	node := NewRegistry().Enable(vm)

	_, err := node.Require(dir, "does-not-exist")
	if err == nil {
		t.Fatal("expected HostError")
	}
	var herr *lerrors.HostError
	if !errors.As(err, &herr) {
		t.Fatalf("error type = %T, want *HostError", err)
	}
	if herr.Specifier != "does-not-exist" || herr.Dir != dir {
		t.Errorf("HostError = %+v", herr)
	}
}

func TestNode_ConsoleInstalled(t *testing.T) {
	vm := goja.New()
	NewRegistry().Enable(vm)
	if _, err := vm.RunString(`console.log("hello"); console.warn("careful"); console.error("bad");`); err != nil {
		t.Fatalf("console calls failed: %v", err)
	}
}

func TestFindPackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "single.js"), "")
	writeFile(t, filepath.Join(root, "a", "node_modules", "@scope", "pkg", "index.js"), "")
	deep := filepath.Join(root, "a", "b", "c")

	tests := []struct {
		specifier string
		want      string
	}{
		{"single", filepath.Join(root, "node_modules", "single")},
		{"@scope/pkg", filepath.Join(root, "a", "node_modules", "@scope", "pkg")},
		{"absent", ""},
		{"node:fs", ""},
		{"/abs", ""},
	}
	for _, tt := range tests {
		if got := FindPackage(deep, tt.specifier); got != tt.want {
			t.Errorf("FindPackage(%q) = %q, want %q", tt.specifier, got, tt.want)
		}
	}
}

func TestFunc(t *testing.T) {
	var gotDir, gotSpec string
	h := Func(func(dir, specifier string) (goja.Value, error) {
		gotDir, gotSpec = dir, specifier
		return goja.Undefined(), nil
	})
	if _, err := h.Require("/repo/scing", "lodash"); err != nil {
		t.Fatal(err)
	}
	if gotDir != "/repo/scing" || gotSpec != "lodash" {
		t.Errorf("got (%q, %q)", gotDir, gotSpec)
	}
}
