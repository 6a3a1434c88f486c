package engine

import (
	"reflect"
	"testing"

	"github.com/dop251/goja"
)

func eval(t *testing.T, vm *goja.Runtime, src string) goja.Value {
	t.Helper()
	v, err := vm.RunString(src)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func TestExportNames(t *testing.T) {
	vm := goja.New()
	obj := eval(t, vm, `({ zeta: 1, alpha: 2, mid: function () {} })`).ToObject(vm)
	_ = obj.DefineDataProperty("hidden", vm.ToValue(1), goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)

	got := ExportNames(obj)
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExportNames = %v, want %v", got, want)
	}
	if ExportNames(nil) != nil {
		t.Error("nil object has no names")
	}
}

func TestIsEmpty(t *testing.T) {
	vm := goja.New()
	tests := []struct {
		src  string
		want bool
	}{
		{`undefined`, true},
		{`null`, true},
		{`""`, true},
		{`[]`, true},
		{`({})`, true},
		{`"x"`, false},
		{`[1]`, false},
		{`({a: 1})`, false},
		{`0`, false},
		{`(function () {})`, false},
	}
	for _, tt := range tests {
		if got := IsEmpty(vm, eval(t, vm, tt.src)); got != tt.want {
			t.Errorf("IsEmpty(%s) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestTypeOf(t *testing.T) {
	vm := goja.New()
	tests := []struct {
		src  string
		want string
	}{
		{`undefined`, "undefined"},
		{`null`, "null"},
		{`"s"`, "string"},
		{`1`, "number"},
		{`1.5`, "number"},
		{`true`, "boolean"},
		{`[]`, "array"},
		{`({})`, "object"},
		{`(function () {})`, "function"},
	}
	for _, tt := range tests {
		if got := TypeOf(eval(t, vm, tt.src)); got != tt.want {
			t.Errorf("TypeOf(%s) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	vm := goja.New()
	root := eval(t, vm, `({ a: { b: { c: "deep" } }, s: "str" })`)

	v, ok := Get(vm, root, "a", "b", "c")
	if !ok || v.String() != "deep" {
		t.Errorf("Get(a.b.c) = %v, %v", v, ok)
	}
	if _, ok := Get(vm, root, "a", "x"); ok {
		t.Error("missing key should report false")
	}
	if _, ok := Get(vm, root, "s", "length"); ok {
		t.Error("stepping through a primitive should report false")
	}
}

func TestStringify(t *testing.T) {
	vm := goja.New()
	if got := Stringify(vm, eval(t, vm, `({a: [1, "x"]})`)); got != `{"a":[1,"x"]}` {
		t.Errorf("Stringify = %s", got)
	}
	if got := Stringify(vm, goja.Undefined()); got != "undefined" {
		t.Errorf("Stringify(undefined) = %s", got)
	}
}
