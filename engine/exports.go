package engine

import (
	"sort"

	"github.com/dop251/goja"
)

// ExportNames returns the enumerable own keys of obj, sorted.
func ExportNames(obj *goja.Object) []string {
	if obj == nil {
		return nil
	}
	keys := obj.Keys()
	sort.Strings(keys)
	return keys
}

// Get follows path through nested objects. It reports false when any step is
// missing or not an object.
func Get(vm *goja.Runtime, v goja.Value, path ...string) (goja.Value, bool) {
	for _, key := range path {
		if !IsObject(v) {
			return nil, false
		}
		obj := v.ToObject(vm)
		next := obj.Get(key)
		if next == nil || goja.IsUndefined(next) {
			return nil, false
		}
		v = next
	}
	return v, v != nil
}

// IsObject reports whether v is a non-null object or function.
func IsObject(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	_, ok := v.(*goja.Object)
	return ok
}

// IsEmpty reports whether v is absent or an empty string, array or object.
func IsEmpty(vm *goja.Runtime, v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return true
	}
	switch x := v.Export().(type) {
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return false
	}
	if _, isFn := goja.AssertFunction(obj); isFn {
		return false
	}
	if obj.ClassName() == "Array" {
		return obj.Get("length").ToInteger() == 0
	}
	return len(obj.Keys()) == 0
}

// TypeOf returns the JavaScript typeof of v, with "null" and "array" split out.
func TypeOf(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if obj, ok := v.(*goja.Object); ok {
		if _, isFn := goja.AssertFunction(obj); isFn {
			return "function"
		}
		if obj.ClassName() == "Array" {
			return "array"
		}
		return "object"
	}
	switch v.Export().(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	}
	return "undefined"
}

// Stringify renders v as JSON, falling back to its string form when JSON
// cannot represent it.
func Stringify(vm *goja.Runtime, v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if obj, ok := v.(*goja.Object); ok {
		if _, isFn := goja.AssertFunction(obj); isFn {
			return v.String()
		}
	}
	b, err := v.ToObject(vm).MarshalJSON()
	if err != nil {
		return v.String()
	}
	return string(b)
}

// ToMap exports obj as a Go map. Accessors are read once.
func ToMap(obj *goja.Object) map[string]any {
	if obj == nil {
		return nil
	}
	m, ok := obj.Export().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}
