package engine

import (
	"errors"

	"github.com/dop251/goja"
)

// Cause returns the Go error carried by a GoError thrown out of a script, or
// err itself when the exception originated in script code.
func Cause(err error) error {
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return err
	}
	obj, ok := ex.Value().(*goja.Object)
	if !ok {
		return err
	}
	v := obj.Get("value")
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return err
	}
	if goErr, ok := v.Export().(error); ok {
		return goErr
	}
	return err
}
