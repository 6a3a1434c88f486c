package host

import (
	"github.com/dop251/goja"

	"github.com/wippyai/tsload/errors"
)

// Host loads a delegated specifier on behalf of the module in dir.
type Host interface {
	Require(dir, specifier string) (goja.Value, error)
}

// Func adapts an ordinary function to the Host interface.
type Func func(dir, specifier string) (goja.Value, error)

// Require calls f(dir, specifier).
func (f Func) Require(dir, specifier string) (goja.Value, error) {
	return f(dir, specifier)
}

// Factory binds a Host to a VM. The loader calls it once per runtime.
type Factory func(vm *goja.Runtime) Host

// None returns a Host that rejects every specifier.
func None() Host {
	return Func(func(dir, specifier string) (goja.Value, error) {
		return nil, &errors.HostError{
			Specifier: specifier,
			Dir:       dir,
			Cause:     errors.Unsupported(errors.PhaseHost, "no host configured"),
		}
	})
}
