package engine

import (
	"fmt"
	"path/filepath"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// mergeSource copies every own property descriptor of source onto target.
// It backs non-function assignments to module.exports so the record's
// exports object keeps its identity while taking the assigned object's
// shape.
const mergeSource = `(function (target, source) {
  if (source === target || source === null || source === undefined) return;
  if (typeof source !== "object" && typeof source !== "function") {
    throw new TypeError("module.exports must be assigned an object, got " + typeof source);
  }
  var keys = Reflect.ownKeys(source);
  for (var i = 0; i < keys.length; i++) {
    var d = Object.getOwnPropertyDescriptor(source, keys[i]);
    if (d) Object.defineProperty(target, keys[i], d);
  }
})`

var mergeProgram = goja.MustCompile("tsload:merge", mergeSource, true)

// Module describes one module body to run.
type Module struct {
	// Path is the canonical path, exposed as __filename and module.id.
	Path string

	// Exports is the record's exports object. It is passed as `exports`
	// and returned by `module.exports`.
	Exports *goja.Object

	// Require serves require(specifier) calls made by the body.
	Require func(specifier string) (goja.Value, error)

	// Resolve serves require.resolve(specifier). Optional.
	Resolve func(specifier string) (string, error)

	// Replace is called when the body assigns a function to
	// module.exports. It returns an error when the record's exports object
	// has already been handed out and cannot be swapped. Nil rejects every
	// function assignment.
	Replace func(fn *goja.Object) error
}

// Sandbox runs compiled module programs in one goja runtime.
//
// Sandbox is NOT safe for concurrent use.
type Sandbox struct {
	vm    *goja.Runtime
	merge goja.Callable
}

// NewSandbox prepares vm for running module programs.
func NewSandbox(vm *goja.Runtime) (*Sandbox, error) {
	v, err := vm.RunProgram(mergeProgram)
	if err != nil {
		return nil, fmt.Errorf("install exports merge: %w", err)
	}
	merge, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("install exports merge: got %T", v.Export())
	}
	return &Sandbox{vm: vm, merge: merge}, nil
}

// VM returns the underlying runtime.
func (s *Sandbox) VM() *goja.Runtime {
	return s.vm
}

// Run evaluates prog, which must come from Compile, as the body of m. An
// error thrown by the body is returned as the *goja.Exception goja raised;
// use Cause to recover a Go error thrown through require.
func (s *Sandbox) Run(prog *goja.Program, m Module) error {
	v, err := s.vm.RunProgram(prog)
	if err != nil {
		return err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return fmt.Errorf("%s: compiled wrapper is not a function", m.Path)
	}

	module := s.moduleObject(m)
	Logger().Debug("run module", zap.String("path", m.Path))

	_, err = fn(m.Exports,
		m.Exports,
		s.requireFunc(m),
		module,
		s.vm.ToValue(m.Path),
		s.vm.ToValue(filepath.Dir(m.Path)),
	)
	if err != nil {
		return err
	}
	_ = module.Set("loaded", true)
	return nil
}

func (s *Sandbox) moduleObject(m Module) *goja.Object {
	vm := s.vm
	module := vm.NewObject()
	_ = module.Set("id", m.Path)
	_ = module.Set("filename", m.Path)
	_ = module.Set("loaded", false)

	current := m.Exports
	getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
		return current
	})
	setter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		v := call.Argument(0)
		if fn, ok := v.(*goja.Object); ok && fn != current {
			if _, callable := goja.AssertFunction(fn); callable {
				if m.Replace == nil {
					panic(vm.NewTypeError("module.exports cannot be assigned a function in %s", m.Path))
				}
				if err := m.Replace(fn); err != nil {
					panic(vm.NewTypeError("module.exports cannot be assigned a function in %s: %v", m.Path, err))
				}
				current = fn
				return goja.Undefined()
			}
		}
		if _, err := s.merge(goja.Undefined(), current, v); err != nil {
			s.throw(err)
		}
		return goja.Undefined()
	})
	_ = module.DefineAccessorProperty("exports", getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)
	return module
}

func (s *Sandbox) requireFunc(m Module) goja.Value {
	vm := s.vm
	require := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		spec, ok := call.Argument(0).Export().(string)
		if !ok {
			panic(vm.NewTypeError("require: specifier must be a string"))
		}
		v, err := m.Require(spec)
		if err != nil {
			s.throw(err)
		}
		return v
	}).ToObject(vm)

	_ = require.Set("resolve", func(call goja.FunctionCall) goja.Value {
		spec, ok := call.Argument(0).Export().(string)
		if !ok {
			panic(vm.NewTypeError("require.resolve: specifier must be a string"))
		}
		if m.Resolve == nil {
			return vm.ToValue(spec)
		}
		path, err := m.Resolve(spec)
		if err != nil {
			s.throw(err)
		}
		return vm.ToValue(path)
	})
	return require
}

// throw raises err inside the running script. JS exceptions are rethrown
// as-is; Go errors travel as GoError objects whose value is err.
func (s *Sandbox) throw(err error) {
	if ex, ok := err.(*goja.Exception); ok {
		panic(ex)
	}
	panic(s.vm.NewGoError(err))
}
