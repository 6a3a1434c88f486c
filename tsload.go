package tsload

import "github.com/dop251/goja"

// DefaultExtension is the source extension the resolver recognizes unless
// configured otherwise.
const DefaultExtension = ".ts"

// Exports is a module's exports object. The loader hands out the same pointer
// for every request of one canonical path.
type Exports = *goja.Object

// Loader is the single operation harnesses need: load a module by path and
// get its exports. *runtime.Runtime implements it.
type Loader interface {
	Load(path string) (Exports, error)
}
