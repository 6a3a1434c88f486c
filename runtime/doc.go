// Package runtime is the execution context: one goja VM, one module cache,
// and the loading algorithm that ties the resolver, translator and host
// together.
//
// # Quick Start
//
//	rt, err := runtime.New(runtime.WithRoot("/repo"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	exports, err := rt.Load("scing/engineRegistry.ts")
//
// # Loading
//
// Load(path) resolves path against the root and then, for the canonical
// path P:
//
//  1. If P is cached, its exports are returned, whether loaded or still
//     loading. This is what makes cycles terminate.
//  2. A Loading record with a fresh exports object is stored under P.
//  3. The file is read and translated. A failure evicts the record.
//  4. The translated body runs with exports, require, module, __filename
//     and __dirname. require resolves relative to P, recursively loads
//     local modules and hands bare or absolute specifiers to the host
//     unchanged.
//  5. If the body throws, the record is evicted and an ExecutionError
//     wrapping the thrown value is returned.
//  6. Otherwise the record becomes Loaded and its exports are returned.
//
// Modules that captured a partially populated exports object from an
// evicted record keep it; only the cache entry goes away.
//
// # Records
//
// Records, Lookup and Len expose the cache for inspection. Invalidate and
// Reset drop entries so edited files can be reloaded; both refuse to touch
// a module whose body is still running.
//
// # Errors
//
//	*errors.ResolutionError   a relative specifier or entry matched no file
//	*errors.TranslationError  source text is malformed
//	*errors.ExecutionError    a body threw; Cause holds the thrown value or
//	                          the nested loader error
//	*errors.HostError         the host could not load a delegated specifier
package runtime
