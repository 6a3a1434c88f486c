// Package tsload loads TypeScript modules on demand, in process, for
// verification tooling.
//
// It translates annotated source into JavaScript, resolves relative
// dependency references deterministically, caches one module record per
// canonical path, and supports circular dependencies. It is not a bundler:
// nothing is written to disk and the cache lives as long as the process.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	tsload/            Root package with the Loader interface and defaults
//	├── runtime/       Execution context and module cache (Load, Invalidate)
//	├── engine/        goja glue: CommonJS wrapper, sandbox, exception unwrapping
//	├── linker/        Specifier resolution (file form, index form, delegation)
//	├── translator/    Source translation (esbuild, wasm-hosted, func)
//	├── host/          Host loader for bare specifiers (goja_nodejs registry)
//	├── harness/       Declarative check manifests (HCL, TOML, YAML)
//	├── errors/        Structured and typed error values
//	└── cmd/run/       CLI and interactive export explorer
//
// # Quick Start
//
// Load an entry file and inspect its exports:
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	exports, err := rt.Load("scing/engineRegistry.ts")
//	if err != nil {
//	    log.Fatal(err) // ResolutionError, TranslationError or ExecutionError
//	}
//	fmt.Println(exports.Keys())
//
// # Module Identity
//
// A module record is inserted into the cache before its body runs. A second
// request for the same path, including one from inside a dependency cycle,
// returns the same exports object, possibly still being populated. A module
// whose body fails is evicted, so a later Load starts from scratch.
//
// # Thread Safety
//
// A Runtime is NOT safe for concurrent use. It owns a single goja VM, and
// loading is synchronous and re-entrant on the calling goroutine. Use one
// Runtime per goroutine.
package tsload
