// Package translator converts annotated source text into JavaScript the
// loader's VM can execute.
//
// A Translator is a pure function of (source, path). It strips static-only
// annotations and leaves runtime behavior alone: control flow, require calls
// and export bindings come out unchanged. Type errors are not its business;
// only malformed syntax fails, as *errors.TranslationError.
//
// # Implementations
//
//   - ESBuild: esbuild's TypeScript loader with CommonJS output (default)
//   - Wasm: a translator compiled to WebAssembly, hosted on wazero
//   - Func: adapts a plain function
//
// # Wasm ABI
//
// A Wasm translator module exports:
//
//	memory                                 linear memory
//	alloc(len i32) -> i32                  returns a buffer for the input
//	translate(ptr i32, len i32) -> i64     ptr<<32 | len of the output
//
// When bit 63 of the translate result is set, the referenced bytes are an
// error message instead of output.
package translator
