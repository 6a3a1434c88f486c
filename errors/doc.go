// Package errors provides structured error types for the tsload module loader.
//
// The loader surfaces four typed errors, one per failure site:
//
//   - ResolutionError: a relative specifier matched no file
//   - TranslationError: source text could not be translated (syntax)
//   - ExecutionError: a module body threw; Cause keeps the original failure
//   - HostError: a delegated (bare) specifier could not be loaded by the host
//
// Everything else is an Error categorized by Phase (where the error occurred)
// and Kind (error category). Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseCheck, errors.KindAssertion).
//		Module("/repo/scing/engineRegistry.ts").
//		Path("ENGINES", "lari-core").
//		Detail("displayName is empty").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Busy(path)
//	err := errors.MissingExport(errors.PhaseCheck, path, "lookup")
//
// All errors implement the standard error interface and support errors.Is/As.
// Loader errors nest: a failure deep in a dependency chain arrives wrapped in
// one ExecutionError per requiring module, so errors.As finds the typed root.
package errors
