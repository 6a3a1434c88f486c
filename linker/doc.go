// Package linker resolves dependency specifiers to canonical module paths.
//
// # Main Types
//
//   - Resolver: maps (requester, specifier) to a Resolution
//   - Resolution: canonical path, tried candidates, or a delegation marker
//
// # Resolution Order
//
// For a relative specifier ("./x", "../x", ".", ".."):
//
//  1. <requester dir>/x<ext>
//  2. <requester dir>/x/index<ext>
//  3. *errors.ResolutionError naming the specifier and the requester
//
// Anything else ("lodash", "node:fs", "/abs/path") is delegated to the host
// loader unmodified. The order never depends on directory listing order.
//
// # Example
//
//	r := linker.NewResolver(linker.WithExtension(".ts"))
//	res, err := r.Resolve("/repo/scing/index.ts", "./engineRegistry")
//	// res.Path == "/repo/scing/engineRegistry.ts"
package linker
