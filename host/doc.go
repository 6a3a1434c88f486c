// Package host loads the specifiers the loader does not resolve itself.
//
// Bare names ("lodash", "node:util", "registry-kit") are handed to a Host
// together with the requesting module's directory. The default Host, Node,
// sits on a goja_nodejs require registry:
//
//  1. native modules registered on the registry (and goja_nodejs builtins)
//  2. node_modules directories, walking up from the requesting directory
//  3. the registry's global folders
//
// Packages found on disk are loaded by goja_nodejs itself (package.json
// "main", index.js, its own module cache). The tsload cache never sees them.
package host
