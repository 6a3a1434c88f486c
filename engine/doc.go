// Package engine runs translated CommonJS module bodies inside goja.
//
// Compile wraps translated text in the module function
//
//	(function (exports, require, module, __filename, __dirname) { ... })
//
// and compiles it under the module's canonical path, so stack traces and
// syntax errors name the file. Syntax errors surface as
// errors.TranslationError.
//
// # Sandbox
//
// Sandbox.Run invokes a compiled wrapper with:
//
//	exports     the record's exports object
//	require     a function backed by Module.Require, with require.resolve
//	module      { id, filename, loaded, exports }
//	__filename  the canonical path
//	__dirname   its directory
//
// module.exports is an accessor. Reading it returns the record's exports
// object. Assigning an object copies that object's own property descriptors
// onto the exports object, so a module that replaces module.exports still
// shares one identity with every module that required it earlier in a cycle.
//
// A failure inside require is thrown into the script as a GoError whose value
// is the Go error. Scripts may catch it; if it escapes the body, Cause
// recovers the original error from the resulting *goja.Exception.
package engine
