package runtime

import (
	"github.com/dop251/goja"

	"github.com/wippyai/tsload/host"
	"github.com/wippyai/tsload/translator"
)

// Options configures a Runtime.
type Options struct {
	// Root anchors entry paths that are not absolute. Empty means the
	// working directory.
	Root string

	// Extension is the source extension the resolver appends. Empty means
	// tsload.DefaultExtension.
	Extension string

	// Translator turns source text into CommonJS. Nil means an esbuild
	// translator with default settings.
	Translator translator.Translator

	// Host serves delegated specifiers. Nil means a host.Registry with the
	// goja_nodejs natives.
	Host host.Factory

	// MaxCallStackSize bounds JavaScript recursion. 0 keeps goja's default.
	MaxCallStackSize int

	// EvalSymlinks makes canonical paths symlink-free, so two links to one
	// file share a record.
	EvalSymlinks bool
}

// Option mutates Options.
type Option func(*Options)

// WithRoot sets the directory entry paths are resolved against.
func WithRoot(dir string) Option {
	return func(o *Options) { o.Root = dir }
}

// WithExtension sets the source extension.
func WithExtension(ext string) Option {
	return func(o *Options) { o.Extension = ext }
}

// WithTranslator sets the translator.
func WithTranslator(t translator.Translator) Option {
	return func(o *Options) { o.Translator = t }
}

// WithHost sets the host factory. The factory is called once with the
// runtime's VM.
func WithHost(f host.Factory) Option {
	return func(o *Options) { o.Host = f }
}

// WithoutHost makes every delegated specifier fail with a HostError.
func WithoutHost() Option {
	return WithHost(func(*goja.Runtime) host.Host { return host.None() })
}

// WithMaxCallStackSize bounds JavaScript recursion depth.
func WithMaxCallStackSize(n int) Option {
	return func(o *Options) { o.MaxCallStackSize = n }
}

// WithEvalSymlinks resolves symlinks when computing canonical paths.
func WithEvalSymlinks() Option {
	return func(o *Options) { o.EvalSymlinks = true }
}
