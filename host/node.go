package host

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/wippyai/tsload/errors"
)

// builtins are native modules goja_nodejs ships and registers globally.
var builtins = map[string]struct{}{
	"console": {},
	"util":    {},
	"buffer":  {},
	"url":     {},
	"process": {},
}

// Registry is a goja_nodejs require registry plus the bookkeeping needed to
// answer "is this a native module" without loading it.
type Registry struct {
	registry      *require.Registry
	natives       map[string]struct{}
	globalFolders []string
}

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	loader        require.SourceLoader
	globalFolders []string
}

// WithGlobalFolders adds folders searched after node_modules lookup fails.
func WithGlobalFolders(folders ...string) Option {
	return func(c *registryConfig) {
		c.globalFolders = append(c.globalFolders, folders...)
	}
}

// WithSourceLoader replaces the function goja_nodejs uses to read files.
func WithSourceLoader(loader require.SourceLoader) Option {
	return func(c *registryConfig) {
		c.loader = loader
	}
}

// NewRegistry creates a registry with console output routed to Logger().
func NewRegistry(opts ...Option) *Registry {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var ropts []require.Option
	if cfg.loader != nil {
		ropts = append(ropts, require.WithLoader(cfg.loader))
	}
	if len(cfg.globalFolders) > 0 {
		ropts = append(ropts, require.WithGlobalFolders(cfg.globalFolders...))
	}

	r := &Registry{
		registry:      require.NewRegistry(ropts...),
		natives:       make(map[string]struct{}),
		globalFolders: cfg.globalFolders,
	}
	r.registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(consolePrinter{}))
	return r
}

// RegisterNativeModule makes a Go-implemented module available to scripts
// under name. Call before Enable.
func (r *Registry) RegisterNativeModule(name string, loader require.ModuleLoader) {
	r.natives[name] = struct{}{}
	r.registry.RegisterNativeModule(name, loader)
}

// IsNative reports whether name is served without touching the filesystem.
func (r *Registry) IsNative(name string) bool {
	name = strings.TrimPrefix(name, "node:")
	if _, ok := r.natives[name]; ok {
		return true
	}
	_, ok := builtins[name]
	return ok
}

// Enable installs require support and a console object on vm and returns the
// Host bound to it.
func (r *Registry) Enable(vm *goja.Runtime) *Node {
	mod := r.registry.Enable(vm)
	console.Enable(vm)
	return &Node{registry: r, module: mod}
}

// Factory returns a Factory that enables r on each VM.
func (r *Registry) Factory() Factory {
	return func(vm *goja.Runtime) Host {
		return r.Enable(vm)
	}
}

// Node is the default Host: goja_nodejs natives, then node_modules lookup
// anchored at the requesting directory.
type Node struct {
	registry *Registry
	module   *require.RequireModule
}

// Require implements Host.
func (n *Node) Require(dir, specifier string) (goja.Value, error) {
	target := specifier
	if !n.registry.IsNative(specifier) {
		if found := FindPackage(dir, specifier); found != "" {
			target = found
		}
	}

	Logger().Debug("host require",
		zap.String("specifier", specifier),
		zap.String("dir", dir),
		zap.String("target", target))

	v, err := n.module.Require(target)
	if err != nil {
		return nil, &errors.HostError{Specifier: specifier, Dir: dir, Cause: err}
	}
	return v, nil
}

// FindPackage walks from dir up to the filesystem root looking for
// node_modules/<specifier> as a file (with .js or .json) or a directory. It
// returns the absolute path to hand to goja_nodejs, or "" when not found.
func FindPackage(dir, specifier string) string {
	if specifier == "" || filepath.IsAbs(specifier) || strings.HasPrefix(specifier, "node:") {
		return ""
	}
	for d := dir; ; {
		base := filepath.Join(d, "node_modules", filepath.FromSlash(specifier))
		for _, candidate := range []string{base, base + ".js", base + ".json"} {
			if _, err := os.Stat(candidate); err == nil {
				return base
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			return ""
		}
		d = parent
	}
}
