package runtime

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/tsload"
	"github.com/wippyai/tsload/engine"
	"github.com/wippyai/tsload/errors"
	"github.com/wippyai/tsload/host"
	"github.com/wippyai/tsload/linker"
	"github.com/wippyai/tsload/translator"
)

var _ tsload.Loader = (*Runtime)(nil)

// Runtime is one execution context: a goja VM, a module cache, and the
// resolver, translator and host that feed it. Records never cross runtimes.
//
// Runtime is NOT safe for concurrent use.
type Runtime struct {
	vm         *goja.Runtime
	sandbox    *engine.Sandbox
	resolver   *linker.Resolver
	translator translator.Translator
	host       host.Host
	cache      *Cache
	root       string

	// inserted lists the paths put in the cache by the outermost load in
	// progress, in insertion order. depth counts nested load calls.
	inserted []string
	depth    int
}

// New creates a runtime with an empty cache.
func New(opts ...Option) (*Runtime, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}

	root := o.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Config("determine working directory", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Config("absolute root", err)
	}

	var ropts []linker.Option
	if o.Extension != "" {
		ropts = append(ropts, linker.WithExtension(o.Extension))
	}
	if o.EvalSymlinks {
		ropts = append(ropts, linker.WithEvalSymlinks())
	}

	tr := o.Translator
	if tr == nil {
		tr = translator.NewESBuild()
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if o.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(o.MaxCallStackSize)
	}

	sandbox, err := engine.NewSandbox(vm)
	if err != nil {
		return nil, errors.Load("prepare sandbox", err)
	}

	factory := o.Host
	if factory == nil {
		factory = host.NewRegistry().Factory()
	}

	return &Runtime{
		vm:         vm,
		sandbox:    sandbox,
		resolver:   linker.NewResolver(ropts...),
		translator: tr,
		host:       factory(vm),
		cache:      NewCache(),
		root:       root,
	}, nil
}

// VM returns the runtime's JavaScript VM. Values in exports objects belong
// to it.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Root returns the absolute directory entry paths resolve against.
func (r *Runtime) Root() string {
	return r.root
}

// Resolver returns the runtime's resolver.
func (r *Runtime) Resolver() *linker.Resolver {
	return r.resolver
}

// Load returns the exports of the module at path, executing it and its
// dependencies on first use. path may omit the extension or name a
// directory with an index file; relative paths are taken from Root.
func (r *Runtime) Load(path string) (*goja.Object, error) {
	canonical, err := r.resolver.ResolveEntry(r.root, path)
	if err != nil {
		return nil, err
	}
	return r.load(canonical)
}

func (r *Runtime) load(path string) (*goja.Object, error) {
	if rec, ok := r.cache.Get(path); ok {
		if rec.State == StateLoading {
			rec.shared = true
		}
		Logger().Debug("cache hit",
			zap.String("path", path),
			zap.Stringer("state", rec.State))
		return rec.Exports, nil
	}

	rec := &Record{Path: path, Exports: r.vm.NewObject(), State: StateLoading}
	r.cache.Put(rec)
	Logger().Debug("loading", zap.String("path", path))

	mark := len(r.inserted)
	r.inserted = append(r.inserted, path)
	r.depth++
	defer func() {
		r.depth--
		if r.depth == 0 {
			r.inserted = r.inserted[:0]
		}
	}()

	if err := r.execute(rec); err != nil {
		// everything first loaded during this attempt goes with it, so
		// cycle peers never keep the abandoned exports object
		evicted := append([]string(nil), r.inserted[mark:]...)
		for _, p := range evicted {
			r.cache.Delete(p)
		}
		r.inserted = r.inserted[:mark]
		Logger().Debug("evicted",
			zap.String("path", path),
			zap.Strings("paths", evicted),
			zap.Error(err))
		return nil, err
	}

	rec.State = StateLoaded
	Logger().Debug("loaded", zap.String("path", path))
	return rec.Exports, nil
}

func (r *Runtime) execute(rec *Record) error {
	src, err := os.ReadFile(rec.Path)
	if err != nil {
		return errors.Load("read "+rec.Path, err)
	}

	code, err := r.translator.Translate(src, rec.Path)
	if err != nil {
		return err
	}

	prog, err := engine.Compile(rec.Path, code)
	if err != nil {
		return err
	}

	err = r.sandbox.Run(prog, engine.Module{
		Path:    rec.Path,
		Exports: rec.Exports,
		Require: r.requireFrom(rec.Path),
		Resolve: r.resolveFrom(rec.Path),
		Replace: func(fn *goja.Object) error {
			if rec.shared {
				return errors.New(errors.PhaseExecute, errors.KindInvalidInput).
					Module(rec.Path).
					Detail("exports were already handed to a cyclic requirer").
					Build()
			}
			rec.Exports = fn
			return nil
		},
	})
	if err != nil {
		return &errors.ExecutionError{Path: rec.Path, Cause: engine.Cause(err)}
	}
	return nil
}

// requireFrom serves require calls made by the module at requester.
func (r *Runtime) requireFrom(requester string) func(string) (goja.Value, error) {
	return func(specifier string) (goja.Value, error) {
		res, err := r.resolver.Resolve(requester, specifier)
		if err != nil {
			return nil, err
		}
		if res.Delegate {
			return r.host.Require(filepath.Dir(requester), specifier)
		}
		exports, err := r.load(res.Path)
		if err != nil {
			return nil, err
		}
		return exports, nil
	}
}

// resolveFrom serves require.resolve. Delegated specifiers come back as-is.
func (r *Runtime) resolveFrom(requester string) func(string) (string, error) {
	return func(specifier string) (string, error) {
		res, err := r.resolver.Resolve(requester, specifier)
		if err != nil {
			return "", err
		}
		if res.Delegate {
			return specifier, nil
		}
		return res.Path, nil
	}
}

// Lookup returns the cached record for a canonical path.
func (r *Runtime) Lookup(path string) (*Record, bool) {
	return r.cache.Get(path)
}

// Records returns every cached record, sorted by path.
func (r *Runtime) Records() []*Record {
	paths := r.cache.Paths()
	out := make([]*Record, 0, len(paths))
	for _, p := range paths {
		rec, _ := r.cache.Get(p)
		out = append(out, rec)
	}
	return out
}

// Len returns the number of cached records.
func (r *Runtime) Len() int {
	return r.cache.Len()
}

// Invalidate drops the record for path so the next Load re-executes it.
// Modules that already hold its exports keep the old object. path is a
// canonical path or anything Load accepts. A path that resolves but has no
// record is a no-op; one that does not resolve returns the resolution
// error. A module that is still loading cannot be invalidated.
func (r *Runtime) Invalidate(path string) error {
	canonical := filepath.Clean(path)
	rec, ok := r.cache.Get(canonical)
	if !ok {
		resolved, err := r.resolver.ResolveEntry(r.root, path)
		if err != nil {
			return err
		}
		canonical = resolved
		if rec, ok = r.cache.Get(canonical); !ok {
			return nil
		}
	}
	if rec.State == StateLoading {
		return errors.Busy(canonical)
	}
	r.cache.Delete(canonical)
	Logger().Debug("invalidated", zap.String("path", canonical))
	return nil
}

// Reset drops every record. It fails while any module is loading.
func (r *Runtime) Reset() error {
	if loading := r.cache.Loading(); len(loading) > 0 {
		return errors.Busy(loading[0])
	}
	r.cache.Clear()
	Logger().Debug("cache reset")
	return nil
}

// Close drops the cache and releases the translator when it holds
// resources.
func (r *Runtime) Close(ctx context.Context) error {
	r.cache.Clear()
	if c, ok := r.translator.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}
