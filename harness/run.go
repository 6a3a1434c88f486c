package harness

import (
	"fmt"
	"sort"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/tsload/engine"
	"github.com/wippyai/tsload/errors"
	"github.com/wippyai/tsload/runtime"
	"github.com/wippyai/tsload/translator"
)

// Runner executes manifest checks. Every check gets its own Runtime, so no
// module state leaks from one check into the next.
type Runner struct {
	root string
	opts []runtime.Option
}

// NewRunner prepares a runner for m. extra options are applied after the
// ones derived from the manifest's engine block.
func NewRunner(m *Manifest, extra ...runtime.Option) (*Runner, error) {
	eng := m.Engine
	if eng == nil {
		eng = &Engine{}
	}

	tr, err := translator.NewESBuildWithConfig(&translator.ESBuildConfig{
		Target:     eng.Target,
		SourceMaps: eng.SourceMaps,
	})
	if err != nil {
		return nil, err
	}

	root := m.RootDir()
	opts := []runtime.Option{
		runtime.WithRoot(root),
		runtime.WithTranslator(tr),
	}
	if eng.Extension != "" {
		opts = append(opts, runtime.WithExtension(eng.Extension))
	}
	if eng.MaxCallStackSize > 0 {
		opts = append(opts, runtime.WithMaxCallStackSize(eng.MaxCallStackSize))
	}
	opts = append(opts, extra...)

	return &Runner{root: root, opts: opts}, nil
}

// Run executes every check in m.
func Run(m *Manifest, extra ...runtime.Option) (*Report, error) {
	r, err := NewRunner(m, extra...)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	for _, c := range m.Checks {
		report.Results = append(report.Results, r.Check(c))
	}
	return report, nil
}

// Check runs a single check in a fresh runtime.
func (r *Runner) Check(c *Check) *Result {
	start := time.Now()
	res := &Result{Check: c.Name, Entry: c.Entry}
	defer func() {
		res.Duration = time.Since(start)
		res.Passed = len(res.Failures) == 0
		Logger().Info("check finished",
			zap.String("check", c.Name),
			zap.Bool("passed", res.Passed),
			zap.Int("failures", len(res.Failures)),
			zap.Int("modules", res.Modules),
			zap.Duration("duration", res.Duration))
	}()

	rt, err := runtime.New(r.opts...)
	if err != nil {
		res.fail(err)
		return res
	}

	exports, err := rt.Load(c.Entry)
	res.Modules = rt.Len()
	if err != nil {
		res.fail(err)
		return res
	}

	s := &session{rt: rt, vm: rt.VM(), entry: c.Entry, exports: exports, res: res}
	s.requireExports(c.RequireExports)
	s.functions(c.Functions)
	s.nonEmpty(c.NonEmpty)
	for _, l := range c.Lookups {
		s.lookup(l)
	}
	for _, x := range c.CrossRefs {
		s.crossRef(x)
	}
	res.Modules = rt.Len()
	return res
}

// session holds one check's runtime while its assertions run.
type session struct {
	rt      *runtime.Runtime
	vm      *goja.Runtime
	entry   string
	exports *goja.Object
	res     *Result
}

func (s *session) failf(path []string, format string, args ...any) {
	s.res.fail(errors.Assertion(s.entry, path, format, args...))
}

func (s *session) requireExports(names []string) {
	for _, name := range names {
		if v := s.exports.Get(name); v == nil || goja.IsUndefined(v) {
			s.res.fail(errors.MissingExport(errors.PhaseCheck, s.entry, name))
		}
	}
}

func (s *session) functions(names []string) {
	for _, name := range names {
		v := s.exports.Get(name)
		if _, ok := goja.AssertFunction(v); !ok {
			s.failf([]string{name}, "not a function (got %s)", engine.TypeOf(v))
		}
	}
}

func (s *session) nonEmpty(names []string) {
	for _, name := range names {
		if engine.IsEmpty(s.vm, s.exports.Get(name)) {
			s.failf([]string{name}, "is empty")
		}
	}
}

func (s *session) lookup(l *Lookup) {
	label := fmt.Sprintf("%s(%q)", l.Function, l.Argument)
	result, ok := s.call(s.exports, s.entry, l.Function, l.Argument, []string{label})
	if !ok {
		return
	}
	fields := make([]string, 0, len(l.Expect))
	for field := range l.Expect {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		want := l.Expect[field]
		v := result.Get(field)
		if v == nil || goja.IsUndefined(v) {
			s.failf([]string{label, field}, "field missing, want %q", want)
			continue
		}
		if got := v.String(); got != want {
			s.failf([]string{label, field}, "= %q, want %q", got, want)
		}
	}
}

func (s *session) crossRef(x *CrossRef) {
	keys, ok := s.exports.Get(x.KeysOf).(*goja.Object)
	if !ok || !engine.IsObject(keys) {
		s.failf([]string{x.KeysOf}, "not an object (got %s)", engine.TypeOf(s.exports.Get(x.KeysOf)))
		return
	}

	target, err := s.rt.Load(x.Module)
	if err != nil {
		s.res.fail(err)
		return
	}
	if _, ok := goja.AssertFunction(target.Get(x.Function)); !ok {
		s.res.fail(errors.MissingExport(errors.PhaseCheck, x.Module, x.Function))
		return
	}

	for _, key := range engine.ExportNames(keys) {
		path := []string{x.KeysOf, key}
		result, ok := s.call(target, x.Module, x.Function, key, path)
		if !ok {
			continue
		}
		if x.KeyField != "" {
			if got := result.Get(x.KeyField); got == nil || got.String() != key {
				s.failf(append(path, x.KeyField), "= %s, want %q", engine.Stringify(s.vm, got), key)
			}
		}
		for _, field := range x.RequiredFields {
			if engine.IsEmpty(s.vm, result.Get(field)) {
				s.failf(append(path, field), "required field is empty")
			}
		}
	}
}

// call invokes owner[fn](arg) and requires an object result.
func (s *session) call(owner *goja.Object, module, fn, arg string, path []string) (*goja.Object, bool) {
	callable, ok := goja.AssertFunction(owner.Get(fn))
	if !ok {
		s.res.fail(errors.MissingExport(errors.PhaseCheck, module, fn))
		return nil, false
	}
	v, err := callable(goja.Undefined(), s.vm.ToValue(arg))
	if err != nil {
		s.res.fail(errors.New(errors.PhaseCheck, errors.KindThrown).
			Module(module).
			Path(path...).
			Cause(err).
			Detail("%s threw", fn).
			Build())
		return nil, false
	}
	obj, ok := v.(*goja.Object)
	if !ok || !engine.IsObject(v) {
		s.failf(path, "%s returned %s, want object", fn, engine.TypeOf(v))
		return nil, false
	}
	return obj, true
}
