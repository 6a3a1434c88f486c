package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // specifier to canonical path
	PhaseTranslate Phase = "translate" // annotated source to executable source
	PhaseExecute   Phase = "execute"   // module body evaluation
	PhaseLoad      Phase = "load"      // cache and runtime bookkeeping
	PhaseHost      Phase = "host"      // delegated lookups
	PhaseConfig    Phase = "config"    // manifests and options
	PhaseCheck     Phase = "check"     // harness assertions
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindSyntax        Kind = "syntax"
	KindThrown        Kind = "thrown"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidData   Kind = "invalid_data"
	KindBusy          Kind = "busy"
	KindMissingExport Kind = "missing_export"
	KindUnsupported   Kind = "unsupported"
	KindAssertion     Kind = "assertion"
)

// Error is the structured error type used for failures that are not one of
// the typed loader errors (resolution, translation, execution, host).
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(" in ")
		b.WriteString(e.Module)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Module sets the canonical path of the module involved
func (b *Builder) Module(path string) *Builder {
	b.err.Module = path
	return b
}

// Path sets the export path (e.g. "ENGINES.lari-core.model")
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Busy reports an operation refused because the module is still loading.
func Busy(path string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindBusy,
		Module: path,
		Detail: "module is still loading",
	}
}

// MissingExport creates an error for a required export that is absent.
func MissingExport(phase Phase, module, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingExport,
		Module: module,
		Detail: fmt.Sprintf("export %q not found", name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Assertion creates a harness assertion failure.
func Assertion(module string, path []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseCheck,
		Kind:   KindAssertion,
		Module: module,
		Path:   path,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Config creates a configuration error
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
