package errors

import (
	"fmt"
	"strings"
)

// Position is a 1-based line and 0-based column in a source file.
type Position struct {
	Line   int
	Column int
}

// IsZero reports whether no position is known.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ResolutionError is returned when a relative specifier maps to no file.
type ResolutionError struct {
	Specifier  string
	Requester  string
	Candidates []string
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] cannot resolve %q from %s", PhaseResolve, e.Specifier, e.Requester)
	if len(e.Candidates) > 0 {
		b.WriteString(" (tried ")
		b.WriteString(strings.Join(e.Candidates, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

// Phase returns PhaseResolve.
func (e *ResolutionError) Phase() Phase { return PhaseResolve }

// TranslationError is returned when source text is syntactically malformed.
type TranslationError struct {
	Path     string
	Message  string
	Position Position
}

func (e *TranslationError) Error() string {
	if e.Position.IsZero() {
		return fmt.Sprintf("[%s] %s: %s", PhaseTranslate, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s:%s: %s", PhaseTranslate, e.Path, e.Position, e.Message)
}

// Phase returns PhaseTranslate.
func (e *TranslationError) Phase() Phase { return PhaseTranslate }

// ExecutionError is returned when a module body throws. Cause keeps the
// original failure, which may itself be a loader error raised by a nested
// require.
type ExecutionError struct {
	Cause error
	Path  string
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s failed", PhaseExecute, e.Path)
	}
	return fmt.Sprintf("[%s] %s: %s", PhaseExecute, e.Path, e.Cause.Error())
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Phase returns PhaseExecute.
func (e *ExecutionError) Phase() Phase { return PhaseExecute }

// HostError is returned when a delegated specifier cannot be loaded by the host.
type HostError struct {
	Cause     error
	Specifier string
	Dir       string
}

func (e *HostError) Error() string {
	msg := fmt.Sprintf("[%s] cannot load %q from %s", PhaseHost, e.Specifier, e.Dir)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *HostError) Unwrap() error {
	return e.Cause
}

// Phase returns PhaseHost.
func (e *HostError) Phase() Phase { return PhaseHost }

// Phased is implemented by the typed loader errors.
type Phased interface {
	error
	Phase() Phase
}

// PhaseOf returns the phase of the outermost typed error in err's chain, or ""
// when err carries none.
func PhaseOf(err error) Phase {
	for err != nil {
		switch e := err.(type) {
		case Phased:
			return e.Phase()
		case *Error:
			return e.Phase
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Root returns the innermost error of a chain of ExecutionErrors, which is the
// failure that started the unwinding.
func Root(err error) error {
	for {
		ee, ok := err.(*ExecutionError)
		if !ok || ee.Cause == nil {
			return err
		}
		err = ee.Cause
	}
}
