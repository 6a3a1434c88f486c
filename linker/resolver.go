package linker

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/tsload"
	"github.com/wippyai/tsload/errors"
)

// Resolution is the outcome of resolving one specifier.
type Resolution struct {
	// Path is the canonical path of the target. Empty when Delegate is set.
	Path string

	// Specifier is the request as written in the source.
	Specifier string

	// Candidates lists the file paths tried, in order.
	Candidates []string

	// Delegate is true for non-relative specifiers, which belong to the host.
	Delegate bool
}

// Resolver maps dependency specifiers to canonical module paths.
//
// Resolution order for a relative specifier is fixed:
//  1. <dir>/<specifier><ext>   (ext is not appended twice)
//  2. <dir>/<specifier>/index<ext>
//
// Non-relative specifiers are never matched against the local tree; the
// resolver returns a delegating Resolution and leaves them to the host.
//
// Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	ext          string
	evalSymlinks bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtension sets the recognized source extension (default ".ts").
func WithExtension(ext string) Option {
	return func(r *Resolver) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.ext = ext
	}
}

// WithEvalSymlinks makes canonical paths symlink-free, so two links to one
// file share a module record.
func WithEvalSymlinks() Option {
	return func(r *Resolver) {
		r.evalSymlinks = true
	}
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{ext: tsload.DefaultExtension}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extension returns the recognized source extension.
func (r *Resolver) Extension() string {
	return r.ext
}

// IsRelative reports whether specifier starts with a same-directory or
// parent-directory marker.
func IsRelative(specifier string) bool {
	if specifier == "." || specifier == ".." {
		return true
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return true
	}
	if filepath.Separator != '/' {
		sep := string(filepath.Separator)
		return strings.HasPrefix(specifier, "."+sep) || strings.HasPrefix(specifier, ".."+sep)
	}
	return false
}

// Candidates returns the paths tried for base, in resolution order.
func (r *Resolver) Candidates(base string) []string {
	file := base
	if !strings.HasSuffix(base, r.ext) {
		file = base + r.ext
	}
	return []string{file, filepath.Join(base, "index"+r.ext)}
}

// Resolve maps specifier, as written in the module at requester, to a
// canonical path. requester must itself be canonical.
func (r *Resolver) Resolve(requester, specifier string) (Resolution, error) {
	if !IsRelative(specifier) {
		Logger().Debug("delegating specifier",
			zap.String("specifier", specifier),
			zap.String("from", requester))
		return Resolution{Specifier: specifier, Delegate: true}, nil
	}

	base := filepath.Join(filepath.Dir(requester), specifier)
	candidates := r.Candidates(base)
	path, err := r.first(candidates)
	if err != nil {
		return Resolution{}, err
	}
	if path == "" {
		return Resolution{}, &errors.ResolutionError{
			Specifier:  specifier,
			Requester:  requester,
			Candidates: candidates,
		}
	}

	Logger().Debug("resolved specifier",
		zap.String("specifier", specifier),
		zap.String("from", requester),
		zap.String("path", path))

	return Resolution{
		Path:       path,
		Specifier:  specifier,
		Candidates: candidates,
	}, nil
}

// ResolveEntry maps a harness entry path to a canonical path. Relative paths
// are taken from root. An existing file is used as-is; otherwise the same
// candidates as for a relative specifier are tried.
func (r *Resolver) ResolveEntry(root, path string) (string, error) {
	if path == "" {
		return "", errors.InvalidInput(errors.PhaseResolve, "empty entry path")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "absolute entry path")
	}

	candidates := append([]string{abs}, r.Candidates(abs)...)
	found, err := r.first(candidates)
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", &errors.ResolutionError{
			Specifier:  path,
			Requester:  root,
			Candidates: candidates,
		}
	}
	return found, nil
}

// Canonical returns the canonical form of an absolute path.
func (r *Resolver) Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "absolute path")
	}
	if !r.evalSymlinks {
		return abs, nil
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrap(errors.PhaseResolve, errors.KindNotFound, err, "evaluate symlinks")
	}
	return resolved, nil
}

// first returns the canonical form of the first candidate that is an existing
// regular file, or "" when none is.
func (r *Resolver) first(candidates []string) (string, error) {
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return r.Canonical(c)
	}
	return "", nil
}
