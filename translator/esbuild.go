package translator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/wippyai/tsload/errors"
)

// ESBuildConfig holds configuration for the esbuild translator
type ESBuildConfig struct {
	// Target is the ECMAScript version of the output, e.g. "es2020".
	// Empty means es2020.
	Target string

	// SourceMaps appends an inline source map to every output so stack
	// traces point at the original source lines.
	SourceMaps bool

	// TsconfigRaw is passed to esbuild as-is (e.g. to set
	// useDefineForClassFields or experimentalDecorators).
	TsconfigRaw string
}

// ESBuild strips TypeScript annotations with esbuild and emits CommonJS.
type ESBuild struct {
	target      api.Target
	tsconfigRaw string
	sourceMaps  bool
}

// NewESBuild creates an esbuild translator with default settings
func NewESBuild() *ESBuild {
	t, _ := NewESBuildWithConfig(nil)
	return t
}

// NewESBuildWithConfig creates an esbuild translator with custom configuration
func NewESBuildWithConfig(cfg *ESBuildConfig) (*ESBuild, error) {
	t := &ESBuild{target: api.ES2020}
	if cfg == nil {
		return t, nil
	}
	if cfg.Target != "" {
		target, err := ParseTarget(cfg.Target)
		if err != nil {
			return nil, err
		}
		t.target = target
	}
	t.sourceMaps = cfg.SourceMaps
	t.tsconfigRaw = cfg.TsconfigRaw
	return t, nil
}

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// ParseTarget maps a target name such as "es2020" to an esbuild target.
func ParseTarget(name string) (api.Target, error) {
	target, ok := targets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown translation target %q", name))
	}
	return target, nil
}

// LoaderFor picks the esbuild loader for a file extension.
func LoaderFor(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return api.LoaderTSX
	case ".js", ".cjs", ".mjs":
		return api.LoaderJS
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderTS
	}
}

// Translate implements Translator.
func (t *ESBuild) Translate(src []byte, path string) ([]byte, error) {
	opts := api.TransformOptions{
		Loader:      LoaderFor(path),
		Format:      api.FormatCommonJS,
		Target:      t.target,
		Sourcefile:  path,
		TsconfigRaw: t.tsconfigRaw,
		LogLevel:    api.LogLevelSilent,
	}
	if t.sourceMaps {
		opts.Sourcemap = api.SourceMapInline
	}

	result := api.Transform(string(src), opts)
	if len(result.Errors) > 0 {
		return nil, translationError(path, result.Errors[0])
	}
	return result.Code, nil
}

func translationError(path string, msg api.Message) *errors.TranslationError {
	err := &errors.TranslationError{
		Path:    path,
		Message: msg.Text,
	}
	if loc := msg.Location; loc != nil {
		err.Position = errors.Position{Line: loc.Line, Column: loc.Column}
	}
	return err
}
