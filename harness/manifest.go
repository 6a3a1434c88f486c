package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/tsload/errors"
)

// Manifest is a set of checks plus the engine settings they share.
type Manifest struct {
	Engine *Engine  `hcl:"engine,block" toml:"engine" yaml:"engine"`
	Checks []*Check `hcl:"check,block" toml:"check" yaml:"checks"`

	// Dir is the manifest's directory. A relative Engine.Root is taken
	// from here.
	Dir string `toml:"-" yaml:"-"`
}

// Engine configures the runtime each check gets.
type Engine struct {
	Root             string `hcl:"root,optional" toml:"root" yaml:"root"`
	Extension        string `hcl:"extension,optional" toml:"extension" yaml:"extension"`
	Target           string `hcl:"target,optional" toml:"target" yaml:"target"`
	SourceMaps       bool   `hcl:"source_maps,optional" toml:"source_maps" yaml:"source_maps"`
	MaxCallStackSize int    `hcl:"max_call_stack_size,optional" toml:"max_call_stack_size" yaml:"max_call_stack_size"`
}

// Check loads one entry and asserts properties of its exports.
type Check struct {
	Name           string      `hcl:"name,label" toml:"name" yaml:"name"`
	Entry          string      `hcl:"entry" toml:"entry" yaml:"entry"`
	RequireExports []string    `hcl:"require_exports,optional" toml:"require_exports" yaml:"require_exports"`
	Functions      []string    `hcl:"functions,optional" toml:"functions" yaml:"functions"`
	NonEmpty       []string    `hcl:"non_empty,optional" toml:"non_empty" yaml:"non_empty"`
	Lookups        []*Lookup   `hcl:"lookup,block" toml:"lookup" yaml:"lookups"`
	CrossRefs      []*CrossRef `hcl:"cross_ref,block" toml:"cross_ref" yaml:"cross_refs"`
}

// Lookup calls an exported function with one string argument. The result
// must be an object whose fields match Expect.
type Lookup struct {
	Function string            `hcl:"function" toml:"function" yaml:"function"`
	Argument string            `hcl:"argument" toml:"argument" yaml:"argument"`
	Expect   map[string]string `hcl:"expect,optional" toml:"expect" yaml:"expect"`
}

// CrossRef walks the keys of one export and resolves each through a lookup
// function of another module.
type CrossRef struct {
	KeysOf         string   `hcl:"keys_of" toml:"keys_of" yaml:"keys_of"`
	Module         string   `hcl:"module" toml:"module" yaml:"module"`
	Function       string   `hcl:"function" toml:"function" yaml:"function"`
	KeyField       string   `hcl:"key_field,optional" toml:"key_field" yaml:"key_field"`
	RequiredFields []string `hcl:"required_fields,optional" toml:"required_fields" yaml:"required_fields"`
}

// LoadManifest reads a manifest, choosing the format by extension: .hcl,
// .toml, .yaml or .yml.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Config("manifest path", err)
	}

	var m *Manifest
	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".hcl":
		m, err = decodeHCL(abs)
	case ".toml":
		m, err = decodeTOML(abs)
	case ".yaml", ".yml":
		m, err = decodeYAML(abs)
	default:
		return nil, errors.Unsupported(errors.PhaseConfig, fmt.Sprintf("manifest format %q", ext))
	}
	if err != nil {
		return nil, err
	}

	m.Dir = filepath.Dir(abs)
	if m.Engine == nil {
		m.Engine = &Engine{}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate reports the first structural problem in m.
func (m *Manifest) Validate() error {
	if len(m.Checks) == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "manifest declares no checks")
	}
	seen := make(map[string]bool, len(m.Checks))
	for i, c := range m.Checks {
		if c == nil {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("check %d is empty", i))
		}
		if c.Name == "" {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("check %d has no name", i))
		}
		if seen[c.Name] {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("duplicate check %q", c.Name))
		}
		seen[c.Name] = true
		if c.Entry == "" {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("check %q has no entry", c.Name))
		}
		for _, l := range c.Lookups {
			if l.Function == "" {
				return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("check %q: lookup without function", c.Name))
			}
		}
		for _, x := range c.CrossRefs {
			if x.KeysOf == "" || x.Module == "" || x.Function == "" {
				return errors.InvalidInput(errors.PhaseConfig,
					fmt.Sprintf("check %q: cross_ref needs keys_of, module and function", c.Name))
			}
		}
	}
	return nil
}

// RootDir returns the directory entries resolve against.
func (m *Manifest) RootDir() string {
	root := ""
	if m.Engine != nil {
		root = m.Engine.Root
	}
	if root == "" {
		return m.Dir
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(m.Dir, root)
}

func decodeHCL(path string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Config("parse "+path, diags)
	}

	var m Manifest
	diags = gohcl.DecodeBody(file.Body, evalContext(filepath.Dir(path)), &m)
	if diags.HasErrors() {
		return nil, errors.Config("decode "+path, diags)
	}
	return &m, nil
}

// evalContext exposes the process environment as env.NAME, the manifest
// directory as manifest_dir, and a few string functions.
func evalContext(dir string) *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !isIdentifier(k) {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	envVal := cty.MapValEmpty(cty.String)
	if len(env) > 0 {
		envVal = cty.MapVal(env)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":          envVal,
			"manifest_dir": cty.StringVal(dir),
		},
		Functions: map[string]function.Function{
			"upper": stdlib.UpperFunc,
			"lower": stdlib.LowerFunc,
			"join":  stdlib.JoinFunc,
		},
	}
}

// isIdentifier reports whether s can be written as env.s in HCL.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

func decodeTOML(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, errors.Config("decode "+path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Module(path).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}
	return &m, nil
}

func decodeYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read "+path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Config("decode "+path, err)
	}
	return &m, nil
}
