package harness

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const registrySource = `import { metaFor } from "./ui/engineMeta";

export interface Engine {
  name: string;
  kind: string;
  model: string;
}

export const ENGINES: Record<string, Engine> = {
  "lari-core": { name: "lari-core", kind: "solver", model: "m1" },
  "scing-index": { name: "scing-index", kind: "index", model: "m2" },
};

export function lookup(name: string): Engine | undefined {
  return ENGINES[name];
}

export const describe = (name: string): string => metaFor(name).label;
`

const metaSource = `import { ENGINES } from "../engineRegistry";

const LABELS: Record<string, string> = {
  "lari-core": "Lari Core",
  "scing-index": "Scing Index",
};

export function metaFor(name: string) {
  return { name, label: LABELS[name] ?? "", known: name in ENGINES };
}
`

// writeRegistry lays out a small registry with a cycle between the
// registry and its metadata module.
func writeRegistry(t *testing.T, root string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "scing", "engineRegistry.ts"), registrySource)
	writeFile(t, filepath.Join(root, "scing", "ui", "engineMeta.ts"), metaSource)
}

const hclManifest = `
engine {
  root = "src"
}

check "registry" {
  entry           = "scing/engineRegistry.ts"
  require_exports = ["ENGINES", "lookup"]
  functions       = ["lookup"]
  non_empty       = ["ENGINES"]

  lookup {
    function = "lookup"
    argument = "lari-core"
    expect   = { kind = "solver" }
  }

  cross_ref {
    keys_of         = "ENGINES"
    module          = "scing/ui/engineMeta"
    function        = "metaFor"
    key_field       = "name"
    required_fields = ["label"]
  }
}
`

const tomlManifest = `
[engine]
root = "src"

[[check]]
name = "registry"
entry = "scing/engineRegistry.ts"
require_exports = ["ENGINES", "lookup"]
functions = ["lookup"]
non_empty = ["ENGINES"]

[[check.lookup]]
function = "lookup"
argument = "lari-core"
expect = { kind = "solver" }

[[check.cross_ref]]
keys_of = "ENGINES"
module = "scing/ui/engineMeta"
function = "metaFor"
key_field = "name"
required_fields = ["label"]
`

const yamlManifest = `
engine:
  root: src
checks:
  - name: registry
    entry: scing/engineRegistry.ts
    require_exports: [ENGINES, lookup]
    functions: [lookup]
    non_empty: [ENGINES]
    lookups:
      - function: lookup
        argument: lari-core
        expect:
          kind: solver
    cross_refs:
      - keys_of: ENGINES
        module: scing/ui/engineMeta
        function: metaFor
        key_field: name
        required_fields: [label]
`
