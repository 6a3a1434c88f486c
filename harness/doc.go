// Package harness runs declarative checks against module exports.
//
// A manifest names entry files and what their exports must look like:
//
//	engine {
//	  root   = "../src"
//	  target = "es2020"
//	}
//
//	check "engine-registry" {
//	  entry           = "scing/engineRegistry.ts"
//	  require_exports = ["ENGINES", "lookup"]
//	  functions       = ["lookup"]
//	  non_empty       = ["ENGINES"]
//
//	  lookup {
//	    function = "lookup"
//	    argument = "lari-core"
//	    expect   = { kind = "solver" }
//	  }
//
//	  cross_ref {
//	    keys_of         = "ENGINES"
//	    module          = "scing/ui/engineMeta.ts"
//	    function        = "metaFor"
//	    key_field       = "name"
//	    required_fields = ["label"]
//	  }
//	}
//
// The same structure can be written in TOML ([[check]] tables) or YAML
// (a checks list). HCL manifests may reference env.NAME and manifest_dir
// and call upper, lower and join.
//
// Each check loads its entry in a fresh runtime. A load failure, a missing or
// mistyped export, an empty collection, a throwing lookup or a mismatched
// field is recorded as a failure; nothing is swallowed, so a broken registry
// never produces a passing report.
package harness
