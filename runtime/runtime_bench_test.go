package runtime

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// writeChain lays out n modules where each requires the next.
func writeChain(b *testing.B, dir string, n int) {
	b.Helper()
	for i := 0; i < n; i++ {
		var src strings.Builder
		if i+1 < n {
			fmt.Fprintf(&src, "import { depth as next } from \"./m%d\";\n", i+1)
			src.WriteString("export const depth: number = next + 1;\n")
		} else {
			src.WriteString("export const depth: number = 0;\n")
		}
		writeFile(b, filepath.Join(dir, fmt.Sprintf("m%d.ts", i)), src.String())
	}
}

// BenchmarkLoad_CacheHit measures repeated loads of an already cached entry
func BenchmarkLoad_CacheHit(b *testing.B) {
	dir := b.TempDir()
	writeChain(b, dir, 10)

	rt, err := New(WithRoot(dir), WithoutHost())
	if err != nil {
		b.Fatal(err)
	}

	// Warmup
	if _, err := rt.Load("m0"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rt.Load("m0"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLoad_Cold measures translating and executing a 10-module chain
func BenchmarkLoad_Cold(b *testing.B) {
	dir := b.TempDir()
	writeChain(b, dir, 10)

	rt, err := New(WithRoot(dir), WithoutHost())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := rt.Reset(); err != nil {
			b.Fatal(err)
		}
		exports, err := rt.Load("m0")
		if err != nil {
			b.Fatal(err)
		}
		if exports.Get("depth").ToInteger() != 9 {
			b.Fatal("wrong depth")
		}
	}
}
