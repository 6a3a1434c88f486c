package runtime

import (
	"sort"

	"github.com/dop251/goja"
)

// State is the lifecycle stage of a cached module.
type State int

const (
	// StateLoading means the module body is on the stack. Its exports may
	// be incomplete and are visible only to cyclic requirers.
	StateLoading State = iota
	// StateLoaded means the body returned normally.
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Record is the cache entry for one canonical path. Exports is created
// before the body runs. It is replaced only when the body assigns a
// function to module.exports before any other module has seen the record.
type Record struct {
	Path    string
	Exports *goja.Object
	State   State

	// shared is set once a cyclic requirer received Exports while the
	// record was still loading.
	shared bool
}

// Cache maps canonical paths to records. It belongs to one Runtime.
type Cache struct {
	records map[string]*Record
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{records: make(map[string]*Record)}
}

// Get returns the record for path.
func (c *Cache) Get(path string) (*Record, bool) {
	r, ok := c.records[path]
	return r, ok
}

// Put stores r under r.Path, replacing any previous record.
func (c *Cache) Put(r *Record) {
	c.records[r.Path] = r
}

// Delete removes the record for path.
func (c *Cache) Delete(path string) {
	delete(c.records, path)
}

// Len returns the number of records.
func (c *Cache) Len() int {
	return len(c.records)
}

// Paths returns all cached paths in sorted order.
func (c *Cache) Paths() []string {
	paths := make([]string, 0, len(c.records))
	for p := range c.records {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Loading returns the paths whose bodies are still running, sorted.
func (c *Cache) Loading() []string {
	var paths []string
	for p, r := range c.records {
		if r.State == StateLoading {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Clear drops every record.
func (c *Cache) Clear() {
	c.records = make(map[string]*Record)
}
