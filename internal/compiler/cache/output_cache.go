package cache

import "sync"

// Entry is the output generated for one package directory.
type Entry struct {
	Dir        string
	SourceHash string
	Output     []byte
}

// OutputCache remembers generated output per directory so watch mode can skip
// packages whose sources did not change.
type OutputCache struct {
	entries map[string]*Entry
	mu      sync.RWMutex
}

// NewOutputCache creates an empty cache
func NewOutputCache() *OutputCache {
	return &OutputCache{
		entries: make(map[string]*Entry),
	}
}

// Get returns the entry for dir
func (oc *OutputCache) Get(dir string) (*Entry, bool) {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	entry, ok := oc.entries[dir]
	return entry, ok
}

// Fresh reports whether dir was generated from sources with sourceHash
func (oc *OutputCache) Fresh(dir, sourceHash string) bool {
	entry, ok := oc.Get(dir)
	return ok && entry.SourceHash == sourceHash
}

// Set stores the output generated for dir
func (oc *OutputCache) Set(dir, sourceHash string, output []byte) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	oc.entries[dir] = &Entry{
		Dir:        dir,
		SourceHash: sourceHash,
		Output:     output,
	}
}

// Invalidate removes the entry for dir
func (oc *OutputCache) Invalidate(dir string) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	delete(oc.entries, dir)
}

// Size returns the number of cached entries
func (oc *OutputCache) Size() int {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	return len(oc.entries)
}
