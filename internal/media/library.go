package media

import (
	"fmt"
	"sort"
	"sync"
)

// Library is the media store: a dictionary of References keyed by id, with
// per-source readiness tracking.
//
// Readiness is the library's only mutable state. A source is "ready" once
// the external engine has finished decoding it; reconstruction of render
// nodes is refused until then.
//
// Thread-safety: all methods are safe for concurrent use. The edit engine
// serializes command execution, but decode-completion callbacks arrive
// from the engine's own goroutines.
type Library struct {
	mu    sync.RWMutex
	refs  map[string]Reference
	ready map[string]bool
}

// NewLibrary creates an empty media library.
func NewLibrary() *Library {
	return &Library{
		refs:  make(map[string]Reference),
		ready: make(map[string]bool),
	}
}

// Add registers a reference. The display name is NFC-normalized.
// Returns an error on duplicate id or unknown kind.
func (l *Library) Add(ref Reference) error {
	if ref.ID == "" {
		return fmt.Errorf("media: reference id is required")
	}
	if !ref.Kind.Valid() {
		return fmt.Errorf("media: unknown kind %q for %s", ref.Kind, ref.ID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.refs[ref.ID]; exists {
		return fmt.Errorf("media: duplicate reference id %s", ref.ID)
	}

	ref.DisplayName = NormalizeName(ref.DisplayName)
	l.refs[ref.ID] = ref
	return nil
}

// Remove deletes a reference. Removing an unknown id is a no-op: the
// desired end state already holds.
func (l *Library) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.refs, id)
	delete(l.ready, id)
}

// Resolve looks up a reference by id.
func (l *Library) Resolve(id string) (Reference, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ref, ok := l.refs[id]
	return ref, ok
}

// MarkReady records that a source has finished decoding.
// Returns false if the id is unknown.
func (l *Library) MarkReady(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.refs[id]; !ok {
		return false
	}
	l.ready[id] = true
	return true
}

// IsReady reports whether a source has finished decoding.
func (l *Library) IsReady(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready[id]
}

// List returns all references sorted by display name, then id.
// Used for library listings; the returned slice is a copy.
func (l *Library) List() []Reference {
	l.mu.RLock()
	defer l.mu.RUnlock()

	refs := make([]Reference, 0, len(l.refs))
	for _, ref := range l.refs {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].DisplayName != refs[j].DisplayName {
			return refs[i].DisplayName < refs[j].DisplayName
		}
		return refs[i].ID < refs[j].ID
	})
	return refs
}

// Len returns the number of registered references.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.refs)
}
