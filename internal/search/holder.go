package search

import "sync/atomic"

// Holder publishes a single *Index atomically, mirroring library.Holder:
// the scanner rebuilds the index alongside the model on every rescan and
// republishes it with one pointer swap (§3.4, §4.6).
type Holder struct {
	ptr atomic.Pointer[Index]
}

// NewHolder creates an empty holder. Search returns zero Results until the
// first Publish.
func NewHolder() *Holder {
	return &Holder{}
}

// Publish installs idx as the current index.
func (h *Holder) Publish(idx *Index) {
	h.ptr.Store(idx)
}

// Current returns the currently published index, or nil before the first
// scan completes.
func (h *Holder) Current() *Index {
	return h.ptr.Load()
}

// Search looks up query against the currently published index. It returns
// zero Results if no index has been published yet.
func (h *Holder) Search(query string) Results {
	idx := h.Current()
	if idx == nil {
		return Results{}
	}
	return idx.Search(query)
}
