package library

import "sync/atomic"

// Holder is the single published pointer every reader (the player, the
// search index, the HTTP API) reads from (§3.4, §5 design note: "the model
// swap replaces any observer-pattern update chain; readers just re-read a
// published pointer"). A reader sees either the old or the new model,
// never a mix.
type Holder struct {
	ptr atomic.Pointer[Library]
}

// NewHolder creates a holder with no model published yet; Current returns
// nil until the first Publish.
func NewHolder() *Holder {
	return &Holder{}
}

// Publish atomically swaps in a newly built model.
func (h *Holder) Publish(lib *Library) {
	h.ptr.Store(lib)
}

// Current returns the most recently published model, or nil if none has
// been published yet.
func (h *Holder) Current() *Library {
	return h.ptr.Load()
}
