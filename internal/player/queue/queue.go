// Package queue implements the playback queue (§4.7): a FIFO of queued
// tracks whose head is the currently playing entry.
package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/musium/musium/internal/library"
)

// QueuedTrack is one entry in the queue. QueueID is distinct from TrackID
// so the same track can be queued more than once.
type QueuedTrack struct {
	QueueID    uint64
	TrackID    library.TrackID
	EnqueuedAt time.Time
}

// Queue is a mutex-guarded FIFO. The head (index 0), when present, is the
// currently playing entry: Shuffle and ClearAfterCurrent both leave it in
// place (§4.7).
type Queue struct {
	mu     sync.Mutex
	items  []QueuedTrack
	nextID uint64
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{nextID: 1}
}

// Enqueue appends trackID to the tail and returns its queue_id.
func (q *Queue) Enqueue(trackID library.TrackID, now time.Time) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextID
	q.nextID++
	q.items = append(q.items, QueuedTrack{QueueID: id, TrackID: trackID, EnqueuedAt: now})
	return id
}

// PeekFront returns the head entry without removing it.
func (q *Queue) PeekFront() (QueuedTrack, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return QueuedTrack{}, false
	}
	return q.items[0], true
}

// DequeueFront removes and returns the head entry, called by the output
// thread when a track finishes and playback advances to the next one.
func (q *Queue) DequeueFront() (QueuedTrack, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return QueuedTrack{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// Remove deletes the entry with the given queue_id, wherever it sits in
// the queue (the HTTP DELETE endpoint applies no head-exemption rule).
// Reports whether an entry was removed.
func (q *Queue) Remove(queueID uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it.QueueID == queueID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Shuffle randomizes the order of everything after the head.
func (q *Queue) Shuffle(rnd *rand.Rand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) <= 2 {
		return
	}
	rest := q.items[1:]
	rnd.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
}

// ClearAfterCurrent drops every entry after the head.
func (q *Queue) ClearAfterCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 1 {
		q.items = q.items[:1]
	}
}

// Snapshot returns a copy of the queue's current contents, head first.
func (q *Queue) Snapshot() []QueuedTrack {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]QueuedTrack, len(q.items))
	copy(out, q.items)
	return out
}

// Len reports the number of queued entries, including the head.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
