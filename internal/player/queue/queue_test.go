package queue

import (
	"math/rand"
	"testing"
	"time"

	"github.com/musium/musium/internal/library"
)

func TestEnqueueAssignsIncreasingDistinctQueueIDs(t *testing.T) {
	q := New()
	now := time.Now()
	id1 := q.Enqueue(library.TrackID(1), now)
	id2 := q.Enqueue(library.TrackID(1), now) // same track twice
	if id1 == id2 {
		t.Fatalf("expected distinct queue ids, got %d and %d", id1, id2)
	}
	if id2 <= id1 {
		t.Errorf("expected increasing queue ids, got %d then %d", id1, id2)
	}
}

func TestDequeueFrontRemovesHeadInOrder(t *testing.T) {
	q := New()
	now := time.Now()
	q.Enqueue(library.TrackID(1), now)
	q.Enqueue(library.TrackID(2), now)

	first, ok := q.DequeueFront()
	if !ok || first.TrackID != library.TrackID(1) {
		t.Fatalf("first dequeue = %+v, ok=%v", first, ok)
	}
	second, ok := q.DequeueFront()
	if !ok || second.TrackID != library.TrackID(2) {
		t.Fatalf("second dequeue = %+v, ok=%v", second, ok)
	}
	if _, ok := q.DequeueFront(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestRemoveDeletesArbitraryEntry(t *testing.T) {
	q := New()
	now := time.Now()
	id1 := q.Enqueue(library.TrackID(1), now)
	id2 := q.Enqueue(library.TrackID(2), now)
	_ = id1

	if !q.Remove(id2) {
		t.Fatal("expected Remove to report success")
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
}

func TestShuffleLeavesHeadIntact(t *testing.T) {
	q := New()
	now := time.Now()
	head := q.Enqueue(library.TrackID(100), now)
	for i := 0; i < 20; i++ {
		q.Enqueue(library.TrackID(i), now)
	}
	q.Shuffle(rand.New(rand.NewSource(1)))

	front, ok := q.PeekFront()
	if !ok || front.QueueID != head {
		t.Fatalf("head changed after shuffle: %+v", front)
	}
}

func TestClearAfterCurrentLeavesOnlyHead(t *testing.T) {
	q := New()
	now := time.Now()
	q.Enqueue(library.TrackID(1), now)
	q.Enqueue(library.TrackID(2), now)
	q.Enqueue(library.TrackID(3), now)

	q.ClearAfterCurrent()
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
}
