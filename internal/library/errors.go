package library

import "fmt"

// ErrIdentityCollision is raised when two distinct foreign IDs hash to the
// same internal ID (§3.3 invariant 5, §9 open question 1). It is a fatal
// scan error: the caller aborts the in-progress scan and keeps serving the
// previously loaded model.
type ErrIdentityCollision struct {
	Kind        string // "artist", "album", or "track"
	ID          uint64
	ForeignIDA  string
	FilenameA   string
	ForeignIDB  string
	FilenameB   string
}

func (e *ErrIdentityCollision) Error() string {
	return fmt.Sprintf("internal ID collision on %s id %d: %s (%s) vs %s (%s)",
		e.Kind, e.ID, e.ForeignIDA, e.FilenameA, e.ForeignIDB, e.FilenameB)
}

// ErrMissingForeignID describes a row that lacks a foreign ID required to
// derive an artist, album, or track identity. Build does not return it:
// such rows are reported as SkippedRow and left out of the model.
type ErrMissingForeignID struct {
	Filename string
	Field    string
}

func (e *ErrMissingForeignID) Error() string {
	return fmt.Sprintf("%s: missing required tag %s", e.Filename, e.Field)
}
