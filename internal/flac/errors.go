package flac

import "fmt"

// ErrNotFlac is returned when a file does not begin with a FLAC stream
// marker or carries no STREAMINFO block.
type ErrNotFlac struct {
	Path string
}

func (e *ErrNotFlac) Error() string {
	return fmt.Sprintf("%s: not a FLAC file", e.Path)
}

// ErrTagInvalid names the offending tag when a recognized tag's value
// fails to parse under its documented semantics (§4.1).
type ErrTagInvalid struct {
	Path   string
	Tag    string
	Value  string
	Reason string
}

func (e *ErrTagInvalid) Error() string {
	return fmt.Sprintf("%s: tag %s=%q invalid: %s", e.Path, e.Tag, e.Value, e.Reason)
}

// ErrIO wraps a filesystem error encountered while reading a container.
type ErrIO struct {
	Path string
	Err  error
}

func (e *ErrIO) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *ErrIO) Unwrap() error { return e.Err }
