package library

// Interner deduplicates strings referenced by many entities (artist names,
// album titles) into one shared, immutable buffer so the in-memory model
// fits in tens of MB for hundreds of thousands of tracks (§4.4).
type Interner struct {
	buf    []byte
	lookup map[string]StringRef
}

// NewInterner creates an empty interner. capHint pre-sizes the buffer.
func NewInterner(capHint int) *Interner {
	return &Interner{
		buf:    make([]byte, 0, capHint),
		lookup: make(map[string]StringRef),
	}
}

// Intern returns the StringRef for s, appending it to the buffer on first
// sight and reusing the existing entry on repeats.
func (in *Interner) Intern(s string) StringRef {
	if s == "" {
		return StringRef{}
	}
	if ref, ok := in.lookup[s]; ok {
		return ref
	}
	ref := StringRef{Offset: uint32(len(in.buf)), Length: uint32(len(s))}
	in.buf = append(in.buf, s...)
	in.lookup[s] = ref
	return ref
}

// Resolve returns the string denoted by ref.
func (in *Interner) Resolve(ref StringRef) string {
	if ref.Length == 0 {
		return ""
	}
	return string(in.buf[ref.Offset : ref.Offset+ref.Length])
}
