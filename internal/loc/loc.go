package loc

// Loc is the 0-based byte offset of a position from the start of a file.
type Loc struct {
	Start int
}

// Range is a span of bytes starting at Loc and extending Len bytes.
type Range struct {
	Loc Loc
	Len int
}

func (r Range) End() int {
	return r.Loc.Start + r.Len
}

// Span is an exclusive-end byte range.
type Span struct {
	Start, End int
}
