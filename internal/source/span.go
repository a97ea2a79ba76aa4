package source

import "fmt"

// Span is a half-open byte range [Start, End) inside one file. The zero
// value is the "none" span: no file, no location.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// None returns the sentinel span that carries no location.
func None() Span {
	return Span{}
}

// NewSpan builds a span, enforcing Start <= End.
func NewSpan(file FileID, start, end uint32) Span {
	if start > end {
		panic(fmt.Sprintf("source: span start %d after end %d", start, end))
	}
	return Span{File: file, Start: start, End: end}
}

// IsNone reports whether the span carries no location.
func (s Span) IsNone() bool {
	return s.File == NoFileID
}

// Empty reports whether the span covers zero bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Len returns the span width in bytes.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	if s.IsNone() {
		return "<none>"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Join returns the tightest span covering both s and other. A none side
// yields the other side unchanged. Joining two real spans from different
// files is a caller bug and panics.
func (s Span) Join(other Span) Span {
	if s.IsNone() {
		return other
	}
	if other.IsNone() {
		return s
	}
	if s.File != other.File {
		panic(fmt.Sprintf("source: joining spans from different files (%d and %d)", s.File, other.File))
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
