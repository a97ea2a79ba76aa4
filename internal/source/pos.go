package source

import (
	"fmt"
	"sort"
)

// OffsetToPos converts a byte offset into a 1-based line/column pair against
// the given line index. Line 1 covers offset 0 up to (exclusive) the first
// recorded line break; the '\n' byte itself belongs to the line it ends.
//
// offset may equal contentLen (the end-of-file position). Anything larger is
// a position computed against a different snapshot, which is a caller bug.
func OffsetToPos(lineIdx []uint32, contentLen uint32, offset uint32) LineCol {
	if offset > contentLen {
		panic(fmt.Sprintf("source: offset %d out of bounds (len %d)", offset, contentLen))
	}
	idx := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	if idx == 0 {
		return LineCol{Line: 1, Col: offset + 1}
	}
	k := idx - 1
	return LineCol{Line: uint32(k) + 2, Col: offset - lineIdx[k]}
}

// PosToOffset is the inverse of OffsetToPos: a valid 1-based line/column pair
// maps back to the byte offset it was derived from. Invalid positions panic.
func PosToOffset(lineIdx []uint32, contentLen uint32, pos LineCol) uint32 {
	if pos.Line == 0 || pos.Col == 0 {
		panic(fmt.Sprintf("source: position %d:%d is not 1-based", pos.Line, pos.Col))
	}
	lineCount := uint32(len(lineIdx)) + 1
	if pos.Line > lineCount {
		panic(fmt.Sprintf("source: line %d out of bounds (%d lines)", pos.Line, lineCount))
	}
	var lineStart uint32
	if pos.Line > 1 {
		lineStart = lineIdx[pos.Line-2] + 1
	}
	offset := lineStart + pos.Col - 1
	lineEnd := contentLen
	if int(pos.Line-1) < len(lineIdx) {
		lineEnd = lineIdx[pos.Line-1]
	}
	if offset > lineEnd {
		panic(fmt.Sprintf("source: column %d past end of line %d", pos.Col, pos.Line))
	}
	return offset
}

// Position resolves a byte offset within this snapshot.
func (f *File) Position(offset uint32) LineCol {
	return OffsetToPos(f.LineIdx, f.Len(), offset)
}

// Offset resolves a 1-based position within this snapshot back to a byte
// offset.
func (f *File) Offset(pos LineCol) uint32 {
	return PosToOffset(f.LineIdx, f.Len(), pos)
}

// Len returns the content length in bytes.
func (f *File) Len() uint32 {
	return uint32(len(f.Content))
}

// LineCount returns the number of lines in the snapshot. An empty file has
// one (empty) line.
func (f *File) LineCount() uint32 {
	return uint32(len(f.LineIdx)) + 1
}

// Line returns the text of a 1-based line without its trailing newline.
// Out-of-range lines yield the empty string.
func (f *File) Line(line uint32) string {
	if line == 0 || line > f.LineCount() {
		return ""
	}
	var start uint32
	if line > 1 {
		start = f.LineIdx[line-2] + 1
	}
	end := f.Len()
	if int(line-1) < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}
