package lsp

import (
	"fortio.org/safecast"

	"ripple/internal/source"
)

// applyChanges folds a batch of content changes over the given text, in
// order. Each change sees the document as left by the previous one. A change
// without a range replaces the whole document.
func applyChanges(content []byte, changes []textDocumentContentChangeEvent) []byte {
	for _, change := range changes {
		if change.Range == nil {
			content = []byte(change.Text)
			continue
		}
		lineIdx := source.LineIndex(content)
		contentLen, err := safecast.Conv[uint32](len(content))
		if err != nil {
			// Documents this large never arrive over the wire.
			panic(err)
		}
		start := offsetAt(lineIdx, contentLen, change.Range.Start)
		end := offsetAt(lineIdx, contentLen, change.Range.End)
		if end < start {
			start, end = end, start
		}
		next := make([]byte, 0, int(start)+len(change.Text)+len(content)-int(end))
		next = append(next, content[:start]...)
		next = append(next, change.Text...)
		next = append(next, content[end:]...)
		content = next
	}
	return content
}

// offsetAt converts a zero-based protocol position into a byte offset,
// clamping out-of-range lines to end-of-file and out-of-range columns to
// end-of-line. Editors routinely send positions one past the last character.
func offsetAt(lineIdx []uint32, contentLen uint32, pos position) uint32 {
	if pos.Line < 0 {
		return 0
	}
	line := uint32(pos.Line)
	lineCount := uint32(len(lineIdx)) + 1
	if line >= lineCount {
		return contentLen
	}
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	lineEnd := contentLen
	if int(line) < len(lineIdx) {
		lineEnd = lineIdx[line]
	}
	character := pos.Character
	if character < 0 {
		character = 0
	}
	offset := lineStart + uint32(character)
	if offset > lineEnd {
		offset = lineEnd
	}
	return offset
}
