package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	// IDs are stable across edits: every snapshot of the same path
	// shares one FileID.
	FileID uint32
	// FileKind distinguishes ordinary editable sources from synthetic ones.
	FileKind uint8
)

// NoFileID is the zero FileID. It never refers to a real file and serves
// as the "no file" sentinel for spans.
const NoFileID FileID = 0

const (
	// KindNormal is an ordinary source file that document edits may target.
	KindNormal FileKind = iota
	// KindSynthetic marks generated content (stdin, tests, tool output).
	KindSynthetic
)

// File is one immutable version of one file's contents. An edit produces a
// new File value with a bumped Epoch; Content and LineIdx are never mutated
// after construction, so a *File is safe to share with background workers.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offsets of each '\n'; offset 0 is never stored
	Hash    [32]byte
	Kind    FileKind
	Epoch   uint64
}

// LineCol is a 1-based human-readable position in a file.
type LineCol struct {
	Line uint32
	Col  uint32
}
