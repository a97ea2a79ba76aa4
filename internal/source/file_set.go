package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns the table of known files. Each path gets one stable FileID;
// each observed edit to a path produces a fresh immutable snapshot with the
// epoch bumped by one. The table only grows within a session.
//
// FileSet is not internally locked: the dispatch loop serializes all
// mutation. Snapshots obtained from Get remain valid and immutable after
// later updates, so in-flight background analysis may keep using them.
type FileSet struct {
	files   []*File // index 0 unused; IDs are 1-based
	index   map[string]FileID
	baseDir string
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]*File, 1),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase creates a FileSet rooted at baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the configured base directory, falling back to the
// current working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// SetBaseDir sets the base directory used for relative paths.
func (fs *FileSet) SetBaseDir(dir string) {
	fs.baseDir = dir
}

func newSnapshot(id FileID, path string, content []byte, kind FileKind, epoch uint64) *File {
	return &File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: LineIndex(content),
		Hash:    sha256.Sum256(content),
		Kind:    kind,
		Epoch:   epoch,
	}
}

// Add registers a new path at epoch 0 and returns its FileID. Adding a path
// that is already known is a caller bug; edits go through Update.
func (fs *FileSet) Add(path string, content []byte, kind FileKind) FileID {
	normalized := normalizePath(path)
	if _, ok := fs.index[normalized]; ok {
		panic(fmt.Sprintf("source: %s already added", normalized))
	}
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file table overflow: %w", err))
	}
	id := FileID(n)
	fs.files = append(fs.files, newSnapshot(id, normalized, content, kind, 0))
	fs.index[normalized] = id
	return id
}

// Update replaces the current snapshot of path with new contents, bumping
// the epoch. A path with no known snapshot behaves as empty prior content
// at epoch 0, so its first update lands at epoch 1.
func (fs *FileSet) Update(path string, content []byte, kind FileKind) *File {
	normalized := normalizePath(path)
	id, ok := fs.index[normalized]
	if !ok {
		id = fs.Add(normalized, nil, kind)
	}
	next := newSnapshot(id, normalized, content, kind, fs.files[id].Epoch+1)
	fs.files[id] = next
	return next
}

// Load reads a file from disk, normalizes BOM/CRLF, and registers it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}
	content, _ = StripBOM(content)
	content, _ = NormalizeCRLF(content)
	return fs.Add(path, content, KindNormal), nil
}

// Get returns the current snapshot for id. Asking for NoFileID or an
// unknown id is a caller bug.
func (fs *FileSet) Get(id FileID) *File {
	if id == NoFileID || int(id) >= len(fs.files) {
		panic(fmt.Sprintf("source: no file with id %d", id))
	}
	return fs.files[id]
}

// Has reports whether id refers to a known file.
func (fs *FileSet) Has(id FileID) bool {
	return id != NoFileID && int(id) < len(fs.files)
}

// Lookup returns the FileID registered for path, if any.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// MaxID returns the highest FileID ever handed out, or NoFileID when the
// set is empty.
func (fs *FileSet) MaxID() FileID {
	return FileID(len(fs.files) - 1)
}

// Len returns the number of known files.
func (fs *FileSet) Len() int {
	return len(fs.files) - 1
}

// Resolve converts a span into its 1-based start and end positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	return f.Position(span.Start), f.Position(span.End)
}
