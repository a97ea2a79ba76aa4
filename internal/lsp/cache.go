package lsp

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when indexPayload changes shape; stale schemas are treated as a miss.
const indexCacheSchemaVersion uint16 = 1

// indexCache persists the workspace file digest table between sessions so
// the slow path can report how much of the workspace actually changed.
type indexCache struct {
	mu  sync.Mutex
	dir string
}

type indexPayload struct {
	Schema  uint16
	Root    string
	Entries []indexEntry
}

type indexEntry struct {
	Path string
	Hash [32]byte
}

// openIndexCache initializes the on-disk cache at the standard location, or
// under dir when non-empty.
func openIndexCache(dir string) (*indexCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "ripple", "workspaces")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &indexCache{dir: dir}, nil
}

func (c *indexCache) pathFor(root string) string {
	key := sha256.Sum256([]byte(canonicalPath(root)))
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".mp")
}

// load returns the cached payload for root, or (nil, nil) on a miss.
func (c *indexCache) load(root string) (*indexPayload, error) {
	if c == nil {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.pathFor(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var payload indexPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Schema != indexCacheSchemaVersion {
		return nil, nil
	}
	return &payload, nil
}

// save atomically writes the payload for root.
func (c *indexCache) save(root string, payload *indexPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = indexCacheSchemaVersion
	payload.Root = canonicalPath(root)

	target := c.pathFor(root)
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), target)
}
