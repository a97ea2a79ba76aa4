package lsp

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ripple/internal/logging"
	"ripple/internal/source"
)

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"build":        true,
}

// listSourceFiles walks root and returns every source file with the
// workspace extension, sorted for a deterministic file table.
func listSourceFiles(root, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (skippedDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// indexWorkspace reads every workspace source file in parallel and registers
// the results in the file table in deterministic path order. It returns the
// snapshots it created.
func (s *Server) indexWorkspace(ctx context.Context) ([]*source.File, error) {
	paths, err := listSourceFiles(s.workspaceRoot, s.sourceExt())
	if err != nil {
		return nil, err
	}

	contents := make([][]byte, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// #nosec G304 -- paths come from walking the workspace root
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			raw, _ = source.StripBOM(raw)
			raw, _ = source.NormalizeCRLF(raw)
			contents[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Registration is sequential so FileIDs follow path order.
	var snapshots []*source.File
	s.mu.Lock()
	for i, path := range paths {
		if _, ok := s.files.Lookup(path); ok {
			continue
		}
		id := s.files.Add(path, contents[i], source.KindNormal)
		snapshots = append(snapshots, s.files.Get(id))
	}
	s.reporter.setMaxFileID(s.files.MaxID())
	s.mu.Unlock()

	changed := s.diffAgainstCache(snapshots)
	s.logger.Info("workspace indexed",
		logging.FieldRoot, s.workspaceRoot,
		logging.FieldFilesIndexed, len(snapshots),
		logging.FieldFilesChanged, changed,
	)
	return snapshots, nil
}

// diffAgainstCache compares the fresh index with the persisted one and
// saves the new digest table. It returns how many files differ from the
// previous session, or the full count when no cache exists.
func (s *Server) diffAgainstCache(snapshots []*source.File) int {
	if s.cache == nil {
		return len(snapshots)
	}
	previous, err := s.cache.load(s.workspaceRoot)
	if err != nil {
		s.logger.Warn("workspace cache unreadable", logging.FieldError, err)
	}
	known := make(map[string][32]byte)
	if previous != nil {
		for _, e := range previous.Entries {
			known[e.Path] = e.Hash
		}
	}

	changed := 0
	payload := &indexPayload{Entries: make([]indexEntry, 0, len(snapshots))}
	for _, snap := range snapshots {
		rel := snap.Path
		if r, err := filepath.Rel(s.workspaceRoot, filepath.FromSlash(snap.Path)); err == nil {
			rel = filepath.ToSlash(r)
		}
		if prev, ok := known[rel]; !ok || prev != snap.Hash {
			changed++
		}
		payload.Entries = append(payload.Entries, indexEntry{Path: rel, Hash: snap.Hash})
	}
	if err := s.cache.save(s.workspaceRoot, payload); err != nil {
		s.logger.Warn("workspace cache not saved", logging.FieldError, err)
	}
	return changed
}
