package lsp

import (
	"context"

	"ripple/internal/diag"
	"ripple/internal/source"
)

// Mode selects the depth of an analysis pass.
type Mode uint8

const (
	// ModeFast is the low-latency pass run synchronously on every edit.
	ModeFast Mode = iota
	// ModeSlow is the whole-workspace pass run in the background.
	ModeSlow
)

func (m Mode) String() string {
	if m == ModeSlow {
		return "slow"
	}
	return "fast"
}

// Result holds per-file diagnostics from one analysis pass. Files analyzed
// but found clean must appear with an empty bag so the ledger can retract
// their previous diagnostics.
type Result map[source.FileID]*diag.Bag

// AnalyzeFunc computes diagnostics for a set of file snapshots. Snapshots
// are immutable, so implementations may run on background goroutines without
// coordination; ctx is cancelled when a newer edit supersedes the pass.
type AnalyzeFunc func(ctx context.Context, snapshots []*source.File, mode Mode) (Result, error)

func noopAnalyze(_ context.Context, snapshots []*source.File, _ Mode) (Result, error) {
	out := make(Result, len(snapshots))
	for _, f := range snapshots {
		out[f.ID] = nil
	}
	return out, nil
}
