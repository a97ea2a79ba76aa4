package lsp

import (
	"ripple/internal/diag"
	"ripple/internal/source"
)

// errorStatus tracks what the client was last told about one file.
type errorStatus struct {
	lastReportedEpoch uint64
	hasDiagnostics    bool
}

// ErrorReporter is the epoch-gated publication ledger. Every analysis pass
// pushes its per-file results through here; the ledger rejects results
// computed against a snapshot that has since been edited, and suppresses
// redundant empty publications for files that were already clean.
type ErrorReporter struct {
	files    *source.FileSet
	statuses []errorStatus // index 0 unused, parallel to FileIDs
}

// NewErrorReporter creates a ledger over the given file table.
func NewErrorReporter(files *source.FileSet) *ErrorReporter {
	return &ErrorReporter{
		files:    files,
		statuses: make([]errorStatus, 1),
	}
}

func (r *ErrorReporter) setMaxFileID(id source.FileID) {
	for len(r.statuses) <= int(id) {
		r.statuses = append(r.statuses, errorStatus{})
	}
}

// PushDiagnostics offers the diagnostics computed for one file at one epoch.
// It returns the publication to send, or nil when nothing should go out, and
// whether the push was accepted into the ledger.
//
// A push is rejected when the file has been edited past epoch, or when a
// newer pass already reported for this file. An accepted push always advances
// the ledger, even when it produces no publication.
func (r *ErrorReporter) PushDiagnostics(epoch uint64, id source.FileID, bag *diag.Bag) (*publishDiagnosticsParams, bool) {
	f := r.files.Get(id)
	r.setMaxFileID(id)
	status := &r.statuses[id]
	if f.Epoch > epoch || status.lastReportedEpoch > epoch {
		return nil, false
	}

	hasDiagnostics := bag.Len() > 0
	previouslyHad := status.hasDiagnostics
	status.lastReportedEpoch = epoch
	status.hasDiagnostics = hasDiagnostics

	if !hasDiagnostics && !previouslyHad {
		return nil, true
	}
	return r.buildPublication(f, bag), true
}

// FilesUpdatedSince returns the files whose reported diagnostics are at
// least as new as epoch and non-empty. Callers use it to find files that
// need a fresh pass after a global invalidation.
func (r *ErrorReporter) FilesUpdatedSince(epoch uint64) []source.FileID {
	var ids []source.FileID
	for i := 1; i < len(r.statuses); i++ {
		st := r.statuses[i]
		if st.lastReportedEpoch >= epoch && st.hasDiagnostics {
			ids = append(ids, source.FileID(i))
		}
	}
	return ids
}

// LastReportedEpoch returns the epoch of the newest accepted push for id,
// or zero if the file was never reported on.
func (r *ErrorReporter) LastReportedEpoch(id source.FileID) uint64 {
	if int(id) >= len(r.statuses) {
		return 0
	}
	return r.statuses[id].lastReportedEpoch
}

func (r *ErrorReporter) buildPublication(f *source.File, bag *diag.Bag) *publishDiagnosticsParams {
	out := publishDiagnosticsParams{
		URI:         pathToURI(f.Path),
		Diagnostics: []lspDiagnostic{},
	}
	if bag == nil {
		return &out
	}
	for _, d := range bag.Items() {
		// Diagnostics without a concrete location still count toward the
		// ledger but have no renderable range on the wire.
		if d.Primary.IsNone() {
			continue
		}
		wire := lspDiagnostic{
			Range:    r.spanToRange(d.Primary),
			Severity: wireSeverity(d.Severity),
			Code:     string(d.Code),
			Source:   "ripple",
			Message:  d.Message,
		}
		for _, note := range d.Notes {
			if note.Span.IsNone() {
				continue
			}
			noteFile := r.files.Get(note.Span.File)
			wire.RelatedInformation = append(wire.RelatedInformation, relatedInformation{
				Location: lspLocation{
					URI:   pathToURI(noteFile.Path),
					Range: r.spanToRange(note.Span),
				},
				Message: note.Msg,
			})
		}
		out.Diagnostics = append(out.Diagnostics, wire)
	}
	return &out
}

func (r *ErrorReporter) spanToRange(span source.Span) lspRange {
	f := r.files.Get(span.File)
	start := f.Position(span.Start)
	end := f.Position(span.End)
	return lspRange{
		Start: position{Line: int(start.Line) - 1, Character: int(start.Col) - 1},
		End:   position{Line: int(end.Line) - 1, Character: int(end.Col) - 1},
	}
}

func wireSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	case diag.SevInfo:
		return 3
	default:
		return 4
	}
}
