package lsp

import "ripple/internal/source"

// QueryProvider answers position-based requests against file snapshots.
// All methods are optional in spirit: returning a zero value produces a
// null/empty reply to the client. The server never retains the snapshot
// past the call.
type QueryProvider interface {
	Hover(f *source.File, offset uint32) (markdown string, span source.Span, ok bool)
	Definition(f *source.File, offset uint32) []source.Span
	References(f *source.File, offset uint32, includeDeclaration bool) []source.Span
	Completion(f *source.File, offset uint32) []CompletionCandidate
	SignatureHelp(f *source.File, offset uint32) (SignatureInfo, bool)
	DocumentSymbols(f *source.File) []Symbol
	WorkspaceSymbols(query string) []Symbol
}

// CompletionCandidate is one completion suggestion.
type CompletionCandidate struct {
	Label  string
	Kind   int
	Detail string
}

// SignatureInfo describes the signature under the cursor.
type SignatureInfo struct {
	Label           string
	Parameters      []string
	ActiveParameter int
}

// Symbol is a named definition with its declaration span.
type Symbol struct {
	Name string
	Kind int
	Span source.Span
}
