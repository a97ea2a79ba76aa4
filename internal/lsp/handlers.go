package lsp

import (
	"encoding/json"

	"ripple/internal/source"
)

// snapshotAt resolves a position request to the current snapshot of its
// document and the byte offset of the cursor.
func (s *Server) snapshotAt(doc textDocumentIdentifier, pos position) (*source.File, uint32, bool) {
	path := uriToPath(doc.URI)
	if path == "" {
		return nil, 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.files.Lookup(path)
	if !ok {
		return nil, 0, false
	}
	f := s.files.Get(id)
	return f, offsetAt(f.LineIdx, f.Len(), pos), true
}

func (s *Server) location(span source.Span) lspLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.files.Get(span.File)
	return lspLocation{URI: pathToURI(f.Path), Range: s.reporter.spanToRange(span)}
}

func (s *Server) rangeOf(span source.Span) lspRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reporter.spanToRange(span)
}

func (s *Server) handleHover(msg rpcMessage) {
	var params hoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, "malformed hover params")
		return
	}
	f, offset, ok := s.snapshotAt(params.TextDocument, params.Position)
	if !ok || s.queries == nil {
		s.sendResult(msg.ID, nil)
		return
	}
	markdown, span, found := s.queries.Hover(f, offset)
	if !found {
		s.sendResult(msg.ID, nil)
		return
	}
	result := hover{Contents: markupContent{Kind: "markdown", Value: markdown}}
	if !span.IsNone() {
		r := s.rangeOf(span)
		result.Range = &r
	}
	s.sendResult(msg.ID, result)
}

func (s *Server) handleDefinition(msg rpcMessage) {
	var params definitionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, "malformed definition params")
		return
	}
	f, offset, ok := s.snapshotAt(params.TextDocument, params.Position)
	if !ok || s.queries == nil {
		s.sendResult(msg.ID, []lspLocation{})
		return
	}
	spans := s.queries.Definition(f, offset)
	locations := make([]lspLocation, 0, len(spans))
	for _, span := range spans {
		if span.IsNone() {
			continue
		}
		locations = append(locations, s.location(span))
	}
	s.sendResult(msg.ID, locations)
}

func (s *Server) handleReferences(msg rpcMessage) {
	var params referenceParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, "malformed references params")
		return
	}
	f, offset, ok := s.snapshotAt(params.TextDocument, params.Position)
	if !ok || s.queries == nil {
		s.sendResult(msg.ID, []lspLocation{})
		return
	}
	spans := s.queries.References(f, offset, params.Context.IncludeDeclaration)
	locations := make([]lspLocation, 0, len(spans))
	for _, span := range spans {
		if span.IsNone() {
			continue
		}
		locations = append(locations, s.location(span))
	}
	s.sendResult(msg.ID, locations)
}

func (s *Server) handleCompletion(msg rpcMessage) {
	var params completionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, "malformed completion params")
		return
	}
	f, offset, ok := s.snapshotAt(params.TextDocument, params.Position)
	if !ok || s.queries == nil {
		s.sendResult(msg.ID, []completionItem{})
		return
	}
	candidates := s.queries.Completion(f, offset)
	items := make([]completionItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, completionItem{Label: c.Label, Kind: c.Kind, Detail: c.Detail})
	}
	s.sendResult(msg.ID, items)
}

func (s *Server) handleSignatureHelp(msg rpcMessage) {
	var params signatureHelpParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, "malformed signatureHelp params")
		return
	}
	f, offset, ok := s.snapshotAt(params.TextDocument, params.Position)
	if !ok || s.queries == nil {
		s.sendResult(msg.ID, nil)
		return
	}
	info, found := s.queries.SignatureHelp(f, offset)
	if !found {
		s.sendResult(msg.ID, nil)
		return
	}
	sig := signatureInformation{Label: info.Label}
	for _, p := range info.Parameters {
		sig.Parameters = append(sig.Parameters, parameterInformation{Label: p})
	}
	s.sendResult(msg.ID, signatureHelp{
		Signatures:      []signatureInformation{sig},
		ActiveParameter: info.ActiveParameter,
	})
}

func (s *Server) handleDocumentSymbol(msg rpcMessage) {
	var params documentSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, "malformed documentSymbol params")
		return
	}
	f, _, ok := s.snapshotAt(params.TextDocument, position{})
	if !ok || s.queries == nil {
		s.sendResult(msg.ID, []symbolInformation{})
		return
	}
	s.sendResult(msg.ID, s.symbolInfos(s.queries.DocumentSymbols(f)))
}

func (s *Server) handleWorkspaceSymbol(msg rpcMessage) {
	var params workspaceSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, "malformed workspace symbol params")
		return
	}
	if s.queries == nil {
		s.sendResult(msg.ID, []symbolInformation{})
		return
	}
	s.sendResult(msg.ID, s.symbolInfos(s.queries.WorkspaceSymbols(params.Query)))
}

func (s *Server) symbolInfos(symbols []Symbol) []symbolInformation {
	out := make([]symbolInformation, 0, len(symbols))
	for _, sym := range symbols {
		if sym.Span.IsNone() {
			continue
		}
		out = append(out, symbolInformation{
			Name:     sym.Name,
			Kind:     sym.Kind,
			Location: s.location(sym.Span),
		})
	}
	return out
}
