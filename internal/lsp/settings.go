package lsp

import (
	"encoding/json"

	"ripple/internal/logging"
)

// defaultMaxDiagnostics caps how many diagnostics one file may publish.
const defaultMaxDiagnostics = 1000

// applySettings folds a workspace/didChangeConfiguration payload into the
// server. Unknown fields are ignored; malformed payloads are logged and
// dropped.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.Warn("malformed configuration", logging.FieldError, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.Ripple.LSP.Trace != nil {
		s.trace = *settings.Ripple.LSP.Trace
	}
	if limit := settings.Ripple.MaxDiagnostics; limit != nil && *limit > 0 {
		s.maxDiagnostics = *limit
	}
}
