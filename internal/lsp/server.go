// Package lsp implements the ripple language server: a stdio JSON-RPC
// dispatch loop over an immutable file table, with epoch-gated diagnostic
// publication.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"ripple/internal/diag"
	"ripple/internal/logging"
	"ripple/internal/project"
	"ripple/internal/source"
)

// ErrExitWithoutShutdown is returned by Run when the client sends exit
// without a preceding shutdown request. The process should exit non-zero.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// errExit breaks the dispatch loop after a clean shutdown/exit pair.
var errExit = errors.New("exit")

// ServerOptions configures a Server. Zero values get sensible defaults.
type ServerOptions struct {
	// Analyze computes diagnostics; nil means every file is clean.
	Analyze AnalyzeFunc
	// Queries answers hover/definition/etc; nil yields null replies.
	Queries QueryProvider
	// MaxDiagnostics caps per-file publications (default 1000).
	MaxDiagnostics int
	// Logger receives structured session logs (default logging.Default).
	Logger *log.Logger
	// CacheDir overrides the workspace index cache location.
	CacheDir string
	// DisableCache skips the on-disk index cache entirely.
	DisableCache bool
	// SyncSlowPath runs the whole-workspace pass inline instead of on a
	// background goroutine. Used by tests for deterministic ordering.
	SyncSlowPath bool
}

// Server is one language-server session over a reader/writer pair.
type Server struct {
	in     *bufio.Reader
	out    io.Writer
	sendMu sync.Mutex // serializes outbound frames

	// mu guards the file table, the ledger, lifecycle state, and settings.
	mu                sync.Mutex
	state             serverState
	shutdownRequested bool
	files             *source.FileSet
	reporter          *ErrorReporter
	cancelled         map[string]struct{}
	trace             bool
	maxDiagnostics    int

	workspaceRoot string
	manifest      *project.Manifest

	analyze AnalyzeFunc
	queries QueryProvider
	logger  *log.Logger
	cache   *indexCache

	baseCtx    context.Context
	slowCancel context.CancelFunc
	slowWG     sync.WaitGroup
	syncSlow   bool
}

// NewServer wires a session over in/out. Run drives it.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	s := &Server{
		in:             bufio.NewReader(in),
		out:            out,
		files:          source.NewFileSet(),
		cancelled:      make(map[string]struct{}),
		maxDiagnostics: opts.MaxDiagnostics,
		analyze:        opts.Analyze,
		queries:        opts.Queries,
		logger:         opts.Logger,
		syncSlow:       opts.SyncSlowPath,
	}
	s.reporter = NewErrorReporter(s.files)
	if s.maxDiagnostics <= 0 {
		s.maxDiagnostics = defaultMaxDiagnostics
	}
	if s.analyze == nil {
		s.analyze = noopAnalyze
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if !opts.DisableCache {
		cache, err := openIndexCache(opts.CacheDir)
		if err != nil {
			s.logger.Warn("workspace cache unavailable", logging.FieldError, err)
		} else {
			s.cache = cache
		}
	}
	return s
}

// Run reads and dispatches messages until the client exits or the transport
// fails. A clean shutdown/exit pair returns nil; exit without shutdown
// returns ErrExitWithoutShutdown.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	defer s.slowWG.Wait()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("transport: %w", err)
		}
		if err := s.handleMessage(ctx, payload); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, payload []byte) error {
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.logger.Warn("unparsable message", logging.FieldError, err)
		return nil
	}
	if msg.Method == "" {
		// A response to a server-initiated request; we send none.
		return nil
	}
	info := lookupMethod(msg.Method)
	isRequest := len(msg.ID) > 0 && !info.notification

	if s.trace {
		s.logger.Debug("recv", logging.FieldMethod, msg.Method, "state", s.currentState().String())
	}

	if isRequest && s.isCancelled(msg.ID) {
		s.sendError(msg.ID, codeRequestCancelled, "request cancelled")
		return nil
	}

	switch info.kind {
	case methodUnknown:
		s.logger.Warn("unknown method", logging.FieldMethod, msg.Method)
		fallthrough
	case methodUnsupported:
		if isRequest {
			s.sendError(msg.ID, codeMethodNotFound, fmt.Sprintf("method not supported: %s", msg.Method))
		}
		return nil
	case methodInitialize:
		return s.handleInitialize(msg)
	case methodExit:
		return s.handleExit()
	case methodCancelRequest:
		s.handleCancel(msg.Params)
		return nil
	}

	switch s.currentState() {
	case stateUninitialized:
		if isRequest {
			s.sendError(msg.ID, codeServerNotInitialized, "server not initialized")
		} else {
			s.logger.Debug("notification before initialize", logging.FieldMethod, msg.Method)
		}
		return nil
	case stateShutdown:
		if isRequest {
			s.sendError(msg.ID, codeInvalidRequest, "server is shutting down")
		}
		return nil
	case stateInitializing:
		if info.kind != methodInitialized && info.kind != methodShutdown {
			if isRequest {
				s.sendError(msg.ID, codeServerNotInitialized, "server not initialized")
			} else {
				s.logger.Debug("notification before initialized", logging.FieldMethod, msg.Method)
			}
			return nil
		}
	}

	switch info.kind {
	case methodInitialized:
		return s.handleInitialized(ctx)
	case methodShutdown:
		s.mu.Lock()
		s.shutdownRequested = true
		s.state = stateShutdown
		s.mu.Unlock()
		s.sendResult(msg.ID, nil)
	case methodDidChangeConfiguration:
		var params didChangeConfigurationParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.applySettings(params.Settings)
		}
	case methodDidOpen:
		s.handleDidOpen(ctx, msg.Params)
	case methodDidChange:
		s.handleDidChange(ctx, msg.Params)
	case methodDidSave:
		s.handleDidSave(ctx, msg.Params)
	case methodDidClose:
		s.handleDidClose(msg.Params)
	case methodHover:
		s.handleHover(msg)
	case methodDefinition:
		s.handleDefinition(msg)
	case methodReferences:
		s.handleReferences(msg)
	case methodCompletion:
		s.handleCompletion(msg)
	case methodSignatureHelp:
		s.handleSignatureHelp(msg)
	case methodDocumentSymbol:
		s.handleDocumentSymbol(msg)
	case methodWorkspaceSymbol:
		s.handleWorkspaceSymbol(msg)
	}
	return nil
}

func (s *Server) currentState() serverState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// sourceExt returns the workspace source extension, honoring the manifest.
func (s *Server) sourceExt() string {
	if s.manifest != nil && s.manifest.Ext != "" {
		return s.manifest.Ext
	}
	return project.DefaultExt
}

// Lifecycle.

func (s *Server) handleInitialize(msg rpcMessage) error {
	s.mu.Lock()
	if s.state != stateUninitialized {
		s.mu.Unlock()
		s.sendError(msg.ID, codeInvalidRequest, "server already initialized")
		return nil
	}
	s.mu.Unlock()

	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.sendError(msg.ID, codeInvalidParams, "malformed initialize params")
			return nil
		}
	}

	root := ""
	switch {
	case params.RootURI != "":
		root = uriToPath(params.RootURI)
	case len(params.WorkspaceFolders) > 0:
		root = uriToPath(params.WorkspaceFolders[0].URI)
	case params.RootPath != "":
		root = params.RootPath
	}
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		}
	}
	root = canonicalPath(root)

	var manifest *project.Manifest
	if manifestPath, ok, err := project.FindManifest(root); err != nil {
		s.logger.Warn("manifest lookup failed", logging.FieldError, err)
	} else if ok {
		manifest, err = project.LoadManifest(manifestPath)
		if err != nil {
			s.logger.Warn("manifest rejected", logging.FieldPath, manifestPath, logging.FieldError, err)
			manifest = nil
		}
	}

	s.mu.Lock()
	s.state = stateInitializing
	s.workspaceRoot = root
	s.manifest = manifest
	s.files.SetBaseDir(root)
	s.mu.Unlock()

	s.logger.Info("session started", logging.FieldRoot, root, logging.FieldVersion, "0.1.0")
	s.sendResult(msg.ID, initializeResult{Capabilities: capabilities()})
	return nil
}

func capabilities() serverCapabilities {
	return serverCapabilities{
		TextDocumentSync: textDocumentSyncOptions{
			OpenClose: true,
			Change:    syncIncremental,
		},
		HoverProvider:           true,
		DefinitionProvider:      true,
		ReferencesProvider:      true,
		DocumentSymbolProvider:  true,
		WorkspaceSymbolProvider: true,
		SignatureHelpProvider:   &signatureHelpOptions{TriggerCharacters: []string{"(", ","}},
		CompletionProvider:      &completionOptions{TriggerCharacters: []string{"."}},
	}
}

func (s *Server) handleInitialized(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateInitializing {
		s.mu.Unlock()
		return nil
	}
	s.state = stateReady
	s.mu.Unlock()

	snapshots, err := s.indexWorkspace(ctx)
	if err != nil {
		s.logger.Error("workspace indexing failed", logging.FieldError, err)
		return nil
	}
	s.startSlowPass(snapshots)
	return nil
}

func (s *Server) handleExit() error {
	s.mu.Lock()
	clean := s.shutdownRequested
	cancel := s.slowCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if !clean {
		return ErrExitWithoutShutdown
	}
	return errExit
}

// maxPendingCancellations bounds the set of cancelled-but-unseen request
// IDs. Cancels targeting requests that were already answered, or that never
// arrive, would otherwise pin an entry for the rest of the session.
const maxPendingCancellations = 128

func (s *Server) handleCancel(raw json.RawMessage) {
	var params cancelParams
	if err := json.Unmarshal(raw, &params); err != nil || len(params.ID) == 0 {
		return
	}
	s.mu.Lock()
	if len(s.cancelled) >= maxPendingCancellations {
		for id := range s.cancelled {
			delete(s.cancelled, id)
			break
		}
	}
	s.cancelled[string(params.ID)] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) isCancelled(id json.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cancelled[string(id)]; ok {
		delete(s.cancelled, string(id))
		return true
	}
	return false
}

// Document sync.

// resolveDocument maps a document URI to a workspace path. It reports
// in-root status so edits outside the workspace can be ignored wholesale.
func (s *Server) resolveDocument(uri string) (string, bool) {
	path := uriToPath(uri)
	if path == "" {
		return "", false
	}
	if !pathWithinRoot(s.workspaceRoot, path) {
		s.logger.Debug("ignoring document outside workspace", logging.FieldURI, uri)
		return "", false
	}
	return path, true
}

func (s *Server) handleDidOpen(ctx context.Context, raw json.RawMessage) {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		s.logger.Warn("malformed didOpen", logging.FieldError, err)
		return
	}
	path, ok := s.resolveDocument(params.TextDocument.URI)
	if !ok {
		return
	}
	content, _ := source.NormalizeCRLF([]byte(params.TextDocument.Text))

	s.mu.Lock()
	if id, known := s.files.Lookup(path); known {
		// Unchanged from the indexed snapshot; no epoch to burn.
		if current := s.files.Get(id); string(current.Content) == string(content) {
			snap := current
			s.mu.Unlock()
			s.runFastPass(ctx, snap)
			return
		}
	}
	snap := s.files.Update(path, content, source.KindNormal)
	s.reporter.setMaxFileID(s.files.MaxID())
	s.mu.Unlock()

	s.runFastPass(ctx, snap)
}

func (s *Server) handleDidChange(ctx context.Context, raw json.RawMessage) {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		s.logger.Warn("malformed didChange", logging.FieldError, err)
		return
	}
	path, ok := s.resolveDocument(params.TextDocument.URI)
	if !ok || len(params.ContentChanges) == 0 {
		return
	}

	s.mu.Lock()
	var current []byte
	if id, known := s.files.Lookup(path); known {
		current = s.files.Get(id).Content
	}
	next := applyChanges(current, params.ContentChanges)
	snap := s.files.Update(path, next, source.KindNormal)
	s.reporter.setMaxFileID(s.files.MaxID())
	s.mu.Unlock()

	s.runFastPass(ctx, snap)
}

func (s *Server) handleDidSave(ctx context.Context, raw json.RawMessage) {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		s.logger.Warn("malformed didSave", logging.FieldError, err)
		return
	}
	path, ok := s.resolveDocument(params.TextDocument.URI)
	if !ok {
		return
	}

	var content []byte
	if params.Text != nil {
		content, _ = source.NormalizeCRLF([]byte(*params.Text))
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("saved file unreadable", logging.FieldPath, path, logging.FieldError, err)
			return
		}
		raw, _ = source.StripBOM(raw)
		content, _ = source.NormalizeCRLF(raw)
	}

	s.mu.Lock()
	if id, known := s.files.Lookup(path); known {
		if current := s.files.Get(id); string(current.Content) == string(content) {
			s.mu.Unlock()
			return
		}
	}
	snap := s.files.Update(path, content, source.KindNormal)
	s.reporter.setMaxFileID(s.files.MaxID())
	s.mu.Unlock()

	s.runFastPass(ctx, snap)
}

func (s *Server) handleDidClose(raw json.RawMessage) {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}
	// Snapshots are kept for the session; closing only stops sync.
	s.logger.Debug("document closed", logging.FieldURI, params.TextDocument.URI)
}

// Analysis dispatch.

// runFastPass analyzes one freshly edited snapshot inline so diagnostics
// land before the next message is read.
func (s *Server) runFastPass(ctx context.Context, snap *source.File) {
	s.dispatchAnalysis(ctx, []*source.File{snap}, ModeFast)
}

// startSlowPass runs a whole-workspace pass, cancelling any previous one.
// Results flow through the ledger, so a pass that loses the race against an
// edit simply publishes nothing for the edited file.
func (s *Server) startSlowPass(snapshots []*source.File) {
	if len(snapshots) == 0 {
		return
	}
	s.mu.Lock()
	if s.slowCancel != nil {
		s.slowCancel()
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.slowCancel = cancel
	s.mu.Unlock()

	if s.syncSlow {
		s.dispatchAnalysis(ctx, snapshots, ModeSlow)
		return
	}
	s.slowWG.Add(1)
	go func() {
		defer s.slowWG.Done()
		s.dispatchAnalysis(ctx, snapshots, ModeSlow)
	}()
}

// dispatchAnalysis runs the analyzer over the given snapshots and pushes the
// results through the ledger at each snapshot's epoch.
func (s *Server) dispatchAnalysis(ctx context.Context, snapshots []*source.File, mode Mode) {
	ctx = logging.WithLogger(ctx, s.logger)
	results, err := s.analyze(ctx, snapshots, mode)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("analysis failed", logging.FieldMode, mode.String(), logging.FieldError, err)
		}
		return
	}

	published := 0
	diagnostics := 0
	s.mu.Lock()
	for _, snap := range snapshots {
		bag, ok := results[snap.ID]
		if !ok {
			continue
		}
		bag = s.capBag(bag)
		params, accepted := s.reporter.PushDiagnostics(snap.Epoch, snap.ID, bag)
		if !accepted {
			s.logger.Debug("stale analysis dropped",
				logging.FieldPath, snap.Path,
				logging.FieldEpoch, snap.Epoch,
			)
			continue
		}
		if params == nil {
			continue
		}
		// Emit while still holding the ledger lock: once a push is accepted,
		// no newer result for the same file may reach the wire first.
		s.sendNotification("textDocument/publishDiagnostics", params)
		published++
		diagnostics += len(params.Diagnostics)
	}
	s.mu.Unlock()
	if mode == ModeSlow {
		s.logger.Info("analysis pass complete",
			logging.FieldMode, mode.String(),
			logging.FieldFiles, len(snapshots),
			logging.FieldFilesPublished, published,
			logging.FieldDiagnostics, diagnostics,
		)
	}
}

// capBag enforces the configured per-file diagnostic limit.
func (s *Server) capBag(bag *diag.Bag) *diag.Bag {
	if bag == nil || bag.Len() <= s.maxDiagnostics {
		return bag
	}
	capped := diag.NewBag(s.maxDiagnostics)
	for _, d := range bag.Items() {
		if !capped.Add(d) {
			break
		}
	}
	return capped
}

// Outbound plumbing.

func (s *Server) send(msg rpcMessage) {
	msg.JSONRPC = "2.0"
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal failed", logging.FieldError, err)
		return
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		s.logger.Error("write failed", logging.FieldError, err)
	}
}

func (s *Server) sendResult(id json.RawMessage, result any) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.sendError(id, codeInternalError, "result marshal failed")
		return
	}
	s.send(rpcMessage{ID: id, Result: raw})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) {
	s.send(rpcMessage{ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) sendNotification(method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		s.logger.Error("marshal failed", logging.FieldMethod, method, logging.FieldError, err)
		return
	}
	s.send(rpcMessage{Method: method, Params: raw})
}
