package lsp

// method is the closed set of operations this server understands. Inbound
// method names resolve to exactly one variant; everything else is
// methodUnknown and answered with "method not found".
type method uint8

const (
	methodUnknown method = iota
	// methodUnsupported names operations we recognize but do not implement.
	// They get the same "method not found" reply as unknown ones, without
	// tripping the unknown-method log.
	methodUnsupported

	methodInitialize
	methodInitialized
	methodShutdown
	methodExit
	methodCancelRequest
	methodDidChangeConfiguration
	methodDidOpen
	methodDidChange
	methodDidSave
	methodDidClose
	methodHover
	methodDefinition
	methodReferences
	methodCompletion
	methodSignatureHelp
	methodDocumentSymbol
	methodWorkspaceSymbol
)

type methodInfo struct {
	kind         method
	notification bool
}

var methodTable = map[string]methodInfo{
	"initialize":                       {kind: methodInitialize},
	"initialized":                      {kind: methodInitialized, notification: true},
	"shutdown":                         {kind: methodShutdown},
	"exit":                             {kind: methodExit, notification: true},
	"$/cancelRequest":                  {kind: methodCancelRequest, notification: true},
	"workspace/didChangeConfiguration": {kind: methodDidChangeConfiguration, notification: true},
	"textDocument/didOpen":             {kind: methodDidOpen, notification: true},
	"textDocument/didChange":           {kind: methodDidChange, notification: true},
	"textDocument/didSave":             {kind: methodDidSave, notification: true},
	"textDocument/didClose":            {kind: methodDidClose, notification: true},
	"textDocument/hover":               {kind: methodHover},
	"textDocument/definition":          {kind: methodDefinition},
	"textDocument/references":          {kind: methodReferences},
	"textDocument/completion":          {kind: methodCompletion},
	"textDocument/signatureHelp":       {kind: methodSignatureHelp},
	"textDocument/documentSymbol":      {kind: methodDocumentSymbol},
	"workspace/symbol":                 {kind: methodWorkspaceSymbol},

	// Recognized but deliberately not offered in the capability reply.
	"textDocument/codeAction":   {kind: methodUnsupported},
	"textDocument/rename":       {kind: methodUnsupported},
	"textDocument/formatting":   {kind: methodUnsupported},
	"textDocument/inlayHint":    {kind: methodUnsupported},
	"textDocument/foldingRange": {kind: methodUnsupported},
}

func lookupMethod(name string) methodInfo {
	if info, ok := methodTable[name]; ok {
		return info
	}
	return methodInfo{kind: methodUnknown}
}

// supported reports whether the method dispatches to a real handler.
func (m methodInfo) supported() bool {
	return m.kind != methodUnknown && m.kind != methodUnsupported
}
