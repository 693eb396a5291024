// Package lsp adapts the glsp server wiring the teacher codebase uses for
// Java completion into a minimal diagnostics-and-quick-fix server for JSON:
// every open document is run through repair.Repair on
// open/change/save, a diagnostic is published when repair fails (and
// cleared when it succeeds), and a jsonrepair.fix code action hands back the
// repaired text as a WorkspaceEdit.
package lsp

import (
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/go-repair/jsonrepair/repair"
)

const serverName = "jsonrepair"

// document tracks one open text document plus the last repaired form
// computed for it, so the code-action handler doesn't have to repair twice.
type document struct {
	text     string
	repaired string
	hasFix   bool
}

// Server is the minimal LSP server described above.
type Server struct {
	handler protocol.Handler
	server  *glspserver.Server
	version string

	mu   sync.Mutex
	docs map[string]*document
}

// NewServer builds a Server advertising version as its LSP server info.
func NewServer(version string) *Server {
	s := &Server{
		version: version,
		docs:    make(map[string]*document),
	}

	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentDidSave:    s.textDocumentDidSave,
		TextDocumentCodeAction: s.textDocumentCodeAction,
	}

	s.server = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio serves over stdin/stdout, the transport every editor's LSP
// client plugin expects from a locally spawned server.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.updateDocument(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.updateDocument(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		s.updateDocument(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

// diagnoseText runs repair over text and reports what a caller needs to
// track a document by: the cached document state (with a repaired fix when
// one was produced) and the diagnostics to publish for it. Kept free of the
// glsp.Context so it can be exercised directly in tests.
func diagnoseText(text string) (*document, []protocol.Diagnostic) {
	repaired, err := repair.Repair(text)

	doc := &document{text: text}
	diagnostics := []protocol.Diagnostic{}

	if err != nil {
		if repairErr, ok := err.(*repair.Error); ok {
			pos := offsetToPosition(text, repairErr.Position)
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    protocol.Range{Start: pos, End: pos},
				Severity: severityPtr(protocol.DiagnosticSeverityError),
				Source:   strPtr(serverName),
				Message:  repairErr.Message,
			})
		}
	} else if repaired != text {
		doc.repaired = repaired
		doc.hasFix = true
	}

	return doc, diagnostics
}

// updateDocument re-runs repair over the document's current text, caches
// the outcome, and publishes (or clears) a diagnostic accordingly.
func (s *Server) updateDocument(ctx *glsp.Context, uri, text string) {
	doc, diagnostics := diagnoseText(text)

	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// codeActionsFor builds the jsonrepair.fix quick fix for uri when doc has a
// cached repair different from what's on disk, or nil otherwise. Kept free
// of the glsp.Context so it can be exercised directly in tests.
func codeActionsFor(uri string, doc *document) []protocol.CodeAction {
	if doc == nil || !doc.hasFix {
		return nil
	}

	kind := protocol.CodeActionKindQuickFix
	return []protocol.CodeAction{
		{
			Title: "jsonrepair.fix",
			Kind:  &kind,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[string][]protocol.TextEdit{
					uri: {
						{
							Range:   fullDocumentRange(doc.text),
							NewText: doc.repaired,
						},
					},
				},
			},
		},
	}
}

// textDocumentCodeAction offers jsonrepair.fix whenever the document's
// cached repair pass produced output different from what's on disk.
func (s *Server) textDocumentCodeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	s.mu.Lock()
	doc := s.docs[params.TextDocument.URI]
	s.mu.Unlock()

	actions := codeActionsFor(params.TextDocument.URI, doc)
	if actions == nil {
		return nil, nil
	}
	return actions, nil
}

// offsetToPosition converts a 0-based rune offset into the document into an
// LSP line/character position, counting newlines the same way the string
// was written.
func offsetToPosition(text string, offset int) protocol.Position {
	line, col := 0, 0
	i := 0
	for _, r := range text {
		if i >= offset {
			break
		}
		i++
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
}

// fullDocumentRange spans the entire document, for a code action whose edit
// replaces the whole text wholesale.
func fullDocumentRange(text string) protocol.Range {
	lines := strings.Split(text, "\n")
	lastLine := len(lines) - 1
	lastCol := len([]rune(lines[lastLine]))
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: protocol.UInteger(lastLine), Character: protocol.UInteger(lastCol)},
	}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }
