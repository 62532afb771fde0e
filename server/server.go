// Package server wires the editor-protocol transport to the syntax
// mirror, global index, and Java resolution engine, grounded directly
// on the teacher's LSPServer (java/codebase/lsp.go): a protocol.Handler
// struct literal of bound methods handed to glsp's server.NewServer,
// with initialize/initialized driving workspace bootstrap and the
// remaining handlers each doing one small translation between LSP
// wire types and this module's own packages.
package server

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/jrsls/jrsls/archive"
	"github.com/jrsls/jrsls/config"
	"github.com/jrsls/jrsls/index"
	"github.com/jrsls/jrsls/javalang"
	"github.com/jrsls/jrsls/syntax"
	"github.com/jrsls/jrsls/workspace"
)

const name = "jrsls"

var log = commonlog.GetLogger("jrsls.server")

// Server is the editor-protocol front end: it owns no resolution logic
// of its own, only the wiring between glsp's handler and the
// independently-testable javalang/index/syntax/archive packages.
type Server struct {
	cfg config.Config

	handler protocol.Handler
	inner   *glspserver.Server

	mgr      *syntax.Manager
	idx      *index.GlobalIndex
	root     *workspace.Root
	archives *archive.Registry
	version  string
}

// New constructs a Server ready to Run; the syntax manager is
// pre-registered with the Java grammar so the first didOpen can parse
// immediately.
func New(cfg config.Config, version string) *Server {
	mgr := syntax.NewManager()
	mgr.RegisterLanguage("java", javalang.Language())

	s := &Server{
		cfg:      cfg,
		mgr:      mgr,
		idx:      index.NewGlobalIndex(),
		root:     workspace.NewRoot(),
		archives: archive.NewRegistry(filepath.Join(os.TempDir(), "jrsls")),
		version:  version,
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
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentCompletion:     s.textDocumentCompletion,
	}

	s.inner = glspserver.NewServer(&s.handler, name, false)
	return s
}

// Run starts the transport named by cfg.Mode ("stdin" or "tcp-socket").
func (s *Server) Run() error {
	if s.cfg.Mode == "stdin" {
		return s.inner.RunStdio()
	}
	return s.inner.RunTCP("127.0.0.1:" + strconv.Itoa(int(s.cfg.Port)))
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := "."
	if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			root = path
		}
	} else if params.RootPath != nil && *params.RootPath != "" {
		root = *params.RootPath
	}
	s.root.Set(root)

	javaHome := s.cfg.JavaHome
	if javaHome == "" {
		javaHome = os.Getenv("JAVA_HOME")
	}
	if javaHome != "" {
		if archive.RegisterJDK(s.archives, javaHome) {
			log.Infof("registered JDK sources from %s", javaHome)
		}
	}

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(true)},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	root := s.root.Get()
	if root == "" {
		return nil
	}
	errs := workspace.Bootstrap(context.Background(), root, s.mgr, s.idx, workspace.BootstrapConfig{})
	for _, err := range errs {
		log.Warningf("workspace bootstrap: %v", err)
	}
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
	uri := string(params.TextDocument.URI)
	doc, err := s.mgr.Open(context.Background(), uri, params.TextDocument.LanguageID, params.TextDocument.Text)
	if err != nil {
		log.Warningf("parse failure opening %s: %v", uri, err)
		return nil
	}
	s.reindex(uri, doc)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	changes := make([]syntax.ContentChange, 0, len(params.ContentChanges))
	for _, raw := range params.ContentChanges {
		switch c := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			r := toSyntaxRange(c.Range)
			changes = append(changes, syntax.ContentChange{Range: r, Text: c.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, syntax.ContentChange{Text: c.Text})
		}
	}

	skipped, err := s.mgr.ApplyChanges(context.Background(), uri, changes)
	for _, sk := range skipped {
		log.Warningf("skipped change %d for %s: %s", sk.Index, uri, sk.Reason)
	}
	if err != nil {
		log.Warningf("applying changes to %s: %v", uri, err)
		return nil
	}

	s.mgr.Get(uri, func(doc *syntax.Document) {
		s.reindex(uri, doc)
	})
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.mgr.Close(uri)
	s.idx.RemoveFile(uri)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	return nil
}

func (s *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	uri := string(params.TextDocument.URI)
	var symbols []protocol.DocumentSymbol
	s.mgr.Get(uri, func(doc *syntax.Document) {
		src := []byte(doc.Rope.String())
		symbols = javalang.Outline(doc.Tree, src)
	})
	if symbols == nil {
		return nil, nil
	}
	return symbols, nil
}

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	var loc *protocol.Location
	s.mgr.Get(uri, func(doc *syntax.Document) {
		src := []byte(doc.Rope.String())
		cursor := toSitterPoint(params.Position)
		loc = javalang.Resolve(doc.Tree, src, cursor, s.idx, uri)
	})
	if loc == nil {
		return nil, nil
	}
	if rewritten, ok := s.archives.Materialize(*loc); ok {
		return rewritten, nil
	}
	return *loc, nil
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	var items []protocol.CompletionItem
	s.mgr.Get(uri, func(doc *syntax.Document) {
		src := []byte(doc.Rope.String())
		cursor := toSitterPoint(params.Position)
		cursorByte, err := doc.Rope.PointToByte(toRopePoint(params.Position))
		if err != nil {
			return
		}
		items = javalang.Complete(doc.Tree, src, cursorByte, cursor, s.idx, uri, s.cfg.Keywords())
	})
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func (s *Server) reindex(uri string, doc *syntax.Document) {
	src := []byte(doc.Rope.String())
	if err := javalang.IndexFile(s.idx, uri, doc.Tree, src); err != nil {
		log.Warningf("indexing %s: %v", uri, err)
	}
}

func uriToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	return filepath.Clean(u.Path), nil
}

func boolPtr(b bool) *bool { return &b }

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
