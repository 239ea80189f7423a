// Package lsp serves recognition failures to editors as diagnostics.
package lsp

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/recognizer/diag"
	"github.com/dhamidi/recognizer/ebnf/grammar"
	"github.com/dhamidi/recognizer/input"
	"github.com/dhamidi/recognizer/parse"
	"github.com/dhamidi/recognizer/project"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "recognizer"

var log = commonlog.GetLogger("recognizer.lsp")

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu       sync.Mutex
	loaded   bool
	project  *project.Project
	compiled *grammar.Compiled
	docs     map[protocol.DocumentUri]string
	notify   glsp.NotifyFunc
	watcher  *FileWatcher
}

// NewServer creates a language server. When p is nil the project is
// loaded from the workspace root on initialize.
func NewServer(version string, p *project.Project) *Server {
	ls := &Server{
		version: version,
		project: p,
		docs:    make(map[protocol.DocumentUri]string),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	if err := ls.load(rootDir); err != nil {
		log.Error("project not loaded", "root", rootDir, "error", err.Error())
	}
	ls.watch()

	capabilities := ls.handler.CreateServerCapabilities()

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
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) load(rootDir string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.project == nil {
		p, err := project.LoadFrom(rootDir)
		if err != nil {
			return err
		}
		ls.project = p
		ls.loaded = true
	}
	c, err := ls.project.Compile()
	if err != nil {
		return err
	}
	ls.compiled = c
	return nil
}

// watch recompiles the grammar when the project file or the grammar file
// changes on disk.
func (ls *Server) watch() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.project == nil || ls.watcher != nil {
		return
	}
	paths := []string{ls.project.GrammarPath()}
	if ls.loaded {
		paths = append(paths, ls.project.ConfigFile)
	}
	w, err := NewFileWatcher(ls.reload, paths...)
	if err != nil {
		log.Error("grammar changes are not watched", "error", err.Error())
		return
	}
	ls.watcher = w
	ls.watcher.Start()
}

// reload rereads a project file found on disk, recompiles the grammar and publishes
// fresh diagnostics for every open document. A failed reload keeps the
// previous grammar.
func (ls *Server) reload() {
	ls.mu.Lock()
	p := ls.project
	if ls.loaded {
		fresh, err := project.LoadFile(p.ConfigFile)
		if err != nil {
			ls.mu.Unlock()
			log.Error("reload project", "file", p.ConfigFile, "error", err.Error())
			return
		}
		p = fresh
	}
	c, err := p.Compile()
	if err != nil {
		ls.mu.Unlock()
		log.Error("reload grammar", "file", p.GrammarPath(), "error", err.Error())
		return
	}
	ls.project, ls.compiled = p, c
	notify := ls.notify
	docs := make(map[protocol.DocumentUri]string, len(ls.docs))
	for uri, text := range ls.docs {
		docs[uri] = text
	}
	ls.mu.Unlock()

	log.Info("grammar reloaded", "file", p.GrammarPath())
	if notify == nil {
		return
	}
	for uri, text := range docs {
		ls.publish(notify, uri, text)
	}
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.watcher != nil {
		w := ls.watcher
		ls.watcher = nil
		return w.Stop()
	}
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, textChange.Text)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	ls.mu.Lock()
	ls.docs[uri] = text
	ls.mu.Unlock()

	ls.publish(ctx.Notify, uri, text)
}

func (ls *Server) publish(notify glsp.NotifyFunc, uri protocol.DocumentUri, text string) {
	path, err := uriToPath(uri)
	if err != nil {
		return
	}

	ls.mu.Lock()
	p, c := ls.project, ls.compiled
	ls.mu.Unlock()
	if c == nil || !p.IsSource(path) {
		return
	}

	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Check(c, p.Ignore, path, text),
	})
}

// Check lexes and parses text, returning at most one diagnostic: the
// deepest recognition failure. A nil error yields an empty, non-nil slice so
// editors clear earlier results.
func Check(c *grammar.Compiled, ignore []string, path, text string) []protocol.Diagnostic {
	buf := input.NewString(text)
	toks, err := c.Tokenize(buf, path, ignore...)
	if err == nil {
		_, err = c.Parser().Parse(toks)
	}
	if err == nil {
		return []protocol.Diagnostic{}
	}

	d := diag.FromError(path, buf, err)
	var rng protocol.Range
	if d.HasPosition() {
		line := buf.ExtractLine(d.Pos.Line)
		from := d.Pos.Column - 1
		start := protocol.Position{
			Line:      protocol.UInteger(d.Pos.Line - 1),
			Character: utf16Offset(line, from),
		}
		end := start
		end.Character = utf16Offset(line, from+failureWidth(err))
		rng = protocol.Range{Start: start, End: end}
	}

	severity := protocol.DiagnosticSeverityError
	source := lsName
	return []protocol.Diagnostic{{
		Range:    rng,
		Severity: &severity,
		Source:   &source,
		Message:  d.Message,
	}}
}

// failureWidth is the byte length of the offending token, zero at end of
// input.
func failureWidth(err error) int {
	var re *parse.RecognitionError
	if !errors.As(err, &re) || re.Token.IsEOF() {
		return 0
	}
	return len(re.Token.Value)
}

// utf16Offset converts a byte offset within line to UTF-16 code units, the
// unit of LSP character positions. Offsets past the line end are clamped.
func utf16Offset(line string, n int) protocol.UInteger {
	n = min(max(n, 0), len(line))
	return protocol.UInteger(len(utf16.Encode([]rune(line[:n]))))
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
