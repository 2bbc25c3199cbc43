// Package langserver is the minimal Language Server Protocol front end
// named in SPEC_FULL.md's DOMAIN STACK section: it re-reads a .lissp
// buffer on textDocument/didChange, runs the reader/expander/emitter
// pipeline, and publishes the resulting ReadError/MacroError/EmitError as
// LSP diagnostics. Grounded on the teacher's own langserver/server.go and
// rpc/langserver/server.go for the jrpc2 handler-map wiring and the
// debounced-recompile pattern; rewired here from HLB's parser/checker to
// Hissp's compiler.Module.
package langserver

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/hissp-lang/hissp/bridge"
	"github.com/hissp-lang/hissp/compiler"
)

// LangServer serves textDocument/* notifications over jrpc2, keeping the
// last-known compile result per open document; each compile runs on a
// fresh compiler.Module.
type LangServer struct {
	server *jrpc2.Server

	tds map[lsp.DocumentURI]*TextDocument
	tmu sync.RWMutex

	dbs map[lsp.DocumentURI]*debouncer
	dmu sync.Mutex
}

// NewServer builds a LangServer with its jrpc2 handler map installed.
func NewServer() *LangServer {
	ls := &LangServer{
		tds: make(map[lsp.DocumentURI]*TextDocument),
		dbs: make(map[lsp.DocumentURI]*debouncer),
	}
	ls.server = jrpc2.NewServer(handler.Map{
		"initialize":             handler.New(ls.initializeHandler),
		"exit":                   handler.New(ls.exitHandler),
		"$/cancelRequest":        handler.New(ls.cancelRequestHandler),
		"textDocument/didOpen":   handler.New(ls.textDocumentDidOpenHandler),
		"textDocument/didChange": handler.New(ls.textDocumentDidChangeHandler),
		"textDocument/didClose":  handler.New(ls.textDocumentDidCloseHandler),
	}, &jrpc2.ServerOptions{AllowPush: true})
	return ls
}

// Listen serves jrpc2 requests over r/w until the connection closes.
func (ls *LangServer) Listen(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("listen recovered panic: %s", rec)
		}
	}()
	log.Printf("hissp-langserver listening")
	s := ls.server.Start(channel.Header("")(r, w))
	return s.Wait()
}

func (ls *LangServer) initializeHandler(ctx context.Context, params lsp.InitializeParams) (lsp.InitializeResult, error) {
	log.Printf("initialize %q", params.RootURI)
	return lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
		},
	}, nil
}

func (ls *LangServer) exitHandler(ctx context.Context, params lsp.None) error {
	log.Printf("exit")
	return nil
}

func (ls *LangServer) cancelRequestHandler(ctx context.Context, params lsp.None) error {
	log.Printf("cancel request")
	return nil
}

func (ls *LangServer) textDocumentDidOpenHandler(ctx context.Context, params lsp.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	td := newTextDocument(uri, params.TextDocument.Text)
	ls.tmu.Lock()
	ls.tds[uri] = td
	ls.tmu.Unlock()
	return ls.publishDiagnostics(ctx, td)
}

func (ls *LangServer) textDocumentDidCloseHandler(ctx context.Context, params lsp.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	ls.tmu.Lock()
	delete(ls.tds, uri)
	ls.tmu.Unlock()
	return nil
}

func (ls *LangServer) textDocumentDidChangeHandler(ctx context.Context, params lsp.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	return ls.debounce(uri, 150*time.Millisecond, func() error {
		for _, change := range params.ContentChanges {
			td := newTextDocument(uri, change.Text)
			ls.tmu.Lock()
			ls.tds[uri] = td
			ls.tmu.Unlock()
			if err := ls.publishDiagnostics(ctx, td); err != nil {
				return err
			}
		}
		return nil
	})
}

// publishDiagnostics sends td's compile diagnostics (zero or one:
// compiler.Module.Compile stops at the first error in the buffer,
// spec.md §7) to the
// client via the "textDocument/publishDiagnostics" notification.
func (ls *LangServer) publishDiagnostics(ctx context.Context, td *TextDocument) error {
	var diags []lsp.Diagnostic
	if td.Err != nil {
		diags = append(diags, lsp.Diagnostic{
			Severity: lsp.Error,
			Message:  td.Err.Error(),
			Range: lsp.Range{
				Start: lsp.Position{Line: 0, Character: 0},
				End:   lsp.Position{Line: 0, Character: 0},
			},
		})
	}
	_, err := ls.server.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         td.Identifier.URI,
		Diagnostics: diags,
	})
	return err
}

// debouncer coalesces rapid-fire didChange notifications so a fast typist
// does not trigger a full recompile per keystroke, grounded on the
// teacher's own langserver/server.go debouncer.
type debouncer struct {
	timer        *time.Timer
	mu           sync.Mutex
	publish      chan func() error
	subscription chan error
}

func newDebouncer(interval time.Duration) *debouncer {
	d := &debouncer{
		timer:   time.NewTimer(interval),
		publish: make(chan func() error),
	}
	go func() {
		var f func() error
		for {
			select {
			case f = <-d.publish:
				d.timer.Reset(interval)
			case <-d.timer.C:
				d.mu.Lock()
				if d.subscription != nil {
					d.subscription <- f()
					d.subscription = nil
				}
				d.mu.Unlock()
			}
		}
	}()
	return d
}

func (d *debouncer) debounce(subscription chan error, f func() error) {
	d.mu.Lock()
	if d.subscription != nil {
		d.subscription <- nil
	}
	d.publish <- f
	d.subscription = subscription
	d.mu.Unlock()
}

func (ls *LangServer) debounce(uri lsp.DocumentURI, interval time.Duration, f func() error) error {
	ls.dmu.Lock()
	d, ok := ls.dbs[uri]
	if !ok {
		d = newDebouncer(interval)
		ls.dbs[uri] = d
	}
	ls.dmu.Unlock()

	subscription := make(chan error)
	d.debounce(subscription, f)
	return <-subscription
}

// TextDocument is one open buffer's last-known compile result.
type TextDocument struct {
	Identifier lsp.VersionedTextDocumentIdentifier
	Results    []compiler.Result
	Text       string
	Err        error
}

func newTextDocument(uri lsp.DocumentURI, text string) *TextDocument {
	td := &TextDocument{
		Identifier: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri},
		},
		Text: text,
	}
	module := strings.TrimSuffix(strings.TrimPrefix(string(uri), "file://"), ".lissp")
	mod := compiler.NewModule(module, bridge.NewTextHost())
	td.Results, td.Err = mod.Compile(string(uri), strings.NewReader(text))
	return td
}
