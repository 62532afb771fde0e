// Package syntax maintains the per-document syntax mirror: a rope of
// text plus the tree-sitter tree parsed from it, kept consistent across
// editor edits via the incremental-parse protocol in spec.md §4.B.
//
// Grounded on the original jrsls LspBackend (one tree-sitter Parser per
// language behind a Mutex, a DashMap<String, Document>) and on
// github.com/smacker/go-tree-sitter as used to parse Java/Scala sources
// in dbinky-Pommel and foursquare-scala-gazelle.
package syntax

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jrsls/jrsls/rope"
)

// Document is a single open file: its text and the syntax tree parsed
// from it. Invariant (spec.md §3): after every edit, Tree corresponds
// to Rope byte-for-byte.
type Document struct {
	URI  string
	Lang string
	Rope *rope.Rope
	Tree *sitter.Tree
}

// Manager owns one tree-sitter parser per registered language (spec.md
// §5: "Parser is shared per language; a mutex around parser state
// serializes parse calls") and the per-URI document store.
type Manager struct {
	langs   map[string]*sitter.Language
	parsers map[string]*sync.Mutex // guards the *sitter.Parser stored alongside it
	parserObjs map[string]*sitter.Parser

	docsMu sync.Mutex
	docs   map[string]*docEntry
}

type docEntry struct {
	mu  sync.Mutex // per-URI exclusion: readers/writers of this URI serialize here
	doc *Document
}

// NewManager constructs a Manager with no languages registered; call
// RegisterLanguage for each extension this server understands.
func NewManager() *Manager {
	return &Manager{
		langs:      make(map[string]*sitter.Language),
		parsers:    make(map[string]*sync.Mutex),
		parserObjs: make(map[string]*sitter.Parser),
		docs:       make(map[string]*docEntry),
	}
}

// RegisterLanguage wires a tree-sitter grammar under a language id
// (e.g. "java"), creating its dedicated parser + mutex.
func (m *Manager) RegisterLanguage(lang string, grammar *sitter.Language) {
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	m.langs[lang] = grammar
	m.parsers[lang] = &sync.Mutex{}
	m.parserObjs[lang] = parser
}

// Language returns the registered grammar for lang, if any.
func (m *Manager) Language(lang string) (*sitter.Language, bool) {
	g, ok := m.langs[lang]
	return g, ok
}

// Open parses text fresh and stores it as the document for uri.
func (m *Manager) Open(ctx context.Context, uri, lang, text string) (*Document, error) {
	r := rope.NewRope(text)
	tree, err := m.parse(ctx, lang, r, nil)
	if err != nil {
		return nil, err
	}
	doc := &Document{URI: uri, Lang: lang, Rope: r, Tree: tree}
	m.store(uri, doc)
	return doc, nil
}

// Close drops the document for uri.
func (m *Manager) Close(uri string) {
	m.docsMu.Lock()
	defer m.docsMu.Unlock()
	delete(m.docs, uri)
}

// Get returns the current document for uri, locking it for the
// duration of fn so concurrent edits cannot race with the read. fn
// must not itself call back into Manager for the same uri.
func (m *Manager) Get(uri string, fn func(*Document)) bool {
	entry := m.entry(uri, false)
	if entry == nil {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.doc == nil {
		return false
	}
	fn(entry.doc)
	return true
}

func (m *Manager) entry(uri string, create bool) *docEntry {
	m.docsMu.Lock()
	defer m.docsMu.Unlock()
	e, ok := m.docs[uri]
	if !ok {
		if !create {
			return nil
		}
		e = &docEntry{}
		m.docs[uri] = e
	}
	return e
}

func (m *Manager) store(uri string, doc *Document) {
	e := m.entry(uri, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc
}

// parse runs a (possibly incremental) parse of r under lang's mutex.
func (m *Manager) parse(ctx context.Context, lang string, r *rope.Rope, old *sitter.Tree) (*sitter.Tree, error) {
	mu, ok := m.parsers[lang]
	if !ok {
		return nil, fmt.Errorf("syntax: unregistered language %q", lang)
	}
	parser := m.parserObjs[lang]

	mu.Lock()
	defer mu.Unlock()

	input := sitter.Input{
		Read:     adaptReader(r.ChunkReader()),
		Encoding: sitter.InputEncodingUTF8,
	}
	return parser.ParseInput(ctx, old, input)
}

func adaptReader(read func(offset int, _ rope.Point) []byte) func(uint32, sitter.Point) []byte {
	return func(offset uint32, p sitter.Point) []byte {
		return read(int(offset), rope.Point{Row: int(p.Row), Column: int(p.Column)})
	}
}
