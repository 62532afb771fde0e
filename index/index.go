// Package index holds the workspace-wide global index of Java
// declarations: a concurrent, per-file-atomic mapping from short class
// names, member names, and fully-qualified class names to their
// locations. It is the one piece of shared mutable state that every
// query (outline excluded) reads, and every reindex writes.
//
// Grounded on the original jrsls GlobalIndex (a salsa-backed, DashMap-
// indexed struct): upsert_file/file_info/classes_by_short_name/
// members_by_name map directly onto UpsertFile/FileFacts/
// ClassesByShortName/MembersByName below. DashMap itself is a sharded
// concurrent map — a fixed number of independently-locked buckets keyed
// by hash — so GlobalIndex follows the same shape directly: indexShard
// below is one bucket, and a write to the file in one shard takes only
// that shard's lock, leaving every other shard free for concurrent
// readers and writers.
package index

import (
	"hash/fnv"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// InferredType is the small, closed type lattice the type solver and
// resolver reason over. It is a tagged variant, not an interface
// hierarchy, per the "tagged variants over inheritance" design note.
type InferredType struct {
	Kind  TypeKind
	Class string // only meaningful when Kind == TypeClass
}

type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeInt
	TypeLong
	TypeBoolean
	TypeChar
	TypeString
	TypeFloat
	TypeDouble
	TypeClass
)

func (t InferredType) String() string {
	switch t.Kind {
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeBoolean:
		return "boolean"
	case TypeChar:
		return "char"
	case TypeString:
		return "String"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeClass:
		return t.Class
	default:
		return "<unknown>"
	}
}

// Unknown reports whether t carries no usable type information.
func (t InferredType) Unknown() bool { return t.Kind == TypeUnknown }

// FileFacts is the per-URI summary the indexer derives from a syntax
// tree: its package, its imports, and the short names of the classes it
// declares. Replaced wholesale on every reindex of that URI.
type FileFacts struct {
	Package         string // empty means default (unnamed) package
	HasPackage      bool
	Imports         []string
	DefinedClasses  []string
}

// IndexedClass is a class/interface/enum/record/annotation declaration.
type IndexedClass struct {
	ShortName string
	FQCN      string
	URI       string
	Range     protocol.Range
}

// IndexedMember is a method or field declared directly inside a class body.
type IndexedMember struct {
	Name          string
	FQMN          string
	URI           string
	Range         protocol.Range
	IsField       bool
	IsVarargs     bool
	ParamCount    int
	ParamTypes    []string
	FieldType     InferredType
	HasFieldType  bool
}

// FileIndex is the atomic unit written by UpsertFile: everything derived
// from one file's syntax tree, replaced as a whole.
type FileIndex struct {
	Facts   FileFacts
	Classes []IndexedClass
	Members []IndexedMember
}

// indexShardCount is the number of independently-locked buckets
// GlobalIndex shards its files across. A write to a file in one shard
// never contends with a reader or writer touching a file that hashes
// to a different shard.
const indexShardCount = 32

// indexShard is one DashMap-style bucket: its own lock and its own
// slice of the four lookup maps, holding only the records belonging to
// the files that hash into this shard.
type indexShard struct {
	mu sync.RWMutex

	files          map[string]FileIndex
	shortNameIndex map[string][]IndexedClass
	memberIndex    map[string][]IndexedMember
	classMembers   map[string][]IndexedMember
}

// GlobalIndex is the workspace-wide, concurrently readable index.
//
// Three independent maps back the three lookup axes spec.md names:
// by URI (for file facts / reindex / removal), by short class name, and
// by member name. A fourth, classMembers, is the domain expansion
// `members_of_class(fqcn)` the resolver's qualifier-chain step needs.
// Each shard keeps its own copy of all four, keyed by whichever files
// hash into it; UpsertFile/RemoveFile touch exactly one shard.
type GlobalIndex struct {
	shards [indexShardCount]*indexShard
}

// NewGlobalIndex constructs an empty index.
func NewGlobalIndex() *GlobalIndex {
	g := &GlobalIndex{}
	for i := range g.shards {
		g.shards[i] = &indexShard{
			files:          make(map[string]FileIndex),
			shortNameIndex: make(map[string][]IndexedClass),
			memberIndex:    make(map[string][]IndexedMember),
			classMembers:   make(map[string][]IndexedMember),
		}
	}
	return g
}

// shardFor returns the shard that owns uri's records.
func (g *GlobalIndex) shardFor(uri string) *indexShard {
	h := fnv.New32a()
	h.Write([]byte(uri))
	return g.shards[h.Sum32()%indexShardCount]
}

// UpsertFile atomically replaces every record belonging to uri with the
// given facts/classes/members. Readers of uri never observe a torn mix
// of old and new records: the swap happens under uri's shard lock alone,
// so readers and writers of every other file proceed unblocked.
func (g *GlobalIndex) UpsertFile(uri string, facts FileFacts, classes []IndexedClass, members []IndexedMember) {
	s := g.shardFor(uri)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeFileLocked(uri)

	s.files[uri] = FileIndex{Facts: facts, Classes: append([]IndexedClass(nil), classes...), Members: append([]IndexedMember(nil), members...)}

	for _, c := range classes {
		s.shortNameIndex[c.ShortName] = append(s.shortNameIndex[c.ShortName], c)
	}
	for _, m := range members {
		s.memberIndex[m.Name] = append(s.memberIndex[m.Name], m)
		fqcn := fqcnOfMember(m.FQMN)
		s.classMembers[fqcn] = append(s.classMembers[fqcn], m)
	}
}

// RemoveFile drops every record for uri (e.g. on didClose for an
// ephemeral buffer, or when a file disappears from the workspace).
func (g *GlobalIndex) RemoveFile(uri string) {
	s := g.shardFor(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFileLocked(uri)
}

func (s *indexShard) removeFileLocked(uri string) {
	prev, ok := s.files[uri]
	if !ok {
		delete(s.files, uri)
		return
	}
	delete(s.files, uri)

	for _, c := range prev.Classes {
		s.shortNameIndex[c.ShortName] = removeClass(s.shortNameIndex[c.ShortName], uri)
		if len(s.shortNameIndex[c.ShortName]) == 0 {
			delete(s.shortNameIndex, c.ShortName)
		}
	}
	for _, m := range prev.Members {
		s.memberIndex[m.Name] = removeMember(s.memberIndex[m.Name], uri)
		if len(s.memberIndex[m.Name]) == 0 {
			delete(s.memberIndex, m.Name)
		}
		fqcn := fqcnOfMember(m.FQMN)
		s.classMembers[fqcn] = removeMember(s.classMembers[fqcn], uri)
		if len(s.classMembers[fqcn]) == 0 {
			delete(s.classMembers, fqcn)
		}
	}
}

func removeClass(list []IndexedClass, uri string) []IndexedClass {
	out := list[:0]
	for _, c := range list {
		if c.URI != uri {
			out = append(out, c)
		}
	}
	return append([]IndexedClass(nil), out...)
}

func removeMember(list []IndexedMember, uri string) []IndexedMember {
	out := list[:0]
	for _, m := range list {
		if m.URI != uri {
			out = append(out, m)
		}
	}
	return append([]IndexedMember(nil), out...)
}

func fqcnOfMember(fqmn string) string {
	idx := lastDot(fqmn)
	if idx < 0 {
		return fqmn
	}
	return fqmn[:idx]
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// FileFacts returns the facts recorded for uri, or false if uri was
// never indexed. Only uri's own shard is locked.
func (g *GlobalIndex) FileFacts(uri string) (FileFacts, bool) {
	s := g.shardFor(uri)
	s.mu.RLock()
	defer s.mu.RUnlock()
	fi, ok := s.files[uri]
	if !ok {
		return FileFacts{}, false
	}
	return fi.Facts, true
}

// ClassesByShortName returns every indexed class with the given short
// name, across the whole workspace, in unspecified order. A class's
// shard is determined by the file that declares it, not by its name, so
// every shard is consulted in turn; each is locked only for the brief
// copy-out, never all at once.
func (g *GlobalIndex) ClassesByShortName(name string) []IndexedClass {
	var out []IndexedClass
	for _, s := range g.shards {
		s.mu.RLock()
		out = append(out, s.shortNameIndex[name]...)
		s.mu.RUnlock()
	}
	return out
}

// MembersByName returns every indexed member with the given name,
// across the whole workspace.
func (g *GlobalIndex) MembersByName(name string) []IndexedMember {
	var out []IndexedMember
	for _, s := range g.shards {
		s.mu.RLock()
		out = append(out, s.memberIndex[name]...)
		s.mu.RUnlock()
	}
	return out
}

// MembersOfClass returns the direct members indexed under fqcn.
func (g *GlobalIndex) MembersOfClass(fqcn string) []IndexedMember {
	var out []IndexedMember
	for _, s := range g.shards {
		s.mu.RLock()
		out = append(out, s.classMembers[fqcn]...)
		s.mu.RUnlock()
	}
	return out
}

// ClassByFQCN finds the single indexed class with the given fully
// qualified name, if any.
func (g *GlobalIndex) ClassByFQCN(fqcn string) (IndexedClass, bool) {
	short := fqcn
	if idx := lastDot(fqcn); idx >= 0 {
		short = fqcn[idx+1:]
	}
	for _, c := range g.ClassesByShortName(short) {
		if c.FQCN == fqcn {
			return c, true
		}
	}
	return IndexedClass{}, false
}

// HasURI reports whether uri carries any indexed records. Resolve calls
// this before returning any Location, whether derived from a
// class/member lookup or computed directly from the current file's own
// syntax tree, guaranteeing it never hands back a reference into a file
// that is not (or no longer) indexed.
func (g *GlobalIndex) HasURI(uri string) bool {
	s := g.shardFor(uri)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[uri]
	return ok
}
