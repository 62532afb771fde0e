package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jrsls/jrsls/rope"
)

// Range is a half-open line/character span, transport-agnostic so this
// package doesn't need to import the LSP protocol types; server.go
// translates protocol.Range into this.
type Range struct {
	StartLine, StartChar int
	EndLine, EndChar     int
}

// ContentChange is one entry of a didChange notification. Range == nil
// means a full-document replace (spec.md §4.B step 1).
type ContentChange struct {
	Range *Range
	Text  string
}

// SkippedChange describes a change that was rejected defensively
// (spec.md §4.B failure case / §7's "Out-of-range edit" row) rather
// than applied, so the caller can log it.
type SkippedChange struct {
	Index  int
	Reason string
}

// ApplyChanges applies a didChange batch to the document at uri,
// following the edit protocol in spec.md §4.B: incremental changes are
// spliced into the rope and fed to the tree as edit descriptors one at
// a time, then a single reparse runs using the edited tree as a hint.
// A full-sync change (Range == nil) replaces the rope outright and
// reparses from scratch. Out-of-range changes are skipped, not fatal.
func (m *Manager) ApplyChanges(ctx context.Context, uri string, changes []ContentChange) ([]SkippedChange, error) {
	entry := m.entry(uri, false)
	if entry == nil {
		return nil, fmt.Errorf("syntax: no open document for %s", uri)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	doc := entry.doc
	if doc == nil {
		return nil, fmt.Errorf("syntax: no open document for %s", uri)
	}

	var skipped []SkippedChange
	fullResync := false

	for i, change := range changes {
		if change.Range == nil {
			doc.Rope = rope.NewRope(change.Text)
			doc.Tree = nil
			fullResync = true
			continue
		}
		if fullResync {
			// A full-sync change already replaced the buffer; later
			// incremental changes in the same batch would need the
			// tree this server just discarded, so treat them as a
			// fresh full replace too.
			if err := doc.Rope.Replace(0, doc.Rope.LenChars(), change.Text); err != nil {
				skipped = append(skipped, SkippedChange{Index: i, Reason: err.Error()})
			}
			continue
		}

		if err := applyIncrementalChange(doc, *change.Range, change.Text); err != nil {
			skipped = append(skipped, SkippedChange{Index: i, Reason: err.Error()})
			continue
		}
	}

	var old *sitter.Tree
	if !fullResync {
		old = doc.Tree
	}
	tree, err := m.parse(ctx, doc.Lang, doc.Rope, old)
	if err != nil {
		return skipped, err
	}
	doc.Tree = tree
	return skipped, nil
}

// applyIncrementalChange splices change.Text into r at the char range
// derived from the given line/character Range, and records the
// corresponding tree-sitter edit descriptor on doc.Tree so the next
// parse call can reuse unaffected subtrees.
func applyIncrementalChange(doc *Document, rng Range, text string) error {
	r := doc.Rope
	lineCount := r.LineCount()
	if rng.StartLine >= lineCount || rng.EndLine >= lineCount {
		return fmt.Errorf("syntax: change references line beyond %d lines", lineCount)
	}

	startLineChar, err := r.LineToChar(rng.StartLine)
	if err != nil {
		return err
	}
	endLineChar, err := r.LineToChar(rng.EndLine)
	if err != nil {
		return err
	}
	startChar := startLineChar + rng.StartChar
	endChar := endLineChar + rng.EndChar
	if endChar > r.LenChars() {
		return fmt.Errorf("syntax: change end char %d beyond buffer length %d", endChar, r.LenChars())
	}

	startByte, err := r.CharToByte(startChar)
	if err != nil {
		return err
	}
	oldEndByte, err := r.CharToByte(endChar)
	if err != nil {
		return err
	}

	if err := r.Replace(startChar, endChar, text); err != nil {
		return err
	}

	newEndByte := startByte + len(text)
	newEndPoint, err := r.ByteToPoint(newEndByte)
	if err != nil {
		return err
	}

	if doc.Tree != nil {
		doc.Tree.Edit(sitter.EditInput{
			StartIndex:  uint32(startByte),
			OldEndIndex: uint32(oldEndByte),
			NewEndIndex: uint32(newEndByte),
			StartPoint:  sitter.Point{Row: uint32(rng.StartLine), Column: uint32(rng.StartChar)},
			OldEndPoint: sitter.Point{Row: uint32(rng.EndLine), Column: uint32(rng.EndChar)},
			NewEndPoint: sitter.Point{Row: uint32(newEndPoint.Row), Column: uint32(newEndPoint.Column)},
		})
	}
	return nil
}
