package syntax

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

func newTestManager() *Manager {
	m := NewManager()
	m.RegisterLanguage("java", java.GetLanguage())
	return m
}

func TestOpenParsesDocument(t *testing.T) {
	m := newTestManager()
	doc, err := m.Open(context.Background(), "file:///A.java", "java", "class A {}")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.Tree.RootNode().Type() != "program" {
		t.Errorf("root node type = %q, want program", doc.Tree.RootNode().Type())
	}
}

func TestApplyChangesIncrementalMatchesFullReparse(t *testing.T) {
	m := newTestManager()
	src := "class A {\n  int x = 1;\n}\n"
	if _, err := m.Open(context.Background(), "file:///A.java", "java", src); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Replace "1" with "42" on line 1.
	changes := []ContentChange{
		{
			Range: &Range{StartLine: 1, StartChar: 10, EndLine: 1, EndChar: 11},
			Text:  "42",
		},
	}
	skipped, err := m.ApplyChanges(context.Background(), "file:///A.java", changes)
	if err != nil {
		t.Fatalf("ApplyChanges: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped changes: %+v", skipped)
	}

	var gotText string
	var gotRoot string
	m.Get("file:///A.java", func(doc *Document) {
		gotText = doc.Rope.String()
		gotRoot = doc.Tree.RootNode().Type()
	})

	want := "class A {\n  int x = 42;\n}\n"
	if gotText != want {
		t.Errorf("rope text = %q, want %q", gotText, want)
	}
	if gotRoot != "program" {
		t.Errorf("root node type after incremental edit = %q, want program", gotRoot)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	freshTree, err := parser.ParseCtx(context.Background(), nil, []byte(want))
	if err != nil {
		t.Fatalf("fresh parse: %v", err)
	}
	if freshTree.RootNode().ChildCount() != 0 {
		// both trees should describe one top-level class declaration
		var incChildCount uint32
		m.Get("file:///A.java", func(doc *Document) {
			incChildCount = doc.Tree.RootNode().ChildCount()
		})
		if incChildCount != freshTree.RootNode().ChildCount() {
			t.Errorf("incremental tree child count %d != fresh reparse child count %d", incChildCount, freshTree.RootNode().ChildCount())
		}
	}
}

func TestApplyChangesFullSyncReplace(t *testing.T) {
	m := newTestManager()
	if _, err := m.Open(context.Background(), "file:///A.java", "java", "class A {}"); err != nil {
		t.Fatalf("Open: %v", err)
	}

	changes := []ContentChange{{Text: "class B {}"}}
	if _, err := m.ApplyChanges(context.Background(), "file:///A.java", changes); err != nil {
		t.Fatalf("ApplyChanges: %v", err)
	}

	var gotText string
	m.Get("file:///A.java", func(doc *Document) {
		gotText = doc.Rope.String()
	})
	if gotText != "class B {}" {
		t.Errorf("rope text = %q, want %q", gotText, "class B {}")
	}
}

func TestApplyChangesOutOfRangeSkipped(t *testing.T) {
	m := newTestManager()
	if _, err := m.Open(context.Background(), "file:///A.java", "java", "class A {}"); err != nil {
		t.Fatalf("Open: %v", err)
	}

	changes := []ContentChange{
		{Range: &Range{StartLine: 5, StartChar: 0, EndLine: 5, EndChar: 1}, Text: "x"},
	}
	skipped, err := m.ApplyChanges(context.Background(), "file:///A.java", changes)
	if err != nil {
		t.Fatalf("ApplyChanges: %v", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped change, got %d: %+v", len(skipped), skipped)
	}

	var gotText string
	m.Get("file:///A.java", func(doc *Document) {
		gotText = doc.Rope.String()
	})
	if gotText != "class A {}" {
		t.Errorf("document mutated despite out-of-range change: %q", gotText)
	}
}

func TestApplyChangesNoOpenDocument(t *testing.T) {
	m := newTestManager()
	if _, err := m.ApplyChanges(context.Background(), "file:///missing.java", nil); err == nil {
		t.Error("expected an error for an unopened document")
	}
}
