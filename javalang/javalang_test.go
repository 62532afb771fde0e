package javalang

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jrsls/jrsls/index"
)

func parseJava(t *testing.T, src string) (*sitter.Tree, []byte) {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(Language())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree, []byte(src)
}

func pointAt(src string, needle string) sitter.Point {
	idx := indexOf(src, needle)
	row, col := 0, 0
	for i := 0; i < idx; i++ {
		if src[i] == '\n' {
			row++
			col = 0
		} else {
			col++
		}
	}
	return sitter.Point{Row: uint32(row), Column: uint32(col)}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func mustIndex(t *testing.T, idx *index.GlobalIndex, uri, src string) {
	t.Helper()
	tree, b := parseJava(t, src)
	if err := IndexFile(idx, uri, tree, b); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
}

// Scenario 1: varargs overload.
func TestResolveVarargsOverload(t *testing.T) {
	src := `class Main {
  void func(double d) {}
  void func(String... args) {}
  void caller() {
    func("1", "2");
  }
}
`
	idx := index.NewGlobalIndex()
	mustIndex(t, idx, "file:///Main.java", src)

	tree, b := parseJava(t, src)
	cursor := pointAt(src, `func("1", "2")`)
	cursor.Column += 1 // land inside the call name

	loc := Resolve(tree, b, cursor, idx, "file:///Main.java")
	if loc == nil {
		t.Fatal("Resolve returned nil")
	}
	wantLine := uint32(2) // 0-indexed line of the varargs declaration
	if loc.Range.Start.Line != wantLine {
		t.Errorf("resolved to line %d, want %d", loc.Range.Start.Line, wantLine)
	}
}

// Scenario 2: primitive overload preferred over a boxed/varargs one.
func TestResolvePrimitiveOverload(t *testing.T) {
	src := `class Printer {
  void println(int i) {}
  void println(String fmt, Object... args) {}
  void caller() {
    println(1);
  }
}
`
	idx := index.NewGlobalIndex()
	mustIndex(t, idx, "file:///Printer.java", src)

	tree, b := parseJava(t, src)
	cursor := pointAt(src, `println(1)`)
	cursor.Column += 1

	loc := Resolve(tree, b, cursor, idx, "file:///Printer.java")
	if loc == nil {
		t.Fatal("Resolve returned nil")
	}
	if loc.Range.Start.Line != 1 {
		t.Errorf("resolved to line %d, want 1 (println(int))", loc.Range.Start.Line)
	}
}

// Scenario 3: an explicit import resolves to the imported class. A
// same-file class always wins per spec.md step 2 (see scenario 4), so
// this test keeps the same-named class out of the current file,
// isolating step 3.
func TestResolveExplicitImport(t *testing.T) {
	stub := `package java.util;
class HashMap {
}
`
	idx := index.NewGlobalIndex()
	mustIndex(t, idx, "file:///java/util/HashMap.java", stub)

	src := `import java.util.HashMap;

class Main {
  void use() {
    HashMap h = new HashMap();
  }
}
`
	mustIndex(t, idx, "file:///Main.java", src)
	tree, b := parseJava(t, src)
	cursor := pointAt(src, "new HashMap")
	cursor.Column += len("new ") + 1

	loc := Resolve(tree, b, cursor, idx, "file:///Main.java")
	if loc == nil {
		t.Fatal("Resolve returned nil")
	}
	if string(loc.URI) != "file:///java/util/HashMap.java" {
		t.Errorf("resolved to %s, want the imported stub", loc.URI)
	}
}

// Scenario 4: a same-file inner class wins over an import of the same
// short name.
func TestResolveSameFileClassBeatsImport(t *testing.T) {
	stub := `package java.util;
class HashMap {
}
`
	idx := index.NewGlobalIndex()
	mustIndex(t, idx, "file:///java/util/HashMap.java", stub)

	src := `import java.util.HashMap;

class Main {
  static class HashMap {
    static void marker() {}
  }
  void use() {
    HashMap.marker();
  }
}
`
	mustIndex(t, idx, "file:///Main.java", src)
	tree, b := parseJava(t, src)
	cursor := pointAt(src, "HashMap.marker()")
	cursor.Column += 1

	loc := Resolve(tree, b, cursor, idx, "file:///Main.java")
	if loc == nil {
		t.Fatal("Resolve returned nil")
	}
	if string(loc.URI) != "file:///Main.java" {
		t.Errorf("resolved to %s, want the current file", loc.URI)
	}
}

// Scenario 5: field vs method of the same name.
func TestResolveFieldVsMethodSameName(t *testing.T) {
	src := `class Data {
  static int value = 1;
  static int value() { return 2; }
  void use() {
    int a = Data.value;
    int b = Data.value();
  }
}
`
	idx := index.NewGlobalIndex()
	mustIndex(t, idx, "file:///Data.java", src)
	tree, b := parseJava(t, src)

	fieldCursor := pointAt(src, "Data.value;")
	fieldCursor.Column += len("Data.") + 1
	fieldLoc := Resolve(tree, b, fieldCursor, idx, "file:///Data.java")
	if fieldLoc == nil {
		t.Fatal("field resolve returned nil")
	}
	if fieldLoc.Range.Start.Line != 1 {
		t.Errorf("field resolved to line %d, want 1", fieldLoc.Range.Start.Line)
	}

	methodCursor := pointAt(src, "Data.value();")
	methodCursor.Column += len("Data.") + 1
	methodLoc := Resolve(tree, b, methodCursor, idx, "file:///Data.java")
	if methodLoc == nil {
		t.Fatal("method resolve returned nil")
	}
	if methodLoc.Range.Start.Line != 2 {
		t.Errorf("method resolved to line %d, want 2", methodLoc.Range.Start.Line)
	}
}

// Scenario 6: java.lang is preferred over another package's class of
// the same short name when neither is imported.
func TestResolveJavaLangPreference(t *testing.T) {
	idx := index.NewGlobalIndex()
	mustIndex(t, idx, "file:///java/lang/String.java", "package java.lang;\nclass String {}\n")
	mustIndex(t, idx, "file:///com/other/String.java", "package com.other;\nclass String {}\n")

	src := `class Main {
  void use() {
    String s = "";
  }
}
`
	mustIndex(t, idx, "file:///Main.java", src)
	tree, b := parseJava(t, src)
	cursor := pointAt(src, "String s")
	cursor.Column += 1

	loc := Resolve(tree, b, cursor, idx, "file:///Main.java")
	if loc == nil {
		t.Fatal("Resolve returned nil")
	}
	if string(loc.URI) != "file:///java/lang/String.java" {
		t.Errorf("resolved to %s, want java.lang.String", loc.URI)
	}
}

// Scenario 7: completion after a qualifier.
func TestCompleteAfterQualifier(t *testing.T) {
	idx := index.NewGlobalIndex()
	mustIndex(t, idx, "file:///java/util/ArrayList.java", `package java.util;
class ArrayList {
  int size() { return 0; }
  void clear() {}
}
`)

	src := `import java.util.ArrayList;

class Main {
  void use() {
    ArrayList arr = new ArrayList();
    arr.si
  }
}
`
	mustIndex(t, idx, "file:///Main.java", src)
	tree, b := parseJava(t, src)

	cursorByte := indexOf(src, "arr.si") + len("arr.si")
	cursor := byteToPoint(src, cursorByte)

	items := Complete(tree, b, cursorByte, cursor, idx, "file:///Main.java", nil)
	found := false
	for _, it := range items {
		if len(it.Label) >= 4 && it.Label[:4] == "size" {
			found = true
		}
	}
	if !found {
		t.Errorf("completion items %+v missing a size-prefixed label", items)
	}
}

func byteToPoint(src string, byteOffset int) sitter.Point {
	row, col := 0, 0
	for i := 0; i < byteOffset && i < len(src); i++ {
		if src[i] == '\n' {
			row++
			col = 0
		} else {
			col++
		}
	}
	return sitter.Point{Row: uint32(row), Column: uint32(col)}
}
