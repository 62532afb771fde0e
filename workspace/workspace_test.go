package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsls/jrsls/index"
	"github.com/jrsls/jrsls/javalang"
	"github.com/jrsls/jrsls/syntax"
)

func TestRootGetSet(t *testing.T) {
	r := NewRoot()
	if got := r.Get(); got != "" {
		t.Fatalf("new Root.Get() = %q, want empty", got)
	}
	r.Set("/workspace")
	if got := r.Get(); got != "/workspace" {
		t.Fatalf("Root.Get() = %q, want /workspace", got)
	}
}

func TestCollectFilesWithExt(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "A.java"), "class A {}")
	mustWrite(t, filepath.Join(dir, "README.md"), "# readme")
	sub := filepath.Join(dir, "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(sub, "B.JAVA"), "class B {}")

	got := CollectFilesWithExt(dir, ".java")
	if len(got) != 2 {
		t.Fatalf("CollectFilesWithExt found %d files, want 2: %v", len(got), got)
	}
}

func TestBootstrapIndexesAllFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "A.java"), "class A { void a() {} }")
	mustWrite(t, filepath.Join(dir, "B.java"), "class B { void b() {} }")

	mgr := syntax.NewManager()
	mgr.RegisterLanguage("java", javalang.Language())
	idx := index.NewGlobalIndex()

	errs := Bootstrap(context.Background(), dir, mgr, idx, BootstrapConfig{Concurrency: 2})
	if len(errs) != 0 {
		t.Fatalf("Bootstrap errors: %v", errs)
	}

	if got := idx.ClassesByShortName("A"); len(got) != 1 {
		t.Errorf("class A not indexed: %+v", got)
	}
	if got := idx.ClassesByShortName("B"); len(got) != 1 {
		t.Errorf("class B not indexed: %+v", got)
	}
}

func TestBootstrapEmptyWorkspace(t *testing.T) {
	dir := t.TempDir()
	mgr := syntax.NewManager()
	mgr.RegisterLanguage("java", javalang.Language())
	idx := index.NewGlobalIndex()

	if errs := Bootstrap(context.Background(), dir, mgr, idx, BootstrapConfig{}); len(errs) != 0 {
		t.Fatalf("unexpected errors on empty workspace: %v", errs)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
