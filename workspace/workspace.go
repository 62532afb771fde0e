// Package workspace discovers Java sources under a root directory and
// bootstraps the global index from them, grounded on the original
// jrsls crate's collect_files_with_ext (filesystem.rs) and the
// teacher's Codebase.ScanAll sequential-walk convention, generalized
// to a bounded worker pool via golang.org/x/sync/errgroup so bootstrap
// indexing doesn't block the request loop (spec.md §5).
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jrsls/jrsls/index"
	"github.com/jrsls/jrsls/javalang"
	"github.com/jrsls/jrsls/syntax"
)

// Root holds the workspace root path behind a rwlock: spec.md §5
// describes it as "read-rarely, write-once".
type Root struct {
	mu   sync.RWMutex
	path string
}

// NewRoot constructs an empty Root; Set is called once from the
// initialize handler.
func NewRoot() *Root { return &Root{} }

// Set records path as the workspace root.
func (r *Root) Set(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

// Get returns the current workspace root, or "" if unset.
func (r *Root) Get() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.path
}

// CollectFilesWithExt recursively enumerates files under root whose
// extension matches ext (case-insensitively), the Go equivalent of
// the original's collect_files_with_ext.
func CollectFilesWithExt(root, ext string) []string {
	var results []string
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				walk(path)
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				results = append(results, path)
			}
		}
	}
	walk(root)
	return results
}

// BootstrapConfig bounds how many files are parsed and indexed
// concurrently during workspace scan.
type BootstrapConfig struct {
	Concurrency int
}

// Bootstrap parses and indexes every .java file under root concurrently
// (spec.md §5: "Parsing and indexing for workspace bootstrap run on a
// blocking-task pool"). A single file's parse/index failure is logged
// by the caller via the returned per-file errors slice; it never
// aborts the rest of the scan.
func Bootstrap(ctx context.Context, root string, mgr *syntax.Manager, idx *index.GlobalIndex, cfg BootstrapConfig) []error {
	files := CollectFilesWithExt(root, ".java")
	if len(files) == 0 {
		return nil
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var errs []error

	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := indexFile(gctx, mgr, idx, path); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func indexFile(ctx context.Context, mgr *syntax.Manager, idx *index.GlobalIndex, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	uri := "file://" + path

	doc, err := mgr.Open(ctx, uri, "java", string(data))
	if err != nil {
		return err
	}
	src := []byte(doc.Rope.String())
	return javalang.IndexFile(idx, uri, doc.Tree, src)
}
