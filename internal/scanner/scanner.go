package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

// Scan discovers all article files under root and returns them sorted.
// Subdirectories are listed concurrently; the final order is always lexical
// on the full path string and never depends on enumeration order.
func Scan(ctx context.Context, root string, opts *ScanOptions) (*Corpus, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}

	marker := opts.Marker
	if marker == "" {
		marker = ArticleMarker
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, benchErrors.CorpusNotFound(root, err)
		}
		return nil, fmt.Errorf("failed to stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, benchErrors.CorpusNotFound(root, fmt.Errorf("not a directory"))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus root %s: %w", root, err)
	}

	var subdirs []string
	for _, entry := range entries {
		if isDir(root, entry) {
			subdirs = append(subdirs, filepath.Join(root, entry.Name()))
		}
	}

	// Each worker writes only its own slot
	found := make([][]string, len(subdirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, dir := range subdirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			paths, err := listArticles(dir, marker)
			if err != nil {
				return err
			}
			found[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var paths []string
	for _, p := range found {
		paths = append(paths, p...)
	}
	sort.Strings(paths)

	slog.Debug("corpus_scanned",
		slog.String("root", root),
		slog.Int("subdirs", len(subdirs)),
		slog.Int("documents", len(paths)))

	return &Corpus{Root: root, paths: paths}, nil
}

// listArticles returns the paths of entries in dir whose name contains marker.
func listArticles(dir, marker string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !strings.Contains(entry.Name(), marker) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(parent string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}
