// BYZRA ⸻ internal/scan/walk.go
// collects the media files of an archive

package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"tempora/internal/config"
)

type Walker struct {
	extensions  map[string]bool
	skip        map[string]bool
	excludeDirs map[string]bool
	recursive   bool
}

func NewWalker(cfg *config.Config) *Walker {
	w := &Walker{
		extensions:  lowerSet(cfg.Filter.Extensions),
		skip:        lowerSet(cfg.Scan.SkipExtensions),
		excludeDirs: make(map[string]bool),
		recursive:   true,
	}
	for _, d := range cfg.Scan.ExcludeDirs {
		w.excludeDirs[d] = true
	}
	return w
}

// only the top directory
func (w *Walker) NonRecursive() *Walker {
	cp := *w
	cp.recursive = false
	return &cp
}

// Accept reports whether path looks like a media file worth tagging.
func (w *Walker) Accept(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(base))
	if w.skip[ext] || w.skip[base] {
		return false
	}
	if strings.HasPrefix(base, "._") {
		return false
	}
	return w.extensions[ext]
}

// ExcludedDir reports whether a directory name is never descended into.
func (w *Walker) ExcludedDir(name string) bool {
	return w.excludeDirs[name]
}

// Files returns the accepted files under root in natural path order.
func (w *Walker) Files(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !w.recursive || w.excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && w.Accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		return natural.Less(files[i], files[j])
	})
	return files, nil
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
