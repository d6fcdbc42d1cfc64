package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	perrors "github.com/matzehuels/photowall/pkg/errors"
)

// Extensions lists the file extensions treated as images.
var Extensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImage reports whether path has an image extension.
func IsImage(path string) bool {
	return Extensions[strings.ToLower(filepath.Ext(path))]
}

// Entry is one image file found by Scan.
type Entry struct {
	Path    string    // absolute path
	Rel     string    // path relative to the scan root, slash separated
	Size    int64
	ModTime time.Time
}

// ScanOptions bounds a directory walk.
type ScanOptions struct {
	MaxDepth int // 0 means unlimited
	Workers  int // 0 means GOMAXPROCS
}

var errScanCanceled = errors.New("scan canceled")

// Scan walks root and returns the image files below it sorted by relative
// path. Permission errors are skipped.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]Entry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "scan root %s", root)
	}
	if !info.IsDir() {
		return nil, perrors.New(perrors.ErrCodeInvalidPath, "scan root %s is not a directory", root)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	conf := &fastwalk.Config{
		NumWorkers: workers,
		Follow:     false,
		Sort:       fastwalk.SortNone,
		MaxDepth:   opts.MaxDepth,
	}

	var (
		mu      sync.Mutex
		entries []Entry
	)
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errScanCanceled
		default:
		}

		if path != abs && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !IsImage(path) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}

		mu.Lock()
		entries = append(entries, Entry{
			Path:    path,
			Rel:     filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		mu.Unlock()
		return nil
	}

	if err := fastwalk.Walk(conf, abs, fastwalk.IgnorePermissionErrors(walkFn)); err != nil {
		if errors.Is(err, errScanCanceled) {
			return nil, ctx.Err()
		}
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "scan %s", root)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })
	return entries, nil
}

// Stat builds the Entry for a single file below root.
func Stat(root, path string) (Entry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Entry{}, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Entry{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "stat %s", path)
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return Entry{}, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "%s is outside %s", path, root)
	}
	return Entry{Path: abs, Rel: filepath.ToSlash(rel), Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
