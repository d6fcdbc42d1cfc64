package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	perrors "github.com/matzehuels/photowall/pkg/errors"
)

// FileCache keeps one JSON file per entry under a directory, sharded by the
// first two characters of the key digest. It is the CLI's default backend.
type FileCache struct {
	dir string
}

// fileEntry is the on-disk form of an entry. A zero Expires never expires.
type fileEntry struct {
	Data    []byte    `json:"data"`
	Expires time.Time `json:"expires_at"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && now.After(e.Expires)
}

// NewFileCache opens dir as a cache, creating it when missing.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeCache, err, "create cache dir %s", dir)
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Dir() string { return c.dir }

// Get returns a miss for absent, expired or unreadable entries. Expired and
// corrupt files are removed on the way.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, perrors.Wrap(perrors.ErrCodeCache, err, "read cache entry")
	}

	var e fileEntry
	if json.Unmarshal(raw, &e) != nil || e.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry to a temporary file and renames it into place, so
// probe workers racing on the same key never leave a torn file.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Data: data}
	if ttl > 0 {
		e.Expires = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "encode cache entry")
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perrors.Wrap(perrors.ErrCodeCache, err, "create cache shard")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeCache, err, "write cache entry")
	}
	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return perrors.Wrap(perrors.ErrCodeCache, err, "write cache entry")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return perrors.Wrap(perrors.ErrCodeCache, err, "write cache entry")
	}
	return nil
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perrors.Wrap(perrors.ErrCodeCache, err, "delete cache entry")
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// Usage counts the entries and their bytes on disk.
func (c *FileCache) Usage() (entries int, bytes int64, err error) {
	var n, size atomic.Int64
	err = fastwalk.Walk(&fastwalk.Config{}, c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return err
		}
		if info, err := d.Info(); err == nil {
			n.Add(1)
			size.Add(info.Size())
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil
	}
	return int(n.Load()), size.Load(), err
}

// Clear deletes every entry and leaves an empty directory behind.
func (c *FileCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return perrors.Wrap(perrors.ErrCodeCache, err, "clear cache")
	}
	return os.MkdirAll(c.dir, 0o755)
}

// path maps key to <dir>/<first two digest chars>/<rest>.json.
func (c *FileCache) path(key string) string {
	sum := Sum([]byte(key))
	return filepath.Join(c.dir, sum[:2], sum[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
