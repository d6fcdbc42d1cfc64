package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/photowall/pkg/cache"
	"github.com/matzehuels/photowall/pkg/catalog"
	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
)

// Scan walks opts.Root and probes every image for its aspect ratio.
// Probe results are cached in c under keys from keyer.
func Scan(ctx context.Context, c cache.Cache, keyer cache.Keyer, opts Options) ([]gallery.Item, error) {
	root, err := ResolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	return NewCatalog(c, keyer, opts).Load(ctx, root)
}

// NewCatalog creates a catalog bounded by the scan options that caches its
// probes in c. Hosts use it to probe files reported by the watcher.
func NewCatalog(c cache.Cache, keyer cache.Keyer, opts Options) *catalog.Catalog {
	ttl := opts.ProbeTTL
	if ttl <= 0 {
		ttl = cache.TTLProbe
	}
	return catalog.New(
		catalog.WithCache(c, keyer, ttl),
		catalog.WithLogger(opts.Logger),
		catalog.WithScanOptions(opts.ScanOptions()),
		catalog.WithProbeWorkers(opts.Workers),
	)
}

// ResolveRoot expands a leading "~" and makes the path absolute so that
// item ids do not depend on the working directory.
func ResolveRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", perrors.New(perrors.ErrCodeInvalidPath, "root directory is required")
	}
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", perrors.Wrap(perrors.ErrCodeInvalidPath, err, "expand %s", root)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	return abs, nil
}

// HashItems computes the content hash of an item set. Order, ids, aspect
// ratios and visibility all count.
func HashItems(items []gallery.Item) string {
	type keyed struct {
		ID      string  `json:"id"`
		Visible bool    `json:"v"`
		Aspect  float64 `json:"a"`
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		ks[i] = keyed{ID: it.ID, Visible: it.Visible, Aspect: it.AspectRatio}
	}
	data, _ := json.Marshal(ks)
	return cache.Sum(data)
}
