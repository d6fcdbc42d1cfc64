package catalog

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photowall/pkg/cache"
	"github.com/matzehuels/photowall/pkg/gallery"
)

// Catalog loads gallery items from disk, caching probe results.
type Catalog struct {
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
	scan   ScanOptions
	probes int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCache stores probe results in c under keys from k.
func WithCache(c cache.Cache, k cache.Keyer, ttl time.Duration) Option {
	return func(cat *Catalog) {
		if c != nil {
			cat.cache = c
		}
		if k != nil {
			cat.keyer = k
		}
		cat.ttl = ttl
	}
}

// WithLogger sets the logger for probe warnings.
func WithLogger(l *log.Logger) Option {
	return func(cat *Catalog) {
		if l != nil {
			cat.logger = l
		}
	}
}

// WithScanOptions bounds the directory walk.
func WithScanOptions(opts ScanOptions) Option {
	return func(cat *Catalog) { cat.scan = opts }
}

// WithProbeWorkers limits how many files are probed at once.
func WithProbeWorkers(n int) Option {
	return func(cat *Catalog) {
		if n > 0 {
			cat.probes = n
		}
	}
}

// New creates a catalog. Without WithCache nothing is cached.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		ttl:    cache.TTLProbe,
		logger: log.New(io.Discard),
		probes: 8,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load scans root and returns one visible item per image, ordered by
// relative path.
func (c *Catalog) Load(ctx context.Context, root string) ([]gallery.Item, error) {
	entries, err := Scan(ctx, root, c.scan)
	if err != nil {
		return nil, err
	}
	return c.Items(ctx, entries)
}

// Items probes entries in parallel and converts them to items in the same
// order.
func (c *Catalog) Items(ctx context.Context, entries []Entry) ([]gallery.Item, error) {
	items := make([]gallery.Item, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.probes)
	for i, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = c.item(ctx, e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Item probes a single entry.
func (c *Catalog) Item(ctx context.Context, e Entry) gallery.Item {
	return c.item(ctx, e)
}

func (c *Catalog) item(ctx context.Context, e Entry) gallery.Item {
	it := gallery.Item{
		ID:          ID(e.Path),
		Visible:     true,
		AspectRatio: 1,
		Path:        e.Path,
		Name:        filepath.Base(e.Path),
	}
	d, err := c.dimensions(ctx, e)
	if err != nil {
		c.logger.Warn("probe failed, using square thumbnail", "file", e.Rel, "err", err)
		return it
	}
	it.AspectRatio = d.AspectRatio()
	return it
}

func (c *Catalog) dimensions(ctx context.Context, e Entry) (Dimensions, error) {
	key := c.keyer.ProbeKey(e.Path, e.Size, e.ModTime)

	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Debug("probe cache read failed", "file", e.Rel, "err", err)
	}
	if hit {
		var d Dimensions
		if err := json.Unmarshal(data, &d); err == nil {
			return d, nil
		}
	}

	d, err := Probe(e.Path)
	if err != nil {
		return d, err
	}
	if data, err := json.Marshal(d); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Debug("probe cache write failed", "file", e.Rel, "err", err)
		}
	}
	return d, nil
}

// ID derives a stable item id from an absolute file path.
func ID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}
