package catalog

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/photowall/pkg/cache"
	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// buildTree creates:
//
//	root/b.png        40x20
//	root/a.jpg        10x30
//	root/notes.txt
//	root/sub/c.png    30x30
//	root/sub/deep/d.png
//	root/.hidden/e.png
//	root/broken.jpg   (garbage)
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "b.png"), 40, 20)
	writeJPEG(t, filepath.Join(root, "a.jpg"), 10, 30)
	writePNG(t, filepath.Join(root, "sub", "c.png"), 30, 30)
	writePNG(t, filepath.Join(root, "sub", "deep", "d.png"), 5, 5)
	writePNG(t, filepath.Join(root, ".hidden", "e.png"), 5, 5)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "broken.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func rels(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Rel
	}
	return out
}

func TestScan(t *testing.T) {
	root := buildTree(t)
	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{"Unlimited", ScanOptions{}, []string{"a.jpg", "b.png", "broken.jpg", "sub/c.png", "sub/deep/d.png"}},
		{"DirectChildren", ScanOptions{MaxDepth: 1}, []string{"a.jpg", "b.png", "broken.jpg"}},
		{"SingleWorker", ScanOptions{Workers: 1}, []string{"a.jpg", "b.png", "broken.jpg", "sub/c.png", "sub/deep/d.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Scan(context.Background(), root, tt.opts)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if got := rels(entries); !slices.Equal(got, tt.want) {
				t.Errorf("Scan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanErrors(t *testing.T) {
	root := buildTree(t)

	if _, err := Scan(context.Background(), filepath.Join(root, "missing"), ScanOptions{}); !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("missing root: %v", err)
	}
	if _, err := Scan(context.Background(), filepath.Join(root, "b.png"), ScanOptions{}); !perrors.Is(err, perrors.ErrCodeInvalidPath) {
		t.Errorf("file root: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, root, ScanOptions{}); err == nil {
		t.Error("canceled scan should fail")
	}
}

func TestProbe(t *testing.T) {
	root := buildTree(t)
	tests := []struct {
		file    string
		w, h    int
		format  string
		wantErr bool
	}{
		{"b.png", 40, 20, "png", false},
		{"a.jpg", 10, 30, "jpeg", false},
		{"broken.jpg", 0, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			d, err := Probe(filepath.Join(root, tt.file))
			if tt.wantErr {
				if !perrors.Is(err, perrors.ErrCodeProbe) {
					t.Fatalf("Probe error = %v, want PROBE_FAILED", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if d.Width != tt.w || d.Height != tt.h || d.Format != tt.format {
				t.Errorf("Probe = %+v", d)
			}
		})
	}

	if _, err := Probe(filepath.Join(root, "nope.png")); !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
}

func TestDimensionsAspectRatio(t *testing.T) {
	tests := []struct {
		name string
		d    Dimensions
		want float64
	}{
		{"Landscape", Dimensions{Width: 40, Height: 20}, 2},
		{"Rotated", Dimensions{Width: 40, Height: 20, Orientation: 6}, 0.5},
		{"Mirrored", Dimensions{Width: 40, Height: 20, Orientation: 2}, 2},
		{"Unknown", Dimensions{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.AspectRatio(); got != tt.want {
				t.Errorf("AspectRatio = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatalogLoad(t *testing.T) {
	root := buildTree(t)
	items, err := New().Load(context.Background(), root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}

	byName := make(map[string]gallery.Item)
	for _, it := range items {
		if !it.Visible {
			t.Errorf("%s should be visible", it.Name)
		}
		byName[it.Name] = it
	}
	if got := byName["b.png"].AspectRatio; got != 2 {
		t.Errorf("b.png aspect = %v, want 2", got)
	}
	if got := byName["a.jpg"].AspectRatio; math.Abs(got-1.0/3) > 1e-9 {
		t.Errorf("a.jpg aspect = %v, want 1/3", got)
	}
	if got := byName["broken.jpg"].AspectRatio; got != 1 {
		t.Errorf("broken.jpg aspect = %v, want fallback 1", got)
	}
	if items[0].Name != "a.jpg" {
		t.Errorf("items not ordered by path: first is %s", items[0].Name)
	}
	if id := byName["b.png"].ID; id != ID(filepath.Join(root, "b.png")) {
		t.Errorf("unstable id %s", id)
	}
}

func TestCatalogUsesProbeCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "wide.png")
	writePNG(t, path, 40, 20)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cat := New(WithCache(fc, nil, time.Hour), WithProbeWorkers(2))
	if _, err := cat.Load(context.Background(), root); err != nil {
		t.Fatal(err)
	}

	// Replace the content without changing size or mtime: only a cache hit
	// can still report the original aspect ratio.
	info, _ := os.Stat(path)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0}, int(info.Size())), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	items, err := cat.Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].AspectRatio != 2 {
		t.Errorf("aspect = %v, want cached 2", items[0].AspectRatio)
	}
}

func TestStat(t *testing.T) {
	root := buildTree(t)
	e, err := Stat(root, filepath.Join(root, "sub", "c.png"))
	if err != nil {
		t.Fatal(err)
	}
	if e.Rel != "sub/c.png" || e.Size == 0 {
		t.Errorf("Stat = %+v", e)
	}
}

func TestMatchAndVisibility(t *testing.T) {
	items := []gallery.Item{
		{ID: "1", Name: "beach-sunset.jpg"},
		{ID: "2", Name: "mountain.png"},
		{ID: "3", Name: "sunrise.jpg"},
	}

	got := Match(items, "sun")
	slices.Sort(got)
	if !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("Match(sun) = %v", got)
	}
	if Match(items, "  ") != nil {
		t.Error("blank pattern should match nothing")
	}

	visible := Visibility(items, "mount")
	if !visible(items[1]) || visible(items[0]) {
		t.Error("Visibility(mount) wrong")
	}
	all := Visibility(items, "")
	for _, it := range items {
		if !all(it) {
			t.Errorf("empty pattern hides %s", it.Name)
		}
	}
}
