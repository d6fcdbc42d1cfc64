package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Layout.TargetLength != 200 || cfg.Layout.MinTargetLength != 150 || cfg.Layout.Spacing != 5 {
		t.Fatalf("unexpected layout defaults: %+v", cfg.Layout)
	}
	if cfg.Layout.Orientation != "horizontal" {
		t.Fatalf("expected default orientation horizontal, got %q", cfg.Layout.Orientation)
	}
}

func TestLoadFromTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[layout]
target_length = 240
spacing = 8.0
orientation = "Vertical"
convergent_scrolling = true

[cache]
ttl = "24h"

[scan]
max_depth = 3
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Layout.TargetLength != 240 || cfg.Layout.Spacing != 8 || !cfg.Layout.ConvergentScrolling {
		t.Fatalf("unexpected layout: %+v", cfg.Layout)
	}
	if cfg.Layout.Orientation != "vertical" {
		t.Fatalf("orientation not normalized: %q", cfg.Layout.Orientation)
	}
	if cfg.Layout.MinTargetLength != 150 {
		t.Fatalf("missing key should keep default, got %d", cfg.Layout.MinTargetLength)
	}
	if cfg.Scan.MaxDepth != 3 || cfg.Scan.Workers < 1 {
		t.Fatalf("unexpected scan: %+v", cfg.Scan)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := writeFile(t, "config.yml", `
layout:
  target_length: 180
  orientation: rows
server:
  addr: ":9000"
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	g, err := cfg.Gallery()
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if g.TargetLength != 180 || g.Orientation != gallery.Vertical {
		t.Fatalf("unexpected gallery config: %+v", g)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
}

func TestGalleryRaisesTargetToMin(t *testing.T) {
	path := writeFile(t, "config.toml", `
[layout]
target_length = 200
min_target_length = 300
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	g, err := cfg.Gallery()
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if g.TargetLength != 300 || g.MinTargetLength != 300 {
		t.Fatalf("target = %d, min = %d, want 300 and 300", g.TargetLength, g.MinTargetLength)
	}
}

func TestLoadFromErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    perrors.Code
	}{
		{"BadOrientation", "c.toml", "[layout]\norientation = \"diagonal\"\n", perrors.ErrCodeInvalidOrientation},
		{"UnknownTOMLKey", "c.toml", "[layout]\nzoom = 3\n", perrors.ErrCodeInvalidConfig},
		{"UnknownYAMLKey", "c.yaml", "layout:\n  zoom: 3\n", perrors.ErrCodeInvalidConfig},
		{"Syntax", "c.toml", "[layout\n", perrors.ErrCodeInvalidConfig},
		{"BadTTL", "c.toml", "[cache]\nttl = \"forever\"\n", perrors.ErrCodeInvalidConfig},
		{"NegativeDepth", "c.yaml", "scan:\n  max_depth: -1\n", perrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeFile(t, tt.file, tt.content))
			if !perrors.Is(err, tt.code) {
				t.Errorf("LoadFrom error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadFromEmptyYAML(t *testing.T) {
	cfg, err := LoadFrom(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Layout.TargetLength != 200 {
		t.Errorf("empty file should yield defaults, got %+v", cfg.Layout)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.SetGallery(gallery.Config{
		TargetLength:        260,
		MinTargetLength:     120,
		Spacing:             3,
		Orientation:         gallery.Vertical,
		ConvergentScrolling: true,
	})
	cfg.Cache.RedisURL = "redis://localhost:6379/0"

	for _, name := range []string{"config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			if err := Save(path, cfg); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("LoadFrom: %v", err)
			}
			if got != cfg {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()
	for _, key := range Keys {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%s): %v", key, err)
		}
	}

	if err := cfg.Set("layout.target_length", "300"); err != nil {
		t.Fatal(err)
	}
	if v, _ := cfg.Get("layout.target_length"); v != "300" {
		t.Errorf("target_length = %s", v)
	}
	if err := cfg.Set("layout.convergent_scrolling", "true"); err != nil || !cfg.Layout.ConvergentScrolling {
		t.Errorf("Set convergent_scrolling: %v", err)
	}

	if err := cfg.Set("layout.spacing", "wide"); !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("bad float: %v", err)
	}
	if err := cfg.Set("layout.orientation", "up"); !perrors.Is(err, perrors.ErrCodeInvalidOrientation) {
		t.Errorf("bad orientation: %v", err)
	}
	err := cfg.Set("nope", "1")
	if !perrors.Is(err, perrors.ErrCodeInvalidConfig) || !strings.Contains(err.Error(), "layout.spacing") {
		t.Errorf("unknown key: %v", err)
	}
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got, want := DefaultPath(), filepath.Join(dir, "photowall", "config.toml"); got != want {
		t.Errorf("DefaultPath = %s, want %s", got, want)
	}
}

func TestString(t *testing.T) {
	s := Default().String()
	if !strings.Contains(s, "[layout]") || !strings.Contains(s, "target_length = 200") {
		t.Errorf("String() = %s", s)
	}
}
