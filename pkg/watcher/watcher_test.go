package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	for range 5 {
		d.Trigger(func() { calls.Add(1) })
	}
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("canceled callback ran")
	}
}

func TestDebouncerDefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounce {
		t.Errorf("Duration = %v, want %v", d.Duration(), DefaultDebounce)
	}
}

func TestBatchGone(t *testing.T) {
	sep := string(filepath.Separator)
	b := Batch{Removed: []string{sep + "photos" + sep + "old"}}
	tests := []struct {
		path string
		want bool
	}{
		{sep + "photos" + sep + "old", true},
		{sep + "photos" + sep + "old" + sep + "a.png", true},
		{sep + "photos" + sep + "older.png", false},
	}
	for _, tt := range tests {
		if got := b.Gone(tt.path); got != tt.want {
			t.Errorf("Gone(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if !(Batch{}).Empty() || b.Empty() {
		t.Error("Empty mismatch")
	}
}

func TestRecordFolding(t *testing.T) {
	w := &Watcher{pending: make(map[string]change), debouncer: NewDebouncer(time.Hour), done: make(chan struct{})}
	defer w.debouncer.Cancel()

	w.record("a", added)
	w.record("a", changed)
	w.record("b", added)
	w.record("b", removed)
	w.record("c", removed)
	w.record("c", added)

	if w.pending["a"] != added {
		t.Errorf("a = %v, want added", w.pending["a"])
	}
	if _, ok := w.pending["b"]; ok {
		t.Error("b was added and removed, should vanish")
	}
	if w.pending["c"] != changed {
		t.Errorf("c = %v, want changed", w.pending["c"])
	}
}

func waitBatch(t *testing.T, w *Watcher) Batch {
	t.Helper()
	select {
	case b := <-w.Events():
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
		return Batch{}
	}
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := New(root, WithDebounce(30*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	img := filepath.Join(root, "sub", "a.png")
	if err := os.WriteFile(img, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := waitBatch(t, w)
	if !slices.Contains(b.Added, img) {
		t.Errorf("Added = %v, want %s", b.Added, img)
	}
	if len(b.Removed) != 0 {
		t.Errorf("Removed = %v", b.Removed)
	}

	if err := os.Remove(img); err != nil {
		t.Fatal(err)
	}
	b = waitBatch(t, w)
	if !b.Gone(img) {
		t.Errorf("Removed = %v, want %s", b.Removed, img)
	}

	// Images inside a directory created after start are reported too.
	newDir := filepath.Join(root, "new")
	if err := os.Mkdir(newDir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	late := filepath.Join(newDir, "b.jpg")
	if err := os.WriteFile(late, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(5 * time.Second)
	for found := false; !found; {
		select {
		case b := <-w.Events():
			found = slices.Contains(b.Added, late)
		case <-deadline:
			t.Fatalf("%s never reported", late)
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	drained := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Error("Events should be closed after Run returns")
	}
}

func TestNewMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("New on a missing directory should fail")
	}
}
