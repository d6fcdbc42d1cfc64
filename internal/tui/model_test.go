package tui

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/watcher"
)

func testItems() []gallery.Item {
	var items []gallery.Item
	for _, group := range []string{"sunset", "harbour"} {
		for i := 1; i <= 6; i++ {
			name := fmt.Sprintf("%s-%02d.jpg", group, i)
			items = append(items, gallery.Item{
				ID:          name,
				Visible:     true,
				AspectRatio: 1,
				Name:        name,
				Path:        filepath.Join("/photos", group, name),
			})
		}
	}
	return items
}

func newTestModel(t *testing.T, items []gallery.Item) *Model {
	t.Helper()
	m := New(context.Background(), Options{Config: gallery.DefaultConfig(), Items: items})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(keyMsg(k))
	}
}

func TestWindowSizeSetsViewport(t *testing.T) {
	m := newTestModel(t, testItems())

	vp := m.Engine().Viewport()
	if vp.Width != 800 || vp.Height != 38*CellHeight {
		t.Errorf("viewport = %+v, want 800x%g", vp, 38*CellHeight)
	}
	if m.layout.BinCount != 4 {
		t.Errorf("BinCount = %d, want 4", m.layout.BinCount)
	}
}

func TestZoomKeys(t *testing.T) {
	m := newTestModel(t, testItems())

	press(m, "+")
	if got := m.Engine().Config().TargetLength; got != 250 {
		t.Errorf("TargetLength after zoom in = %d, want 250", got)
	}
	if m.layout.BinCount != 3 {
		t.Errorf("BinCount after zoom in = %d, want 3", m.layout.BinCount)
	}

	press(m, "-")
	if m.layout.BinCount != 4 {
		t.Errorf("BinCount after zoom out = %d, want 4", m.layout.BinCount)
	}
}

func TestOrientationKeyResetsScroll(t *testing.T) {
	items := testItems()
	for i := range 40 {
		items = append(items, gallery.Item{ID: fmt.Sprintf("extra-%d", i), Visible: true, AspectRatio: 1})
	}
	m := newTestModel(t, items)

	press(m, "G")
	if m.offset == 0 {
		t.Fatal("offset = 0 after scrolling to the end")
	}

	press(m, "o")
	if got := m.Engine().Config().Orientation; got != gallery.Vertical {
		t.Errorf("Orientation = %v, want vertical", got)
	}
	if m.offset != 0 {
		t.Errorf("offset = %g, want 0", m.offset)
	}
	if s := m.Engine().Scroll(); s != (gallery.ScrollPosition{}) {
		t.Errorf("Scroll = %+v, want zero", s)
	}
}

func TestScrollKeys(t *testing.T) {
	items := testItems()
	for i := range 40 {
		items = append(items, gallery.Item{ID: fmt.Sprintf("extra-%d", i), Visible: true, AspectRatio: 1})
	}
	m := newTestModel(t, items)

	press(m, "j")
	if m.offset != 3*CellHeight {
		t.Errorf("offset after one step = %g, want %g", m.offset, 3*CellHeight)
	}

	press(m, "G")
	if got := m.Engine().Scroll().V; got != 1 {
		t.Errorf("Scroll.V at end = %g, want 1", got)
	}

	press(m, "k", "g")
	if m.offset != 0 || m.Engine().Scroll().V != 0 {
		t.Errorf("offset = %g, Scroll.V = %g after returning to start", m.offset, m.Engine().Scroll().V)
	}
}

func TestConvergentKey(t *testing.T) {
	m := newTestModel(t, testItems())

	press(m, "c")
	if !m.Engine().Config().ConvergentScrolling {
		t.Error("convergent scrolling not enabled")
	}
	press(m, "c")
	if m.Engine().Config().ConvergentScrolling {
		t.Error("convergent scrolling not disabled")
	}
}

func TestFilter(t *testing.T) {
	m := newTestModel(t, testItems())

	press(m, "/", "harb")
	if !m.filtering {
		t.Fatal("not in filter mode")
	}
	for _, it := range m.Engine().Items() {
		want := strings.HasPrefix(it.Name, "harbour")
		if it.Visible != want {
			t.Errorf("%s visible = %v, want %v", it.Name, it.Visible, want)
		}
	}
	if m.selected != "harbour-01.jpg" {
		t.Errorf("selected = %q, want first visible item", m.selected)
	}

	press(m, "enter")
	if m.filtering || m.pattern != "harb" {
		t.Errorf("filtering = %v, pattern = %q after enter", m.filtering, m.pattern)
	}

	press(m, "/", "esc")
	if m.pattern != "" {
		t.Errorf("pattern = %q after esc, want empty", m.pattern)
	}
	for _, it := range m.Engine().Items() {
		if !it.Visible {
			t.Errorf("%s still hidden after clearing the filter", it.Name)
		}
	}
}

func TestNavigateAndActivate(t *testing.T) {
	m := newTestModel(t, testItems())

	if m.selected != "sunset-01.jpg" {
		t.Fatalf("initial selection = %q", m.selected)
	}
	press(m, "l", "l", "h")
	if m.selected != "sunset-02.jpg" {
		t.Errorf("selected = %q, want sunset-02.jpg", m.selected)
	}

	press(m, "enter")
	id, ok := m.Engine().Activated()
	if !ok || id != "sunset-02.jpg" {
		t.Errorf("Activated() = %q, %v", id, ok)
	}
	if !strings.Contains(m.status, "sunset-02.jpg") {
		t.Errorf("status = %q", m.status)
	}
}

func TestWatcherRemovesDirectory(t *testing.T) {
	m := newTestModel(t, testItems())

	_, cmd := m.Update(batchMsg{watcher.Batch{Removed: []string{"/photos/harbour"}}})
	if cmd != nil {
		t.Error("removal-only batch returned a probe command")
	}
	if got := len(m.Engine().Items()); got != 6 {
		t.Errorf("items = %d, want 6", got)
	}
	for _, it := range m.Engine().Items() {
		if strings.HasPrefix(it.Name, "harbour") {
			t.Errorf("%s not removed", it.Name)
		}
	}
}

func TestItemsMsgMerges(t *testing.T) {
	m := newTestModel(t, testItems())
	press(m, "/", "sun", "enter")

	m.Update(itemsMsg{items: []gallery.Item{
		{ID: "sunset-01.jpg", Visible: true, AspectRatio: 0.5, Name: "sunset-01.jpg"},
		{ID: "harbour-99.jpg", Visible: true, AspectRatio: 2, Name: "harbour-99.jpg"},
	}})

	items := m.Engine().Items()
	if len(items) != 13 {
		t.Fatalf("items = %d, want 13", len(items))
	}
	if items[0].AspectRatio != 0.5 {
		t.Errorf("replaced item aspect = %g, want 0.5", items[0].AspectRatio)
	}
	if last := items[12]; last.ID != "harbour-99.jpg" || last.Visible {
		t.Errorf("appended item = %+v, want hidden by the active filter", last)
	}
}

func TestProbeCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	m := New(context.Background(), Options{Root: dir, Config: gallery.DefaultConfig()})
	_, cmd := m.Update(batchMsg{watcher.Batch{Added: []string{path, filepath.Join(dir, "notes.txt")}}})
	if cmd == nil {
		t.Fatal("no probe command for an added image")
	}
	msg, ok := cmd().(itemsMsg)
	if !ok || len(msg.items) != 1 {
		t.Fatalf("probe returned %#v", msg)
	}
	if got := msg.items[0].AspectRatio; got != 2 {
		t.Errorf("AspectRatio = %g, want 2", got)
	}

	m.Update(msg)
	if got := len(m.Engine().Items()); got != 1 {
		t.Errorf("items = %d, want 1", got)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, testItems())
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t, testItems())

	view := m.View()
	if !strings.Contains(view, "sunset-01.jpg") {
		t.Error("view does not show the first image name")
	}
	if !strings.Contains(view, "12 images · 4 bins") {
		t.Error("view does not show the layout summary")
	}
	if got := strings.Count(view, "\n") + 1; got != 40 {
		t.Errorf("view has %d lines, want 40", got)
	}
}

func TestViewEmptyFilter(t *testing.T) {
	m := newTestModel(t, testItems())
	press(m, "/", "zzzz")

	if !strings.Contains(m.View(), `no images match "zzzz"`) {
		t.Error("empty filter result not reported")
	}
}

func TestCanvasBox(t *testing.T) {
	c := newCanvas(6, 3)
	c.box(0, 0, 5, 2, "abcdefgh", styleItem)
	want := "╭────╮\n│abcd│\n╰────╯"
	if got := c.String(); got != want {
		t.Errorf("box =\n%s\nwant\n%s", got, want)
	}
}

func TestInitialFilter(t *testing.T) {
	m := New(context.Background(), Options{
		Config: gallery.DefaultConfig(),
		Items:  testItems(),
		Filter: "sun",
	})
	if m.pattern != "sun" || m.selected != "sunset-01.jpg" {
		t.Errorf("pattern = %q, selected = %q", m.pattern, m.selected)
	}
	for _, it := range m.Engine().Items() {
		if want := strings.HasPrefix(it.Name, "sunset"); it.Visible != want {
			t.Errorf("%s visible = %v, want %v", it.Name, it.Visible, want)
		}
	}
}
