// Package tui is the interactive terminal host for a photo wall.
//
// The host owns one [gallery.Engine] and drives it exclusively from the
// bubbletea Update goroutine: window resizes, key presses, filter input and
// file watcher batches all arrive as messages and are applied to the engine
// there. Each recompute hands its snapshot to the model through the
// engine's OnLayout callback, and View draws that snapshot as boxes on a
// character grid.
//
// A terminal cell stands for [CellWidth] x [CellHeight] pixels, so the wall
// keeps the proportions it would have in a graphical window of the same
// size.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/photowall/pkg/catalog"
	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/watcher"
)

// Pixel size of one terminal cell.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// Options configures the terminal host.
type Options struct {
	// Root is the directory the items were scanned from. Watcher batches
	// are resolved against it.
	Root string

	// Config is the initial layout configuration.
	Config gallery.Config

	// Items is the initial collection, usually from catalog.Load.
	Items []gallery.Item

	// Filter is the initial fuzzy filter pattern.
	Filter string

	// Catalog probes files reported by the watcher. Nil uses an uncached
	// catalog.
	Catalog *catalog.Catalog

	// Watch enables the file watcher in Run.
	Watch bool

	Logger *log.Logger
}

// =============================================================================
// Messages
// =============================================================================

// batchMsg carries one debounced watcher batch into the Update goroutine.
type batchMsg struct{ watcher.Batch }

// itemsMsg carries freshly probed items for added or changed files.
type itemsMsg struct{ items []gallery.Item }

// copiedMsg reports the result of a clipboard write.
type copiedMsg struct {
	path string
	err  error
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model of the gallery view.
type Model struct {
	ctx     context.Context
	root    string
	catalog *catalog.Catalog
	logger  *log.Logger

	engine *gallery.Engine
	layout gallery.Layout
	rects  map[string]gallery.Rect

	help      help.Model
	filter    textinput.Model
	filtering bool
	pattern   string

	selected string
	offset   float64 // scroll-axis offset in pixels
	width    int
	height   int
	status   string
}

// New creates the model and its engine. The engine computes a first layout
// for an empty viewport; the real size arrives with the first
// tea.WindowSizeMsg.
func New(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.New(catalog.WithLogger(logger))
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter by file name"
	ti.CharLimit = 64

	m := &Model{
		ctx:     ctx,
		root:    opts.Root,
		catalog: cat,
		logger:  logger,
		help:    help.New(),
		filter:  ti,
	}
	m.engine = gallery.New(opts.Config,
		gallery.WithItems(opts.Items...),
		gallery.WithOnLayout(m.setLayout),
		gallery.WithLogger(logger),
	)
	if opts.Filter != "" {
		m.filter.SetValue(opts.Filter)
		m.applyFilter(opts.Filter)
	}
	m.ensureSelection()
	return m
}

// Engine exposes the engine for inspection. It must only be used from the
// goroutine running the program.
func (m *Model) Engine() *gallery.Engine { return m.engine }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.filter.Width = max(msg.Width-4, 8)
		m.resize()
		return m, nil

	case batchMsg:
		m.removeGone(msg.Batch)
		return m, m.probe(msg.Batch)

	case itemsMsg:
		m.merge(msg.items)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = "copied " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	cfg := m.engine.Config()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, keys.ZoomIn):
		m.engine.ZoomIn()
		m.status = fmt.Sprintf("target %dpx", m.engine.Config().TargetLength)
		m.reveal()

	case key.Matches(msg, keys.ZoomOut):
		m.engine.ZoomOut()
		m.status = fmt.Sprintf("target %dpx", m.engine.Config().TargetLength)
		m.reveal()

	case key.Matches(msg, keys.Orient):
		next := gallery.Vertical
		if cfg.Orientation == gallery.Vertical {
			next = gallery.Horizontal
		}
		m.engine.SetOrientation(next)
		m.offset = 0
		m.reveal()

	case key.Matches(msg, keys.Convergent):
		m.engine.SetConvergentScrolling(!cfg.ConvergentScrolling)
		m.syncScroll()

	case key.Matches(msg, keys.Up):
		m.scrollTo(m.offset - m.scrollStep())

	case key.Matches(msg, keys.Down):
		m.scrollTo(m.offset + m.scrollStep())

	case key.Matches(msg, keys.Home):
		m.scrollTo(0)

	case key.Matches(msg, keys.End):
		m.scrollTo(m.maxOffset())

	case key.Matches(msg, keys.Prev):
		m.move(-1)

	case key.Matches(msg, keys.Next):
		m.move(1)

	case key.Matches(msg, keys.Activate):
		if m.engine.Activate(m.selected) {
			it, _ := m.engine.Item(m.selected)
			m.status = "selected " + it.Name
		}

	case key.Matches(msg, keys.Copy):
		if it, ok := m.engine.Item(m.selected); ok && it.Path != "" {
			return m, copyPath(it.Path)
		}

	case key.Matches(msg, keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.pattern)
		m.filter.CursorEnd()
		return m, m.filter.Focus()
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter("")
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if v := m.filter.Value(); v != m.pattern {
		m.applyFilter(v)
	}
	return m, cmd
}

// =============================================================================
// Engine plumbing
// =============================================================================

// setLayout receives every snapshot. It runs inside the engine's recompute
// and must not call back into the engine.
func (m *Model) setLayout(l gallery.Layout) {
	m.layout = l
	m.rects = make(map[string]gallery.Rect, l.ItemCount())
	for _, r := range l.Rects() {
		m.rects[r.ID] = r
	}
}

// viewport converts the terminal size into pixels, leaving room for the
// status and help lines.
func (m *Model) viewport() gallery.Viewport {
	rows := max(m.height-m.chromeRows(), 0)
	return gallery.Viewport{
		Width:  float64(m.width) * CellWidth,
		Height: float64(rows) * CellHeight,
	}
}

func (m *Model) chromeRows() int {
	return 1 + lipgloss.Height(m.help.View(keys))
}

func (m *Model) resize() {
	m.engine.SetViewport(m.viewport())
	m.reveal()
}

func (m *Model) applyFilter(pattern string) {
	m.pattern = pattern
	m.engine.SetVisibility(catalog.Visibility(m.engine.Items(), pattern))
	m.ensureSelection()
	m.reveal()
}

// removeGone drops the items whose files disappeared, together with the
// items of changed files, which come back re-probed through probe.
func (m *Model) removeGone(b watcher.Batch) {
	var ids []string
	for _, it := range m.engine.Items() {
		if b.Gone(it.Path) {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	n := m.engine.RemoveItems(ids...)
	m.status = fmt.Sprintf("%d images removed", n)
	m.ensureSelection()
	m.reveal()
}

// probe reads the dimensions of added and changed files off the Update
// goroutine and returns them as an itemsMsg.
func (m *Model) probe(b watcher.Batch) tea.Cmd {
	var paths []string
	for _, p := range append(append([]string(nil), b.Added...), b.Changed...) {
		if catalog.IsImage(p) && !b.Gone(p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	ctx, cat, root, logger := m.ctx, m.catalog, m.root, m.logger
	return func() tea.Msg {
		entries := make([]catalog.Entry, 0, len(paths))
		for _, p := range paths {
			e, err := catalog.Stat(root, p)
			if err != nil {
				logger.Debug("skipping watched file", "path", p, "err", err)
				continue
			}
			entries = append(entries, e)
		}
		items, err := cat.Items(ctx, entries)
		if err != nil {
			logger.Warn("probing watched files failed", "err", err)
			return nil
		}
		return itemsMsg{items: items}
	}
}

// merge replaces items whose id is already present and appends the rest,
// then applies the active filter, all in one recompute.
func (m *Model) merge(items []gallery.Item) {
	if len(items) == 0 {
		return
	}
	current := m.engine.Items()
	index := make(map[string]int, len(current))
	for i, it := range current {
		index[it.ID] = i
	}
	var added int
	for _, it := range items {
		if i, ok := index[it.ID]; ok {
			current[i] = it
			continue
		}
		index[it.ID] = len(current)
		current = append(current, it)
		added++
	}
	visible := catalog.Visibility(current, m.pattern)
	for i := range current {
		current[i].Visible = visible(current[i])
	}
	m.engine.SetItems(current)
	if added > 0 {
		m.status = fmt.Sprintf("%d images added", added)
	}
	m.ensureSelection()
}

// =============================================================================
// Selection and scrolling
// =============================================================================

// visibleIDs returns the ids of visible items in collection order.
func (m *Model) visibleIDs() []string {
	var ids []string
	for _, it := range m.engine.Items() {
		if it.Visible {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// ensureSelection keeps the selection on a visible item.
func (m *Model) ensureSelection() {
	ids := m.visibleIDs()
	for _, id := range ids {
		if id == m.selected {
			return
		}
	}
	m.selected = ""
	if len(ids) > 0 {
		m.selected = ids[0]
	}
}

func (m *Model) move(delta int) {
	ids := m.visibleIDs()
	if len(ids) == 0 {
		return
	}
	i := 0
	for j, id := range ids {
		if id == m.selected {
			i = j
			break
		}
	}
	i = min(max(i+delta, 0), len(ids)-1)
	m.selected = ids[i]
	m.reveal()
}

// span returns the scroll-axis interval of a rect.
func (m *Model) span(r gallery.Rect) (start, end float64) {
	if m.layout.Orientation == gallery.Vertical {
		return r.X, r.X + r.W
	}
	return r.Y, r.Y + r.H
}

// viewExtent is the viewport length along the scroll axis.
func (m *Model) viewExtent() float64 {
	vp := m.engine.Viewport()
	if m.layout.Orientation == gallery.Vertical {
		return vp.Width
	}
	return vp.Height
}

func (m *Model) maxOffset() float64 {
	w, h := m.layout.ContentSize()
	content := h
	if m.layout.Orientation == gallery.Vertical {
		content = w
	}
	return max(content-m.viewExtent(), 0)
}

func (m *Model) scrollStep() float64 {
	if m.layout.Orientation == gallery.Vertical {
		return 6 * CellWidth
	}
	return 3 * CellHeight
}

// reveal scrolls just far enough for the selected item to be in view.
func (m *Model) reveal() {
	r, ok := m.rects[m.selected]
	if !ok {
		m.scrollTo(m.offset)
		return
	}
	start, end := m.span(r)
	offset := m.offset
	if end > offset+m.viewExtent() {
		offset = end - m.viewExtent() + m.layout.Spacing
	}
	if start < offset {
		offset = start - m.layout.Spacing
	}
	m.scrollTo(offset)
}

func (m *Model) scrollTo(offset float64) {
	m.offset = min(max(offset, 0), m.maxOffset())
	m.syncScroll()
}

// syncScroll reports the scroll fraction to the engine, which recomputes
// only while convergent scrolling is on.
func (m *Model) syncScroll() {
	var f float64
	if limit := m.maxOffset(); limit > 0 {
		f = m.offset / limit
	}
	if m.layout.Orientation == gallery.Vertical {
		m.engine.SetScroll(gallery.ScrollPosition{H: f})
		return
	}
	m.engine.SetScroll(gallery.ScrollPosition{V: f})
}

func copyPath(path string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{path: path, err: clipboard.WriteAll(path)}
	}
}
