package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/photowall/pkg/gallery"
)

var (
	colorCyan  = lipgloss.Color("#00d7ff")
	colorWhite = lipgloss.Color("#ffffff")
	colorGray  = lipgloss.Color("#a8a8a8")
	colorDim   = lipgloss.Color("#5f5f5f")
)

// Cell styles, indexed by the style field of a cell.
const (
	styleEmpty = iota
	styleItem
	styleHidden
	styleSelected
)

var cellStyles = [...]lipgloss.Style{
	styleEmpty:    lipgloss.NewStyle(),
	styleItem:     lipgloss.NewStyle().Foreground(colorGray),
	styleHidden:   lipgloss.NewStyle().Foreground(colorDim),
	styleSelected: lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
}

var (
	statusNameStyle = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	statusDimStyle  = lipgloss.NewStyle().Foreground(colorGray)
)

type cell struct {
	r     rune
	style int
}

// canvas is a character grid the layout is drawn onto.
type canvas struct {
	cells [][]cell
	cols  int
	rows  int
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for y := range c.cells {
		c.cells[y] = make([]cell, cols)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, style int) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y][x] = cell{r: r, style: style}
}

// box draws a rounded box covering cells x0..x1 and y0..y1 inclusive with
// the label on its first inner row. Boxes too small for a border are
// filled instead.
func (c *canvas) box(x0, y0, x1, y1 int, label string, style int) {
	if x1 < x0 || y1 < y0 {
		c.set(x0, y0, '▪', style)
		return
	}
	if x1 == x0 || y1 == y0 {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				c.set(x, y, '▒', style)
			}
		}
		return
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', style)
		c.set(x, y1, '─', style)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', style)
		c.set(x1, y, '│', style)
	}
	c.set(x0, y0, '╭', style)
	c.set(x1, y0, '╮', style)
	c.set(x0, y1, '╰', style)
	c.set(x1, y1, '╯', style)

	if y1-y0 < 2 {
		return
	}
	x := x0 + 1
	for _, r := range label {
		if x >= x1 {
			break
		}
		c.set(x, y0+1, r, style)
		x++
	}
}

// String renders the grid, styling runs of equally styled cells at once.
func (c *canvas) String() string {
	var b strings.Builder
	var run []rune
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		style := styleEmpty
		for _, cl := range row {
			if cl.style != style && len(run) > 0 {
				b.WriteString(cellStyles[style].Render(string(run)))
				run = run[:0]
			}
			style = cl.style
			run = append(run, cl.r)
		}
		if len(run) > 0 {
			b.WriteString(cellStyles[style].Render(string(run)))
			run = run[:0]
		}
	}
	return b.String()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	rows := max(m.height-m.chromeRows(), 0)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.drawWall(m.width, rows),
		m.statusLine(),
		m.help.View(keys),
	)
}

// drawWall draws the part of the layout inside the scrolled viewport.
func (m *Model) drawWall(cols, rows int) string {
	c := newCanvas(cols, rows)
	if m.layout.Empty() {
		msg := "no images"
		if m.pattern != "" {
			msg = fmt.Sprintf("no images match %q", m.pattern)
		}
		return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, statusDimStyle.Render(msg))
	}

	var dx, dy float64
	if m.layout.Orientation == gallery.Vertical {
		dx = m.offset
	} else {
		dy = m.offset
	}

	for _, r := range m.layout.Rects() {
		x0 := int(math.Round((r.X - dx) / CellWidth))
		x1 := int(math.Round((r.X+r.W-dx)/CellWidth)) - 1
		y0 := int(math.Round((r.Y - dy) / CellHeight))
		y1 := int(math.Round((r.Y+r.H-dy)/CellHeight)) - 1
		if x1 < 0 || y1 < 0 || x0 >= cols || y0 >= rows {
			continue
		}
		style := styleItem
		switch {
		case r.ID == m.selected:
			style = styleSelected
		case !r.Visible:
			style = styleHidden
		}
		label := ""
		if it, ok := m.engine.Item(r.ID); ok {
			label = it.Name
		}
		c.box(x0, y0, x1, y1, label, style)
	}
	return c.String()
}

// statusLine shows the filter input while filtering, otherwise the
// selected image and the layout summary.
func (m *Model) statusLine() string {
	line := lipgloss.NewStyle().MaxWidth(m.width)
	if m.filtering {
		return line.Render(m.filter.View())
	}

	cfg := m.engine.Config()
	summary := fmt.Sprintf("%d images · %d bins · %dpx · %s",
		len(m.engine.Items()), m.layout.BinCount, cfg.TargetLength, cfg.Orientation)
	if cfg.ConvergentScrolling {
		summary += " · convergent"
	}
	if m.pattern != "" {
		summary += fmt.Sprintf(" · filter %q", m.pattern)
	}

	left := m.status
	if left == "" {
		if it, ok := m.engine.Item(m.selected); ok {
			left = statusNameStyle.Render(it.Name) + "  " +
				statusDimStyle.Render(fmt.Sprintf("%.2f  %s", it.AspectRatio, it.Path))
		}
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(summary)-1, 1)
	return line.Render(left + strings.Repeat(" ", gap) + statusDimStyle.Render(summary))
}
