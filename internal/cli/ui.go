package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// out receives all status output. Tests swap it for a buffer.
var out io.Writer = os.Stdout

// =============================================================================
// Styles
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

var (
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(20)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// marker is the coloured glyph that starts a status line.
type marker struct {
	icon  string
	style lipgloss.Style
}

var (
	markSuccess = marker{iconSuccess, lipgloss.NewStyle().Foreground(colorOK)}
	markError   = marker{iconError, lipgloss.NewStyle().Foreground(colorFail)}
	markWarning = marker{iconWarning, lipgloss.NewStyle().Foreground(colorWarn)}
	markInfo    = marker{iconInfo, lipgloss.NewStyle().Foreground(colorLabel)}
)

func (m marker) printf(format string, args ...any) {
	fmt.Fprintln(out, m.style.Render(m.icon)+" "+fmt.Sprintf(format, args...))
}

// =============================================================================
// Status lines
// =============================================================================

func printSuccess(format string, args ...any) { markSuccess.printf(format, args...) }
func printError(format string, args ...any)   { markError.printf(format, args...) }
func printInfo(format string, args ...any)    { markInfo.printf(format, args...) }

func printWarning(format string, args ...any) {
	markWarning.printf("%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints a dimmed, indented line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written output file.
func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printStats summarises a scan or layout on one line, e.g.
//
//	42 images · 5 bins · cached
func printStats(itemCount, binCount int, cached bool) {
	var parts []string
	if itemCount > 0 {
		parts = append(parts, fmt.Sprintf("%d images", itemCount))
	}
	if binCount > 0 {
		parts = append(parts, fmt.Sprintf("%d bins", binCount))
	}
	source := "fresh"
	if cached {
		source = lipgloss.NewStyle().Foreground(colorOK).Render("cached")
	}
	parts = append(parts, source)
	fmt.Fprintln(out, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printBalance reports how evenly the bins are filled.
func printBalance(longest, shortest, fill float64) {
	printDetail("longest %.0fpx · shortest %.0fpx · fill %.0f%%", longest, shortest, fill*100)
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(out) }
