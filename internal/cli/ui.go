package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mosaic/pkg/pipeline"
)

var (
	colorAccent = lipgloss.Color("36")
	colorGood   = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorBad    = lipgloss.Color("167")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// Styles shared by the commands and the watch view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
	StyleError     = lipgloss.NewStyle().Bold(true).Foreground(colorBad)

	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

// status is a one-glyph line prefix.
type status struct {
	glyph string
	style lipgloss.Style
}

func (s status) render() string { return s.style.Render(s.glyph) }

var (
	statusOK   = status{"✓", lipgloss.NewStyle().Foreground(colorGood)}
	statusFail = status{"✗", lipgloss.NewStyle().Foreground(colorBad)}
	statusWarn = status{"!", lipgloss.NewStyle().Foreground(colorWarn)}
	statusInfo = status{"›", lipgloss.NewStyle().Foreground(colorMuted)}

	tagCached = status{"cached", lipgloss.NewStyle().Foreground(colorGood)}
	tagFresh  = status{"fresh", lipgloss.NewStyle().Foreground(colorMuted)}
)

// Status lines go to the command's output stream; diagnostics go through the
// logger on stderr.

func printLine(w io.Writer, s status, msg string) {
	fmt.Fprintln(w, s.render()+" "+msg)
}

func printSuccess(w io.Writer, format string, args ...any) {
	printLine(w, statusOK, fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	printLine(w, statusFail, fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	printLine(w, statusWarn, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	printLine(w, statusInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// statsLine formats run statistics on a single line: counts, timings and
// whether the frame came from cache.
func statsLine(stats pipeline.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d items", stats.Items),
		fmt.Sprintf("%d cells", stats.Cells),
		fmt.Sprintf("%d ticks", stats.Ticks),
	}
	if stats.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", stats.Dropped))
	}
	if !cached && stats.SimulateTime > 0 {
		parts = append(parts, "sim "+stats.SimulateTime.Round(time.Millisecond).String())
	}
	if stats.RenderTime > 0 {
		parts = append(parts, "render "+stats.RenderTime.Round(time.Millisecond).String())
	}

	tag := tagFresh
	if cached {
		tag = tagCached
	}

	sep := StyleDim.Render(" · ")
	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = StyleDim.Render(p)
	}
	return "  " + strings.Join(rendered, sep) + sep + tag.render()
}

// printStats prints the stats line.
func printStats(w io.Writer, stats pipeline.Stats, cached bool) {
	fmt.Fprintln(w, statsLine(stats, cached))
}
