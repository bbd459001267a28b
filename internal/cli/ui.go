package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockpress/pkg/pipeline"
)

// stdout receives human-readable command output. Rendered documents are
// written separately so they can be piped.
var stdout io.Writer = os.Stdout

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorErr    = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")  // light blue
	colorText   = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by the commands and the block picker.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleLink      = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleValue       = lipgloss.NewStyle().Foreground(colorText)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// mark is the leading symbol of a status line.
type mark int

const (
	markOK mark = iota
	markError
	markWarn
	markInfo
)

func statusLine(m mark, msg string) string {
	switch m {
	case markOK:
		return StyleSuccess.Render("✓") + " " + msg
	case markError:
		return lipgloss.NewStyle().Foreground(colorErr).Render("✗") + " " + msg
	case markWarn:
		return StyleWarning.Render("!") + " " + StyleWarning.Render(msg)
	}
	return lipgloss.NewStyle().Foreground(colorGray).Render("›") + " " + msg
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, statusLine(markOK, fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, statusLine(markWarn, fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, statusLine(markInfo, fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleValue.Render(value))
}

func printTitle(title string) {
	fmt.Fprintln(stdout, StyleTitle.Render(title))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// printRenderResult reports a render written to output: the stats line,
// a warning for blocks the context could not render, and the file.
func printRenderResult(res pipeline.Result, input, output string) {
	printSuccess("Rendered %s", res.Context)
	fmt.Fprintln(stdout, "  "+statsLine(res.Stats, res.CacheHit, res.Volatile))
	if res.Stats.Skipped > 0 {
		printWarning("%d blocks are not rendered in %s", res.Stats.Skipped, res.Context)
		printNextStep("See which", "blockpress inspect "+input+" --context "+res.Context)
	}
	printFile(output)
}

// statsLine joins render statistics with dots: block count, skipped
// count, output size and where the HTML came from.
func statsLine(stats pipeline.Stats, cached, volatile bool) string {
	parts := []string{fmt.Sprintf("%d blocks", stats.Blocks)}
	if stats.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", stats.Skipped))
	}
	parts = append(parts, formatBytes(stats.Bytes))
	switch {
	case volatile:
		parts = append(parts, StyleWarning.Render("uncached"))
	case cached:
		parts = append(parts, StyleSuccess.Render("cached"))
	default:
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGray).Render("fresh"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
