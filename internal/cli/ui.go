package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// stdout receives every user-facing line. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette & Styles
// =============================================================================

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleHighlight for emphasized values such as addresses.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Lines
// =============================================================================

func printIcon(icon string, style lipgloss.Style, format string, args []any) {
	fmt.Fprintln(stdout, style.Render(icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	printIcon(iconSuccess, styleIconSuccess, format, args)
}

func printError(format string, args ...any) {
	printIcon(iconError, styleIconError, format, args)
}

func printWarning(format string, args ...any) {
	printIcon(iconWarning, styleWarning, "%s", []any{styleWarning.Render(fmt.Sprintf(format, args...))})
}

func printInfo(format string, args ...any) {
	printIcon(iconInfo, styleIconInfo, format, args)
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleValue.Render(value))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Results
// =============================================================================

// printStats prints node and link counts on one line. Links that could not
// be drawn (a box was missing) show as drawn/total.
func printStats(nodeCount, linkCount, drawable int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", nodeCount))
	}
	switch {
	case linkCount == 0:
	case drawable < linkCount:
		parts = append(parts, fmt.Sprintf("%d/%d links drawn", drawable, linkCount))
	default:
		parts = append(parts, fmt.Sprintf("%d links", linkCount))
	}

	for i := range parts {
		parts[i] = StyleDim.Render(parts[i])
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printViolations summarizes schema violations found in the document.
func printViolations(errs workflow.ErrorMap) {
	if errs.Len() == 0 {
		return
	}
	printWarning("%d schema violations; affected nodes are drawn incomplete", errs.Len())
	for _, p := range errs.Paths() {
		printDetail("%s: %s", p, strings.Join(errs[p], "; "))
	}
}
