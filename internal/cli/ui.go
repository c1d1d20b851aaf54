package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/tracker"
	"github.com/artfit/artfit/pkg/units"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, out of bounds
	colorBlue   = lipgloss.Color("75")  // Light blue - links, region outline
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleOutside marks an artwork that crosses the print region.
	StyleOutside = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints a dim one-line summary ending in the cache status.
func printStats(parts []string, cached bool) {
	status, style := iconFresh, styleComputed
	if cached {
		status, style = iconCached, styleCached
	}
	rendered := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		rendered = append(rendered, StyleDim.Render(p))
	}
	rendered = append(rendered, style.Render(status))
	fmt.Println("  " + strings.Join(rendered, StyleDim.Render(" · ")))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printRegion prints a resolved print region and its export geometry.
func printRegion(r region.Region) {
	printKeyValue("Region", r.String())
	printKeyValue("Canvas", fmt.Sprintf("%g,%g  %gx%g px", r.X, r.Y, r.Width, r.Height))
	if r.HasPhysicalSize() {
		printKeyValue("Physical", fmt.Sprintf("%g x %g in @ %g DPI", r.MaxWidthInches, r.MaxHeightInches, r.MaxDPI))
	}
	if g, err := export.Plan(r, units.ExportDPI); err == nil {
		printKeyValue("Print file", fmt.Sprintf("%dx%d px (x%.4g)", g.Width, g.Height, g.Multiplier))
	} else {
		printKeyValue("Print file", StyleWarning.Render("unavailable: "+err.Error()))
	}
}

// printPlacement prints the artwork placement in a snapshot.
func printPlacement(s tracker.Snapshot) {
	if s.Transform == nil {
		printInfo("No artwork placed")
		return
	}
	t := s.Transform
	printKeyValue("Position", fmt.Sprintf("%.1f, %.1f (region %.1f, %.1f)", t.Left, t.Top, s.RelativeX, s.RelativeY))
	printKeyValue("Size", fmt.Sprintf("%.1f x %.1f px", t.ScaledWidth(), t.ScaledHeight()))
	printKeyValue("Scale", fmt.Sprintf("%.4g", s.Scale))
	printKeyValue("Rotation", fmt.Sprintf("%g°", t.Rotation))
	printKeyValue("Bounds", boundsLabel(s.Bounds))
}

func boundsLabel(st bounds.State) string {
	if st.Outside {
		return StyleOutside.Render("outside print area (" + st.Edges.String() + ")")
	}
	return StyleSuccess.Render("inside print area")
}
