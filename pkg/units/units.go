// Package units converts between physical print measures and pixels.
//
// Print regions are specified in inches at a DPI; the editing canvas works in
// pixels. Conversions here are exact: no clamping and no rounding. Callers
// round only where presentation requires whole pixels.
package units

import "math"

const (
	// DefaultDPI is the resolution assumed when a print region omits one.
	DefaultDPI = 300.0

	// ExportDPI is the fixed resolution of generated print files. It is
	// independent of a region's own DPI, which governs display sizing only.
	ExportDPI = 300.0
)

// ToPixels converts a physical length in inches to pixels at dpi.
func ToPixels(inches, dpi float64) float64 {
	return inches * dpi
}

// ToInches converts a pixel length to inches at dpi.
// A zero dpi yields +Inf or NaN; validate with [Valid] first.
func ToInches(px, dpi float64) float64 {
	return px / dpi
}

// Valid reports whether v is a usable measure: finite and not negative.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Round rounds half away from zero to a whole pixel count.
func Round(px float64) int {
	return int(math.Round(px))
}
