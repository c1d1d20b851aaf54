// Package variants implements color and size selection over a product's
// variants.
//
// A [Selection] holds the chosen colors and sizes; the selected variants
// are every variant whose color and size are both chosen. Colors the
// backend reports as unavailable cannot be selected. One selected color is
// the primary color, which decides the shop's main product image.
package variants

import (
	"cmp"
	"slices"

	"github.com/artfit/artfit/pkg/integrations/podapi"
)

// SizeOrder is the display order of known apparel sizes. Other sizes sort
// after these, lexicographically.
var SizeOrder = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL", "4XL", "5XL"}

// Colors returns the distinct colors of vs in first-seen order.
func Colors(vs []podapi.Variant) []string {
	return distinct(vs, func(v podapi.Variant) string { return v.Color })
}

// Sizes returns the distinct sizes of vs in SizeOrder.
func Sizes(vs []podapi.Variant) []string {
	sizes := distinct(vs, func(v podapi.Variant) string { return v.Size })
	SortSizes(sizes)
	return sizes
}

// SortSizes sorts sizes in place.
func SortSizes(sizes []string) {
	slices.SortStableFunc(sizes, compareSizes)
}

func compareSizes(a, b string) int {
	ai, bi := slices.Index(SizeOrder, a), slices.Index(SizeOrder, b)
	switch {
	case ai < 0 && bi < 0:
		return cmp.Compare(a, b)
	case ai < 0:
		return 1
	case bi < 0:
		return -1
	}
	return cmp.Compare(ai, bi)
}

// Filter returns the variants whose color is in colors and size in sizes,
// in catalog order.
func Filter(vs []podapi.Variant, colors, sizes []string) []podapi.Variant {
	var out []podapi.Variant
	for _, v := range vs {
		if slices.Contains(colors, v.Color) && slices.Contains(sizes, v.Size) {
			out = append(out, v)
		}
	}
	return out
}

// FirstOfColor returns the first variant of color, or nil.
func FirstOfColor(vs []podapi.Variant, color string) *podapi.Variant {
	for i := range vs {
		if vs[i].Color == color {
			return &vs[i]
		}
	}
	return nil
}

func distinct(vs []podapi.Variant, key func(podapi.Variant) string) []string {
	var out []string
	for _, v := range vs {
		if k := key(v); !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}
