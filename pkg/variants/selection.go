package variants

import (
	"slices"

	"github.com/artfit/artfit/pkg/integrations/podapi"
)

// Selection is the set of colors and sizes chosen for a product.
// It is not safe for concurrent use.
type Selection struct {
	all     []podapi.Variant
	avail   podapi.Availability
	colors  []string
	sizes   []string
	primary string
}

// NewSelection starts with the first available color and every size.
func NewSelection(all []podapi.Variant, avail podapi.Availability) *Selection {
	s := &Selection{all: all, avail: avail, sizes: Sizes(all)}
	for _, c := range Colors(all) {
		if avail.Available(c) {
			s.colors = []string{c}
			s.primary = c
			break
		}
	}
	return s
}

// Restore rebuilds a selection from previously saved variants. The saved
// colors and sizes are taken as is; the first color becomes primary unless
// primary names another saved, available color.
func Restore(all, saved []podapi.Variant, avail podapi.Availability, primary string) *Selection {
	s := &Selection{all: all, avail: avail}
	for _, c := range Colors(saved) {
		if avail.Available(c) {
			s.colors = append(s.colors, c)
		}
	}
	s.sizes = Sizes(saved)
	s.fixPrimary()
	if primary != "" {
		s.SetPrimary(primary)
	}
	return s
}

// Available reports whether color may be selected.
func (s *Selection) Available(color string) bool { return s.avail.Available(color) }

// SetAvailability replaces the availability map and drops selected colors
// that became unavailable.
func (s *Selection) SetAvailability(a podapi.Availability) {
	s.avail = a
	s.colors = slices.DeleteFunc(s.colors, func(c string) bool { return !a.Available(c) })
	s.fixPrimary()
}

// ToggleColor selects or deselects color. It reports false and changes
// nothing if color is unavailable.
func (s *Selection) ToggleColor(color string) bool {
	if !s.avail.Available(color) {
		return false
	}
	if i := slices.Index(s.colors, color); i >= 0 {
		s.colors = slices.Delete(s.colors, i, i+1)
	} else {
		s.colors = append(s.colors, color)
	}
	s.fixPrimary()
	return true
}

// ToggleSize selects or deselects size.
func (s *Selection) ToggleSize(size string) {
	if i := slices.Index(s.sizes, size); i >= 0 {
		s.sizes = slices.Delete(s.sizes, i, i+1)
		return
	}
	s.sizes = append(s.sizes, size)
	SortSizes(s.sizes)
}

// SetPrimary makes color primary. Only selected, available colors qualify.
func (s *Selection) SetPrimary(color string) bool {
	if !slices.Contains(s.colors, color) || !s.avail.Available(color) {
		return false
	}
	s.primary = color
	return true
}

// SelectAllColors selects every available color.
func (s *Selection) SelectAllColors() {
	s.colors = slices.DeleteFunc(Colors(s.all), func(c string) bool { return !s.avail.Available(c) })
	s.fixPrimary()
}

// ClearColors deselects every color.
func (s *Selection) ClearColors() {
	s.colors = nil
	s.primary = ""
}

// fixPrimary keeps primary among the selected colors: the first selected
// color when the old one is gone, empty when nothing is selected.
func (s *Selection) fixPrimary() {
	switch {
	case len(s.colors) == 0:
		s.primary = ""
	case !slices.Contains(s.colors, s.primary):
		s.primary = s.colors[0]
	}
}

// Colors returns the selected colors in selection order.
func (s *Selection) Colors() []string { return slices.Clone(s.colors) }

// Sizes returns the selected sizes in SizeOrder.
func (s *Selection) Sizes() []string { return slices.Clone(s.sizes) }

// Primary returns the primary color, or "" when no color is selected.
func (s *Selection) Primary() string { return s.primary }

// Variants returns the selected variants.
func (s *Selection) Variants() []podapi.Variant {
	return Filter(s.all, s.colors, s.sizes)
}

// MockupColors returns the distinct colors of the selected variants that
// are available, each with the first selected variant of that color.
func (s *Selection) MockupColors() []podapi.Variant {
	selected := s.Variants()
	var out []podapi.Variant
	for _, c := range Colors(selected) {
		if !s.avail.Available(c) {
			continue
		}
		out = append(out, *FirstOfColor(selected, c))
	}
	return out
}

// DisplayVariant picks the variant to show in the editor: hover color,
// then primary, then the first selected color, then the first variant.
func (s *Selection) DisplayVariant(hover string) *podapi.Variant {
	for _, c := range []string{hover, s.primary, first(s.colors)} {
		if c == "" {
			continue
		}
		if v := FirstOfColor(s.all, c); v != nil {
			return v
		}
	}
	if len(s.all) > 0 {
		return &s.all[0]
	}
	return nil
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
