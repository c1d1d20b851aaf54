package variants

import (
	"fmt"
	"slices"
	"testing"

	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/region"
)

func catalog() []podapi.Variant {
	var vs []podapi.Variant
	id := 0
	for _, c := range []string{"Black", "White", "Red"} {
		for _, s := range []string{"XL", "S", "Youth", "M", "2XL"} {
			id++
			vs = append(vs, podapi.Variant{ID: region.ID(fmt.Sprint(id)), Color: c, Size: s})
		}
	}
	return vs
}

func TestSortSizes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"known", []string{"XL", "XS", "M", "5XL", "S"}, []string{"XS", "S", "M", "XL", "5XL"}},
		{"unknown after known", []string{"Youth", "L", "Adult"}, []string{"L", "Adult", "Youth"}},
		{"only unknown", []string{"b", "a"}, []string{"a", "b"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Clone(tt.in)
			SortSizes(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SortSizes(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorsAndSizes(t *testing.T) {
	vs := catalog()
	if got := Colors(vs); !slices.Equal(got, []string{"Black", "White", "Red"}) {
		t.Errorf("Colors() = %v", got)
	}
	if got := Sizes(vs); !slices.Equal(got, []string{"S", "M", "XL", "2XL", "Youth"}) {
		t.Errorf("Sizes() = %v", got)
	}
}

func TestFilter(t *testing.T) {
	got := Filter(catalog(), []string{"Red", "Black"}, []string{"M"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Color != "Black" || got[1].Color != "Red" {
		t.Errorf("Filter keeps catalog order, got %v then %v", got[0].Color, got[1].Color)
	}
}

func TestNewSelection(t *testing.T) {
	s := NewSelection(catalog(), podapi.Availability{"Black": false})
	if got := s.Colors(); !slices.Equal(got, []string{"White"}) {
		t.Errorf("Colors() = %v, want first available color", got)
	}
	if s.Primary() != "White" {
		t.Errorf("Primary() = %q", s.Primary())
	}
	if len(s.Sizes()) != 5 {
		t.Errorf("all sizes selected by default, got %v", s.Sizes())
	}
	if len(s.Variants()) != 5 {
		t.Errorf("Variants() = %d, want 5", len(s.Variants()))
	}
}

func TestToggleColorRules(t *testing.T) {
	s := NewSelection(catalog(), podapi.Availability{"Red": false})

	if s.ToggleColor("Red") {
		t.Error("unavailable color should not toggle")
	}
	if slices.Contains(s.Colors(), "Red") {
		t.Error("Red selected")
	}

	s.ToggleColor("White")
	if s.Primary() != "Black" {
		t.Errorf("adding a color keeps primary, got %q", s.Primary())
	}

	s.ToggleColor("Black")
	if s.Primary() != "White" {
		t.Errorf("deselecting primary moves it to the first remaining color, got %q", s.Primary())
	}

	s.ToggleColor("White")
	if s.Primary() != "" || len(s.Variants()) != 0 {
		t.Errorf("no colors: primary = %q, variants = %d", s.Primary(), len(s.Variants()))
	}

	s.ToggleColor("White")
	if s.Primary() != "White" {
		t.Errorf("first selected color becomes primary, got %q", s.Primary())
	}
}

func TestSetPrimary(t *testing.T) {
	s := NewSelection(catalog(), nil)
	if s.SetPrimary("White") {
		t.Error("unselected color cannot become primary")
	}
	s.ToggleColor("White")
	if !s.SetPrimary("White") || s.Primary() != "White" {
		t.Errorf("Primary() = %q", s.Primary())
	}
}

func TestSelectAllAndClear(t *testing.T) {
	s := NewSelection(catalog(), podapi.Availability{"Black": false})
	s.SelectAllColors()
	if got := s.Colors(); !slices.Equal(got, []string{"White", "Red"}) {
		t.Errorf("Colors() = %v", got)
	}
	s.ClearColors()
	if len(s.Colors()) != 0 || s.Primary() != "" {
		t.Errorf("after clear: %v %q", s.Colors(), s.Primary())
	}
}

func TestToggleSize(t *testing.T) {
	s := NewSelection(catalog(), nil)
	s.ToggleSize("M")
	s.ToggleSize("Youth")
	if got := s.Sizes(); !slices.Equal(got, []string{"S", "XL", "2XL"}) {
		t.Errorf("Sizes() = %v", got)
	}
	s.ToggleSize("M")
	if got := s.Sizes(); !slices.Equal(got, []string{"S", "M", "XL", "2XL"}) {
		t.Errorf("re-added size keeps order, got %v", got)
	}
}

func TestSetAvailabilityDropsColors(t *testing.T) {
	s := NewSelection(catalog(), nil)
	s.ToggleColor("White")
	s.SetAvailability(podapi.Availability{"Black": false})
	if got := s.Colors(); !slices.Equal(got, []string{"White"}) {
		t.Errorf("Colors() = %v", got)
	}
	if s.Primary() != "White" {
		t.Errorf("Primary() = %q", s.Primary())
	}
}

func TestMockupColors(t *testing.T) {
	s := NewSelection(catalog(), nil)
	s.ToggleColor("Red")
	s.ToggleSize("S")

	got := s.MockupColors()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Color != "Black" || got[0].Size != "XL" {
		t.Errorf("first mockup variant = %+v, want Black XL", got[0])
	}
	if got[1].Color != "Red" {
		t.Errorf("second mockup color = %q", got[1].Color)
	}
}

func TestRestore(t *testing.T) {
	saved := []podapi.Variant{
		{ID: "16", Color: "Red", Size: "M"},
		{ID: "4", Color: "Black", Size: "M"},
		{ID: "1", Color: "Black", Size: "XL"},
	}
	s := Restore(catalog(), saved, nil, "Black")
	if got := s.Colors(); !slices.Equal(got, []string{"Red", "Black"}) {
		t.Errorf("Colors() = %v", got)
	}
	if got := s.Sizes(); !slices.Equal(got, []string{"M", "XL"}) {
		t.Errorf("Sizes() = %v", got)
	}
	if s.Primary() != "Black" {
		t.Errorf("Primary() = %q", s.Primary())
	}

	s = Restore(catalog(), saved, podapi.Availability{"Red": false}, "")
	if s.Primary() != "Black" {
		t.Errorf("unavailable saved color should be dropped, primary = %q", s.Primary())
	}
}

func TestDisplayVariant(t *testing.T) {
	s := NewSelection(catalog(), nil)
	s.ToggleColor("White")

	tests := []struct {
		hover string
		want  string
	}{
		{"Red", "Red"},
		{"", "Black"},
		{"Purple", "Black"},
	}
	for _, tt := range tests {
		t.Run(tt.hover, func(t *testing.T) {
			if v := s.DisplayVariant(tt.hover); v == nil || v.Color != tt.want {
				t.Errorf("DisplayVariant(%q) = %+v, want %s", tt.hover, v, tt.want)
			}
		})
	}

	if v := NewSelection(nil, nil).DisplayVariant(""); v != nil {
		t.Errorf("empty catalog: %+v", v)
	}
}

func ExampleSortSizes() {
	sizes := []string{"2XL", "Youth", "M", "XS"}
	SortSizes(sizes)
	fmt.Println(sizes)
	// Output: [XS M 2XL Youth]
}
