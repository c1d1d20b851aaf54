package bounds

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/region"
)

func square(left, top, size float64) artwork.Transform {
	return artwork.Transform{Left: left, Top: top, ScaleX: 1, ScaleY: 1, OriginalWidth: size, OriginalHeight: size}
}

func TestIsOutside(t *testing.T) {
	r := region.Region{X: 0, Y: 0, Width: 250, Height: 500}

	tests := []struct {
		name string
		t    artwork.Transform
		want bool
	}{
		{"right edge crossed", square(100, 100, 200), true},
		{"inside", square(10, 10, 200), false},
		{"touching edges", square(0, 0, 250), false},
		{"left", square(-1, 10, 10), true},
		{"top", square(10, -0.5, 10), true},
		{"bottom", square(10, 495, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOutside(tt.t, r); got != tt.want {
				t.Errorf("IsOutside = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckEdges(t *testing.T) {
	r := region.Region{X: 10, Y: 10, Width: 100, Height: 100}
	s := Check(square(0, 0, 200), r, ModeAxisAligned)
	if s.Edges != EdgeLeft|EdgeTop|EdgeRight|EdgeBottom {
		t.Errorf("Edges = %v, want all four", s.Edges)
	}
	if !s.Horizontal() || !s.Vertical() {
		t.Error("expected both axes")
	}

	s = Check(square(100, 20, 20), r, ModeAxisAligned)
	if s.Edges != EdgeRight || s.Vertical() {
		t.Errorf("Edges = %v, want right only", s.Edges)
	}
}

func TestRotationGap(t *testing.T) {
	r := region.Region{Width: 100, Height: 100}
	tr := square(10, 10, 80)
	tr.Rotation = 45

	if IsOutside(tr, r) {
		t.Error("axis-aligned check should ignore rotation")
	}
	if s := Check(tr, r, ModeRotated); !s.Outside {
		t.Error("rotated check should detect the corners crossing the region")
	}

	tr.Rotation = 0
	if Check(tr, r, ModeRotated).Outside {
		t.Error("unrotated artwork should be inside in rotated mode")
	}
}

func TestStateJSON(t *testing.T) {
	b, err := json.Marshal(State{Outside: true, Edges: EdgeTop | EdgeRight})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"outside":true,"edges":["top","right"]}` {
		t.Errorf("json = %s", b)
	}
	b, _ = json.Marshal(State{})
	if string(b) != `{"outside":false,"edges":[]}` {
		t.Errorf("json = %s", b)
	}
}

func ExampleCheck() {
	r := region.Region{Width: 250, Height: 500}
	a := artwork.Transform{Left: 100, Top: 100, ScaleX: 1, ScaleY: 1, OriginalWidth: 200, OriginalHeight: 200}
	fmt.Println(Check(a, r, ModeAxisAligned))
	// Output: outside (right)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAxisAligned, false},
		{"axis-aligned", ModeAxisAligned, false},
		{"rotated", ModeRotated, false},
		{"diagonal", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
