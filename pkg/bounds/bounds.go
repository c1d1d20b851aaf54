// Package bounds decides whether placed artwork would be cropped by its
// print region.
//
// The default check compares the artwork's unrotated box with the region.
// A rotated artwork can therefore poke out of the region without being
// reported. [ModeRotated] measures the rotated box instead; it is opt-in so
// that callers who rely on the established behavior see no change.
package bounds

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

// Mode selects which artwork box is compared with the region.
type Mode int

const (
	// ModeAxisAligned ignores rotation.
	ModeAxisAligned Mode = iota
	// ModeRotated uses the box enclosing the rotated artwork.
	ModeRotated
)

func (m Mode) String() string {
	if m == ModeRotated {
		return "rotated"
	}
	return "axis-aligned"
}

// ParseMode parses "axis-aligned" (or "") and "rotated".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "axis-aligned", "axis":
		return ModeAxisAligned, nil
	case "rotated":
		return ModeRotated, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown bounds mode %q (want axis-aligned or rotated)", s)
}

// Edge is a set of region edges the artwork crosses.
type Edge uint8

const (
	EdgeLeft Edge = 1 << iota
	EdgeTop
	EdgeRight
	EdgeBottom
)

var edgeNames = []struct {
	e    Edge
	name string
}{{EdgeLeft, "left"}, {EdgeTop, "top"}, {EdgeRight, "right"}, {EdgeBottom, "bottom"}}

// Names lists the edges in e in left, top, right, bottom order.
func (e Edge) Names() []string {
	var out []string
	for _, n := range edgeNames {
		if e&n.e != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (e Edge) String() string {
	if e == 0 {
		return "none"
	}
	return strings.Join(e.Names(), ",")
}

// MarshalJSON encodes the set as a list of edge names.
func (e Edge) MarshalJSON() ([]byte, error) {
	names := e.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// State is the outcome of one check. It is derived on every change and
// never stored.
type State struct {
	Outside bool `json:"outside"`
	Edges   Edge `json:"edges"`
}

func (s State) String() string {
	if !s.Outside {
		return "inside"
	}
	return fmt.Sprintf("outside (%s)", s.Edges)
}

// IsOutside reports whether the unrotated artwork box crosses any edge of
// the region.
func IsOutside(t artwork.Transform, r region.Region) bool {
	return Check(t, r, ModeAxisAligned).Outside
}

// Check compares the artwork box selected by m with the region.
func Check(t artwork.Transform, r region.Region, m Mode) State {
	box := t.Box()
	if m == ModeRotated {
		box = t.RotatedBox()
	}
	rb := r.Bounds()

	var e Edge
	if box.Left < rb.Left {
		e |= EdgeLeft
	}
	if box.Top < rb.Top {
		e |= EdgeTop
	}
	if box.Right > rb.Right {
		e |= EdgeRight
	}
	if box.Bottom > rb.Bottom {
		e |= EdgeBottom
	}
	return State{Outside: e != 0, Edges: e}
}

// Horizontal reports whether the left or right edge is crossed.
func (s State) Horizontal() bool { return s.Edges&(EdgeLeft|EdgeRight) != 0 }

// Vertical reports whether the top or bottom edge is crossed.
func (s State) Vertical() bool { return s.Edges&(EdgeTop|EdgeBottom) != 0 }
