package export

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/image/draw"

	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/units"
)

// Format is an output encoding. Both are lossless.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png" or "webp", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatWebP:
		return f, nil
	case "":
		return FormatPNG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid format %q (must be png or webp)", s)
}

// Ext returns the file extension without a dot.
func (f Format) Ext() string { return string(f) }

// ContentType returns the MIME type.
func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Interpolation names.
const (
	InterpCatmullRom = "catmull-rom"
	InterpBiLinear   = "bilinear"
	InterpNearest    = "nearest"
)

// DefaultInterpolation is used when Options.Interpolation is empty.
const DefaultInterpolation = InterpCatmullRom

// Options configures Export.
type Options struct {
	Format        Format  `json:"format,omitempty" toml:"format"`
	Interpolation string  `json:"interpolation,omitempty" toml:"interpolation"`
	DPI           float64 `json:"dpi,omitempty" toml:"dpi"`

	Logger *log.Logger `json:"-" toml:"-"`
}

// ValidateAndSetDefaults fills in defaults and rejects unknown values.
func (o *Options) ValidateAndSetDefaults() error {
	f, err := ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if o.Interpolation == "" {
		o.Interpolation = DefaultInterpolation
	}
	switch o.Interpolation {
	case InterpCatmullRom, InterpBiLinear, InterpNearest:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid interpolation %q (must be catmull-rom, bilinear or nearest)", o.Interpolation)
	}
	if o.DPI == 0 {
		o.DPI = units.ExportDPI
	}
	if err := errors.ValidatePositive("dpi", o.DPI); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

func (o *Options) interpolator() draw.Interpolator {
	switch o.Interpolation {
	case InterpBiLinear:
		return draw.BiLinear
	case InterpNearest:
		return draw.NearestNeighbor
	}
	return draw.CatmullRom
}
