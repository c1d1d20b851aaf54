package artwork

import (
	"bytes"
	"encoding/json"

	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

// Config is the placement as persisted with a product and sent to the
// mockup service. X and Y are relative to the print region origin; Width
// and Height are the native image size.
type Config struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Scale         float64 `json:"scale"`
	Rotation      float64 `json:"rotation"`
	DisplayWidth  float64 `json:"displayWidth,omitempty"`
	DisplayHeight float64 `json:"displayHeight,omitempty"`
	ArtworkURL    string  `json:"artworkUrl,omitempty"`
	PrintFileURL  string  `json:"printFileUrl,omitempty"`
}

// ConfigOf captures t relative to r.
func ConfigOf(t Transform, r region.Region) Config {
	x, y := t.RelativePosition(r)
	return Config{
		X:             x,
		Y:             y,
		Width:         t.OriginalWidth,
		Height:        t.OriginalHeight,
		Scale:         t.CurrentScale(),
		Rotation:      t.Rotation,
		DisplayWidth:  t.DisplayWidth,
		DisplayHeight: t.DisplayHeight,
	}
}

// DecodeConfig parses an artwork_config value. Product records store it
// either as a JSON object or as a JSON string holding that object.
func DecodeConfig(data []byte) (*Config, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "artwork config string")
		}
		if inner == "" {
			return nil, nil
		}
		data = []byte(inner)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "artwork config")
	}
	return &cfg, nil
}

// ImageURL is the image to load when editing: the print file if one was
// produced, otherwise the uploaded artwork.
func (c Config) ImageURL() string {
	if c.PrintFileURL != "" {
		return c.PrintFileURL
	}
	return c.ArtworkURL
}

// Rehydrate rebuilds a transform from a stored config against a freshly
// resolved region. imgW and imgH are the loaded image's size; they fill in
// when the config did not record one.
func Rehydrate(c Config, r region.Region, imgW, imgH float64) (Transform, error) {
	if err := r.Validate(); err != nil {
		return Transform{}, err
	}
	ow, oh := c.Width, c.Height
	if ow <= 0 {
		ow = imgW
	}
	if oh <= 0 {
		oh = imgH
	}
	if err := errors.ValidatePositive("image width", ow); err != nil {
		return Transform{}, err
	}
	if err := errors.ValidatePositive("image height", oh); err != nil {
		return Transform{}, err
	}

	dw, dh := c.DisplayWidth, c.DisplayHeight
	if dw <= 0 || dh <= 0 {
		dw, dh = DisplaySize(r, ow, oh)
	}

	t := Transform{
		ScaleX:         dw / ow,
		ScaleY:         dh / oh,
		Rotation:       c.Rotation,
		OriginalWidth:  ow,
		OriginalHeight: oh,
		DisplayWidth:   dw,
		DisplayHeight:  dh,
	}
	if c.Scale > 0 {
		t = t.WithScale(c.Scale)
	}
	t = t.AtRelative(r, c.X, c.Y)
	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	return t, nil
}
