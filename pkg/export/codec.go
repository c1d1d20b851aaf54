package export

import (
	"bytes"
	"image"
	"image/png"

	"github.com/HugoSmits86/nativewebp"

	// Artwork decoders.
	_ "image/gif"
	_ "image/jpeg"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/artfit/artfit/pkg/errors"
)

// MaxSourcePixels bounds decoded artwork.
const MaxSourcePixels = 200 << 20

// DecodeImage decodes uploaded artwork. PNG, JPEG, GIF, BMP, TIFF, WebP
// and TGA are recognized. It returns the image and the format name.
func DecodeImage(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeLoadFailed, err, "unrecognized artwork image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", errors.New(errors.ErrCodeLoadFailed, "artwork image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, "", errors.New(errors.ErrCodeLoadFailed, "artwork image %dx%d is too large", cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeLoadFailed, err, "decode %s artwork", format)
	}
	return img, format, nil
}

func encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatWebP:
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
