// Package pipeline submits a finished placement as a shop product.
//
// Submission runs four stages against the print-on-demand backend:
//
//  1. Print file: render the artwork at print resolution (cached by input)
//  2. Upload: store the print file and obtain its URL
//  3. Mockups: one mockup per selected, available color
//  4. Product: create the shop product, or update it in edit mode
//
// Only the last stage is allowed to fail the submission. A print file that
// cannot be rendered or uploaded is logged and the product is sent with a
// null printFileUrl; a color whose mockup fails is left out of colorMockups.
//
// # Usage
//
//	runner := pipeline.NewRunner(api, cache, nil, logger)
//	res, err := runner.Submit(ctx, pipeline.Options{
//	    Title:      "Sunset Tee",
//	    Product:    product,
//	    Region:     region,
//	    Transform:  &transform,
//	    Artwork:    img,
//	    ArtworkURL: uploadedURL,
//	    Variants:   selection.Variants(),
//	})
package pipeline

import (
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/region"
)

// Submission modes, as reported to hooks and logs.
const (
	ModeCreate = "create"
	ModeUpdate = "update"
)

// Options contains everything one submission needs.
type Options struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Product is the base product being decorated.
	Product *podapi.Product `json:"-"`

	// Region and Transform describe the placement. Artwork is the decoded
	// image; without it no print file is produced.
	Region    region.Region      `json:"region"`
	Transform *artwork.Transform `json:"transform,omitempty"`
	Artwork   image.Image        `json:"-"`

	// ArtworkData is the encoded artwork, used to key the print-file
	// cache. When empty the ArtworkURL is hashed instead.
	ArtworkData []byte `json:"-"`
	ArtworkURL  string `json:"artwork_url"`

	Variants     []podapi.Variant    `json:"variants"`
	Availability podapi.Availability `json:"availability,omitempty"`
	PrimaryColor string              `json:"primary_color,omitempty"`

	// EditProductID switches the final stage from create to update.
	EditProductID region.ID `json:"edit_product_id,omitempty"`

	Export        export.Options `json:"export"`
	SkipPrintFile bool           `json:"skip_print_file,omitempty"`
	SkipMockups   bool           `json:"skip_mockups,omitempty"`
	Refresh       bool           `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Mode reports whether the submission creates or updates.
func (o *Options) Mode() string {
	if o.EditProductID != "" {
		return ModeUpdate
	}
	return ModeCreate
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		return errors.New(errors.ErrCodeInvalidInput, "product title is required")
	}
	if o.Product == nil {
		return errors.New(errors.ErrCodeInvalidInput, "base product is required")
	}
	if o.ArtworkURL == "" {
		return errors.New(errors.ErrCodeNoArtwork, "upload and place an artwork before submitting")
	}
	if len(o.Variants) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "select at least one variant")
	}
	if err := o.validatePlacement(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// validatePlacement checks the subset of options a print file needs.
func (o *Options) validatePlacement() error {
	if o.Transform == nil {
		return errors.New(errors.ErrCodeNoArtwork, "no artwork placed")
	}
	if err := o.Transform.Validate(); err != nil {
		return err
	}
	return o.Export.ValidateAndSetDefaults()
}

// Result contains the outcome of a submission.
type Result struct {
	Mode    string
	Product *podapi.ProductResult
	Request podapi.ProductRequest

	// PrintFile is nil when the print file was skipped or failed.
	PrintFile    *export.Result
	PrintFileURL string

	// Mockups maps color to mockup URL. Failed lists colors whose mockup
	// could not be generated; Unavailable lists colors skipped outright.
	Mockups     map[string]string
	Failed      []string
	Unavailable []string

	Warnings []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains per-stage timings.
type Stats struct {
	ExportTime time.Duration
	UploadTime time.Duration
	MockupTime time.Duration
	SubmitTime time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	PrintFileHit bool
}

func (r *Result) warn(logger *log.Logger, msg string, err error) {
	logger.Warn(msg, "err", err)
	r.Warnings = append(r.Warnings, msg+": "+errors.UserMessage(err))
}
