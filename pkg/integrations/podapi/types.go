package podapi

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/region"
)

// Variant is one purchasable color/size combination of a base product.
type Variant struct {
	ID            region.ID `json:"id"`
	Color         string    `json:"color"`
	Size          string    `json:"size"`
	SKU           string    `json:"sku,omitempty"`
	PriceModifier float64   `json:"price_modifier,omitempty"`
}

// Image is a product photo for one color and view.
type Image struct {
	Color    string `json:"color"`
	View     string `json:"view"`
	ImageURL string `json:"image_url"`
}

// Product is a base product from the catalog.
type Product struct {
	ID          region.ID             `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	BasePrice   float64               `json:"basePrice,omitempty"`
	Variants    []Variant             `json:"variants"`
	PrintAreas  map[string]region.Raw `json:"printAreas"`
	Images      []Image               `json:"images,omitempty"`
}

// Views returns the print area names in sorted order.
func (p *Product) Views() []string {
	views := make([]string, 0, len(p.PrintAreas))
	for v := range p.PrintAreas {
		views = append(views, v)
	}
	slices.Sort(views)
	return views
}

// DefaultView is "front" when the product has it, else the first view.
func (p *Product) DefaultView() string {
	if _, ok := p.PrintAreas["front"]; ok {
		return "front"
	}
	if views := p.Views(); len(views) > 0 {
		return views[0]
	}
	return ""
}

// Region resolves the print area for view.
func (p *Product) Region(view string) (region.Region, error) {
	return region.ResolveView(p.PrintAreas, view)
}

// ImageURL returns the photo for color and view, or "".
func (p *Product) ImageURL(color, view string) string {
	for _, img := range p.Images {
		if img.Color == color && img.View == view {
			return img.ImageURL
		}
	}
	return ""
}

// productList accepts either a bare array or {"products": [...]}.
type productList []Product

func (l *productList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Products []Product `json:"products"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		*l = wrapped.Products
		return nil
	}
	return json.Unmarshal(data, (*[]Product)(l))
}

// Availability maps color names to whether they can be ordered.
type Availability map[string]bool

// Available reports whether color can be ordered. Colors the backend did
// not mention are assumed available.
func (a Availability) Available(color string) bool {
	ok, listed := a[color]
	return !listed || ok
}

type availabilityResponse struct {
	ColorAvailability Availability `json:"colorAvailability"`
}

// UploadResult is the backend's answer to an upload.
type UploadResult struct {
	ArtworkURL string `json:"artworkUrl,omitempty"`
	PublicID   string `json:"publicId,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Location returns the stored file's URL.
func (u UploadResult) Location() string {
	if u.ArtworkURL != "" {
		return u.ArtworkURL
	}
	return u.URL
}

// MockupRequest asks for a mockup of one variant.
type MockupRequest struct {
	ProductID     region.ID      `json:"productId"`
	VariantID     region.ID      `json:"variantId"`
	PrintAreaID   region.ID      `json:"printAreaId"`
	ArtworkURL    string         `json:"artworkUrl"`
	ArtworkConfig artwork.Config `json:"artworkConfig"`
}

// MockupResult carries the rendered mockup.
type MockupResult struct {
	MockupURL string `json:"mockupUrl"`
}

// ProductRequest creates or updates a shop product.
type ProductRequest struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	BaseProductID    region.ID         `json:"baseProductId"`
	SelectedVariants []Variant         `json:"selectedVariants"`
	ColorMockups     map[string]string `json:"colorMockups"`
	PrimaryColor     *string           `json:"primaryColor"`
	ArtworkConfig    artwork.Config    `json:"artworkConfig"`
	PrintFileURL     *string           `json:"printFileUrl"`
	BasePrice        float64           `json:"basePrice"`
}

// ShopProduct identifies the product created in the shop.
type ShopProduct struct {
	ID    region.ID `json:"id"`
	Title string    `json:"title,omitempty"`
}

// ProductResult is the backend's answer to a create or update.
type ProductResult struct {
	Message     string      `json:"message,omitempty"`
	Note        string      `json:"note,omitempty"`
	ShopProduct ShopProduct `json:"shopifyProduct"`
}

// ClientProduct is a previously created product, loaded for editing.
type ClientProduct struct {
	ID            region.ID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	BaseProductID region.ID       `json:"base_product_id,omitempty"`
	PrintFileURL  string          `json:"print_file_url,omitempty"`
	ArtworkConfig json.RawMessage `json:"artwork_config,omitempty"`
}

// Config decodes the stored artwork config, which may be nil. The product's
// print file URL fills in when the config does not carry one.
func (p *ClientProduct) Config() (*artwork.Config, error) {
	cfg, err := artwork.DecodeConfig(p.ArtworkConfig)
	if err != nil || cfg == nil {
		return cfg, err
	}
	if cfg.PrintFileURL == "" {
		cfg.PrintFileURL = p.PrintFileURL
	}
	return cfg, nil
}
