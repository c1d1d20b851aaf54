package podapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/artfit/artfit/pkg/buildinfo"
	"github.com/artfit/artfit/pkg/cache"
	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/integrations"
	"github.com/artfit/artfit/pkg/region"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:3000"

// Client talks to the print-on-demand backend on behalf of one shop.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client authenticated with shopToken. ttl is the
// catalog cache lifetime; zero means [cache.TTLCatalog]. Cache keys are
// scoped to the token so shops never see each other's catalog.
func NewClient(baseURL, shopToken string, c cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if ttl <= 0 {
		ttl = cache.TTLCatalog
	}
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	if shopToken != "" {
		headers["Authorization"] = "Bearer " + shopToken
	}
	ic := integrations.NewClient(c, "pod", ttl, headers)
	ic.SetKeyer(cache.NewScopedKeyer(nil, "shop:"+cache.Hash([]byte(shopToken))[:12]+":"))
	return &Client{Client: ic, baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(parts ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// GetProducts lists the catalog.
func (c *Client) GetProducts(ctx context.Context, refresh bool) ([]Product, error) {
	var list productList
	err := c.Cached(ctx, "products", refresh, &list, func() error {
		return c.Get(ctx, c.url("api", "products"), &list)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetProduct fetches one base product.
func (c *Client) GetProduct(ctx context.Context, id region.ID, refresh bool) (*Product, error) {
	var p Product
	err := c.Cached(ctx, "product:"+id.String(), refresh, &p, func() error {
		return c.Get(ctx, c.url("api", "products", id.String()), &p)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", err, id)
		}
		return nil, err
	}
	return &p, nil
}

// FindProduct returns the catalog product with id, looking in the cached
// list first.
func (c *Client) FindProduct(ctx context.Context, id region.ID) (*Product, error) {
	if products, err := c.GetProducts(ctx, false); err == nil {
		for i := range products {
			if products[i].ID == id {
				return &products[i], nil
			}
		}
	}
	return c.GetProduct(ctx, id, false)
}

// GetColorAvailability reports which colors of a product can be ordered.
func (c *Client) GetColorAvailability(ctx context.Context, productID region.ID, refresh bool) (Availability, error) {
	var resp availabilityResponse
	err := c.CachedTTL(ctx, "availability:"+productID.String(), cache.TTLAvailability, refresh, &resp, func() error {
		return c.Get(ctx, c.url("api", "products", productID.String(), "color-availability"), &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.ColorAvailability == nil {
		resp.ColorAvailability = Availability{}
	}
	return resp.ColorAvailability, nil
}

// UploadArtwork stores an image and returns where it lives.
func (c *Client) UploadArtwork(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	if err := errs.ValidateFilename(filename); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "upload %s: empty file", filename)
	}
	var res UploadResult
	part := integrations.FilePart{Field: "file", Filename: filename, ContentType: contentType, Data: data}
	if err := c.PostMultipart(ctx, c.url("api", "upload", "artwork"), part, nil, &res); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	if res.Location() == "" {
		return nil, fmt.Errorf("upload %s: %w: response carries no URL", filename, integrations.ErrNetwork)
	}
	return &res, nil
}

// GenerateMockup renders the artwork onto one variant.
func (c *Client) GenerateMockup(ctx context.Context, req MockupRequest) (*MockupResult, error) {
	var res MockupResult
	if err := c.PostJSON(ctx, c.url("api", "mockups", "generate"), req, &res); err != nil {
		return nil, err
	}
	if res.MockupURL == "" {
		return nil, fmt.Errorf("%w: mockup response carries no URL", integrations.ErrNetwork)
	}
	return &res, nil
}

// CreateProduct creates a shop product.
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*ProductResult, error) {
	var res ProductResult
	if err := c.PostJSON(ctx, c.url("api", "shopify", "products"), req, &res); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &res, nil
}

// UpdateProduct replaces an existing shop product.
func (c *Client) UpdateProduct(ctx context.Context, id region.ID, req ProductRequest) (*ProductResult, error) {
	var res ProductResult
	if err := c.PutJSON(ctx, c.url("api", "shopify", "products", id.String()), req, &res); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return &res, nil
}

// GetClientProduct loads a product created earlier, for editing. It is
// never cached.
func (c *Client) GetClientProduct(ctx context.Context, id region.ID) (*ClientProduct, error) {
	var p ClientProduct
	if err := c.Get(ctx, c.url("api", "admin", "client-products", id.String()), &p); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: client product %s", err, id)
		}
		return nil, err
	}
	return &p, nil
}
