// Package integrations provides the HTTP plumbing for external API clients.
//
// # Client Pattern
//
// An API client embeds [Client] and adds typed methods:
//
//	type Client struct {
//	    *integrations.Client
//	    baseURL string
//	}
//
//	func (c *Client) GetProduct(ctx context.Context, id string, refresh bool) (*Product, error) {
//	    var p Product
//	    err := c.Cached(ctx, "product:"+id, refresh, &p, func() error {
//	        return c.Get(ctx, c.baseURL+"/products/"+id, &p)
//	    })
//	    return &p, err
//	}
//
// Reads go through [Client.Cached], which consults the cache and retries
// transient failures. Writes ([Client.PostJSON], [Client.PutJSON],
// [Client.PostMultipart]) are sent once.
//
// # Errors
//
// Failures wrap one of [ErrNotFound], [ErrUnauthorized] or [ErrNetwork], so
// callers can use errors.Is regardless of the endpoint.
//
// The only client today is [podapi], the print-on-demand backend.
//
// [podapi]: github.com/artfit/artfit/pkg/integrations/podapi
package integrations
