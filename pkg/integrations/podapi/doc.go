// Package podapi is a client for the print-on-demand backend: product
// catalog, color availability, artwork upload, mockup generation and shop
// product creation.
//
// Catalog reads are cached per shop token and retried on transient
// failures. Uploads, mockups and product writes are sent once; a failed
// write surfaces immediately so the caller can decide whether it is fatal.
//
//	c := podapi.NewClient("https://pod.example.com", token, cache, 0)
//	products, err := c.GetProducts(ctx, false)
package podapi
