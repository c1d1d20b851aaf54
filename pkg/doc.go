// Package pkg provides the core libraries for artfit, a print-on-demand
// artwork placement engine.
//
// # Overview
//
// artfit takes a catalog product's print area, places an uploaded artwork
// on a fixed editing canvas, reports whether the artwork would be cropped,
// and derives the 300 DPI print file, mockups and shop product from that
// placement. The pkg directory is organized into four areas:
//
//  1. Geometry - [region], [units], [artwork], [bounds], [assist], [tracker]
//  2. Output - [export], [preview], [variants]
//  3. Orchestration - [session], [pipeline], [server]
//  4. Infrastructure - [cache], [config], [errors], [httputil],
//     [integrations], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	Catalog product (podapi)
//	         ↓
//	    [region] package (resolve the print area in canvas pixels)
//	         ↓
//	    [artwork] + [tracker] packages (place, move, scale, rotate)
//	         ↓
//	    [bounds] package (inside / outside, per edge)
//	         ↓
//	    [export] package (print file at the product's physical size)
//	         ↓
//	    [pipeline] package (upload, mockups, create or update product)
//
// # Quick Start
//
// Place an artwork and render its print file:
//
//	r, _ := region.Resolve(raw)
//	tr, _ := tracker.New(r, bounds.ModeAxisAligned)
//	t, _ := artwork.New(r, 3000, 2000)
//	tr.SetArtwork(t)
//	if st := tr.State(); st.Outside {
//	    // warn: the print file will be cropped at st.Edges
//	}
//	res, _ := export.Export(ctx, r, &t, img, export.Options{})
//
// # Main Packages
//
// [region] resolves the many shapes of catalog print area data (positions,
// pixel extents, inches and DPI) into one canvas rectangle.
//
// [tracker] owns the transform while it is edited. Every manipulation goes
// through it, so the bounds state is always recomputed from the latest
// geometry.
//
// [session] wraps a tracker with the asynchronous image loads of an
// editing session. Stale loads are discarded by ticket.
//
// [pipeline] is built around a Runner that holds the cache, the catalog
// client and a logger. Each step reports whether it was served from cache.
//
// [server] exposes sessions over HTTP for browser configurators.
//
// # Error Handling
//
// Errors carry a [errors.Code]. Use errors.Is(err, code) to branch and
// errors.UserMessage(err) for display.
package pkg
