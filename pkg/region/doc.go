// Package region resolves a product's printable region.
//
// # Overview
//
// Catalog data describes print areas with heterogeneous fields: some carry
// canvas pixel extents, some only physical inches and a DPI, and position
// fields come in two spellings. [Resolve] turns that raw data into a
// [Region] in canvas pixel space, applying fallback precedence independently
// per axis:
//
//   - Position: x_position, else x, else 0
//   - Extent: width/height in pixels, else inches * DPI (DPI defaults to 300), else 0
//
// A region whose extent resolves to zero on either axis is unusable. Resolve
// reports it with [errors.ErrCodeNoPrintRegion] so that loading artwork,
// drawing the region guide and exporting all refuse to proceed instead of
// working against a zero-size area.
//
// Regions are values: they are immutable once resolved and are resolved
// again whenever the selected product or print view changes.
//
// [errors.ErrCodeNoPrintRegion]: github.com/artfit/artfit/pkg/errors.ErrCodeNoPrintRegion
package region
