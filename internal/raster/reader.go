// Package raster holds the resident raster data consumed by the geo-codings:
// products, their bands and tie-point grids.
package raster

import (
	"context"
	"image"
)

// Reader gives access to the samples of the bands of a raster-bearing entity
type Reader interface {
	// ReadSamples returns the samples of the region of the band, row by row
	ReadSamples(ctx context.Context, band string, region image.Rectangle) ([]float64, error)
	// RasterSize returns the size of the band
	RasterSize(band string) (int, int, error)
}
