// Package scene adapts products and bands to the geo-coding transfer between rasters.
package scene

import (
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/raster"
)

// Scene is a raster-bearing entity owning a geo-coding
type Scene interface {
	Name() string
	Width() int
	Height() int
	// Product returns the product holding the rasters of the scene (nil for an unattached band)
	Product() *raster.Product
	GeoCoding() georef.GeoCoding
	SetGeoCoding(georef.GeoCoding)
}

type productScene struct {
	p *raster.Product
}

// ForProduct returns the scene of a product
func ForProduct(p *raster.Product) Scene {
	return productScene{p: p}
}

func (s productScene) Name() string                     { return s.p.Name() }
func (s productScene) Width() int                       { return s.p.Width() }
func (s productScene) Height() int                      { return s.p.Height() }
func (s productScene) Product() *raster.Product         { return s.p }
func (s productScene) GeoCoding() georef.GeoCoding      { return s.p.GeoCoding() }
func (s productScene) SetGeoCoding(gc georef.GeoCoding) { s.p.SetGeoCoding(gc) }

type bandScene struct {
	b *raster.Band
}

// ForBand returns the scene of a band. A band without geo-coding uses the one of its product.
func ForBand(b *raster.Band) Scene {
	return bandScene{b: b}
}

func (s bandScene) Name() string                     { return s.b.Name() }
func (s bandScene) Width() int                       { return s.b.Width() }
func (s bandScene) Height() int                      { return s.b.Height() }
func (s bandScene) Product() *raster.Product         { return s.b.Product() }
func (s bandScene) GeoCoding() georef.GeoCoding      { return s.b.GeoCoding() }
func (s bandScene) SetGeoCoding(gc georef.GeoCoding) { s.b.SetGeoCoding(gc) }
