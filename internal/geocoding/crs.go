// Package geocoding implements the variants of georef.GeoCoding:
// affine transform to a crs, legacy map projection, polynomials, tie-point grids and per-pixel lat/lon bands.
package geocoding

import (
	"math"

	"github.com/airbusgeo/georef/internal/crs"
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils/affine"
	"github.com/airbusgeo/georef/internal/utils/geomath"
)

// CRSGeoCoding converts pixels to the map coordinates of a crs with an affine transform,
// then map coordinates to lon/lat with the projection of the crs.
type CRSGeoCoding struct {
	imageToMap affine.Affine
	mapToImage affine.Affine
	projection crs.Projection
	width      int
	height     int
	datum      georef.Datum
	crosses    bool
}

// NewCRSGeoCoding creates the geo-coding of a raster of size (width, height)
func NewCRSGeoCoding(imageToMap *affine.Affine, projection crs.Projection, width, height int, datum georef.Datum) (*CRSGeoCoding, error) {
	if imageToMap == nil || !imageToMap.IsInvertible() {
		return nil, georef.NewInvalidArgument("imageToMap", "image to map transform must be invertible")
	}
	if projection == nil {
		return nil, georef.NewInvalidArgument("projection", "projection is required")
	}
	if width <= 0 || height <= 0 {
		return nil, georef.NewInvalidArgument("size", "invalid raster size %dx%d", width, height)
	}
	gc := &CRSGeoCoding{
		imageToMap: *imageToMap,
		mapToImage: *imageToMap.Inverse(),
		projection: projection,
		width:      width,
		height:     height,
		datum:      datum,
	}
	gc.crosses = gc.isCrossingAntimeridian()
	return gc, nil
}

// isCrossingAntimeridian scans the pixel centers along the boundary of the raster
func (gc *CRSGeoCoding) isCrossingAntimeridian() bool {
	xs, ys := geomath.BoundaryCenters(gc.width, gc.height, 1)
	gc.imageToMap.TransformArrays(xs, ys)
	gc.projection.ToLonLat(xs, ys)
	return geomath.IsCrossingAntimeridian(xs...)
}

func (gc *CRSGeoCoding) Kind() georef.Kind {
	return georef.KindCRS
}

// ImageToMap returns a copy of the image to map transform
func (gc *CRSGeoCoding) ImageToMap() *affine.Affine {
	a := gc.imageToMap
	return &a
}

func (gc *CRSGeoCoding) Projection() crs.Projection {
	return gc.projection
}

func (gc *CRSGeoCoding) Width() int {
	return gc.width
}

func (gc *CRSGeoCoding) Height() int {
	return gc.height
}

func (gc *CRSGeoCoding) Datum() georef.Datum {
	return gc.datum
}

func (gc *CRSGeoCoding) CrossesAntimeridian() bool {
	return gc.crosses
}

func (gc *CRSGeoCoding) CanGetGeoPos() bool {
	return true
}

func (gc *CRSGeoCoding) CanGetPixelPos() bool {
	return true
}

func (gc *CRSGeoCoding) GeoPos(p georef.PixelPos) georef.GeoPos {
	if !p.IsValid() {
		return georef.InvalidGeoPos()
	}
	x, y := gc.imageToMap.Transform(p.X, p.Y)
	xs, ys := []float64{x}, []float64{y}
	gc.projection.ToLonLat(xs, ys)
	return geoPosOrInvalid(ys[0], xs[0])
}

// GeoPosBlock converts the pixel centers of the block with a single call to the projection
func (gc *CRSGeoCoding) GeoPosBlock(x, y, width, height int) []georef.GeoPos {
	xs := make([]float64, 0, width*height)
	ys := make([]float64, 0, width*height)
	for j := y; j < y+height; j++ {
		for i := x; i < x+width; i++ {
			c := georef.Center(i, j)
			xs, ys = append(xs, c.X), append(ys, c.Y)
		}
	}
	gc.imageToMap.TransformArrays(xs, ys)
	gc.projection.ToLonLat(xs, ys)
	res := make([]georef.GeoPos, len(xs))
	for i := range xs {
		res[i] = geoPosOrInvalid(ys[i], xs[i])
	}
	return res
}

func (gc *CRSGeoCoding) PixelPos(g georef.GeoPos) georef.PixelPos {
	if !g.IsValid() {
		return georef.InvalidPixelPos()
	}
	xs, ys := []float64{g.Lon}, []float64{g.Lat}
	gc.projection.FromLonLat(xs, ys)
	if math.IsNaN(xs[0]) || math.IsNaN(ys[0]) {
		return refineInverse(gc.GeoPos, g, georef.PixelPos{X: float64(gc.width) / 2, Y: float64(gc.height) / 2}, nil)
	}
	x, y := gc.mapToImage.Transform(xs[0], ys[0])
	return georef.PixelPos{X: x, Y: y}
}

// Subset returns the geo-coding of the subset of the raster defined by def
func (gc *CRSGeoCoding) Subset(def *georef.SubsetDef) (*CRSGeoCoding, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	w, h := def.SceneSize(gc.width, gc.height)
	rx, ry := def.Origin()
	sx, sy := def.SubSampling()
	return NewCRSGeoCoding(gc.imageToMap.Subset(float64(rx), float64(ry), float64(sx), float64(sy)), gc.projection, w, h, gc.datum)
}

func (gc *CRSGeoCoding) Equal(other georef.GeoCoding) bool {
	o, ok := other.(*CRSGeoCoding)
	if !ok || o == nil {
		return false
	}
	return gc.imageToMap == o.imageToMap && gc.projection.Name() == o.projection.Name() &&
		gc.width == o.width && gc.height == o.height && gc.datum == o.datum
}

func geoPosOrInvalid(lat, lon float64) georef.GeoPos {
	g := georef.GeoPos{Lat: lat, Lon: lon}
	if !g.IsValid() {
		return georef.InvalidGeoPos()
	}
	return g
}
