package geocoding

import (
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils/poly"
)

// FXYGeoCoding computes lat/lon with polynomials of the model coordinates (x, y) of the pixels,
// and the model coordinates with polynomials of (lat, lon).
// Model coordinates are x = PixelOffsetX + PixelSizeX*px and y = PixelOffsetY + PixelSizeY*py.
type FXYGeoCoding struct {
	pixelOffsetX float64
	pixelOffsetY float64
	pixelSizeX   float64
	pixelSizeY   float64
	latFunc      *poly.Sum
	lonFunc      *poly.Sum
	pixelXFunc   *poly.Sum
	pixelYFunc   *poly.Sum
	datum        georef.Datum
}

// FXYFunctions are the polynomials of a FXYGeoCoding.
// PixelX and PixelY are optional: without them, the geo-coding cannot compute pixel positions.
type FXYFunctions struct {
	Lat    *poly.Sum
	Lon    *poly.Sum
	PixelX *poly.Sum
	PixelY *poly.Sum
}

// NewFXYGeoCoding creates the geo-coding. The polynomials are copied.
func NewFXYGeoCoding(pixelOffsetX, pixelOffsetY, pixelSizeX, pixelSizeY float64, funcs FXYFunctions, datum georef.Datum) (*FXYGeoCoding, error) {
	if funcs.Lat == nil || funcs.Lon == nil {
		return nil, georef.NewInvalidArgument("functions", "lat and lon polynomials are required")
	}
	if (funcs.PixelX == nil) != (funcs.PixelY == nil) {
		return nil, georef.NewInvalidArgument("functions", "pixel x and pixel y polynomials must be both defined or both undefined")
	}
	if pixelSizeX == 0 || pixelSizeY == 0 {
		return nil, georef.NewInvalidArgument("pixelSize", "pixel size must not be zero")
	}
	gc := &FXYGeoCoding{
		pixelOffsetX: pixelOffsetX,
		pixelOffsetY: pixelOffsetY,
		pixelSizeX:   pixelSizeX,
		pixelSizeY:   pixelSizeY,
		latFunc:      funcs.Lat.Clone(),
		lonFunc:      funcs.Lon.Clone(),
		datum:        datum,
	}
	if funcs.PixelX != nil {
		gc.pixelXFunc = funcs.PixelX.Clone()
		gc.pixelYFunc = funcs.PixelY.Clone()
	}
	return gc, nil
}

func (gc *FXYGeoCoding) Kind() georef.Kind {
	return georef.KindFXY
}

func (gc *FXYGeoCoding) PixelOffset() (float64, float64) {
	return gc.pixelOffsetX, gc.pixelOffsetY
}

func (gc *FXYGeoCoding) PixelSize() (float64, float64) {
	return gc.pixelSizeX, gc.pixelSizeY
}

// Functions returns the polynomials of the geo-coding. They must not be modified.
func (gc *FXYGeoCoding) Functions() FXYFunctions {
	return FXYFunctions{Lat: gc.latFunc, Lon: gc.lonFunc, PixelX: gc.pixelXFunc, PixelY: gc.pixelYFunc}
}

func (gc *FXYGeoCoding) Datum() georef.Datum {
	return gc.datum
}

// CrossesAntimeridian is always false: the polynomials are continuous in longitude
func (gc *FXYGeoCoding) CrossesAntimeridian() bool {
	return false
}

func (gc *FXYGeoCoding) CanGetGeoPos() bool {
	return true
}

func (gc *FXYGeoCoding) CanGetPixelPos() bool {
	return gc.pixelXFunc != nil
}

func (gc *FXYGeoCoding) GeoPos(p georef.PixelPos) georef.GeoPos {
	if !p.IsValid() {
		return georef.InvalidGeoPos()
	}
	x := gc.pixelOffsetX + gc.pixelSizeX*p.X
	y := gc.pixelOffsetY + gc.pixelSizeY*p.Y
	return geoPosOrInvalid(gc.latFunc.Eval(x, y), georef.NormalizeLon(gc.lonFunc.Eval(x, y)))
}

func (gc *FXYGeoCoding) PixelPos(g georef.GeoPos) georef.PixelPos {
	if !g.IsValid() || gc.pixelXFunc == nil {
		return georef.InvalidPixelPos()
	}
	x := gc.pixelXFunc.Eval(g.Lat, g.Lon)
	y := gc.pixelYFunc.Eval(g.Lat, g.Lon)
	return georef.PixelPos{X: (x - gc.pixelOffsetX) / gc.pixelSizeX, Y: (y - gc.pixelOffsetY) / gc.pixelSizeY}
}

// Subset returns the geo-coding of the subset defined by def.
// Only the mapping from pixels to model coordinates changes: the polynomials are copied.
// The new offset is old offset + region origin × pixel size, i.e. old + region for a unit pixel size.
// Scaling by the pixel size keeps dest.GeoPos(p) == source.GeoPos(def.SourcePixel(p)) for any pixel size.
func (gc *FXYGeoCoding) Subset(def *georef.SubsetDef) (*FXYGeoCoding, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	rx, ry := def.Origin()
	sx, sy := def.SubSampling()
	return NewFXYGeoCoding(
		gc.pixelOffsetX+gc.pixelSizeX*float64(rx), gc.pixelOffsetY+gc.pixelSizeY*float64(ry),
		gc.pixelSizeX*float64(sx), gc.pixelSizeY*float64(sy),
		gc.Functions(), gc.datum)
}

func (gc *FXYGeoCoding) Equal(other georef.GeoCoding) bool {
	o, ok := other.(*FXYGeoCoding)
	if !ok || o == nil {
		return false
	}
	return gc.pixelOffsetX == o.pixelOffsetX && gc.pixelOffsetY == o.pixelOffsetY &&
		gc.pixelSizeX == o.pixelSizeX && gc.pixelSizeY == o.pixelSizeY &&
		gc.latFunc.Equal(o.latFunc) && gc.lonFunc.Equal(o.lonFunc) &&
		gc.pixelXFunc.Equal(o.pixelXFunc) && gc.pixelYFunc.Equal(o.pixelYFunc) &&
		gc.datum == o.datum
}
