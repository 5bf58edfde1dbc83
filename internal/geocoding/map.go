package geocoding

import (
	"github.com/airbusgeo/georef/internal/crs"
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils/affine"
)

// MapInfo locates a raster in a map: the reference pixel (PixelX, PixelY) is at (Easting, Northing),
// pixels are PixelSizeX x PixelSizeY map units, and the raster is rotated by Orientation degrees.
// The size of the scene is part of the map info and must match the raster.
type MapInfo struct {
	Easting     float64
	Northing    float64
	PixelX      float64
	PixelY      float64
	PixelSizeX  float64
	PixelSizeY  float64
	Orientation float64
	SceneWidth  int
	SceneHeight int
	Datum       georef.Datum
}

// ImageToMap returns the transform T(E,N)·R(-orientation)·S(sx,-sy)·T(-PixelX,-PixelY)
func (m MapInfo) ImageToMap() *affine.Affine {
	return affine.Translation(m.Easting, m.Northing).
		Multiply(affine.Rotation(-m.Orientation)).
		Multiply(affine.Scale(m.PixelSizeX, -m.PixelSizeY)).
		Multiply(affine.Translation(-m.PixelX, -m.PixelY))
}

// MapProjection is a named map to lon/lat conversion
type MapProjection struct {
	Name       string
	Projection crs.Projection
}

// MapGeoCoding is the legacy geo-coding of a raster described by a MapInfo
type MapGeoCoding struct {
	info       MapInfo
	projection MapProjection
	crs        *CRSGeoCoding
}

// NewMapGeoCoding creates the geo-coding of a raster of size (width, height), that must be the size of the scene in info
func NewMapGeoCoding(info MapInfo, projection MapProjection, width, height int) (*MapGeoCoding, error) {
	if info.SceneWidth != width || info.SceneHeight != height {
		return nil, georef.NewInvalidArgument("mapInfo", "scene size %dx%d of the map info does not match the raster size %dx%d",
			info.SceneWidth, info.SceneHeight, width, height)
	}
	if info.PixelSizeX <= 0 || info.PixelSizeY <= 0 {
		return nil, georef.NewInvalidArgument("mapInfo", "pixel size must be positive (got %f, %f)", info.PixelSizeX, info.PixelSizeY)
	}
	if projection.Projection == nil {
		return nil, georef.NewInvalidArgument("projection", "map projection %s has no projection", projection.Name)
	}
	gc, err := NewCRSGeoCoding(info.ImageToMap(), projection.Projection, width, height, info.Datum)
	if err != nil {
		return nil, err
	}
	return &MapGeoCoding{info: info, projection: projection, crs: gc}, nil
}

func (gc *MapGeoCoding) Kind() georef.Kind {
	return georef.KindMap
}

// MapInfo returns a copy of the map info
func (gc *MapGeoCoding) MapInfo() MapInfo {
	return gc.info
}

func (gc *MapGeoCoding) MapProjection() MapProjection {
	return gc.projection
}

func (gc *MapGeoCoding) GeoPos(p georef.PixelPos) georef.GeoPos {
	return gc.crs.GeoPos(p)
}

func (gc *MapGeoCoding) GeoPosBlock(x, y, width, height int) []georef.GeoPos {
	return gc.crs.GeoPosBlock(x, y, width, height)
}

func (gc *MapGeoCoding) PixelPos(g georef.GeoPos) georef.PixelPos {
	return gc.crs.PixelPos(g)
}

func (gc *MapGeoCoding) CanGetGeoPos() bool {
	return true
}

func (gc *MapGeoCoding) CanGetPixelPos() bool {
	return true
}

func (gc *MapGeoCoding) Datum() georef.Datum {
	return gc.info.Datum
}

func (gc *MapGeoCoding) CrossesAntimeridian() bool {
	return gc.crs.CrossesAntimeridian()
}

// Subset returns the geo-coding of the subset defined by def.
// The reference pixel is expressed in the subset raster and the pixel size is multiplied by the subsampling.
func (gc *MapGeoCoding) Subset(def *georef.SubsetDef) (*MapGeoCoding, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	rx, ry := def.Origin()
	sx, sy := def.SubSampling()
	info := gc.info
	info.PixelX = (info.PixelX - float64(rx)) / float64(sx)
	info.PixelY = (info.PixelY - float64(ry)) / float64(sy)
	info.PixelSizeX *= float64(sx)
	info.PixelSizeY *= float64(sy)
	info.SceneWidth, info.SceneHeight = def.SceneSize(gc.info.SceneWidth, gc.info.SceneHeight)
	return NewMapGeoCoding(info, gc.projection, info.SceneWidth, info.SceneHeight)
}

func (gc *MapGeoCoding) Equal(other georef.GeoCoding) bool {
	o, ok := other.(*MapGeoCoding)
	if !ok || o == nil {
		return false
	}
	return gc.info == o.info && gc.projection.Name == o.projection.Name &&
		gc.projection.Projection.Name() == o.projection.Projection.Name()
}
