package raster

import (
	"math"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils"
	"github.com/airbusgeo/georef/internal/utils/geomath"
)

//go:generate enumer -json -type Discontinuity -trimprefix Discontinuity

// Discontinuity tells how the values of a grid of longitudes wrap
type Discontinuity int32

const (
	// DiscontinuityNone: values are interpolated linearly
	DiscontinuityNone Discontinuity = iota
	// DiscontinuityAt180: values are in [-180, 180] and may jump at the antimeridian
	DiscontinuityAt180
	// DiscontinuityAt360: values are in [0, 360] and may jump at the prime meridian
	DiscontinuityAt360
	// DiscontinuityAuto: the discontinuity is detected from the values
	DiscontinuityAuto
)

// DetectDiscontinuity classifies the longitudes: At360 if some are greater than 180,
// At180 if they span more than 180° (the grid wraps at the antimeridian), None otherwise.
func DetectDiscontinuity(lons []float64) Discontinuity {
	lonMin, lonMax := utils.MinMaxElemF(lons)
	switch {
	case math.IsNaN(lonMin):
		return DiscontinuityNone
	case lonMax > 180:
		return DiscontinuityAt360
	case lonMax-lonMin > 180:
		return DiscontinuityAt180
	}
	return DiscontinuityNone
}

// TiePointGrid is a sparse grid of samples of a raster.
// The tie-point (i, j) is located at the raster position (OffsetX + i*SubSamplingX, OffsetY + j*SubSamplingY).
// Values between tie-points are interpolated bilinearly, and extrapolated linearly outside of the grid.
type TiePointGrid struct {
	name          string
	gridWidth     int
	gridHeight    int
	offsetX       float64
	offsetY       float64
	subSamplingX  float64
	subSamplingY  float64
	points        []float64
	discontinuity Discontinuity
	sin, cos      []float64
}

// NewTiePointGrid creates a grid with a copy of the points.
// The grid must have at least 2x2 points. DiscontinuityAuto is resolved with DetectDiscontinuity.
func NewTiePointGrid(name string, gridWidth, gridHeight int, offsetX, offsetY, subSamplingX, subSamplingY float64, points []float64, discontinuity Discontinuity) (*TiePointGrid, error) {
	if gridWidth < 2 || gridHeight < 2 {
		return nil, georef.NewInvalidArgument("gridSize", "tie-point grid %s: at least 2x2 points are required (got %dx%d)", name, gridWidth, gridHeight)
	}
	if len(points) != gridWidth*gridHeight {
		return nil, georef.NewInvalidArgument("points", "tie-point grid %s: expecting %d points, got %d", name, gridWidth*gridHeight, len(points))
	}
	if !(subSamplingX > 0) || !(subSamplingY > 0) {
		return nil, georef.NewInvalidArgument("subSampling", "tie-point grid %s: subsampling must be positive (got %f, %f)", name, subSamplingX, subSamplingY)
	}
	if discontinuity == DiscontinuityAuto {
		discontinuity = DetectDiscontinuity(points)
	}
	g := &TiePointGrid{
		name:          name,
		gridWidth:     gridWidth,
		gridHeight:    gridHeight,
		offsetX:       offsetX,
		offsetY:       offsetY,
		subSamplingX:  subSamplingX,
		subSamplingY:  subSamplingY,
		points:        utils.CloneFloat64(points),
		discontinuity: discontinuity,
	}
	if discontinuity != DiscontinuityNone {
		g.sin = make([]float64, len(points))
		g.cos = make([]float64, len(points))
		for i, p := range g.points {
			g.sin[i], g.cos[i] = math.Sincos(geomath.DegToRad(p))
		}
	}
	return g, nil
}

func (g *TiePointGrid) Name() string                 { return g.name }
func (g *TiePointGrid) GridWidth() int               { return g.gridWidth }
func (g *TiePointGrid) GridHeight() int              { return g.gridHeight }
func (g *TiePointGrid) OffsetX() float64             { return g.offsetX }
func (g *TiePointGrid) OffsetY() float64             { return g.offsetY }
func (g *TiePointGrid) SubSamplingX() float64        { return g.subSamplingX }
func (g *TiePointGrid) SubSamplingY() float64        { return g.subSamplingY }
func (g *TiePointGrid) Discontinuity() Discontinuity { return g.discontinuity }

// Points returns a copy of the tie-points, row by row
func (g *TiePointGrid) Points() []float64 {
	return utils.CloneFloat64(g.points)
}

// Point returns the tie-point (i, j)
func (g *TiePointGrid) Point(i, j int) float64 {
	return g.points[j*g.gridWidth+i]
}

// Position returns the raster position of the tie-point (i, j)
func (g *TiePointGrid) Position(i, j int) georef.PixelPos {
	return georef.PixelPos{X: g.offsetX + float64(i)*g.subSamplingX, Y: g.offsetY + float64(j)*g.subSamplingY}
}

// PixelDouble returns the value interpolated at the raster position (x, y)
func (g *TiePointGrid) PixelDouble(x, y float64) float64 {
	fi := (x - g.offsetX) / g.subSamplingX
	fj := (y - g.offsetY) / g.subSamplingY
	i := geomath.FloorAndCrop(fi, 0, g.gridWidth-2)
	j := geomath.FloorAndCrop(fj, 0, g.gridHeight-2)
	wi, wj := fi-float64(i), fj-float64(j)
	k := j*g.gridWidth + i
	if g.discontinuity == DiscontinuityNone {
		return geomath.Interpolate2D(wi, wj, g.points[k], g.points[k+1], g.points[k+g.gridWidth], g.points[k+g.gridWidth+1])
	}
	s := geomath.Interpolate2D(wi, wj, g.sin[k], g.sin[k+1], g.sin[k+g.gridWidth], g.sin[k+g.gridWidth+1])
	c := geomath.Interpolate2D(wi, wj, g.cos[k], g.cos[k+1], g.cos[k+g.gridWidth], g.cos[k+g.gridWidth+1])
	v := geomath.RadToDeg(math.Atan2(s, c))
	if g.discontinuity == DiscontinuityAt360 && v < 0 {
		v += 360
	}
	return v
}

// Pixels returns the values interpolated at the centers of the pixels of the block, row by row
func (g *TiePointGrid) Pixels(x, y, width, height int) []float64 {
	res := make([]float64, 0, width*height)
	for py := y; py < y+height; py++ {
		for px := x; px < x+width; px++ {
			res = append(res, g.PixelDouble(float64(px)+0.5, float64(py)+0.5))
		}
	}
	return res
}

// Subset returns a new grid (with its own copy of the points) for the raster subset defined by def,
// from a raster of size (rasterWidth, rasterHeight). The grid is cropped to the cells covering the region.
func (g *TiePointGrid) Subset(def *georef.SubsetDef, rasterWidth, rasterHeight int) (*TiePointGrid, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	region := def.RegionIn(rasterWidth, rasterHeight)
	if region.Empty() {
		return nil, georef.NewInvalidArgument("region", "subset of tie-point grid %s is empty", g.name)
	}
	sx, sy := def.SubSampling()
	i0, i1 := cropRange(float64(region.Min.X), float64(region.Max.X), g.offsetX, g.subSamplingX, g.gridWidth)
	j0, j1 := cropRange(float64(region.Min.Y), float64(region.Max.Y), g.offsetY, g.subSamplingY, g.gridHeight)

	w, h := i1-i0+1, j1-j0+1
	points := make([]float64, 0, w*h)
	for j := j0; j <= j1; j++ {
		points = append(points, g.points[j*g.gridWidth+i0:j*g.gridWidth+i1+1]...)
	}
	origin := g.Position(i0, j0)
	return NewTiePointGrid(g.name, w, h,
		(origin.X-float64(region.Min.X))/float64(sx), (origin.Y-float64(region.Min.Y))/float64(sy),
		g.subSamplingX/float64(sx), g.subSamplingY/float64(sy),
		points, g.discontinuity)
}

// cropRange returns the range of tie-points [k0, k1] (at least 2) of the cells covering [vmin, vmax]
func cropRange(vmin, vmax, offset, subSampling float64, n int) (int, int) {
	k0 := geomath.FloorAndCrop((vmin-offset)/subSampling, 0, n-2)
	k1 := int(math.Ceil((vmax - offset) / subSampling))
	return k0, utils.ClampI(k1, k0+1, n-1)
}

// Equal compares the parameters and the points of the grids
func (g *TiePointGrid) Equal(o *TiePointGrid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.name == o.name && g.gridWidth == o.gridWidth && g.gridHeight == o.gridHeight &&
		g.offsetX == o.offsetX && g.offsetY == o.offsetY &&
		g.subSamplingX == o.subSamplingX && g.subSamplingY == o.subSamplingY &&
		g.discontinuity == o.discontinuity && utils.SliceFloat64Equal(g.points, o.points)
}

// Clone returns a deep copy of the grid
func (g *TiePointGrid) Clone() *TiePointGrid {
	c := *g
	c.points = utils.CloneFloat64(g.points)
	c.sin = utils.CloneFloat64(g.sin)
	c.cos = utils.CloneFloat64(g.cos)
	return &c
}
