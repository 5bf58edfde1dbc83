package geocoding

import (
	"context"
	"math"
	"time"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/log"
	"github.com/airbusgeo/georef/internal/progress"
	"github.com/airbusgeo/georef/internal/raster"
	"github.com/airbusgeo/georef/internal/utils/geomath"
	"github.com/airbusgeo/georef/internal/utils/poly"
	"go.uber.org/zap"
)

const (
	// MaxWarpPointsPerTile is the maximum number of tie-points used to fit an approximation
	MaxWarpPointsPerTile = 1000
	// maxFitError (pixels) stops the search for a better polynomial
	maxFitError = 0.5
	// minPointsPerTile is the minimum number of tie-points of a tile (to fit a quadric)
	minPointsPerTile = 10
	// inverseMargin (pixels) lets the inverse search step slightly out of the raster
	inverseMargin = 1
)

// TiePointGeoCoding interpolates lat/lon in two tie-point grids sharing the same geometry.
// The inverse transform uses polynomial approximations fitted on tiles of the grids, refined by a Newton search.
type TiePointGeoCoding struct {
	latGrid *raster.TiePointGrid
	lonGrid *raster.TiePointGrid
	width   int
	height  int
	datum   georef.Datum
	crosses bool

	approximations lazy[approximations]
}

type approximations []*approximation

// approximation of the inverse transform on a tile of the grid.
// The polynomials are functions of the lon/lat rotated so that the center of the tile is at (0, 0), divided by 90.
type approximation struct {
	rotator           *geomath.Rotator
	fx, fy            *poly.Sum
	maxSquareDistance float64
}

// NewTiePointGeoCoding creates the geo-coding of a raster of size (width, height). The grids are copied.
func NewTiePointGeoCoding(latGrid, lonGrid *raster.TiePointGrid, width, height int, datum georef.Datum) (*TiePointGeoCoding, error) {
	if latGrid == nil || lonGrid == nil {
		return nil, georef.NewInvalidArgument("grids", "lat and lon tie-point grids are required")
	}
	if latGrid.GridWidth() != lonGrid.GridWidth() || latGrid.GridHeight() != lonGrid.GridHeight() ||
		latGrid.OffsetX() != lonGrid.OffsetX() || latGrid.OffsetY() != lonGrid.OffsetY() ||
		latGrid.SubSamplingX() != lonGrid.SubSamplingX() || latGrid.SubSamplingY() != lonGrid.SubSamplingY() {
		return nil, georef.NewInvalidArgument("grids", "lat and lon tie-point grids must have the same geometry")
	}
	if width <= 0 || height <= 0 {
		return nil, georef.NewInvalidArgument("size", "invalid raster size %dx%d", width, height)
	}
	gc := &TiePointGeoCoding{
		latGrid: latGrid.Clone(),
		lonGrid: lonGrid.Clone(),
		width:   width,
		height:  height,
		datum:   datum,
	}
	xs, ys := geomath.BoundaryCenters(width, height, 1)
	lons := make([]float64, len(xs))
	for i := range xs {
		lons[i] = gc.forward(georef.PixelPos{X: xs[i], Y: ys[i]}).Lon
	}
	gc.crosses = geomath.IsCrossingAntimeridian(lons...)
	return gc, nil
}

func (gc *TiePointGeoCoding) Kind() georef.Kind {
	return georef.KindTiePoint
}

// LatGrid returns the latitude grid. It must not be modified.
func (gc *TiePointGeoCoding) LatGrid() *raster.TiePointGrid {
	return gc.latGrid
}

// LonGrid returns the longitude grid. It must not be modified.
func (gc *TiePointGeoCoding) LonGrid() *raster.TiePointGrid {
	return gc.lonGrid
}

func (gc *TiePointGeoCoding) Width() int {
	return gc.width
}

func (gc *TiePointGeoCoding) Height() int {
	return gc.height
}

func (gc *TiePointGeoCoding) Datum() georef.Datum {
	return gc.datum
}

func (gc *TiePointGeoCoding) CrossesAntimeridian() bool {
	return gc.crosses
}

func (gc *TiePointGeoCoding) CanGetGeoPos() bool {
	return true
}

func (gc *TiePointGeoCoding) CanGetPixelPos() bool {
	return true
}

// forward interpolates (or extrapolates) the grids
func (gc *TiePointGeoCoding) forward(p georef.PixelPos) georef.GeoPos {
	return geoPosOrInvalid(gc.latGrid.PixelDouble(p.X, p.Y), georef.NormalizeLon(gc.lonGrid.PixelDouble(p.X, p.Y)))
}

func (gc *TiePointGeoCoding) inRaster(p georef.PixelPos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float64(gc.width) && p.Y <= float64(gc.height)
}

// GeoPos returns an invalid position outside of the raster
func (gc *TiePointGeoCoding) GeoPos(p georef.PixelPos) georef.GeoPos {
	if !p.IsValid() || !gc.inRaster(p) {
		return georef.InvalidGeoPos()
	}
	return gc.forward(p)
}

func (gc *TiePointGeoCoding) GeoPosBlock(x, y, width, height int) []georef.GeoPos {
	lats := gc.latGrid.Pixels(x, y, width, height)
	lons := gc.lonGrid.Pixels(x, y, width, height)
	res := make([]georef.GeoPos, 0, len(lats))
	for j := y; j < y+height; j++ {
		for i := x; i < x+width; i++ {
			k := len(res)
			if !gc.inRaster(georef.Center(i, j)) {
				res = append(res, georef.InvalidGeoPos())
				continue
			}
			res = append(res, geoPosOrInvalid(lats[k], georef.NormalizeLon(lons[k])))
		}
	}
	return res
}

// PixelPos returns InvalidPixelPos if g is not located in the raster
func (gc *TiePointGeoCoding) PixelPos(g georef.GeoPos) georef.PixelPos {
	if !g.IsValid() {
		return georef.InvalidPixelPos()
	}
	approxs, err := gc.approximations.get(func() (*approximations, error) {
		return gc.buildApproximations(context.Background(), progress.Null)
	})
	if err != nil {
		return georef.InvalidPixelPos()
	}
	target := georef.GeoPos{Lat: g.Lat, Lon: georef.NormalizeLon(g.Lon)}
	a := approxs.best(target)
	if a == nil {
		return georef.InvalidPixelPos()
	}
	u, v := a.rotate(target)
	seed := georef.PixelPos{X: a.fx.Eval(u, v), Y: a.fy.Eval(u, v)}
	refined := refineInverse(gc.forward, target, seed, rasterBounds(gc.width, gc.height, inverseMargin))
	return closest(gc.forward, target, gc.keepInRaster(refined), gc.keepInRaster(seed))
}

// keepInRaster returns p if it is in the raster, InvalidPixelPos otherwise
func (gc *TiePointGeoCoding) keepInRaster(p georef.PixelPos) georef.PixelPos {
	if !p.IsValid() || !gc.inRaster(p) {
		return georef.InvalidPixelPos()
	}
	return p
}

// PrepareInverse builds the approximations of the inverse transform, that are otherwise built on the first call to PixelPos.
// It returns a Cancelled error if the monitor is cancelled; PrepareInverse can then be called again.
func (gc *TiePointGeoCoding) PrepareInverse(ctx context.Context, monitor progress.Monitor) error {
	_, err := gc.approximations.get(func() (*approximations, error) {
		return gc.buildApproximations(ctx, progress.OrNull(monitor))
	})
	return err
}

// ApproximationCount returns the number of approximations of the inverse transform (0 if they are not built yet)
func (gc *TiePointGeoCoding) ApproximationCount() int {
	if a := gc.approximations.peek(); a != nil {
		return len(*a)
	}
	return 0
}

// Subset returns the geo-coding of the subset defined by def, with cropped and rescaled grids
func (gc *TiePointGeoCoding) Subset(def *georef.SubsetDef) (*TiePointGeoCoding, error) {
	latGrid, err := gc.latGrid.Subset(def, gc.width, gc.height)
	if err != nil {
		return nil, err
	}
	lonGrid, err := gc.lonGrid.Subset(def, gc.width, gc.height)
	if err != nil {
		return nil, err
	}
	w, h := def.SceneSize(gc.width, gc.height)
	return NewTiePointGeoCoding(latGrid, lonGrid, w, h, gc.datum)
}

func (gc *TiePointGeoCoding) Equal(other georef.GeoCoding) bool {
	o, ok := other.(*TiePointGeoCoding)
	if !ok || o == nil {
		return false
	}
	return gc.width == o.width && gc.height == o.height && gc.datum == o.datum &&
		gc.latGrid.Equal(o.latGrid) && gc.lonGrid.Equal(o.lonGrid)
}

func (gc *TiePointGeoCoding) buildApproximations(ctx context.Context, monitor progress.Monitor) (*approximations, error) {
	start := time.Now()
	gw, gh := gc.latGrid.GridWidth(), gc.latGrid.GridHeight()
	numPoints := gw * gh

	numTiles := int(math.Ceil(float64(numPoints) / minPointsPerTile))
	nx, ny := 1, 1
	for numTiles > 1 {
		tx, ty := geomath.FitDimension(numTiles, float64(gw)*gc.latGrid.SubSamplingX(), float64(gh)*gc.latGrid.SubSamplingY())
		if numPoints/(tx*ty) >= minPointsPerTile {
			nx, ny = tx, ty
			break
		}
		numTiles--
	}
	tiles := geomath.SubdivideRectangle(gw, gh, nx, ny, 1)

	monitor.Begin("tie-point inverse approximations", len(tiles))
	defer monitor.Done()
	res := make(approximations, 0, len(tiles))
	for _, tile := range tiles {
		if err := progress.Check(monitor, "tie-point inverse approximations"); err != nil {
			return nil, err
		}
		a, err := gc.approximate(tile.Min.X, tile.Min.Y, tile.Dx(), tile.Dy())
		if err != nil {
			log.Logger(ctx).Warn("tie-point geo-coding cannot compute pixel positions", zap.Error(err))
			return nil, err
		}
		res = append(res, a)
		monitor.Worked(1)
	}
	log.Logger(ctx).Debug("tie-point inverse approximations", zap.Int("count", len(res)), zap.Duration("elapsed", time.Since(start)))
	return &res, nil
}

// DetermineWarpParameters returns the number of warp points (numU, numV) and the steps between them (stepI, stepJ)
// to sample a tile of (sw, sh) tie-points with at most MaxWarpPointsPerTile points.
func DetermineWarpParameters(sw, sh int) (numU, numV, stepI, stepJ int) {
	numU, numV, stepI, stepJ = sw, sh, 1, 1
	adjustStepI := numU >= numV
	for numU*numV > MaxWarpPointsPerTile {
		if adjustStepI {
			stepI++
			numU = (sw + stepI - 1) / stepI
		} else {
			stepJ++
			numV = (sh + stepJ - 1) / stepJ
		}
		adjustStepI = numU >= numV
	}
	return numU, numV, stepI, stepJ
}

// approximate fits the approximation of the tile of tie-points [i0, i0+sw[ x [j0, j0+sh[
func (gc *TiePointGeoCoding) approximate(i0, j0, sw, sh int) (*approximation, error) {
	numU, numV, stepI, stepJ := DetermineWarpParameters(sw, sh)
	n := numU * numV
	lons, lats := make([]float64, 0, n), make([]float64, 0, n)
	xs, ys := make([]float64, 0, n), make([]float64, 0, n)
	for v := 0; v < numV; v++ {
		j := min(j0+v*stepJ, j0+sh-1)
		for u := 0; u < numU; u++ {
			i := min(i0+u*stepI, i0+sw-1)
			p := gc.latGrid.Position(i, j)
			lats = append(lats, gc.latGrid.Point(i, j))
			lons = append(lons, georef.NormalizeLon(gc.lonGrid.Point(i, j)))
			xs, ys = append(xs, p.X), append(ys, p.Y)
		}
	}
	centerLon, centerLat := geomath.MeanDirection(lons, lats)
	if math.IsNaN(centerLon) {
		return nil, georef.NewInvalidArgument("grids", "no valid tie-point in tile (%d,%d)", i0, j0)
	}
	a := &approximation{rotator: geomath.NewRotator(centerLon, centerLat)}
	a.rotator.TransformArrays(lons, lats)
	for k := range lons {
		lons[k], lats[k] = lons[k]/90, lats[k]/90
		a.maxSquareDistance = math.Max(a.maxSquareDistance, lons[k]*lons[k]+lats[k]*lats[k])
	}
	a.maxSquareDistance *= 1.1

	var err error
	if a.fx, err = bestPolynomial(lons, lats, xs); err != nil {
		return nil, err
	}
	if a.fy, err = bestPolynomial(lons, lats, ys); err != nil {
		return nil, err
	}
	return a, nil
}

// bestPolynomial fits z(u, v) with the polynomial of lowest RMSE, stopping at the first one that is accurate enough
func bestPolynomial(u, v, z []float64) (*poly.Sum, error) {
	var best *poly.Fitted
	for _, kind := range poly.Kinds {
		if len(z) < kind.PointsRequired() {
			continue
		}
		f, err := poly.Fit(kind, u, v, z)
		if err != nil {
			continue
		}
		if best == nil || f.RMSE < best.RMSE {
			best = &f
		}
		if f.MaxError < maxFitError {
			best = &f
			break
		}
	}
	if best == nil {
		return nil, georef.NewInvalidArgument("grids", "unable to fit a polynomial on %d tie-points", len(z))
	}
	return best.Sum, nil
}

func (a *approximation) rotate(g georef.GeoPos) (float64, float64) {
	lon, lat := a.rotator.Transform(g.Lon, g.Lat)
	return lon / 90, lat / 90
}

func (a *approximation) squareDistance(g georef.GeoPos) float64 {
	u, v := a.rotate(g)
	return u*u + v*v
}

// best returns the closest approximation covering g, or nil
func (as approximations) best(g georef.GeoPos) *approximation {
	var res *approximation
	minSquareDistance := math.MaxFloat64
	for _, a := range as {
		if d := a.squareDistance(g); d < a.maxSquareDistance && d < minSquareDistance {
			res, minSquareDistance = a, d
		}
	}
	return res
}

// closest returns the candidate whose forward transform is the closest to target
func closest(forward func(georef.PixelPos) georef.GeoPos, target georef.GeoPos, candidates ...georef.PixelPos) georef.PixelPos {
	res := georef.InvalidPixelPos()
	minDistance := math.MaxFloat64
	for _, p := range candidates {
		if !p.IsValid() {
			continue
		}
		g := forward(p)
		if !g.IsValid() {
			continue
		}
		dLon := geomath.LonDiff(g.Lon, target.Lon) * math.Cos(geomath.DegToRad(target.Lat))
		if d := (g.Lat-target.Lat)*(g.Lat-target.Lat) + dLon*dLon; d < minDistance {
			res, minDistance = p, d
		}
	}
	return res
}
