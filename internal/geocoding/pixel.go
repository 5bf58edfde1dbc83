package geocoding

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/log"
	"github.com/airbusgeo/georef/internal/progress"
	"github.com/airbusgeo/georef/internal/raster"
	"github.com/airbusgeo/georef/internal/utils"
	"github.com/airbusgeo/georef/internal/utils/geomath"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultSearchRadius is the usual search radius, in pixels
	DefaultSearchRadius = 5
	maxSearchCycles     = 10
	// estimatorSubSampling is the step between the tie-points of the estimator sampled from the bands
	estimatorSubSampling = 30
	// quadEpsilon (degrees) enlarges the bounding box of the quads of the quad-tree search
	quadEpsilon = 0.04
	// quadWeightEpsilon is the tolerance on the bilinear weights of a quad containing a position
	quadWeightEpsilon = 1e-9
)

// PixelOptions configures a PixelGeoCoding
type PixelOptions struct {
	// ValidMask is an optional expression on the bands of the product (see raster.Product.ValidMask).
	// Pixels outside the mask are ignored.
	ValidMask string
	// SearchRadius (pixels) of the search around the estimated pixel position. Must be positive.
	SearchRadius int
	// Fractional returns sub-pixel positions by inverting the bilinear interpolation between pixel centers.
	// Otherwise, PixelPos returns the center of the closest pixel and GeoPos the lat/lon of the pixel.
	Fractional bool
	// Tiling reads the samples window by window through the product instead of loading the bands
	Tiling bool
	// Estimator is an optional geo-coding providing a first estimate of the pixel positions.
	// By default, a tie-point geo-coding is sampled from the bands.
	Estimator georef.GeoCoding
	// Datum defaults to WGS84
	Datum georef.Datum
}

// PixelGeoCoding uses two bands with the latitude and the longitude of each pixel.
// Pixel positions are found by a search in the bands, around the position given by an estimator.
// The samples and the estimator are loaded on first use, or by Initialize.
type PixelGeoCoding struct {
	latBand *raster.Band
	lonBand *raster.Band
	product *raster.Product
	reader  raster.Reader
	width   int
	height  int
	options PixelOptions

	state lazy[pixelState]
}

type pixelState struct {
	// lats and lons are nil in tiling mode
	lats      []float64
	lons      []float64
	mask      []bool
	crosses   bool
	estimator georef.GeoCoding
}

// NewPixelGeoCoding creates the geo-coding. Both bands must belong to the same product.
// Construction is cheap: the expensive initialization is done by Initialize or on first use.
func NewPixelGeoCoding(latBand, lonBand *raster.Band, options PixelOptions) (*PixelGeoCoding, error) {
	if options.SearchRadius <= 0 {
		return nil, georef.NewInvalidArgument("searchRadius", "search radius must be positive (got %d)", options.SearchRadius)
	}
	if latBand == nil || lonBand == nil {
		return nil, georef.NewInvalidArgument("bands", "lat and lon bands are required")
	}
	product := latBand.Product()
	if product == nil || lonBand.Product() == nil {
		return nil, georef.NewInvalidArgument("bands", "bands %s and %s must belong to a product", latBand.Name(), lonBand.Name())
	}
	if lonBand.Product() != product {
		return nil, georef.NewInvalidArgument("bands", "bands %s and %s must belong to the same product", latBand.Name(), lonBand.Name())
	}
	if latBand.Width() != lonBand.Width() || latBand.Height() != lonBand.Height() {
		return nil, georef.NewInvalidArgument("bands", "bands %s (%dx%d) and %s (%dx%d) must have the same size",
			latBand.Name(), latBand.Width(), latBand.Height(), lonBand.Name(), lonBand.Width(), lonBand.Height())
	}
	if latBand.Width() < 2 || latBand.Height() < 2 {
		return nil, georef.NewInvalidArgument("bands", "bands must be at least 2x2 (got %dx%d)", latBand.Width(), latBand.Height())
	}
	if options.Estimator != nil && !options.Estimator.CanGetPixelPos() {
		return nil, georef.NewInvalidArgument("estimator", "estimator must be able to compute pixel positions")
	}
	if options.ValidMask != "" {
		names, err := raster.MaskBands(options.ValidMask)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if product.Band(name) == nil {
				return nil, georef.NewInvalidArgument("validMask", "valid-mask %s refers to an unknown band %s", options.ValidMask, name)
			}
		}
	}
	if options.Datum == (georef.Datum{}) {
		options.Datum = georef.WGS84
	}
	return &PixelGeoCoding{
		latBand: latBand,
		lonBand: lonBand,
		product: product,
		reader:  product,
		width:   latBand.Width(),
		height:  latBand.Height(),
		options: options,
	}, nil
}

func (gc *PixelGeoCoding) Kind() georef.Kind {
	return georef.KindPixel
}

func (gc *PixelGeoCoding) LatBand() *raster.Band {
	return gc.latBand
}

func (gc *PixelGeoCoding) LonBand() *raster.Band {
	return gc.lonBand
}

// Options returns the options of the geo-coding
func (gc *PixelGeoCoding) Options() PixelOptions {
	return gc.options
}

func (gc *PixelGeoCoding) Width() int {
	return gc.width
}

func (gc *PixelGeoCoding) Height() int {
	return gc.height
}

func (gc *PixelGeoCoding) Datum() georef.Datum {
	return gc.options.Datum
}

func (gc *PixelGeoCoding) CanGetGeoPos() bool {
	return true
}

func (gc *PixelGeoCoding) CanGetPixelPos() bool {
	return true
}

// CrossesAntimeridian returns false if the geo-coding cannot be initialized
func (gc *PixelGeoCoding) CrossesAntimeridian() bool {
	st := gc.getState()
	return st != nil && st.crosses
}

// Estimator returns the estimator of the pixel positions (nil if there is none, or if it cannot be initialized)
func (gc *PixelGeoCoding) Estimator() georef.GeoCoding {
	if st := gc.getState(); st != nil {
		return st.estimator
	}
	return nil
}

// Initialize loads the samples and builds the estimator, reporting the progress to the monitor.
// It returns a Cancelled error if the monitor or the context is cancelled; Initialize can then be called again.
func (gc *PixelGeoCoding) Initialize(ctx context.Context, monitor progress.Monitor) error {
	_, err := gc.state.get(func() (*pixelState, error) {
		return gc.build(ctx, progress.OrNull(monitor))
	})
	return err
}

func (gc *PixelGeoCoding) getState() *pixelState {
	st, err := gc.state.get(func() (*pixelState, error) {
		return gc.build(context.Background(), progress.Null)
	})
	if err != nil {
		return nil
	}
	return st
}

func checkCancelled(ctx context.Context, m progress.Monitor, task string) error {
	if err := ctx.Err(); err != nil {
		return georef.NewCancelled("%s: %v", task, err)
	}
	return progress.Check(m, task)
}

func (gc *PixelGeoCoding) build(ctx context.Context, m progress.Monitor) (*pixelState, error) {
	const task = "pixel geo-coding initialization"
	start := time.Now()
	m.Begin(task, 4)
	defer m.Done()

	st := &pixelState{}
	if !gc.options.Tiling {
		full := image.Rect(0, 0, gc.width, gc.height)
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			st.lats, err = gc.reader.ReadSamples(gCtx, gc.latBand.Name(), full)
			return err
		})
		g.Go(func() (err error) {
			st.lons, err = gc.reader.ReadSamples(gCtx, gc.lonBand.Name(), full)
			return err
		})
		if err := g.Wait(); err != nil {
			if cerr := checkCancelled(ctx, m, task); cerr != nil {
				return nil, cerr
			}
			return nil, fmt.Errorf("pixel geo-coding: %w", err)
		}
	}
	m.Worked(1)
	if err := checkCancelled(ctx, m, task); err != nil {
		return nil, err
	}

	if gc.options.ValidMask != "" {
		var err error
		if st.mask, err = gc.product.ValidMask(gc.options.ValidMask); err != nil {
			return nil, fmt.Errorf("pixel geo-coding: %w", err)
		}
	}
	m.Worked(1)

	var err error
	if st.crosses, err = gc.boundaryCrossing(ctx, st); err != nil {
		return nil, err
	}
	m.Worked(1)
	if err := checkCancelled(ctx, m, task); err != nil {
		return nil, err
	}

	if st.estimator, err = gc.buildEstimator(ctx, st, progress.CancelOnly(m)); err != nil {
		return nil, err
	}
	m.Worked(1)

	log.Logger(ctx).Debug("pixel geo-coding initialized",
		zap.String("lat", gc.latBand.Name()), zap.String("lon", gc.lonBand.Name()),
		zap.Bool("estimator", st.estimator != nil), zap.Bool("crossesAntimeridian", st.crosses),
		zap.Duration("elapsed", time.Since(start)))
	return st, nil
}

// window gives access to the samples of a region of the raster
type window struct {
	r          image.Rectangle
	lats, lons []float64
	mask       []bool
	width      int
}

// at returns the lat/lon of the pixel (x, y), NaN outside the window or the valid-mask
func (w *window) at(x, y int) (float64, float64) {
	if !image.Pt(x, y).In(w.r) || (w.mask != nil && !w.mask[y*w.width+x]) {
		return math.NaN(), math.NaN()
	}
	k := (y-w.r.Min.Y)*w.r.Dx() + x - w.r.Min.X
	return w.lats[k], w.lons[k]
}

// window returns the samples of the region r (clipped to the raster)
func (gc *PixelGeoCoding) window(ctx context.Context, st *pixelState, r image.Rectangle) (*window, error) {
	full := image.Rect(0, 0, gc.width, gc.height)
	if !gc.options.Tiling {
		return &window{r: full, lats: st.lats, lons: st.lons, mask: st.mask, width: gc.width}, nil
	}
	r = r.Intersect(full)
	w := &window{r: r, mask: st.mask, width: gc.width}
	if r.Empty() {
		return w, nil
	}
	var err error
	if w.lats, err = gc.reader.ReadSamples(ctx, gc.latBand.Name(), r); err != nil {
		return nil, err
	}
	if w.lons, err = gc.reader.ReadSamples(ctx, gc.lonBand.Name(), r); err != nil {
		return nil, err
	}
	return w, nil
}

// boundaryCrossing walks the boundary of the raster looking for a jump of longitude
func (gc *PixelGeoCoding) boundaryCrossing(ctx context.Context, st *pixelState) (bool, error) {
	w, h := gc.width, gc.height
	lons := make([]float64, 0, 2*(w+h))
	edges := []struct {
		r     image.Rectangle
		n     int
		pixel func(k int) (int, int)
	}{
		{image.Rect(0, 0, w, 1), w, func(k int) (int, int) { return k, 0 }},
		{image.Rect(w-1, 0, w, h), h, func(k int) (int, int) { return w - 1, k }},
		{image.Rect(0, h-1, w, h), w, func(k int) (int, int) { return w - 1 - k, h - 1 }},
		{image.Rect(0, 0, 1, h), h, func(k int) (int, int) { return 0, h - 1 - k }},
	}
	for _, e := range edges {
		win, err := gc.window(ctx, st, e.r)
		if err != nil {
			return false, fmt.Errorf("pixel geo-coding: %w", err)
		}
		for k := 0; k < e.n; k++ {
			_, lon := win.at(e.pixel(k))
			lons = append(lons, lon)
		}
	}
	return geomath.IsCrossingAntimeridian(lons...), nil
}

// estimatorSampling returns the step between the tie-points of the estimator, or 0 if the raster is too small
func estimatorSampling(width, height int) int {
	s := estimatorSubSampling
	for s >= 2 && (width/s < 2 || height/s < 2) {
		s /= 2
	}
	if s < 2 {
		return 0
	}
	return s
}

// buildEstimator returns the external estimator, or a tie-point geo-coding sampled from the bands.
// It returns nil if the raster is too small or if a sample is invalid.
func (gc *PixelGeoCoding) buildEstimator(ctx context.Context, st *pixelState, m progress.Monitor) (georef.GeoCoding, error) {
	if gc.options.Estimator != nil {
		return gc.options.Estimator, nil
	}
	s := estimatorSampling(gc.width, gc.height)
	if s == 0 {
		return nil, nil
	}
	gw, gh := gc.width/s, gc.height/s
	ox, oy := gc.width%s/2, gc.height%s/2
	lats, lons := make([]float64, 0, gw*gh), make([]float64, 0, gw*gh)
	for j := 0; j < gh; j++ {
		y := oy + j*s
		win, err := gc.window(ctx, st, image.Rect(0, y, gc.width, y+1))
		if err != nil {
			return nil, fmt.Errorf("pixel geo-coding.estimator: %w", err)
		}
		for i := 0; i < gw; i++ {
			lat, lon := win.at(ox+i*s, y)
			if math.IsNaN(lat) || math.IsNaN(lon) {
				log.Logger(ctx).Debug("pixel geo-coding without estimator: invalid sample", zap.Int("x", ox+i*s), zap.Int("y", y))
				return nil, nil
			}
			lats, lons = append(lats, lat), append(lons, lon)
		}
	}
	fs := float64(s)
	latGrid, err := raster.NewTiePointGrid("lat", gw, gh, float64(ox)+0.5, float64(oy)+0.5, fs, fs, lats, raster.DiscontinuityNone)
	if err != nil {
		return nil, err
	}
	lonGrid, err := raster.NewTiePointGrid("lon", gw, gh, float64(ox)+0.5, float64(oy)+0.5, fs, fs, lons, raster.DiscontinuityAuto)
	if err != nil {
		return nil, err
	}
	estimator, err := NewTiePointGeoCoding(latGrid, lonGrid, gc.width, gc.height, gc.options.Datum)
	if err != nil {
		return nil, err
	}
	if err := estimator.PrepareInverse(ctx, m); err != nil {
		if georef.IsError(err, georef.Cancelled) {
			return nil, err
		}
		log.Logger(ctx).Warn("pixel geo-coding without estimator", zap.Error(err))
		return nil, nil
	}
	return estimator, nil
}

// GeoPos returns the lat/lon of the pixel containing p (or interpolated between pixel centers in fractional mode).
// Outside of the raster, the estimator is used.
func (gc *PixelGeoCoding) GeoPos(p georef.PixelPos) georef.GeoPos {
	if !p.IsValid() {
		return georef.InvalidGeoPos()
	}
	st := gc.getState()
	if st == nil {
		return georef.InvalidGeoPos()
	}
	if p.X < 0 || p.Y < 0 || p.X >= float64(gc.width) || p.Y >= float64(gc.height) {
		if st.estimator != nil {
			return st.estimator.GeoPos(p)
		}
		return georef.InvalidGeoPos()
	}
	ctx := context.Background()
	if !gc.options.Fractional {
		x, y := p.Pixel()
		win, err := gc.window(ctx, st, image.Rect(x, y, x+1, y+1))
		if err != nil {
			return georef.InvalidGeoPos()
		}
		return geoPosOrInvalid(win.at(x, y))
	}
	i := geomath.FloorAndCrop(p.X-0.5, 0, gc.width-2)
	j := geomath.FloorAndCrop(p.Y-0.5, 0, gc.height-2)
	win, err := gc.window(ctx, st, image.Rect(i, j, i+2, j+2))
	if err != nil {
		return georef.InvalidGeoPos()
	}
	lat00, lon00 := win.at(i, j)
	lat10, lon10 := win.at(i+1, j)
	lat01, lon01 := win.at(i, j+1)
	lat11, lon11 := win.at(i+1, j+1)
	wi, wj := p.X-0.5-float64(i), p.Y-0.5-float64(j)
	return geoPosOrInvalid(
		geomath.Interpolate2D(wi, wj, lat00, lat10, lat01, lat11),
		geomath.InterpolateLon2D(wi, wj, lon00, lon10, lon01, lon11))
}

// PixelPos searches the pixel closest to g. It returns an invalid position if g is not covered by the raster.
func (gc *PixelGeoCoding) PixelPos(g georef.GeoPos) georef.PixelPos {
	if !g.IsValid() {
		return georef.InvalidPixelPos()
	}
	st := gc.getState()
	if st == nil {
		return georef.InvalidPixelPos()
	}
	ctx := context.Background()
	target := georef.GeoPos{Lat: g.Lat, Lon: georef.NormalizeLon(g.Lon)}

	var best image.Point
	var found bool
	if st.estimator != nil {
		if estimate := st.estimator.PixelPos(target); estimate.IsValid() {
			best, found = gc.directSearch(ctx, st, target, estimate)
		} else {
			best, found = gc.quadTreeSearch(ctx, st, target)
		}
	} else {
		best, found = gc.quadTreeSearch(ctx, st, target)
	}
	if !found {
		return georef.InvalidPixelPos()
	}
	if !gc.options.Fractional {
		return georef.Center(best.X, best.Y)
	}
	return gc.fractionalPixelPos(ctx, st, target, best)
}

// squareDistance returns the squared distance in degrees (longitudes scaled by cos(lat)), +Inf for NaN samples
func squareDistance(target georef.GeoPos, cosLat, lat, lon float64) float64 {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return math.Inf(1)
	}
	dLat := lat - target.Lat
	dLon := cosLat * geomath.LonDiff(lon, target.Lon)
	return dLat*dLat + dLon*dLon
}

func absI(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// directSearch scans windows of radius SearchRadius starting at the estimate, moving the window
// while the best pixel is on its border
func (gc *PixelGeoCoding) directSearch(ctx context.Context, st *pixelState, target georef.GeoPos, estimate georef.PixelPos) (image.Point, bool) {
	r := gc.options.SearchRadius
	x0, y0 := estimate.Pixel()
	if x0 < -r || y0 < -r || x0 >= gc.width+r || y0 >= gc.height+r {
		return image.Point{}, false
	}
	cur := image.Pt(utils.ClampI(x0, 0, gc.width-1), utils.ClampI(y0, 0, gc.height-1))
	delta := math.Inf(1)
	for cycles := 0; cycles < maxSearchCycles; cycles++ {
		next, d, err := gc.findBestPixel(ctx, st, target, cur)
		if err != nil || math.IsInf(d, 1) {
			return image.Point{}, false
		}
		moved := next != cur
		onBorder := absI(next.X-cur.X) > r-2 || absI(next.Y-cur.Y) > r-2
		cur, delta = next, d
		if !moved || !onBorder {
			break
		}
	}
	return cur, gc.accept(ctx, st, cur, delta)
}

// findBestPixel returns the pixel of the window of radius SearchRadius around c closest to target
func (gc *PixelGeoCoding) findBestPixel(ctx context.Context, st *pixelState, target georef.GeoPos, c image.Point) (image.Point, float64, error) {
	r := gc.options.SearchRadius
	rect := image.Rect(c.X-r, c.Y-r, c.X+r+1, c.Y+r+1).Intersect(image.Rect(0, 0, gc.width, gc.height))
	win, err := gc.window(ctx, st, rect)
	if err != nil {
		return c, 0, err
	}
	cosLat := math.Cos(geomath.DegToRad(target.Lat))
	lat, lon := win.at(c.X, c.Y)
	best, minDelta := c, squareDistance(target, cosLat, lat, lon)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			lat, lon := win.at(x, y)
			d := squareDistance(target, cosLat, lat, lon)
			if d < minDelta || (d == minDelta && !math.IsInf(d, 1) &&
				absI(x-c.X)+absI(y-c.Y) > absI(best.X-c.X)+absI(best.Y-c.Y)) {
				best, minDelta = image.Pt(x, y), d
			}
		}
	}
	return best, minDelta, nil
}

// accept returns true if the pixel p, at the squared distance delta of the target, is not farther than the spacing of its neighbors
func (gc *PixelGeoCoding) accept(ctx context.Context, st *pixelState, p image.Point, delta float64) bool {
	win, err := gc.window(ctx, st, image.Rect(p.X-1, p.Y-1, p.X+2, p.Y+2))
	if err != nil {
		return false
	}
	lat, lon := win.at(p.X, p.Y)
	center := georef.GeoPos{Lat: lat, Lon: lon}
	cosLat := math.Cos(geomath.DegToRad(lat))
	spacing := 0.0
	for _, n := range []image.Point{{p.X - 1, p.Y}, {p.X + 1, p.Y}, {p.X, p.Y - 1}, {p.X, p.Y + 1}} {
		nlat, nlon := win.at(n.X, n.Y)
		if d := squareDistance(center, cosLat, nlat, nlon); !math.IsInf(d, 1) {
			spacing = math.Max(spacing, d)
		}
	}
	return delta <= spacing
}

type quadResult struct {
	best  image.Point
	delta float64
}

// quadTreeSearch finds the closest pixel by recursive subdivision of the raster,
// skipping the quads whose bounding box does not contain the target
func (gc *PixelGeoCoding) quadTreeSearch(ctx context.Context, st *pixelState, target georef.GeoPos) (image.Point, bool) {
	res := &quadResult{delta: math.Inf(1)}
	gc.quadSearch(ctx, st, target, image.Rect(0, 0, gc.width, gc.height), res)
	if math.IsInf(res.delta, 1) {
		return image.Point{}, false
	}
	return res.best, gc.accept(ctx, st, res.best, res.delta)
}

// quadSearch searches the quad whose corners are the pixels q.Min and q.Max-(1,1)
func (gc *PixelGeoCoding) quadSearch(ctx context.Context, st *pixelState, target georef.GeoPos, q image.Rectangle, res *quadResult) {
	corners := []image.Point{q.Min, {q.Max.X - 1, q.Min.Y}, {q.Min.X, q.Max.Y - 1}, {q.Max.X - 1, q.Max.Y - 1}}
	var lats, lons [4]float64
	for k, c := range corners {
		win, err := gc.window(ctx, st, image.Rect(c.X, c.Y, c.X+1, c.Y+1))
		if err != nil {
			return
		}
		lats[k], lons[k] = win.at(c.X, c.Y)
	}

	if !hasNaN(lats[:]) && !hasNaN(lons[:]) && !quadMayContain(st.crosses, target, lats, lons) {
		return
	}

	if q.Dx() <= 2 && q.Dy() <= 2 {
		cosLat := math.Cos(geomath.DegToRad(target.Lat))
		for k, c := range corners {
			if d := squareDistance(target, cosLat, lats[k], lons[k]); d < res.delta {
				res.best, res.delta = c, d
			}
		}
		return
	}
	for _, qx := range splitQuad(q.Min.X, q.Max.X) {
		for _, qy := range splitQuad(q.Min.Y, q.Max.Y) {
			gc.quadSearch(ctx, st, target, image.Rect(qx[0], qy[0], qx[1], qy[1]), res)
		}
	}
}

// quadMayContain returns true if the bounding box of the quad, enlarged by quadEpsilon, contains the target
func quadMayContain(sceneCrosses bool, target georef.GeoPos, lats, lons [4]float64) bool {
	latMin, latMax := utils.MinMaxElemF(lats[:])
	var lonMin, lonMax float64
	if geomath.IsCrossingMeridianInsideQuad(sceneCrosses, lons[:]...) {
		if target.Lon > 0 {
			lonMin, lonMax = geomath.PositiveLonMin(lons[:]...), 180
		} else {
			lonMin, lonMax = -180, geomath.NegativeLonMax(lons[:]...)
		}
	} else {
		lonMin, lonMax = utils.MinMaxElemF(lons[:])
	}
	return target.Lat >= latMin-quadEpsilon && target.Lat <= latMax+quadEpsilon &&
		target.Lon >= lonMin-quadEpsilon && target.Lon <= lonMax+quadEpsilon
}

func hasNaN(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// splitQuad splits the pixels [lo, hi[ in two ranges sharing one pixel, or returns it unchanged if it has 2 pixels or less
func splitQuad(lo, hi int) [][2]int {
	n := hi - lo
	if n <= 2 {
		return [][2]int{{lo, hi}}
	}
	mid := lo + n/2
	return [][2]int{{lo, mid + 1}, {mid, hi}}
}

// fractionalPixelPos inverts the bilinear interpolation in the quads of pixel centers around best
func (gc *PixelGeoCoding) fractionalPixelPos(ctx context.Context, st *pixelState, target georef.GeoPos, best image.Point) georef.PixelPos {
	win, err := gc.window(ctx, st, image.Rect(best.X-1, best.Y-1, best.X+2, best.Y+2))
	if err != nil {
		return georef.Center(best.X, best.Y)
	}
	for _, q := range []image.Point{{best.X - 1, best.Y - 1}, {best.X, best.Y - 1}, {best.X - 1, best.Y}, best} {
		if q.X < 0 || q.Y < 0 || q.X > gc.width-2 || q.Y > gc.height-2 {
			continue
		}
		wi, wj, ok := invertQuad(win, q, target)
		if !ok {
			continue
		}
		if inQuad(wi, q.X, gc.width) && inQuad(wj, q.Y, gc.height) {
			return georef.PixelPos{X: float64(q.X) + 0.5 + wi, Y: float64(q.Y) + 0.5 + wj}
		}
	}
	return georef.Center(best.X, best.Y)
}

// inQuad returns true if the weight w is inside the quad starting at the pixel q of a raster of size n.
// The quads of the border also cover the half pixel between the last center and the edge of the raster.
func inQuad(w float64, q, n int) bool {
	lo, hi := -quadWeightEpsilon, 1+quadWeightEpsilon
	if q == 0 {
		lo -= 0.5
	}
	if q == n-2 {
		hi += 0.5
	}
	return w >= lo && w <= hi
}

// invertQuad returns the bilinear weights (wi, wj) of target in the quad of pixel centers starting at q
func invertQuad(win *window, q image.Point, target georef.GeoPos) (float64, float64, bool) {
	lat00, lon00 := win.at(q.X, q.Y)
	lat10, lon10 := win.at(q.X+1, q.Y)
	lat01, lon01 := win.at(q.X, q.Y+1)
	lat11, lon11 := win.at(q.X+1, q.Y+1)
	for _, v := range []float64{lat00, lat10, lat01, lat11, lon00, lon10, lon01, lon11} {
		if math.IsNaN(v) {
			return 0, 0, false
		}
	}
	d10, d01, d11 := geomath.LonDiff(lon10, lon00), geomath.LonDiff(lon01, lon00), geomath.LonDiff(lon11, lon00)
	t := geomath.LonDiff(target.Lon, lon00)

	wi, wj := 0.5, 0.5
	jacobian := mat.NewDense(2, 2, nil)
	for it := 0; it < maxInverseIterations; it++ {
		fLon := geomath.Interpolate2D(wi, wj, 0, d10, d01, d11) - t
		fLat := geomath.Interpolate2D(wi, wj, lat00, lat10, lat01, lat11) - target.Lat
		jacobian.Set(0, 0, d10+wj*(d11-d01-d10))
		jacobian.Set(0, 1, d01+wi*(d11-d01-d10))
		jacobian.Set(1, 0, lat10-lat00+wj*(lat11+lat00-lat01-lat10))
		jacobian.Set(1, 1, lat01-lat00+wi*(lat11+lat00-lat01-lat10))
		var step mat.VecDense
		if err := step.SolveVec(jacobian, mat.NewVecDense(2, []float64{fLon, fLat})); err != nil {
			return 0, 0, false
		}
		wi -= step.AtVec(0)
		wj -= step.AtVec(1)
		if math.Abs(step.AtVec(0)) < inverseTolerance && math.Abs(step.AtVec(1)) < inverseTolerance {
			break
		}
	}
	return wi, wj, !math.IsNaN(wi) && !math.IsNaN(wj)
}

// SubsetBands samples the lat/lon bands at the pixels of the subset defined by def:
// the sample (i, j) of the new bands is the sample (rx+i*sx, ry+j*sy), NaN outside the valid-mask.
// The new bands are not attached to any product.
func (gc *PixelGeoCoding) SubsetBands(ctx context.Context, def *georef.SubsetDef, monitor progress.Monitor) (*raster.Band, *raster.Band, error) {
	const task = "pixel geo-coding subset"
	if err := def.Validate(); err != nil {
		return nil, nil, err
	}
	w, h := def.SceneSize(gc.width, gc.height)
	if w < 2 || h < 2 {
		return nil, nil, georef.NewInvalidArgument("subset", "subset %s of a pixel geo-coding must be at least 2x2 (got %dx%d)", def, w, h)
	}
	m := progress.OrNull(monitor)
	if err := gc.Initialize(ctx, progress.CancelOnly(m)); err != nil {
		return nil, nil, err
	}
	st := gc.state.peek()

	rx, ry := def.Origin()
	sx, sy := def.SubSampling()
	lats, lons := make([]float64, 0, w*h), make([]float64, 0, w*h)
	m.Begin(task, h)
	defer m.Done()
	for j := 0; j < h; j++ {
		if err := checkCancelled(ctx, m, task); err != nil {
			return nil, nil, err
		}
		y := ry + j*sy
		win, err := gc.window(ctx, st, image.Rect(rx, y, rx+(w-1)*sx+1, y+1))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", task, err)
		}
		for i := 0; i < w; i++ {
			lat, lon := win.at(rx+i*sx, y)
			lats, lons = append(lats, lat), append(lons, lon)
		}
		m.Worked(1)
	}
	latBand, err := raster.NewBand(gc.latBand.Name(), w, h, lats)
	if err != nil {
		return nil, nil, err
	}
	lonBand, err := raster.NewBand(gc.lonBand.Name(), w, h, lons)
	if err != nil {
		return nil, nil, err
	}
	return latBand, lonBand, nil
}

func (gc *PixelGeoCoding) Equal(other georef.GeoCoding) bool {
	o, ok := other.(*PixelGeoCoding)
	if !ok || o == nil {
		return false
	}
	if (gc.options.Estimator == nil) != (o.options.Estimator == nil) ||
		(gc.options.Estimator != nil && !gc.options.Estimator.Equal(o.options.Estimator)) {
		return false
	}
	return gc.product.ID() == o.product.ID() &&
		gc.latBand.Name() == o.latBand.Name() && gc.lonBand.Name() == o.lonBand.Name() &&
		gc.options.ValidMask == o.options.ValidMask && gc.options.SearchRadius == o.options.SearchRadius &&
		gc.options.Fractional == o.options.Fractional && gc.options.Tiling == o.options.Tiling &&
		gc.options.Datum == o.options.Datum
}
