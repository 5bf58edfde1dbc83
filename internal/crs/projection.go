package crs

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/airbusgeo/godal"
)

// Projection converts map coordinates of a crs to geographic longitudes/latitudes (degrees) and back.
// The conversions are done in place; points that cannot be converted are set to NaN.
// Implementations are safe for concurrent use.
type Projection interface {
	// Name identifies the crs: two projections with the same name perform the same conversion
	Name() string
	ToLonLat(x, y []float64)
	FromLonLat(lon, lat []float64)
}

// Geographic is the identity projection of lon/lat coordinates.
// ToLonLat wraps the longitudes to [-180, 180].
type Geographic struct{}

func (Geographic) Name() string {
	return "EPSG:4326"
}

func (Geographic) ToLonLat(x, y []float64) {
	for i := range x {
		if y[i] < -90 || y[i] > 90 {
			x[i], y[i] = math.NaN(), math.NaN()
			continue
		}
		if x[i] < -180 || x[i] > 180 {
			x[i] = math.Mod(x[i]+180, 360)
			if x[i] < 0 {
				x[i] += 360
			}
			x[i] -= 180
		}
	}
}

func (Geographic) FromLonLat(lon, lat []float64) {}

// GDALProjection is a projection backed by GDAL/PROJ
type GDALProjection struct {
	name       string
	crs        *godal.SpatialRef
	mutex      sync.Mutex
	toLonLat   *godal.Transform
	fromLonLat *godal.Transform
}

// NewProjection creates the projection of a crs given as an epsg code, a proj4 string or a WKT
func NewProjection(input string) (*GDALProjection, error) {
	crs, err := Decode(input)
	if err != nil {
		return nil, fmt.Errorf("NewProjection.%w", err)
	}
	return NewProjectionFromCRS(crs)
}

// NewProjectionFromCRS creates the projection of crs.
func NewProjectionFromCRS(crs *godal.SpatialRef) (*GDALProjection, error) {
	wkt, err := crs.WKT()
	if err != nil {
		return nil, fmt.Errorf("NewProjectionFromCRS: %w", err)
	}
	lonLat, err := DecodeEPSG(LonLatEPSG)
	if err != nil {
		return nil, fmt.Errorf("NewProjectionFromCRS.%w", err)
	}
	p := &GDALProjection{name: wkt, crs: crs}
	if p.toLonLat, err = godal.NewTransform(crs, lonLat); err != nil {
		return nil, fmt.Errorf("NewProjectionFromCRS.toLonLat: %w", err)
	}
	if p.fromLonLat, err = godal.NewTransform(lonLat, crs); err != nil {
		p.toLonLat.Close()
		return nil, fmt.Errorf("NewProjectionFromCRS.fromLonLat: %w", err)
	}
	runtime.SetFinalizer(p, func(p *GDALProjection) {
		p.toLonLat.Close()
		p.fromLonLat.Close()
	})
	return p, nil
}

// Name returns the WKT of the crs
func (p *GDALProjection) Name() string {
	return p.name
}

// CRS returns the crs of the map coordinates
func (p *GDALProjection) CRS() *godal.SpatialRef {
	return p.crs
}

func (p *GDALProjection) ToLonLat(x, y []float64) {
	p.transform(p.toLonLat, x, y)
}

func (p *GDALProjection) FromLonLat(lon, lat []float64) {
	p.transform(p.fromLonLat, lon, lat)
}

// transform runs the (non thread-safe) GDAL transform under lock
func (p *GDALProjection) transform(trn *godal.Transform, x, y []float64) {
	if len(x) == 0 {
		return
	}
	ok := make([]bool, len(x))
	p.mutex.Lock()
	// The error only reports that some points failed: they are flagged in ok
	_ = trn.TransformEx(x, y, nil, ok)
	p.mutex.Unlock()
	for i := range ok {
		if !ok[i] {
			x[i], y[i] = math.NaN(), math.NaN()
		}
	}
}

// TransformPoint converts the point (x, y) from the crs "from" to the crs "to"
func TransformPoint(from, to string, x, y float64) (float64, float64, error) {
	src, err := Decode(from)
	if err != nil {
		return 0, 0, fmt.Errorf("TransformPoint.%w", err)
	}
	dst, err := Decode(to)
	if err != nil {
		return 0, 0, fmt.Errorf("TransformPoint.%w", err)
	}
	trn, err := godal.NewTransform(src, dst)
	if err != nil {
		return 0, 0, fmt.Errorf("TransformPoint: %w", err)
	}
	defer trn.Close()
	xs, ys := []float64{x}, []float64{y}
	if err := trn.TransformEx(xs, ys, nil, nil); err != nil {
		return 0, 0, fmt.Errorf("TransformPoint(%f, %f): %w", x, y, err)
	}
	return xs[0], ys[0], nil
}
