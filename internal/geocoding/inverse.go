package geocoding

import (
	"math"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils/geomath"
)

const (
	maxInverseIterations = 20
	inverseTolerance     = 1e-10
	jacobianStep         = 1e-3
)

// searchBounds limits the pixels visited by refineInverse
type searchBounds struct {
	minX, minY, maxX, maxY float64
}

// rasterBounds returns the bounds of a (width, height) raster extended by margin pixels
func rasterBounds(width, height int, margin float64) *searchBounds {
	return &searchBounds{minX: -margin, minY: -margin, maxX: float64(width) + margin, maxY: float64(height) + margin}
}

func (b *searchBounds) clamp(p georef.PixelPos) georef.PixelPos {
	if b == nil {
		return p
	}
	return georef.PixelPos{X: math.Min(math.Max(p.X, b.minX), b.maxX), Y: math.Min(math.Max(p.Y, b.minY), b.maxY)}
}

// refineInverse searches the pixel whose forward transform is target, starting from seed.
// It runs a Newton iteration with a finite-difference jacobian of forward.
// Longitude differences are taken the shortest way around the globe.
// It returns InvalidPixelPos if forward fails along the way, and the last position if the jacobian is singular.
// With bounds, every iterate is clamped to them: the longitude residual is periodic, and an unbounded step
// may land on a position whose longitude differs from target by a multiple of 360°.
func refineInverse(forward func(georef.PixelPos) georef.GeoPos, target georef.GeoPos, seed georef.PixelPos, bounds *searchBounds) georef.PixelPos {
	p := bounds.clamp(seed)
	for it := 0; it < maxInverseIterations; it++ {
		g := forward(p)
		if !g.IsValid() {
			return georef.InvalidPixelPos()
		}
		rLon, rLat := geomath.LonDiff(g.Lon, target.Lon), g.Lat-target.Lat
		if rLon == 0 && rLat == 0 {
			return p
		}

		gx0, gx1 := forward(georef.PixelPos{X: p.X - jacobianStep, Y: p.Y}), forward(georef.PixelPos{X: p.X + jacobianStep, Y: p.Y})
		gy0, gy1 := forward(georef.PixelPos{X: p.X, Y: p.Y - jacobianStep}), forward(georef.PixelPos{X: p.X, Y: p.Y + jacobianStep})
		if !gx0.IsValid() || !gx1.IsValid() || !gy0.IsValid() || !gy1.IsValid() {
			return georef.InvalidPixelPos()
		}
		// jacobian [[a, b], [c, d]] of (lon, lat) wrt (x, y)
		a := geomath.LonDiff(gx1.Lon, gx0.Lon) / (2 * jacobianStep)
		b := geomath.LonDiff(gy1.Lon, gy0.Lon) / (2 * jacobianStep)
		c := (gx1.Lat - gx0.Lat) / (2 * jacobianStep)
		d := (gy1.Lat - gy0.Lat) / (2 * jacobianStep)
		det := a*d - b*c
		if det == 0 || math.IsNaN(det) {
			return p
		}
		dx := (d*rLon - b*rLat) / det
		dy := (a*rLat - c*rLon) / det
		p = bounds.clamp(georef.PixelPos{X: p.X - dx, Y: p.Y - dy})
		if math.Abs(dx) < inverseTolerance && math.Abs(dy) < inverseTolerance {
			break
		}
	}
	return p
}
