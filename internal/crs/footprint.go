package crs

import (
	"fmt"
	"math"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils/geomath"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/wkt"
)

const (
	// accuracyPc is the tolerated distance between a densified edge and the true edge, as a ratio of the edge length
	accuracyPc          = 0.01
	densifyMaxRecursion = 5
)

// Footprint returns the outline of a raster of size (width, height) in geographic coordinates (SRID 4326),
// sampling the pixel-corner boundary every step pixels and densifying the edges that are not straight in lon/lat.
// If the raster crosses the antimeridian, the longitudes are unwrapped beyond 180.
func Footprint(gc georef.GeoCoding, width, height, step int) (*geom.Polygon, error) {
	if width <= 0 || height <= 0 {
		return nil, georef.NewInvalidArgument("size", "invalid raster size %dx%d", width, height)
	}
	if step < 1 {
		step = 1
	}
	var xs, ys []float64
	edge := func(n int, f func(k int) (float64, float64)) {
		for k := 0; k < n; k += step {
			x, y := f(k)
			xs, ys = append(xs, x), append(ys, y)
		}
	}
	w, h := float64(width), float64(height)
	edge(width, func(k int) (float64, float64) { return float64(k), 0 })
	edge(height, func(k int) (float64, float64) { return w, float64(k) })
	edge(width, func(k int) (float64, float64) { return w - float64(k), h })
	edge(height, func(k int) (float64, float64) { return 0, h - float64(k) })

	lons, lats := make([]float64, len(xs)), make([]float64, len(xs))
	for i := range xs {
		g := gc.GeoPos(georef.PixelPos{X: xs[i], Y: ys[i]})
		if !g.IsValid() {
			return nil, fmt.Errorf("footprint: invalid geographic position at pixel (%f, %f)", xs[i], ys[i])
		}
		lons[i], lats[i] = g.Lon, g.Lat
	}

	forward := func(x, y float64) (float64, float64) {
		g := gc.GeoPos(georef.PixelPos{X: x, Y: y})
		return g.Lon, g.Lat
	}
	pts := make([]float64, 0, 2*len(xs)+2)
	for i := range xs {
		j := (i + 1) % len(xs)
		pts = append(pts, lons[i], lats[i])
		accuracy := lonLatDistance(lons[i], lats[i], lons[j], lats[j]) * accuracyPc
		pts = append(pts, densifyEdge(forward, xs[i], ys[i], xs[j], ys[j], lons[i], lats[i], lons[j], lats[j], accuracy, densifyMaxRecursion)...)
	}
	pts = append(pts, pts[0], pts[1])

	lonsOnly := make([]float64, 0, len(pts)/2)
	for i := 0; i < len(pts); i += 2 {
		lonsOnly = append(lonsOnly, pts[i])
	}
	if gc.CrossesAntimeridian() || geomath.IsCrossingAntimeridian(lonsOnly...) {
		for i := 0; i < len(pts); i += 2 {
			if pts[i] < 0 {
				pts[i] += 360
			}
		}
	}

	p := geom.NewPolygonFlat(geom.XY, pts, []int{len(pts)})
	p.SetSRID(LonLatEPSG)
	return p, nil
}

// FootprintWKT returns the footprint as Well-Known-Text
func FootprintWKT(p *geom.Polygon) (string, error) {
	return wkt.Marshal(p)
}

// FootprintEWKBHex returns the footprint as hex-encoded Extended Well-Known-Binary
func FootprintEWKBHex(p *geom.Polygon) (string, error) {
	return ewkbhex.Encode(p, ewkbhex.NDR)
}

// lonLatDistance returns the approximate distances in meter between two lon/lat points
func lonLatDistance(lon1, lat1, lon2, lat2 float64) float64 {
	earthRadius := 6371000.
	lon1, lat1, lon2, lat2 = geomath.DegToRad(lon1), geomath.DegToRad(lat1), geomath.DegToRad(lon2), geomath.DegToRad(lat2)
	t := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	if t > 1 {
		return 0
	}
	return earthRadius * math.Acos(t)
}

// lonLatMidPoint returns the middle point of two lon/lat points, following the geodetic line
func lonLatMidPoint(lon1, lat1, lon2, lat2 float64) (float64, float64) {
	lon1, lat1, lon2, lat2 = geomath.DegToRad(lon1), geomath.DegToRad(lat1), geomath.DegToRad(lon2), geomath.DegToRad(lat2)
	dlon := lon2 - lon1
	bx := math.Cos(lat2) * math.Cos(dlon)
	by := math.Cos(lat2) * math.Sin(dlon)
	latm := math.Atan2(math.Sin(lat1)+math.Sin(lat2), math.Hypot(math.Cos(lat1)+bx, by))
	lonm := lon1 + math.Atan2(by, math.Cos(lat1)+bx)
	return geomath.RadToDeg(lonm), geomath.RadToDeg(latm)
}

// densifyEdge returns an array of flat lon/lat points so that the difference between
// the pixel segment ([x1, y1], [x2, y2]) and the polyline (lon1, lat1], []returnedValue, lon2, lat2]) is lower than accuracy
func densifyEdge(forward func(x, y float64) (float64, float64), x1, y1, x2, y2, lon1, lat1, lon2, lat2, accuracy float64, recursion int) []float64 {
	xm, ym := (x1+x2)/2, (y1+y2)/2
	lonm, latm := forward(xm, ym)
	if math.IsNaN(lonm) || math.IsNaN(latm) {
		return nil
	}
	lonm2, latm2 := lonLatMidPoint(lon1, lat1, lon2, lat2)
	if lonLatDistance(lonm, latm, lonm2, latm2) <= accuracy {
		return nil
	}
	if recursion == 0 {
		return []float64{lonm, latm}
	}
	return append(append(
		densifyEdge(forward, x1, y1, xm, ym, lon1, lat1, lonm, latm, accuracy, recursion-1),
		lonm, latm),
		densifyEdge(forward, xm, ym, x2, y2, lonm, latm, lon2, lat2, accuracy, recursion-1)...)
}
