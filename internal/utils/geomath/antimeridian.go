package geomath

import "math"

// PositiveLonMin returns the smallest positive (>=0) longitude, or 180 if there is none
func PositiveLonMin(lons ...float64) float64 {
	lonMin := 180.0
	for _, lon := range lons {
		if lon >= 0 && lon < lonMin {
			lonMin = lon
		}
	}
	return lonMin
}

// NegativeLonMax returns the largest negative longitude, or -180 if there is none
func NegativeLonMax(lons ...float64) float64 {
	lonMax := -180.0
	for _, lon := range lons {
		if lon < 0 && lon > lonMax {
			lonMax = lon
		}
	}
	return lonMax
}

// IsCrossingMeridianInsideQuad returns true if the quad defined by the longitudes of its corners
// straddles the antimeridian. Only scenes that cross the antimeridian can have such quads.
func IsCrossingMeridianInsideQuad(sceneCrosses bool, lons ...float64) bool {
	if !sceneCrosses || len(lons) == 0 {
		return false
	}
	lonMin, lonMax := lons[0], lons[0]
	for _, lon := range lons[1:] {
		lonMin = math.Min(lonMin, lon)
		lonMax = math.Max(lonMax, lon)
	}
	return math.Abs(lonMax-lonMin) > 180
}

// QuadLonRange returns the longitude range [lonMin, lonMax] covered by a quad.
// When the quad straddles the antimeridian, lonMax is unwrapped beyond 180.
func QuadLonRange(crossing bool, lons ...float64) (float64, float64) {
	if crossing {
		return PositiveLonMin(lons...), NegativeLonMax(lons...) + 360
	}
	lonMin, lonMax := math.Inf(1), math.Inf(-1)
	for _, lon := range lons {
		lonMin = math.Min(lonMin, lon)
		lonMax = math.Max(lonMax, lon)
	}
	return lonMin, lonMax
}

// LonDiff returns a-b wrapped to ]-180, 180]
func LonDiff(a, b float64) float64 {
	d := a - b
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// IsCrossingAntimeridian returns true if two consecutive longitudes of the polyline are more than 180° apart.
// NaN values are skipped.
func IsCrossingAntimeridian(lons ...float64) bool {
	prev := math.NaN()
	for _, lon := range lons {
		if math.IsNaN(lon) {
			continue
		}
		if !math.IsNaN(prev) && math.Abs(lon-prev) > 180 {
			return true
		}
		prev = lon
	}
	return false
}

// BoundaryCenters returns the centers of the pixels along the boundary of a raster of size (width, height),
// as a closed polyline sampled every step pixels (the corners are always included).
func BoundaryCenters(width, height, step int) (xs []float64, ys []float64) {
	if width <= 0 || height <= 0 {
		return nil, nil
	}
	if step < 1 {
		step = 1
	}
	add := func(i, j int) {
		x, y := float64(i)+0.5, float64(j)+0.5
		if n := len(xs); n > 0 && xs[n-1] == x && ys[n-1] == y {
			return
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	edge := func(n int, f func(k int)) {
		for k := 0; k < n-1; k += step {
			f(k)
		}
		f(n - 1)
	}
	edge(width, func(k int) { add(k, 0) })
	edge(height, func(k int) { add(width-1, k) })
	edge(width, func(k int) { add(width-1-k, height-1) })
	edge(height, func(k int) { add(0, height-1-k) })
	return xs, ys
}
