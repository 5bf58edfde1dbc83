// Package geomath gathers the spherical helpers of the geo-codings:
// rotation of the geographic frame, antimeridian handling and grid interpolation.
package geomath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rotator rotates the geographic coordinate system so that a reference point moves to the origin
// (lon=0, lat=0), or a pole moves to the north pole. Fitting in the rotated frame keeps the fitted
// points away from the antimeridian and from the poles.
type Rotator struct {
	m [3][3]float64
}

// NewRotator creates the rotation moving (lon, lat) to (0, 0)
func NewRotator(lon, lat float64) *Rotator {
	return NewRotatorAlpha(lon, lat, 0)
}

// NewRotatorAlpha creates the rotation moving (lon, lat) to (0, 0), followed by
// a rotation of alpha degrees around the axis going through the new origin.
func NewRotatorAlpha(lon, lat, alpha float64) *Rotator {
	m := mul(rotY(lat), rotZ(-lon))
	if alpha != 0 {
		m = mul(rotX(alpha), m)
	}
	return &Rotator{m: m}
}

// NewRotatedPoleRotator creates the rotation of a rotated-pole grid,
// moving the pole (poleLon, poleLat) to the north pole.
func NewRotatedPoleRotator(poleLon, poleLat float64) *Rotator {
	return &Rotator{m: mul(rotY(poleLat-90), rotZ(-poleLon))}
}

// Transform rotates the point (lon, lat), in degrees
func (r *Rotator) Transform(lon, lat float64) (float64, float64) {
	return fromVec(apply(r.m, UnitVector(lon, lat)))
}

// TransformInverse applies the inverse rotation to the point (lon, lat), in degrees
func (r *Rotator) TransformInverse(lon, lat float64) (float64, float64) {
	return fromVec(apply(transpose(r.m), UnitVector(lon, lat)))
}

// TransformArrays rotates the points (lons[i], lats[i]) in place
func (r *Rotator) TransformArrays(lons, lats []float64) {
	for i := range lons {
		lons[i], lats[i] = r.Transform(lons[i], lats[i])
	}
}

// TransformInverseArrays applies the inverse rotation to the points (lons[i], lats[i]) in place
func (r *Rotator) TransformInverseArrays(lons, lats []float64) {
	t := transpose(r.m)
	for i := range lons {
		lons[i], lats[i] = fromVec(apply(t, UnitVector(lons[i], lats[i])))
	}
}

// UnitVector returns the cartesian coordinates of (lon, lat) on the unit sphere
func UnitVector(lon, lat float64) r3.Vec {
	slon, clon := math.Sincos(DegToRad(lon))
	slat, clat := math.Sincos(DegToRad(lat))
	return r3.Vec{X: clat * clon, Y: clat * slon, Z: slat}
}

// MeanDirection returns the (lon, lat) of the normalized sum of the unit vectors of the points.
// NaN points are ignored. It returns NaN, NaN if there is no valid point or if the points cancel out.
func MeanDirection(lons, lats []float64) (float64, float64) {
	var sum r3.Vec
	for i := range lons {
		if math.IsNaN(lons[i]) || math.IsNaN(lats[i]) {
			continue
		}
		sum = r3.Add(sum, UnitVector(lons[i], lats[i]))
	}
	if r3.Norm(sum) < 1e-12 {
		return math.NaN(), math.NaN()
	}
	return fromVec(r3.Unit(sum))
}

func fromVec(v r3.Vec) (float64, float64) {
	return RadToDeg(math.Atan2(v.Y, v.X)), RadToDeg(math.Atan2(v.Z, math.Hypot(v.X, v.Y)))
}

func apply(m [3][3]float64, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func mul(a, b [3][3]float64) [3][3]float64 {
	var c [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return c
}

func transpose(a [3][3]float64) [3][3]float64 {
	var t [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = a[j][i]
		}
	}
	return t
}

func rotX(angle float64) [3][3]float64 {
	s, c := math.Sincos(DegToRad(angle))
	return [3][3]float64{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

// rotY maps the point (lon=0, lat=angle) to the origin
func rotY(angle float64) [3][3]float64 {
	s, c := math.Sincos(DegToRad(angle))
	return [3][3]float64{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

func rotZ(angle float64) [3][3]float64 {
	s, c := math.Sincos(DegToRad(angle))
	return [3][3]float64{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// RadToDeg converts radians to degrees
func RadToDeg(r float64) float64 {
	return r * 180 / math.Pi
}

// DegToRad converts degrees to radians
func DegToRad(d float64) float64 {
	return d * math.Pi / 180
}
