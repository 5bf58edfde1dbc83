// Package georef defines the coordinate primitives, the datum and the transform contract
// shared by every geo-coding of the engine.
package georef

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/airbusgeo/georef/internal/utils"
)

// GeoPos is a geographic position in degrees
type GeoPos struct {
	Lat float64
	Lon float64
}

// InvalidGeoPos returns the invalid sentinel (NaN, NaN)
func InvalidGeoPos() GeoPos {
	return GeoPos{Lat: math.NaN(), Lon: math.NaN()}
}

// IsValid returns true if both components are finite and the latitude is in [-90, 90]
func (g GeoPos) IsValid() bool {
	return !math.IsNaN(g.Lat) && !math.IsInf(g.Lat, 0) && !math.IsNaN(g.Lon) && !math.IsInf(g.Lon, 0) &&
		g.Lat >= -90 && g.Lat <= 90
}

// Normalize returns the position with its longitude wrapped to [-180, 180]
func (g GeoPos) Normalize() GeoPos {
	if !g.IsValid() {
		return InvalidGeoPos()
	}
	return GeoPos{Lat: g.Lat, Lon: NormalizeLon(g.Lon)}
}

// String returns "lat,lon" with the shortest representation that parses back to the same values.
// The invalid sentinel is formatted as "NaN,NaN".
func (g GeoPos) String() string {
	return utils.F64ToS(g.Lat) + "," + utils.F64ToS(g.Lon)
}

// ParseGeoPos parses the output of GeoPos.String
func ParseGeoPos(s string) (GeoPos, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return InvalidGeoPos(), fmt.Errorf("parseGeoPos: expecting 'lat,lon', got '%s'", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return InvalidGeoPos(), fmt.Errorf("parseGeoPos.lat: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return InvalidGeoPos(), fmt.Errorf("parseGeoPos.lon: %w", err)
	}
	return GeoPos{Lat: lat, Lon: lon}, nil
}

// NormalizeLon wraps a longitude to [-180, 180] with a period of 360.
// Values already in [-180, 180] are returned unchanged. Non-finite values return NaN.
func NormalizeLon(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return math.NaN()
	}
	if lon >= -180 && lon <= 180 {
		return lon
	}
	l := math.Mod(lon+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

// NormalizeLat returns lat if it is in [-90, 90], NaN otherwise
func NormalizeLat(lat float64) float64 {
	if lat < -90 || lat > 90 || math.IsNaN(lat) {
		return math.NaN()
	}
	return lat
}

// LonRange is the range of a set of longitudes that may have been unwrapped past 180
// (e.g. [170, 190] for a scene crossing the antimeridian).
type LonRange struct {
	Min float64
	Max float64
}

// Normalize maps a longitude in [-180, 180] into the range.
// It returns NaN if lon is outside [-180, 180] (180 itself is valid) or cannot be mapped into the range.
func (r LonRange) Normalize(lon float64) float64 {
	if lon < -180 || lon > 180 || math.IsNaN(lon) {
		return math.NaN()
	}
	if lon < r.Min {
		lon += 360
	}
	if lon < r.Min || lon > r.Max {
		return math.NaN()
	}
	return lon
}

// Contains returns true if lon is in [Min, Max]
func (r LonRange) Contains(lon float64) bool {
	return lon >= r.Min && lon <= r.Max
}
