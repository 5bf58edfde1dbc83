// Package crs decodes coordinate reference systems and converts map coordinates to geographic coordinates.
// It is the only package depending on GDAL/PROJ for projection math.
package crs

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/godal"
)

// LonLatEPSG is the EPSG code of the geographic lon/lat coordinates
const LonLatEPSG = 4326

var crsCache = map[string]*godal.SpatialRef{}
var crsCacheLock sync.Mutex

// Decode initializes a crs from an epsg code ("4326", "EPSG:4326"), a proj4 string or a WKT.
// Decoded crs are cached: DO NOT release them.
func Decode(input string) (*godal.SpatialRef, error) {
	input = strings.TrimSpace(input)
	crsCacheLock.Lock()
	defer crsCacheLock.Unlock()

	if crs, ok := crsCache[input]; ok {
		return crs, nil
	}
	crs, err := decode(input)
	if err != nil {
		return nil, fmt.Errorf("decode[%s]: %w", input, err)
	}
	runtime.SetFinalizer(crs, func(crs *godal.SpatialRef) { crs.Close() })
	crsCache[input] = crs
	return crs, nil
}

// DecodeEPSG initializes a crs from an epsg code (only once per epsg)
func DecodeEPSG(epsg int) (*godal.SpatialRef, error) {
	return Decode(strconv.Itoa(epsg))
}

func decode(input string) (*godal.SpatialRef, error) {
	if epsg, err := strconv.Atoi(input); err == nil {
		return godal.NewSpatialRefFromEPSG(epsg)
	}
	if strings.HasPrefix(strings.ToLower(input), "epsg:") {
		epsg, err := strconv.Atoi(input[5:])
		if err != nil {
			return nil, err
		}
		return godal.NewSpatialRefFromEPSG(epsg)
	}
	if strings.HasPrefix(input, "+") {
		return godal.NewSpatialRefFromProj4(input)
	}
	return godal.NewSpatialRefFromWKT(input)
}

// Srid returns the EPSG code of the crs or 0 if not found
func Srid(crs *godal.SpatialRef) int {
	if crs == nil {
		return 0
	}
	for i, entity := range []string{"PROJCS", "GEOGCS", "LOCAL_CS"} {
		if crs.AuthorityName(entity) == "EPSG" {
			if res, err := strconv.Atoi(crs.AuthorityCode(entity)); err == nil {
				return res
			}
		}
		if i == 0 {
			crs.AutoIdentifyEPSG()
		}
	}
	return 0
}

// DatumOf returns the datum of the crs, recognizing WGS84 and WGS72 from their ellipsoid
func DatumOf(crs *godal.SpatialRef) georef.Datum {
	a, errA := crs.SemiMajor()
	b, errB := crs.SemiMinor()
	if errA != nil || errB != nil {
		return georef.WGS84
	}
	for _, d := range []georef.Datum{georef.WGS84, georef.WGS72} {
		if almostEqual(a, d.Ellipsoid.SemiMajor) && almostEqual(b, d.Ellipsoid.SemiMinor) {
			return d
		}
	}
	name := "unknown"
	if srid := Srid(crs); srid != 0 {
		name = "EPSG:" + strconv.Itoa(srid)
	}
	return georef.Datum{Name: name, Ellipsoid: georef.Ellipsoid{Name: name, SemiMajor: a, SemiMinor: b}}
}

func almostEqual(a, b float64) bool {
	return a-b < 1e-3 && b-a < 1e-3
}
