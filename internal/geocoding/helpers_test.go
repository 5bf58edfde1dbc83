package geocoding_test

import (
	"image"
	"math"

	"github.com/airbusgeo/georef/internal/crs"
	"github.com/airbusgeo/georef/internal/geocoding"
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/raster"
	"github.com/airbusgeo/georef/internal/utils/affine"
	"github.com/airbusgeo/georef/internal/utils/geomath"
	. "github.com/onsi/gomega"
)

// lonLatGeoCoding returns the geo-coding of a lon/lat raster whose top-left corner is (lon0, lat0), with square pixels of res degrees
func lonLatGeoCoding(lon0, lat0, res float64, width, height int) *geocoding.CRSGeoCoding {
	gc, err := geocoding.NewCRSGeoCoding(affine.NewAffine(lon0, res, 0, lat0, 0, -res), crs.Geographic{}, width, height, georef.WGS84)
	Expect(err).To(BeNil())
	return gc
}

// latLonProduct returns a product with the bands "lat" and "lon" sampled at the pixel centers from f
func latLonProduct(width, height int, f func(x, y float64) (float64, float64)) *raster.Product {
	p, err := raster.NewProduct("latlon", width, height)
	Expect(err).To(BeNil())
	lats, lons := make([]float64, 0, width*height), make([]float64, 0, width*height)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			lat, lon := f(float64(i)+0.5, float64(j)+0.5)
			lats, lons = append(lats, lat), append(lons, lon)
		}
	}
	_, err = p.AddBand("lat", lats)
	Expect(err).To(BeNil())
	_, err = p.AddBand("lon", lons)
	Expect(err).To(BeNil())
	return p
}

// tiePointGrids returns the lat/lon grids of size (gw, gh) sampled from f at the positions off+k*ss
func tiePointGrids(gw, gh int, off, ss float64, f func(x, y float64) (float64, float64)) (*raster.TiePointGrid, *raster.TiePointGrid) {
	lats, lons := make([]float64, 0, gw*gh), make([]float64, 0, gw*gh)
	for j := 0; j < gh; j++ {
		for i := 0; i < gw; i++ {
			lat, lon := f(off+float64(i)*ss, off+float64(j)*ss)
			lats, lons = append(lats, lat), append(lons, lon)
		}
	}
	latGrid, err := raster.NewTiePointGrid("latitude", gw, gh, off, off, ss, ss, lats, raster.DiscontinuityNone)
	Expect(err).To(BeNil())
	lonGrid, err := raster.NewTiePointGrid("longitude", gw, gh, off, off, ss, ss, lons, raster.DiscontinuityAuto)
	Expect(err).To(BeNil())
	return latGrid, lonGrid
}

// skewedField is a smooth, slightly rotated lat/lon field
func skewedField(x, y float64) (float64, float64) {
	return 45 - 0.01*y + 0.002*x, 10 + 0.01*x + 0.003*y
}

func expectGeoPosClose(actual, expected georef.GeoPos, tolerance float64) {
	ExpectWithOffset(1, actual.IsValid()).To(BeTrue(), "%v is invalid", actual)
	ExpectWithOffset(1, actual.Lat).To(BeNumerically("~", expected.Lat, tolerance))
	ExpectWithOffset(1, geomath.LonDiff(actual.Lon, expected.Lon)).To(BeNumerically("~", 0, tolerance))
}

func expectPixelPosClose(actual, expected georef.PixelPos, tolerance float64) {
	ExpectWithOffset(1, actual.IsValid()).To(BeTrue(), "%v is invalid", actual)
	ExpectWithOffset(1, math.Hypot(actual.X-expected.X, actual.Y-expected.Y)).To(BeNumerically("<=", tolerance), "%v != %v", actual, expected)
}

// expectSubsetConsistent checks that dest is the subset of source defined by def, at pixel corners and pixel centers
func expectSubsetConsistent(source, dest georef.GeoCoding, def *georef.SubsetDef, width, height int, tolerance float64) {
	for _, p := range []georef.PixelPos{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1.5, Y: 1.5}, {X: float64(width) - 0.5, Y: float64(height) - 0.5}, {X: 0.25, Y: float64(height) - 1}} {
		expectGeoPosClose(dest.GeoPos(p), source.GeoPos(def.SourcePixel(p)), tolerance)
	}
}

func regionOf(x, y, w, h int) *image.Rectangle {
	r := image.Rect(x, y, x+w, y+h)
	return &r
}
