package crs_test

import (
	"github.com/airbusgeo/georef/internal/crs"
	"github.com/airbusgeo/georef/internal/georef"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// lonLatGeoCoding maps the pixel (x, y) to (lon0 + res*x, lat0 - res*y), wrapping the longitudes
type lonLatGeoCoding struct {
	lon0, lat0, res float64
	crosses         bool
}

func (gc lonLatGeoCoding) Kind() georef.Kind           { return georef.KindCRS }
func (gc lonLatGeoCoding) CanGetGeoPos() bool          { return true }
func (gc lonLatGeoCoding) CanGetPixelPos() bool        { return true }
func (gc lonLatGeoCoding) Datum() georef.Datum         { return georef.WGS84 }
func (gc lonLatGeoCoding) CrossesAntimeridian() bool   { return gc.crosses }
func (gc lonLatGeoCoding) Equal(georef.GeoCoding) bool { return false }

func (gc lonLatGeoCoding) GeoPos(p georef.PixelPos) georef.GeoPos {
	return georef.GeoPos{Lat: gc.lat0 - gc.res*p.Y, Lon: georef.NormalizeLon(gc.lon0 + gc.res*p.X)}
}

func (gc lonLatGeoCoding) PixelPos(g georef.GeoPos) georef.PixelPos {
	return georef.PixelPos{X: (g.Lon - gc.lon0) / gc.res, Y: (gc.lat0 - g.Lat) / gc.res}
}

var _ = Describe("Footprint", func() {
	It("it should outline the raster", func() {
		p, err := crs.Footprint(lonLatGeoCoding{lon0: 5, lat0: 60, res: 1}, 10, 20, 5)
		Expect(err).To(BeNil())
		Expect(p.SRID()).To(Equal(crs.LonLatEPSG))
		bounds := p.Bounds()
		Expect(bounds.Min(0)).To(BeNumerically("~", 5, 1e-9))
		Expect(bounds.Max(0)).To(BeNumerically("~", 15, 1e-9))
		Expect(bounds.Min(1)).To(BeNumerically("~", 40, 1e-9))
		Expect(bounds.Max(1)).To(BeNumerically("~", 60, 1e-9))

		s, err := crs.FootprintWKT(p)
		Expect(err).To(BeNil())
		Expect(s).To(HavePrefix("POLYGON ((5 60, 10 60, 15 60"))
		h, err := crs.FootprintEWKBHex(p)
		Expect(err).To(BeNil())
		Expect(h).NotTo(BeEmpty())
	})

	It("it should unwrap the longitudes across the antimeridian", func() {
		p, err := crs.Footprint(lonLatGeoCoding{lon0: 178, lat0: 10, res: 1, crosses: true}, 4, 2, 1)
		Expect(err).To(BeNil())
		bounds := p.Bounds()
		Expect(bounds.Min(0)).To(BeNumerically("~", 178, 1e-9))
		Expect(bounds.Max(0)).To(BeNumerically("~", 182, 1e-9))
	})

	It("it should fail on invalid positions", func() {
		_, err := crs.Footprint(lonLatGeoCoding{lon0: 0, lat0: 92, res: 1}, 4, 4, 1)
		Expect(err).NotTo(BeNil())
		_, err = crs.Footprint(lonLatGeoCoding{lon0: 0, lat0: 0, res: 1}, 0, 4, 1)
		Expect(georef.IsError(err, georef.InvalidArgument)).To(BeTrue())
	})
})
