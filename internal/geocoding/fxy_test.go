package geocoding_test

import (
	"github.com/airbusgeo/georef/internal/geocoding"
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils/poly"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func mustPoly(kind poly.Kind, coefs ...float64) *poly.Sum {
	s, err := poly.New(kind, coefs)
	Expect(err).To(BeNil())
	return s
}

var _ = Describe("FXYGeoCoding", func() {
	var (
		gc            *geocoding.FXYGeoCoding
		returnedError error
		funcs         geocoding.FXYFunctions
	)

	JustBeforeEach(func() {
		gc, returnedError = geocoding.NewFXYGeoCoding(0, 0, 1, 1, funcs, georef.WGS72)
	})

	BeforeEach(func() {
		// lat = 50 - 0.01*y, lon = 3 + 0.02*x
		funcs = geocoding.FXYFunctions{
			Lat:    mustPoly(poly.Linear, 50, 0, -0.01),
			Lon:    mustPoly(poly.Linear, 3, 0.02, 0),
			PixelX: mustPoly(poly.Linear, -150, 0, 50),
			PixelY: mustPoly(poly.Linear, 5000, -100, 0),
		}
	})

	Context("direct and inverse polynomials", func() {
		It("it should compute the positions", func() {
			Expect(returnedError).To(BeNil())
			Expect(gc.Kind()).To(Equal(georef.KindFXY))
			Expect(gc.Datum()).To(Equal(georef.WGS72))
			Expect(gc.CanGetPixelPos()).To(BeTrue())
			expectGeoPosClose(gc.GeoPos(georef.PixelPos{X: 100, Y: 200}), georef.GeoPos{Lat: 48, Lon: 5}, 1e-12)
		})

		It("it should round trip", func() {
			for _, p := range []georef.PixelPos{{X: 0.5, Y: 0.5}, {X: 100, Y: 200}, {X: 1234.25, Y: 17.75}} {
				expectPixelPosClose(gc.PixelPos(gc.GeoPos(p)), p, 1e-4)
			}
		})

		It("it should copy the polynomials", func() {
			Expect(gc.Functions().Lat).NotTo(BeIdenticalTo(funcs.Lat))
			Expect(gc.Functions().Lat.Equal(funcs.Lat)).To(BeTrue())
		})

		It("it should subset the raster", func() {
			def, err := georef.NewSubsetDef(regionOf(10, 20, 100, 50), 3, 2)
			Expect(err).To(BeNil())
			sub, err := gc.Subset(def)
			Expect(err).To(BeNil())
			offX, offY := sub.PixelOffset()
			Expect(offX).To(Equal(10.0))
			Expect(offY).To(Equal(20.0))
			sizeX, sizeY := sub.PixelSize()
			Expect(sizeX).To(Equal(3.0))
			Expect(sizeY).To(Equal(2.0))
			expectSubsetConsistent(gc, sub, def, 34, 25, 1e-9)

			for _, pair := range [][2]*poly.Sum{
				{sub.Functions().Lat, gc.Functions().Lat}, {sub.Functions().Lon, gc.Functions().Lon},
				{sub.Functions().PixelX, gc.Functions().PixelX}, {sub.Functions().PixelY, gc.Functions().PixelY},
			} {
				Expect(pair[0]).NotTo(BeIdenticalTo(pair[1]))
				Expect(pair[0].Equal(pair[1])).To(BeTrue())
			}
			Expect(sub.Equal(gc)).To(BeFalse())
			Expect(sub.Datum()).To(Equal(gc.Datum()))
		})

		It("it should scale the subset offset by the pixel size", func() {
			src, err := geocoding.NewFXYGeoCoding(5, 7, 2, 0.5, funcs, georef.WGS72)
			Expect(err).To(BeNil())
			def, err := georef.NewSubsetDef(regionOf(10, 20, 100, 50), 3, 2)
			Expect(err).To(BeNil())
			sub, err := src.Subset(def)
			Expect(err).To(BeNil())
			offX, offY := sub.PixelOffset()
			Expect([]float64{offX, offY}).To(Equal([]float64{25, 17}))
			sizeX, sizeY := sub.PixelSize()
			Expect([]float64{sizeX, sizeY}).To(Equal([]float64{6, 1}))
			expectSubsetConsistent(src, sub, def, 34, 25, 1e-9)
		})

		It("it should be equal to its full subset", func() {
			sub, err := gc.Subset(nil)
			Expect(err).To(BeNil())
			Expect(sub.Equal(gc)).To(BeTrue())
			Expect(sub.Functions().Lat).NotTo(BeIdenticalTo(gc.Functions().Lat))
		})
	})

	Context("without inverse polynomials", func() {
		BeforeEach(func() {
			funcs.PixelX, funcs.PixelY = nil, nil
		})
		It("it should not compute pixel positions", func() {
			Expect(returnedError).To(BeNil())
			Expect(gc.CanGetPixelPos()).To(BeFalse())
			Expect(gc.PixelPos(georef.GeoPos{Lat: 48, Lon: 5}).IsValid()).To(BeFalse())
		})
	})

	Context("with a single inverse polynomial", func() {
		BeforeEach(func() {
			funcs.PixelY = nil
		})
		It("it should return an invalid argument error", func() {
			Expect(georef.IsError(returnedError, georef.InvalidArgument)).To(BeTrue())
		})
	})

	Context("without latitude polynomial", func() {
		BeforeEach(func() {
			funcs.Lat = nil
		})
		It("it should return an invalid argument error", func() {
			Expect(georef.IsError(returnedError, georef.InvalidArgument)).To(BeTrue())
		})
	})
})
