package crs_test

import (
	"math"

	"github.com/airbusgeo/georef/internal/crs"
	"github.com/airbusgeo/georef/internal/georef"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decode", func() {
	It("it should decode epsg codes", func() {
		for _, input := range []string{"32631", "EPSG:32631", "epsg:32631", " 32631 "} {
			sr, err := crs.Decode(input)
			Expect(err).To(BeNil(), input)
			Expect(crs.Srid(sr)).To(Equal(32631))
		}
	})

	It("it should decode proj4 strings", func() {
		sr, err := crs.Decode("+proj=longlat +datum=WGS84 +no_defs")
		Expect(err).To(BeNil())
		Expect(crs.DatumOf(sr)).To(Equal(georef.WGS84))
	})

	It("it should cache the crs", func() {
		sr1, err := crs.DecodeEPSG(4326)
		Expect(err).To(BeNil())
		sr2, err := crs.DecodeEPSG(4326)
		Expect(err).To(BeNil())
		Expect(sr1).To(BeIdenticalTo(sr2))
	})

	It("it should recognize the datum", func() {
		sr, err := crs.DecodeEPSG(4322)
		Expect(err).To(BeNil())
		Expect(crs.DatumOf(sr)).To(Equal(georef.WGS72))
	})

	It("it should fail on unknown crs", func() {
		_, err := crs.Decode("EPSG:abc")
		Expect(err).NotTo(BeNil())
		_, err = crs.Decode("not a crs")
		Expect(err).NotTo(BeNil())
	})
})

var _ = Describe("Projection", func() {
	It("it should wrap geographic longitudes", func() {
		xs, ys := []float64{181, -190, 10, 0}, []float64{0, 10, 95, -90}
		crs.Geographic{}.ToLonLat(xs, ys)
		Expect(xs[0]).To(BeNumerically("~", -179, 1e-12))
		Expect(xs[1]).To(BeNumerically("~", 170, 1e-12))
		Expect(math.IsNaN(xs[2])).To(BeTrue())
		Expect(ys[3]).To(Equal(-90.0))
	})

	It("it should project and unproject utm coordinates", func() {
		p, err := crs.NewProjection("EPSG:32631")
		Expect(err).To(BeNil())
		Expect(p.Name()).To(ContainSubstring("UTM zone 31N"))
		xs, ys := []float64{500000}, []float64{0}
		p.ToLonLat(xs, ys)
		Expect(xs[0]).To(BeNumerically("~", 3, 1e-9))
		Expect(ys[0]).To(BeNumerically("~", 0, 1e-9))
		p.FromLonLat(xs, ys)
		Expect(xs[0]).To(BeNumerically("~", 500000, 1e-6))
		Expect(ys[0]).To(BeNumerically("~", 0, 1e-6))
	})

	It("it should transform a point", func() {
		x, y, err := crs.TransformPoint("4326", "32631", 3, 0)
		Expect(err).To(BeNil())
		Expect(x).To(BeNumerically("~", 500000, 1e-6))
		Expect(y).To(BeNumerically("~", 0, 1e-6))
	})
})
