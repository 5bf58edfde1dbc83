package geomath_test

import (
	"image"
	"math"

	"github.com/airbusgeo/georef/internal/utils/geomath"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Antimeridian", func() {
	var lons []float64
	var sceneCrosses bool

	var (
		itShouldNotCross = func() {
			It("it should not be crossing inside the quad", func() {
				Expect(geomath.IsCrossingMeridianInsideQuad(sceneCrosses, lons...)).To(BeFalse())
			})
		}
		itShouldCross = func() {
			It("it should be crossing inside the quad", func() {
				Expect(geomath.IsCrossingMeridianInsideQuad(sceneCrosses, lons...)).To(BeTrue())
			})
		}
		itShouldHaveExtrema = func(positiveMin, negativeMax float64) {
			It("it should compute the extrema on each side of the antimeridian", func() {
				Expect(geomath.PositiveLonMin(lons...)).To(Equal(positiveMin))
				Expect(geomath.NegativeLonMax(lons...)).To(Equal(negativeMax))
			})
		}
	)

	BeforeEach(func() {
		sceneCrosses = true
	})

	Context("quad east of the antimeridian", func() {
		BeforeEach(func() {
			lons = []float64{170, 170, 179, 179}
		})
		itShouldNotCross()
		itShouldHaveExtrema(170, -180)
	})

	Context("quad straddling the antimeridian", func() {
		BeforeEach(func() {
			lons = []float64{160, 150, -169, 165}
		})
		itShouldCross()
		itShouldHaveExtrema(150, -169)

		It("it should unwrap the longitude range", func() {
			lonMin, lonMax := geomath.QuadLonRange(true, lons...)
			Expect(lonMin).To(Equal(150.0))
			Expect(lonMax).To(Equal(191.0))
		})

		Context("in a scene that does not cross", func() {
			BeforeEach(func() {
				sceneCrosses = false
			})
			itShouldNotCross()
		})
	})

	Context("quad around the prime meridian", func() {
		BeforeEach(func() {
			lons = []float64{-1, 1, -2, 2}
		})
		itShouldNotCross()
		itShouldHaveExtrema(1, -1)
	})

	Describe("LonDiff", func() {
		It("it should take the shortest way", func() {
			Expect(geomath.LonDiff(-179, 179)).To(BeNumerically("~", 2, 1e-12))
			Expect(geomath.LonDiff(179, -179)).To(BeNumerically("~", -2, 1e-12))
			Expect(geomath.LonDiff(10, -10)).To(BeNumerically("~", 20, 1e-12))
			Expect(geomath.LonDiff(180, 0)).To(Equal(180.0))
			Expect(geomath.LonDiff(-180, 0)).To(Equal(180.0))
		})
	})

	Describe("IsCrossingAntimeridian", func() {
		It("it should detect a jump in a polyline", func() {
			Expect(geomath.IsCrossingAntimeridian(170, 175, 179.5, -179.5, -175)).To(BeTrue())
			Expect(geomath.IsCrossingAntimeridian(-100, -50, 0, 50, 100)).To(BeFalse())
			Expect(geomath.IsCrossingAntimeridian(179, math.NaN(), 178)).To(BeFalse())
			Expect(geomath.IsCrossingAntimeridian(42)).To(BeFalse())
		})
	})

	Describe("BoundaryCenters", func() {
		It("it should walk the boundary of the raster", func() {
			xs, ys := geomath.BoundaryCenters(3, 2, 1)
			Expect(xs).To(Equal([]float64{0.5, 1.5, 2.5, 2.5, 1.5, 0.5, 0.5}))
			Expect(ys).To(Equal([]float64{0.5, 0.5, 0.5, 1.5, 1.5, 1.5, 0.5}))
		})
		It("it should return a single point for a 1x1 raster", func() {
			xs, ys := geomath.BoundaryCenters(1, 1, 10)
			Expect(xs).To(Equal([]float64{0.5}))
			Expect(ys).To(Equal([]float64{0.5}))
		})
	})
})

var _ = Describe("Interpolation", func() {
	It("it should interpolate and extrapolate bilinearly", func() {
		Expect(geomath.Interpolate2D(0.5, 0.5, 0, 1, 2, 3)).To(BeNumerically("~", 1.5, 1e-12))
		Expect(geomath.Interpolate2D(0, 0, 0, 1, 2, 3)).To(Equal(0.0))
		Expect(geomath.Interpolate2D(2, 0, 0, 1, 2, 3)).To(BeNumerically("~", 2, 1e-12))
		Expect(geomath.Interpolate2D(-1, -1, 0, 1, 2, 3)).To(BeNumerically("~", -3, 1e-12))
	})

	It("it should interpolate longitudes across the antimeridian", func() {
		Expect(geomath.InterpolateLon2D(0.5, 0, 179, -179, 179, -179)).To(BeNumerically("~", 180, 1e-12))
		Expect(geomath.InterpolateLon2D(0.75, 0, 179, -179, 179, -179)).To(BeNumerically("~", -179.5, 1e-12))
	})

	It("it should floor and crop", func() {
		Expect(geomath.FloorAndCrop(-0.5, 0, 3)).To(Equal(0))
		Expect(geomath.FloorAndCrop(2.7, 0, 3)).To(Equal(2))
		Expect(geomath.FloorAndCrop(7.1, 0, 3)).To(Equal(3))
	})

	It("it should fit the dimension to the aspect ratio", func() {
		nx, ny := geomath.FitDimension(12, 300, 100)
		Expect(nx * ny).To(BeNumerically(">=", 12))
		Expect(nx).To(BeNumerically(">", ny))
		nx, ny = geomath.FitDimension(0, 1, 1)
		Expect([]int{nx, ny}).To(Equal([]int{0, 0}))
	})

	It("it should subdivide a rectangle with borders", func() {
		tiles := geomath.SubdivideRectangle(100, 50, 2, 2, 5)
		Expect(tiles).To(Equal([]image.Rectangle{
			image.Rect(0, 0, 55, 30), image.Rect(45, 0, 100, 30),
			image.Rect(0, 20, 55, 50), image.Rect(45, 20, 100, 50),
		}))
	})
})
