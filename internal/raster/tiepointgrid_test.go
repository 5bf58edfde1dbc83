package raster_test

import (
	"image"
	"math"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/raster"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// gridOf creates a w x h grid whose tie-point (i, j) is f(i, j)
func gridOf(w, h int, f func(i, j int) float64) []float64 {
	points := make([]float64, 0, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			points = append(points, f(i, j))
		}
	}
	return points
}

var _ = Describe("TiePointGrid", func() {
	var (
		grid          *raster.TiePointGrid
		returnedError error
		discontinuity raster.Discontinuity
		points        []float64
	)

	var (
		itShouldNotReturnAnError = func() {
			It("it should not return an error", func() {
				Expect(returnedError).To(BeNil())
			})
		}
		itShouldReturnAnInvalidArgument = func() {
			It("it should return an invalid argument error", func() {
				Expect(georef.IsError(returnedError, georef.InvalidArgument)).To(BeTrue())
				Expect(grid).To(BeNil())
			})
		}
		itShouldHaveDiscontinuity = func(d raster.Discontinuity) {
			It("it should resolve the discontinuity to "+d.String(), func() {
				Expect(grid.Discontinuity()).To(Equal(d))
			})
		}
	)

	JustBeforeEach(func() {
		grid, returnedError = raster.NewTiePointGrid("lon", 3, 3, 0.5, 0.5, 4, 4, points, discontinuity)
	})

	BeforeEach(func() {
		discontinuity = raster.DiscontinuityAuto
	})

	Context("linear values", func() {
		BeforeEach(func() {
			points = gridOf(3, 3, func(i, j int) float64 { return float64(i) + 10*float64(j) })
		})
		itShouldNotReturnAnError()
		itShouldHaveDiscontinuity(raster.DiscontinuityNone)

		It("it should interpolate and extrapolate linearly", func() {
			for _, p := range [][2]float64{{0.5, 0.5}, {3, 7.25}, {8.5, 8.5}, {0, 0}, {12, -3}} {
				expected := (p[0]-0.5)/4 + 10*(p[1]-0.5)/4
				Expect(grid.PixelDouble(p[0], p[1])).To(BeNumerically("~", expected, 1e-12))
			}
		})

		It("it should return the values of the pixel centers", func() {
			block := grid.Pixels(1, 2, 3, 2)
			Expect(block).To(HaveLen(6))
			Expect(block[4]).To(Equal(grid.PixelDouble(2.5, 3.5)))
		})

		It("it should return a copy of the points", func() {
			p := grid.Points()
			p[0] = 1000
			Expect(grid.Point(0, 0)).To(Equal(0.0))
			Expect(grid.PixelDouble(0.5, 0.5)).To(Equal(0.0))
		})

		It("it should compare by value", func() {
			other, err := raster.NewTiePointGrid("lon", 3, 3, 0.5, 0.5, 4, 4, points, raster.DiscontinuityNone)
			Expect(err).To(BeNil())
			Expect(grid.Equal(other)).To(BeTrue())
			Expect(grid.Equal(grid.Clone())).To(BeTrue())
			other, _ = raster.NewTiePointGrid("lon", 3, 3, 0.5, 0.5, 2, 4, points, raster.DiscontinuityNone)
			Expect(grid.Equal(other)).To(BeFalse())
		})
	})

	Context("longitudes across the antimeridian", func() {
		BeforeEach(func() {
			points = []float64{170, -170, -150, 170, -170, -150, 170, -170, -150}
		})
		itShouldNotReturnAnError()
		itShouldHaveDiscontinuity(raster.DiscontinuityAt180)

		It("it should interpolate through the antimeridian", func() {
			Expect(math.Abs(grid.PixelDouble(2.5, 0.5))).To(BeNumerically("~", 180, 1e-9))
			v := grid.PixelDouble(1.5, 4.5)
			Expect(v > 170 || v < -170).To(BeTrue())
		})
	})

	Context("longitudes in [0, 360]", func() {
		BeforeEach(func() {
			points = []float64{350, 10, 30, 350, 10, 30, 350, 10, 30}
		})
		itShouldNotReturnAnError()
		itShouldHaveDiscontinuity(raster.DiscontinuityAt360)

		It("it should interpolate through the prime meridian and keep positive values", func() {
			v0 := grid.PixelDouble(2.5, 2.5)
			Expect(math.Min(v0, 360-v0)).To(BeNumerically("~", 0, 1e-9))
			v := grid.PixelDouble(1.5, 0.5)
			Expect(v).To(BeNumerically(">", 350))
			Expect(v).To(BeNumerically("<", 360))
		})
	})

	Context("explicit discontinuity", func() {
		BeforeEach(func() {
			points = gridOf(3, 3, func(i, j int) float64 { return float64(i) })
			discontinuity = raster.DiscontinuityAt180
		})
		itShouldHaveDiscontinuity(raster.DiscontinuityAt180)
	})

	Context("degenerate grid", func() {
		BeforeEach(func() {
			points = []float64{1, 2, 3}
		})
		It("it should return an invalid argument error", func() {
			_, err := raster.NewTiePointGrid("lat", 3, 1, 0, 0, 1, 1, points, raster.DiscontinuityNone)
			Expect(georef.IsError(err, georef.InvalidArgument)).To(BeTrue())
		})
	})

	Context("wrong number of points", func() {
		BeforeEach(func() {
			points = []float64{1, 2, 3}
		})
		itShouldReturnAnInvalidArgument()
	})

	Describe("Subset", func() {
		var (
			source *raster.TiePointGrid
			subset *raster.TiePointGrid
			def    *georef.SubsetDef
		)

		BeforeEach(func() {
			var err error
			// 5x5 tie-points sampling a 9x9 raster every 2 pixels
			source, err = raster.NewTiePointGrid("lat", 5, 5, 0.5, 0.5, 2, 2,
				gridOf(5, 5, func(i, j int) float64 { return float64(7*i + 3*j*j) }), raster.DiscontinuityNone)
			Expect(err).To(BeNil())
		})

		JustBeforeEach(func() {
			var err error
			subset, err = source.Subset(def, 9, 9)
			Expect(err).To(BeNil())
		})

		var itShouldMatchTheSource = func(w, h int) {
			It("it should interpolate the same values as the source", func() {
				for y := 0; y < h; y++ {
					for x := 0; x < w; x++ {
						p := georef.Center(x, y)
						s := def.SourcePixel(p)
						Expect(subset.PixelDouble(p.X, p.Y)).To(BeNumerically("~", source.PixelDouble(s.X, s.Y), 1e-9))
					}
				}
			})
		}

		Context("region", func() {
			BeforeEach(func() {
				r := image.Rect(2, 2, 6, 6)
				def = &georef.SubsetDef{Region: &r, SubSamplingX: 1, SubSamplingY: 1}
			})
			itShouldMatchTheSource(4, 4)
			It("it should crop the grid", func() {
				Expect(subset.GridWidth()).To(Equal(4))
				Expect(subset.GridHeight()).To(Equal(4))
				Expect(subset.OffsetX()).To(Equal(-1.5))
				Expect(subset.SubSamplingX()).To(Equal(2.0))
			})
			It("it should return a copy of the points", func() {
				Expect(subset.Points()).To(Equal(subset.Points()))
				subset.Points()[0] = 1e6
				Expect(subset.Point(0, 0)).NotTo(Equal(1e6))
			})
		})

		Context("region and subsampling", func() {
			BeforeEach(func() {
				r := image.Rect(1, 3, 8, 9)
				def = &georef.SubsetDef{Region: &r, SubSamplingX: 2, SubSamplingY: 3}
			})
			itShouldMatchTheSource(4, 2)
			It("it should rescale the grid", func() {
				Expect(subset.SubSamplingX()).To(Equal(1.0))
				Expect(subset.SubSamplingY()).To(BeNumerically("~", 2.0/3, 1e-15))
			})
		})

		Context("single pixel", func() {
			BeforeEach(func() {
				r := image.Rect(8, 8, 9, 9)
				def = &georef.SubsetDef{Region: &r, SubSamplingX: 1, SubSamplingY: 1}
			})
			itShouldMatchTheSource(1, 1)
			It("it should keep at least 2x2 tie-points", func() {
				Expect(subset.GridWidth()).To(Equal(2))
				Expect(subset.GridHeight()).To(Equal(2))
			})
		})

		Context("identity", func() {
			BeforeEach(func() {
				def = nil
			})
			It("it should be equal to the source", func() {
				Expect(subset.Equal(source)).To(BeTrue())
			})
		})
	})
})
