package geocoding_test

import (
	"github.com/airbusgeo/georef/internal/crs"
	"github.com/airbusgeo/georef/internal/geocoding"
	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils/affine"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("CRSGeoCoding", func() {
	var (
		gc            *geocoding.CRSGeoCoding
		returnedError error
		imageToMap    *affine.Affine
		projection    crs.Projection
		width, height int
	)

	var (
		itShouldReturnAnInvalidArgument = func() {
			It("it should return an invalid argument error", func() {
				Expect(georef.IsError(returnedError, georef.InvalidArgument)).To(BeTrue())
				Expect(gc).To(BeNil())
			})
		}
		itShouldRoundTrip = func(tolerance float64) {
			It("it should recover the pixel positions", func() {
				for _, p := range []georef.PixelPos{{X: 0, Y: 0}, {X: 3.5, Y: 0.5}, {X: 7.25, Y: 12.75}, {X: float64(width), Y: float64(height)}} {
					expectPixelPosClose(gc.PixelPos(gc.GeoPos(p)), p, tolerance)
				}
			})
		}
		itShouldComputeBlocksLikePixels = func() {
			It("it should compute the same positions by block and by pixel", func() {
				block := georef.GeoPosBlock(gc, 2, 3, 4, 5)
				Expect(block).To(HaveLen(20))
				for j := 0; j < 5; j++ {
					for i := 0; i < 4; i++ {
						expectGeoPosClose(block[j*4+i], gc.GeoPos(georef.Center(2+i, 3+j)), 1e-8)
					}
				}
			})
		}
	)

	JustBeforeEach(func() {
		gc, returnedError = geocoding.NewCRSGeoCoding(imageToMap, projection, width, height, georef.WGS84)
	})

	BeforeEach(func() {
		imageToMap = affine.NewAffine(5, 1, 0, 60, 0, -1)
		projection = crs.Geographic{}
		width, height = 10, 20
	})

	Context("lon/lat raster", func() {
		It("it should transform the pixels", func() {
			Expect(returnedError).To(BeNil())
			Expect(gc.Kind()).To(Equal(georef.KindCRS))
			expectGeoPosClose(gc.GeoPos(georef.PixelPos{X: 3.5, Y: 0.5}), georef.GeoPos{Lat: 59.5, Lon: 8.5}, 1e-12)
			Expect(gc.CrossesAntimeridian()).To(BeFalse())
		})
		itShouldRoundTrip(1e-9)
		itShouldComputeBlocksLikePixels()

		It("it should return invalid positions", func() {
			Expect(gc.GeoPos(georef.InvalidPixelPos()).IsValid()).To(BeFalse())
			Expect(gc.PixelPos(georef.InvalidGeoPos()).IsValid()).To(BeFalse())
			Expect(gc.GeoPos(georef.PixelPos{X: 0, Y: -40}).IsValid()).To(BeFalse())
		})

		It("it should return a copy of the transform", func() {
			a := gc.ImageToMap()
			*a = *affine.Identity()
			expectGeoPosClose(gc.GeoPos(georef.PixelPos{X: 0, Y: 0}), georef.GeoPos{Lat: 60, Lon: 5}, 1e-12)
		})

		It("it should subset the raster", func() {
			def, err := georef.NewSubsetDef(regionOf(2, 4, 7, 9), 2, 3)
			Expect(err).To(BeNil())
			sub, err := gc.Subset(def)
			Expect(err).To(BeNil())
			Expect(sub.Width()).To(Equal(4))
			Expect(sub.Height()).To(Equal(3))
			expectSubsetConsistent(gc, sub, def, 4, 3, 1e-9)
			Expect(sub.Equal(gc)).To(BeFalse())
		})

		It("it should be equal to the identity subset", func() {
			sub, err := gc.Subset(nil)
			Expect(err).To(BeNil())
			Expect(sub.Equal(gc)).To(BeTrue())
			Expect(sub).NotTo(BeIdenticalTo(gc))
		})
	})

	Context("raster crossing the antimeridian", func() {
		BeforeEach(func() {
			imageToMap = affine.NewAffine(178, 1, 0, 10, 0, -1)
			width, height = 5, 5
		})
		It("it should detect the crossing", func() {
			Expect(returnedError).To(BeNil())
			Expect(gc.CrossesAntimeridian()).To(BeTrue())
			expectGeoPosClose(gc.GeoPos(georef.PixelPos{X: 3.5, Y: 0.5}), georef.GeoPos{Lat: 9.5, Lon: -178.5}, 1e-12)
		})
	})

	Context("rotated raster", func() {
		BeforeEach(func() {
			imageToMap = affine.Translation(-3, 45).Multiply(affine.Rotation(30)).Multiply(affine.Scale(0.25, -0.25))
		})
		itShouldRoundTrip(1e-9)
		itShouldComputeBlocksLikePixels()
	})

	Context("utm raster", func() {
		BeforeEach(func() {
			p, err := crs.NewProjection("EPSG:32631")
			Expect(err).To(BeNil())
			projection = p
			imageToMap = affine.NewAffine(399960, 10, 0, 5000040, 0, -10)
		})
		It("it should transform the pixels", func() {
			Expect(returnedError).To(BeNil())
			g := gc.GeoPos(georef.PixelPos{X: 0, Y: 0})
			Expect(g.Lat).To(BeNumerically("~", 45.1, 0.1))
			Expect(g.Lon).To(BeNumerically("~", 1.7, 0.1))
		})
		itShouldRoundTrip(1e-6)
		itShouldComputeBlocksLikePixels()
	})

	Context("non-invertible transform", func() {
		BeforeEach(func() {
			imageToMap = affine.Scale(0, 1)
		})
		itShouldReturnAnInvalidArgument()
	})

	Context("without projection", func() {
		BeforeEach(func() {
			projection = nil
		})
		itShouldReturnAnInvalidArgument()
	})

	Context("empty raster", func() {
		BeforeEach(func() {
			width = 0
		})
		itShouldReturnAnInvalidArgument()
	})
})

var _ = Describe("MapGeoCoding", func() {
	var (
		gc            *geocoding.MapGeoCoding
		returnedError error
		info          geocoding.MapInfo
		width, height int
	)

	JustBeforeEach(func() {
		gc, returnedError = geocoding.NewMapGeoCoding(info, geocoding.MapProjection{Name: "Geographic", Projection: crs.Geographic{}}, width, height)
	})

	BeforeEach(func() {
		info = geocoding.MapInfo{Easting: 5, Northing: 60, PixelSizeX: 1, PixelSizeY: 1, SceneWidth: 10, SceneHeight: 20, Datum: georef.WGS84}
		width, height = 10, 20
	})

	Context("identity-like transform", func() {
		It("it should agree with its region subset", func() {
			Expect(returnedError).To(BeNil())
			def, err := georef.NewSubsetDef(regionOf(2, 2, 4, 4), 1, 1)
			Expect(err).To(BeNil())
			sub, err := gc.Subset(def)
			Expect(err).To(BeNil())
			Expect(sub.MapInfo().SceneWidth).To(Equal(4))
			Expect(sub.MapInfo().SceneHeight).To(Equal(4))
			Expect(sub.MapInfo().PixelX).To(Equal(-2.0))
			Expect(sub.GeoPos(georef.PixelPos{X: 1, Y: 1})).To(Equal(gc.GeoPos(georef.PixelPos{X: 3, Y: 3})))
			Expect(sub.GeoPos(georef.PixelPos{X: 1.5, Y: 1.5})).To(Equal(gc.GeoPos(georef.PixelPos{X: 3.5, Y: 3.5})))
			expectGeoPosClose(gc.GeoPos(georef.PixelPos{X: 3.5, Y: 0.5}), georef.GeoPos{Lat: 59.5, Lon: 8.5}, 1e-12)
		})

		It("it should scale the pixel size with the subsampling", func() {
			def, err := georef.NewSubsetDef(regionOf(1, 3, 8, 16), 2, 4)
			Expect(err).To(BeNil())
			sub, err := gc.Subset(def)
			Expect(err).To(BeNil())
			Expect(sub.MapInfo().PixelSizeX).To(Equal(2.0))
			Expect(sub.MapInfo().PixelSizeY).To(Equal(4.0))
			expectSubsetConsistent(gc, sub, def, 4, 4, 1e-9)
		})

		It("it should round trip", func() {
			for _, p := range []georef.PixelPos{{X: 0.5, Y: 0.5}, {X: 9.5, Y: 19.5}, {X: 3.25, Y: 7}} {
				expectPixelPosClose(gc.PixelPos(gc.GeoPos(p)), p, 1e-9)
			}
		})

		It("it should compare by value", func() {
			other, err := geocoding.NewMapGeoCoding(info, geocoding.MapProjection{Name: "Geographic", Projection: crs.Geographic{}}, width, height)
			Expect(err).To(BeNil())
			Expect(gc.Equal(other)).To(BeTrue())
			info.Easting = 6
			other, err = geocoding.NewMapGeoCoding(info, geocoding.MapProjection{Name: "Geographic", Projection: crs.Geographic{}}, width, height)
			Expect(err).To(BeNil())
			Expect(gc.Equal(other)).To(BeFalse())
		})
	})

	Context("rotated map", func() {
		BeforeEach(func() {
			info.Orientation = 90
		})
		It("it should rotate the pixel axes", func() {
			Expect(returnedError).To(BeNil())
			g := gc.GeoPos(georef.PixelPos{X: 1, Y: 0})
			expectGeoPosClose(g, georef.GeoPos{Lat: 59, Lon: 5}, 1e-12)
		})
	})

	Context("scene size mismatch", func() {
		BeforeEach(func() {
			width = 11
		})
		It("it should return an invalid argument error", func() {
			Expect(georef.IsError(returnedError, georef.InvalidArgument)).To(BeTrue())
		})
	})
})
