package georef_test

import (
	"fmt"
	"image"

	"github.com/airbusgeo/georef/internal/georef"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("SubsetDef", func() {
	var (
		region        image.Rectangle
		ssx, ssy      int
		def           *georef.SubsetDef
		returnedError error
	)

	var (
		itShouldReturnAnInvalidArgument = func(argument string) {
			It("it should return an invalid argument error", func() {
				Expect(def).To(BeNil())
				gerr, ok := georef.AsError(returnedError, georef.InvalidArgument)
				Expect(ok).To(BeTrue())
				Expect(gerr.Detail(georef.DetailInvalidArgumentName)).To(Equal(argument))
			})
		}
	)

	BeforeEach(func() {
		region = image.Rect(3, 4, 33, 29)
		ssx, ssy = 2, 3
	})

	JustBeforeEach(func() {
		def, returnedError = georef.NewSubsetDef(&region, ssx, ssy)
	})

	Context("region inside the raster", func() {
		It("it should compute the destination size", func() {
			Expect(returnedError).To(BeNil())
			w, h := def.SceneSize(40, 30)
			Expect([]int{w, h}).To(Equal([]int{15, 9}))
		})

		It("it should map destination pixels to the source", func() {
			Expect(def.SourcePixel(georef.PixelPos{X: 0, Y: 0})).To(Equal(georef.PixelPos{X: 3, Y: 4}))
			Expect(def.SourcePixel(georef.PixelPos{X: 1.5, Y: 2.5})).To(Equal(georef.PixelPos{X: 6, Y: 11.5}))
		})

		It("it should not be the identity", func() {
			Expect(def.IsIdentity(40, 30)).To(BeFalse())
			Expect(def.String()).To(Equal("region:3,4,30,25 subsampling:2x3"))
		})
	})

	Context("region partly outside the raster", func() {
		BeforeEach(func() {
			region = image.Rect(30, 20, 50, 40)
			ssx, ssy = 1, 1
		})
		It("it should clip the region", func() {
			Expect(def.RegionIn(40, 30)).To(Equal(image.Rect(30, 20, 40, 30)))
			w, h := def.SceneSize(40, 30)
			Expect([]int{w, h}).To(Equal([]int{10, 10}))
		})
	})

	Context("full region without subsampling", func() {
		BeforeEach(func() {
			region = image.Rect(0, 0, 40, 30)
			ssx, ssy = 1, 1
		})
		It("it should be the identity", func() {
			Expect(def.IsIdentity(40, 30)).To(BeTrue())
		})
	})

	Context("zero subsampling", func() {
		BeforeEach(func() {
			ssy = 0
		})
		itShouldReturnAnInvalidArgument("subSampling")
	})

	Context("empty region", func() {
		BeforeEach(func() {
			region = image.Rect(5, 5, 5, 10)
		})
		itShouldReturnAnInvalidArgument("region")
	})

	Context("negative origin", func() {
		BeforeEach(func() {
			region = image.Rect(-1, 0, 5, 10)
		})
		itShouldReturnAnInvalidArgument("region")
	})

	Context("nil definition", func() {
		It("it should be the identity over the full extent", func() {
			var nilDef *georef.SubsetDef
			Expect(nilDef.Validate()).To(Succeed())
			Expect(nilDef.IsIdentity(40, 30)).To(BeTrue())
			w, h := nilDef.SceneSize(40, 30)
			Expect([]int{w, h}).To(Equal([]int{40, 30}))
			Expect(nilDef.SourcePixel(georef.PixelPos{X: 2.5, Y: 7})).To(Equal(georef.PixelPos{X: 2.5, Y: 7}))
		})
	})
})

var _ = Describe("GeorefError", func() {
	It("it should be found through wrapped errors", func() {
		err := fmt.Errorf("transfer: %w", georef.NewNotFound("GeoCoding", "S3A", ""))
		Expect(georef.IsError(err, georef.NotFound)).To(BeTrue())
		Expect(georef.IsError(err, georef.Cancelled)).To(BeFalse())
		gerr, ok := georef.AsError(err, georef.NotFound)
		Expect(ok).To(BeTrue())
		Expect(gerr.Detail(georef.DetailNotFoundEntity)).To(Equal("GeoCoding"))
		Expect(gerr.Detail(georef.DetailNotFoundID)).To(Equal("S3A"))
		Expect(gerr.Detail(5)).To(BeEmpty())
		Expect(err.Error()).To(Equal("transfer: NotFound: GeoCoding not found: S3A"))
	})

	It("it should distinguish cancellation from invalid arguments", func() {
		err := georef.NewCancelled("estimator build cancelled")
		Expect(georef.IsError(err, georef.Cancelled)).To(BeTrue())
		Expect(georef.IsError(err, georef.InvalidArgument)).To(BeFalse())
		Expect(georef.IsError(nil, georef.Cancelled)).To(BeFalse())
	})
})
