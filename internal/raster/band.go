package raster

import (
	"math"
	"sync"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils"
)

// Band is a resident raster of float64 samples, optionally attached to a product
type Band struct {
	name    string
	width   int
	height  int
	data    []float64
	product *Product

	mutex     sync.RWMutex
	geoCoding georef.GeoCoding
}

// NewBand creates a band that is not attached to any product. The samples are copied.
func NewBand(name string, width, height int, data []float64) (*Band, error) {
	if width <= 0 || height <= 0 {
		return nil, georef.NewInvalidArgument("size", "band %s: invalid size %dx%d", name, width, height)
	}
	if len(data) != width*height {
		return nil, georef.NewInvalidArgument("data", "band %s: expecting %d samples, got %d", name, width*height, len(data))
	}
	return &Band{name: name, width: width, height: height, data: utils.CloneFloat64(data)}, nil
}

func (b *Band) Name() string {
	return b.name
}

func (b *Band) Width() int {
	return b.width
}

func (b *Band) Height() int {
	return b.height
}

// Product returns the product owning the band, or nil if the band is not attached
func (b *Band) Product() *Product {
	return b.product
}

// Sample returns the sample of the pixel (x, y), NaN outside the band
func (b *Band) Sample(x, y int) float64 {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return math.NaN()
	}
	return b.data[y*b.width+x]
}

// GeoCoding returns the geo-coding of the band, or the one of its product if the band has none
func (b *Band) GeoCoding() georef.GeoCoding {
	b.mutex.RLock()
	gc := b.geoCoding
	b.mutex.RUnlock()
	if gc == nil && b.product != nil {
		return b.product.GeoCoding()
	}
	return gc
}

// OwnGeoCoding returns the geo-coding set on the band itself
func (b *Band) OwnGeoCoding() georef.GeoCoding {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.geoCoding
}

// SetGeoCoding sets the geo-coding of the band
func (b *Band) SetGeoCoding(gc georef.GeoCoding) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.geoCoding = gc
}
