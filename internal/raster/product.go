package raster

import (
	"context"
	"image"
	"slices"
	"sync"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils"
	"github.com/google/uuid"
)

// Product is a set of bands and tie-point grids of the same scene, sharing a geo-coding
type Product struct {
	id     uuid.UUID
	name   string
	width  int
	height int

	mutex         sync.RWMutex
	bands         map[string]*Band
	bandNames     []string
	tiePointGrids map[string]*TiePointGrid
	gridNames     []string
	geoCoding     georef.GeoCoding
}

// NewProduct creates an empty product with the size of its scene
func NewProduct(name string, width, height int) (*Product, error) {
	if width <= 0 || height <= 0 {
		return nil, georef.NewInvalidArgument("size", "product %s: invalid size %dx%d", name, width, height)
	}
	return &Product{
		id:            uuid.New(),
		name:          name,
		width:         width,
		height:        height,
		bands:         map[string]*Band{},
		tiePointGrids: map[string]*TiePointGrid{},
	}, nil
}

func (p *Product) ID() uuid.UUID {
	return p.id
}

func (p *Product) Name() string {
	return p.name
}

func (p *Product) Width() int {
	return p.width
}

func (p *Product) Height() int {
	return p.height
}

// AddBand creates a band with a copy of the samples and attaches it to the product.
// The band must have the size of the product and a name that is not already used.
func (p *Product) AddBand(name string, data []float64) (*Band, error) {
	b, err := NewBand(name, p.width, p.height, data)
	if err != nil {
		return nil, err
	}
	return b, p.AttachBand(b)
}

// AttachBand attaches an unattached band of the size of the product
func (p *Product) AttachBand(b *Band) error {
	return p.AttachBands(b)
}

// AttachBands attaches unattached bands of the size of the product: either all of them or none.
func (p *Product) AttachBands(bands ...*Band) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	names := make(map[string]bool, len(bands))
	for _, b := range bands {
		if b.product != nil {
			return georef.NewInvalidArgument("band", "band %s already belongs to product %s", b.name, b.product.name)
		}
		if b.width != p.width || b.height != p.height {
			return georef.NewInvalidArgument("band", "band %s (%dx%d) does not fit product %s (%dx%d)", b.name, b.width, b.height, p.name, p.width, p.height)
		}
		if _, ok := p.bands[b.name]; ok || names[b.name] {
			return georef.NewInvalidArgument("band", "product %s already has a band %s", p.name, b.name)
		}
		names[b.name] = true
	}
	for _, b := range bands {
		b.product = p
		p.bands[b.name] = b
		p.bandNames = append(p.bandNames, b.name)
	}
	return nil
}

// DetachBands detaches bands of the product. Bands of other products are ignored.
func (p *Product) DetachBands(bands ...*Band) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for _, b := range bands {
		if p.bands[b.name] != b {
			continue
		}
		delete(p.bands, b.name)
		p.bandNames = slices.DeleteFunc(p.bandNames, func(name string) bool { return name == b.name })
		b.product = nil
	}
}

// Band returns the band or nil if it does not exist
func (p *Product) Band(name string) *Band {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.bands[name]
}

// BandNames returns the names of the bands in the order they were added
func (p *Product) BandNames() []string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return append([]string{}, p.bandNames...)
}

// AddTiePointGrid attaches a tie-point grid to the product
func (p *Product) AddTiePointGrid(g *TiePointGrid) error {
	return p.AddTiePointGrids(g)
}

// AddTiePointGrids attaches tie-point grids to the product: either all of them or none.
func (p *Product) AddTiePointGrids(grids ...*TiePointGrid) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	names := make(map[string]bool, len(grids))
	for _, g := range grids {
		if _, ok := p.tiePointGrids[g.name]; ok || names[g.name] {
			return georef.NewInvalidArgument("tiePointGrid", "product %s already has a tie-point grid %s", p.name, g.name)
		}
		names[g.name] = true
	}
	for _, g := range grids {
		p.tiePointGrids[g.name] = g
		p.gridNames = append(p.gridNames, g.name)
	}
	return nil
}

// TiePointGrid returns the tie-point grid or nil if it does not exist
func (p *Product) TiePointGrid(name string) *TiePointGrid {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.tiePointGrids[name]
}

// TiePointGridNames returns the names of the tie-point grids in the order they were added
func (p *Product) TiePointGridNames() []string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return append([]string{}, p.gridNames...)
}

// GeoCoding returns the geo-coding of the scene (may be nil)
func (p *Product) GeoCoding() georef.GeoCoding {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.geoCoding
}

// SetGeoCoding sets the geo-coding of the scene
func (p *Product) SetGeoCoding(gc georef.GeoCoding) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.geoCoding = gc
}

// RasterSize implements Reader
func (p *Product) RasterSize(band string) (int, int, error) {
	b := p.Band(band)
	if b == nil {
		return 0, 0, georef.NewNotFound("band", band, "")
	}
	return b.width, b.height, nil
}

// ReadSamples implements Reader
func (p *Product) ReadSamples(ctx context.Context, band string, region image.Rectangle) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := p.Band(band)
	if b == nil {
		return nil, georef.NewNotFound("band", band, "")
	}
	if region.Empty() || !region.In(image.Rect(0, 0, b.width, b.height)) {
		return nil, georef.NewInvalidArgument("region", "region %v is outside of band %s (%dx%d)", region, band, b.width, b.height)
	}
	if region.Dx() == b.width {
		return utils.CloneFloat64(b.data[region.Min.Y*b.width : region.Max.Y*b.width]), nil
	}
	res := make([]float64, 0, region.Dx()*region.Dy())
	for y := region.Min.Y; y < region.Max.Y; y++ {
		res = append(res, b.data[y*b.width+region.Min.X:y*b.width+region.Max.X]...)
	}
	return res, nil
}
