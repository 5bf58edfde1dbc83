package georef

import (
	"fmt"
	"image"
)

// SubsetDef describes a crop and a subsampling of a source raster.
// A nil *SubsetDef is the identity over the full extent.
// The destination pixel position p maps to the source position Region.Min + p*SubSampling.
type SubsetDef struct {
	Region       *image.Rectangle
	SubSamplingX int
	SubSamplingY int
}

// NewSubsetDef creates a validated subset definition
func NewSubsetDef(region *image.Rectangle, subSamplingX, subSamplingY int) (*SubsetDef, error) {
	d := &SubsetDef{Region: region, SubSamplingX: subSamplingX, SubSamplingY: subSamplingY}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the subsampling (>=1) and the region (non-empty, non-negative origin)
func (d *SubsetDef) Validate() error {
	if d == nil {
		return nil
	}
	if d.SubSamplingX < 1 || d.SubSamplingY < 1 {
		return NewInvalidArgument("subSampling", "subsampling must be >= 1 (got %d,%d)", d.SubSamplingX, d.SubSamplingY)
	}
	if d.Region != nil {
		if d.Region.Empty() {
			return NewInvalidArgument("region", "empty region %v", *d.Region)
		}
		if d.Region.Min.X < 0 || d.Region.Min.Y < 0 {
			return NewInvalidArgument("region", "region %v starts outside of the raster", *d.Region)
		}
	}
	return nil
}

// SubSampling returns the subsampling factors (1, 1 for the identity)
func (d *SubsetDef) SubSampling() (int, int) {
	if d == nil {
		return 1, 1
	}
	return d.SubSamplingX, d.SubSamplingY
}

// Origin returns the top-left corner of the region in the source raster
func (d *SubsetDef) Origin() (int, int) {
	if d == nil || d.Region == nil {
		return 0, 0
	}
	return d.Region.Min.X, d.Region.Min.Y
}

// RegionIn returns the region clipped to a source raster of size (width, height)
func (d *SubsetDef) RegionIn(width, height int) image.Rectangle {
	full := image.Rect(0, 0, width, height)
	if d == nil || d.Region == nil {
		return full
	}
	return d.Region.Intersect(full)
}

// SceneSize returns the size of the destination raster for a source raster of size (width, height)
func (d *SubsetDef) SceneSize(width, height int) (int, int) {
	r := d.RegionIn(width, height)
	if r.Empty() {
		return 0, 0
	}
	sx, sy := d.SubSampling()
	return (r.Dx()-1)/sx + 1, (r.Dy()-1)/sy + 1
}

// SourcePixel maps a position of the destination raster to the source raster
func (d *SubsetDef) SourcePixel(p PixelPos) PixelPos {
	rx, ry := d.Origin()
	sx, sy := d.SubSampling()
	return PixelPos{X: float64(rx) + p.X*float64(sx), Y: float64(ry) + p.Y*float64(sy)}
}

// IsIdentity returns true if the subset does not change a raster of size (width, height)
func (d *SubsetDef) IsIdentity(width, height int) bool {
	if d == nil {
		return true
	}
	return d.SubSamplingX == 1 && d.SubSamplingY == 1 && d.RegionIn(width, height) == image.Rect(0, 0, width, height)
}

func (d *SubsetDef) String() string {
	if d == nil {
		return "identity"
	}
	region := "full"
	if d.Region != nil {
		region = fmt.Sprintf("%d,%d,%d,%d", d.Region.Min.X, d.Region.Min.Y, d.Region.Dx(), d.Region.Dy())
	}
	return fmt.Sprintf("region:%s subsampling:%dx%d", region, d.SubSamplingX, d.SubSamplingY)
}
