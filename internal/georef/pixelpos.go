package georef

import (
	"math"

	"github.com/airbusgeo/georef/internal/utils"
)

// PixelPos is a continuous position in the pixel space of a raster.
// The integer pixel (i, j) covers [i, i+1)x[j, j+1) and its center is (i+0.5, j+0.5).
type PixelPos struct {
	X float64
	Y float64
}

// InvalidPixelPos returns the invalid sentinel (NaN, NaN)
func InvalidPixelPos() PixelPos {
	return PixelPos{X: math.NaN(), Y: math.NaN()}
}

// Center returns the center of the pixel (i, j)
func Center(i, j int) PixelPos {
	return PixelPos{X: float64(i) + 0.5, Y: float64(j) + 0.5}
}

// IsValid returns true if both coordinates are finite
func (p PixelPos) IsValid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// InRaster returns true if the position is inside [0, width]x[0, height]
func (p PixelPos) InRaster(width, height int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float64(width) && p.Y <= float64(height)
}

// Pixel returns the integer pixel containing the position
func (p PixelPos) Pixel() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

func (p PixelPos) String() string {
	return utils.F64ToS(p.X) + "," + utils.F64ToS(p.Y)
}
