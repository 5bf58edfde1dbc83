package geomath

import (
	"image"
	"math"
)

// Interpolate2D is the bilinear interpolation between the four corners of a cell.
// Weights outside [0, 1] extrapolate linearly.
func Interpolate2D(wi, wj, v00, v10, v01, v11 float64) float64 {
	return v00 + wi*(v10-v00) + wj*(v01-v00) + wi*wj*(v11+v00-v01-v10)
}

// InterpolateLon2D is the bilinear interpolation of four longitudes, taking the shortest way
// around the globe. The result is wrapped to [-180, 180].
func InterpolateLon2D(wi, wj, lon00, lon10, lon01, lon11 float64) float64 {
	lon := Interpolate2D(wi, wj, 0, LonDiff(lon10, lon00), LonDiff(lon01, lon00), LonDiff(lon11, lon00)) + lon00
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return lon
}

// FloorAndCrop returns floor(x) bounded to [vmin, vmax]
func FloorAndCrop(x float64, vmin, vmax int) int {
	i := int(math.Floor(x))
	if i < vmin {
		return vmin
	}
	if i > vmax {
		return vmax
	}
	return i
}

// FitDimension returns (nx, ny) such that nx*ny >= n with nx/ny close to width/height
func FitDimension(n int, width, height float64) (int, int) {
	if n <= 0 {
		return 0, 0
	}
	nx := int(math.Round(math.Sqrt(float64(n) * width / height)))
	if nx < 1 {
		nx = 1
	}
	if nx > n {
		nx = n
	}
	ny := (n + nx - 1) / nx
	return nx, ny
}

// SubdivideRectangle splits the rectangle [0, width]x[0, height] into nx*ny tiles
// expanded by border pixels (clipped to the rectangle), row by row.
func SubdivideRectangle(width, height, nx, ny, border int) []image.Rectangle {
	full := image.Rect(0, 0, width, height)
	tiles := make([]image.Rectangle, 0, nx*ny)
	for j := 0; j < ny; j++ {
		y0, y1 := j*height/ny, (j+1)*height/ny
		for i := 0; i < nx; i++ {
			x0, x1 := i*width/nx, (i+1)*width/nx
			tiles = append(tiles, image.Rect(x0-border, y0-border, x1+border, y1+border).Intersect(full))
		}
	}
	return tiles
}
