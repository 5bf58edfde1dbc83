package utils

import (
	"math"
	"strconv"
)

// F64ToS converts float to string using the maximum accuracy
func F64ToS(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MinMaxElemF returns the min and max values of vs, ignoring NaN.
// MinMaxElemF returns NaN, NaN if vs does not contain any number.
func MinMaxElemF(vs []float64) (float64, float64) {
	vmin, vmax := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		vmin = math.Min(vmin, v)
		vmax = math.Max(vmax, v)
	}
	if vmin > vmax {
		return math.NaN(), math.NaN()
	}
	return vmin, vmax
}

// MinI computes the min value between two integers
func MinI(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxI computes the max value between two integers
func MaxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ClampI returns v bounded to [vmin, vmax]
func ClampI(v, vmin, vmax int) int {
	return MaxI(vmin, MinI(v, vmax))
}

// CloneFloat64 returns a copy of vs that does not share its memory (nil stays nil)
func CloneFloat64(vs []float64) []float64 {
	if vs == nil {
		return nil
	}
	return append(make([]float64, 0, len(vs)), vs...)
}

// SliceFloat64Equal returns true if the two slices contain the same elements (NaN are equal)
func SliceFloat64Equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] && !(math.IsNaN(v) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}
