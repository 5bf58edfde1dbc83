// Package poly implements the bivariate polynomial sums used by the geo-codings,
// and their least-squares fitting.
package poly

import (
	"fmt"
	"math"

	"github.com/airbusgeo/georef/internal/georef"
	"github.com/airbusgeo/georef/internal/utils"
	"gonum.org/v1/gonum/mat"
)

// Kind of bivariate sum. Triangular sums contain the terms x^i*y^j with i+j <= order,
// "Bi" sums contain the terms with i <= order and j <= order.
type Kind int

const (
	Linear Kind = iota
	BiLinear
	Quadric
	BiQuadric
	Cubic
	BiCubic
	Fourth
	BiFourth
)

var kindNames = [...]string{"Linear", "BiLinear", "Quadric", "BiQuadric", "Cubic", "BiCubic", "Fourth", "BiFourth"}

// Kinds lists the kinds of sum by increasing complexity
var Kinds = []Kind{Linear, BiLinear, Quadric, BiQuadric, Cubic, BiCubic, Fourth, BiFourth}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Order returns the maximum exponent of x (or y)
func (k Kind) Order() int {
	return int(k)/2 + 1
}

// IsBi returns true for the tensor-product sums
func (k Kind) IsBi() bool {
	return k%2 == 1
}

// Exponents returns the exponents (i, j) of the terms x^i*y^j, in the order of the coefficients
func (k Kind) Exponents() [][2]int {
	o := k.Order()
	var exps [][2]int
	for n := 0; n <= 2*o; n++ {
		for j := 0; j <= n; j++ {
			i := n - j
			if (k.IsBi() && i <= o && j <= o) || (!k.IsBi() && n <= o) {
				exps = append(exps, [2]int{i, j})
			}
		}
	}
	return exps
}

// Terms returns the number of coefficients
func (k Kind) Terms() int {
	o := k.Order()
	if k.IsBi() {
		return (o + 1) * (o + 1)
	}
	return (o + 2) * (o + 1) / 2
}

// PointsRequired returns the minimum number of points to fit a sum of this kind
func (k Kind) PointsRequired() int {
	if k.IsBi() {
		return 2 * k.Terms()
	}
	return k.Terms()
}

// Sum is a bivariate polynomial sum
type Sum struct {
	kind  Kind
	exps  [][2]int
	coefs []float64
}

// New creates a sum from its coefficients (copied)
func New(kind Kind, coefs []float64) (*Sum, error) {
	if kind < Linear || kind > BiFourth {
		return nil, georef.NewInvalidArgument("kind", "unknown polynomial kind %d", int(kind))
	}
	if len(coefs) != kind.Terms() {
		return nil, georef.NewInvalidArgument("coefficients", "%s polynomial expects %d coefficients, got %d", kind, kind.Terms(), len(coefs))
	}
	for _, c := range coefs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, georef.NewInvalidArgument("coefficients", "%s polynomial has non-finite coefficients", kind)
		}
	}
	return &Sum{kind: kind, exps: kind.Exponents(), coefs: utils.CloneFloat64(coefs)}, nil
}

// Kind returns the kind of the sum
func (s *Sum) Kind() Kind {
	return s.kind
}

// Coefficients returns a copy of the coefficients
func (s *Sum) Coefficients() []float64 {
	return utils.CloneFloat64(s.coefs)
}

// Eval computes the sum at (x, y)
func (s *Sum) Eval(x, y float64) float64 {
	var xp, yp [5]float64
	xp[0], yp[0] = 1, 1
	for i := 1; i <= s.kind.Order(); i++ {
		xp[i] = xp[i-1] * x
		yp[i] = yp[i-1] * y
	}
	var z float64
	for k, e := range s.exps {
		z += s.coefs[k] * xp[e[0]] * yp[e[1]]
	}
	return z
}

// Clone returns a deep copy
func (s *Sum) Clone() *Sum {
	return &Sum{kind: s.kind, exps: s.exps, coefs: utils.CloneFloat64(s.coefs)}
}

// Equal returns true if the sums have the same kind and coefficients
func (s *Sum) Equal(o *Sum) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.kind == o.kind && utils.SliceFloat64Equal(s.coefs, o.coefs)
}

// Fitted is the result of a least-squares fit
type Fitted struct {
	*Sum
	// RMSE and MaxError are the residuals on the fitting points
	RMSE     float64
	MaxError float64
}

// Fit computes the sum of the given kind minimizing the squared residuals z[i] - sum(x[i], y[i])
func Fit(kind Kind, x, y, z []float64) (Fitted, error) {
	n := len(z)
	if len(x) != n || len(y) != n {
		return Fitted{}, fmt.Errorf("fit: inconsistent number of points (%d, %d, %d)", len(x), len(y), n)
	}
	terms := kind.Terms()
	if n < terms {
		return Fitted{}, fmt.Errorf("fit: %s polynomial requires at least %d points, got %d", kind, terms, n)
	}
	exps := kind.Exponents()
	a := mat.NewDense(n, terms, nil)
	for r := 0; r < n; r++ {
		for c, e := range exps {
			a.Set(r, c, math.Pow(x[r], float64(e[0]))*math.Pow(y[r], float64(e[1])))
		}
	}
	var coefs mat.VecDense
	if err := coefs.SolveVec(a, mat.NewVecDense(n, utils.CloneFloat64(z))); err != nil {
		return Fitted{}, fmt.Errorf("fit.%s: %w", kind, err)
	}
	s := &Sum{kind: kind, exps: exps, coefs: make([]float64, terms)}
	for c := range s.coefs {
		s.coefs[c] = coefs.AtVec(c)
	}
	f := Fitted{Sum: s}
	var sse float64
	for r := 0; r < n; r++ {
		d := math.Abs(z[r] - s.Eval(x[r], y[r]))
		sse += d * d
		f.MaxError = math.Max(f.MaxError, d)
	}
	f.RMSE = math.Sqrt(sse / float64(n))
	return f, nil
}
