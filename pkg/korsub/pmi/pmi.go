package pmi

import (
	"fmt"
	"math"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
)

// Options configures the PMI transform
type Options struct {
	Beta   float64 // context distribution smoothing exponent
	MinPMI float64 // entries with PMI <= MinPMI are dropped
	Shift  float64 // k in "PMI - log k"; 1 means no shift
}

// DefaultOptions returns the default transform options
func DefaultOptions() Options {
	return Options{Beta: 0.75, MinPMI: 0, Shift: 1}
}

// Validate checks the options
func (o Options) Validate() error {
	if o.Beta <= 0 || math.IsNaN(o.Beta) {
		return fmt.Errorf("%w: beta must be > 0, got %v", internalerr.ErrInvalidConfig, o.Beta)
	}
	if o.Shift < 1 || math.IsNaN(o.Shift) {
		return fmt.Errorf("%w: shift must be >= 1, got %v", internalerr.ErrInvalidConfig, o.Shift)
	}
	return nil
}

// Calculator holds the marginal distributions of a count matrix
type Calculator struct {
	total    float64
	px       []float64
	py       []float64
	logShift float64
}

// NewCalculator derives the row distribution and the smoothed column
// distribution of x.
//
//	px(i) = rowsum(i) / N
//	py(j) = colsum(j)^β / Σ_k colsum(k)^β
func NewCalculator(x *matrix.Matrix, opts Options) *Calculator {
	rowSums := x.RowSums()
	colSums := x.ColSums()

	var total float64
	for _, s := range rowSums {
		total += s
	}

	px := make([]float64, len(rowSums))
	if total > 0 {
		for i, s := range rowSums {
			px[i] = s / total
		}
	}

	py := make([]float64, len(colSums))
	var norm float64
	for j, s := range colSums {
		py[j] = math.Pow(s, opts.Beta)
		norm += py[j]
	}
	if norm > 0 {
		for j := range py {
			py[j] /= norm
		}
	}

	return &Calculator{
		total:    total,
		px:       px,
		py:       py,
		logShift: math.Log(opts.Shift),
	}
}

// Cell computes the (shifted, smoothed) pointwise mutual information of a
// single cell
//
//	PMI(i,j) = log( (n_ij / N) / (px(i) * py(j)) ) - log k
//
// It returns -Inf for a zero count.
func (c *Calculator) Cell(i, j int, n float64) float64 {
	if n <= 0 || c.total == 0 {
		return math.Inf(-1)
	}
	return math.Log((n/c.total)/(c.px[i]*c.py[j])) - c.logShift
}

// Total returns the sum of all counts
func (c *Calculator) Total() float64 {
	return c.total
}

// Result is the output of Transform
type Result struct {
	PMI *matrix.Matrix
	Px  []float64
	Py  []float64
}

// Transform computes the PMI matrix of the count matrix x. Entries whose
// PMI is <= opts.MinPMI are not stored; the result keeps the labels and
// shape of x. An entry whose PMI is exactly 0 is never stored, even when
// MinPMI < 0, since an absent cell already reads as 0.
func Transform(x *matrix.Matrix, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	calc := NewCalculator(x, opts)
	pmi := x.Filter(func(i, j int, n float64) (float64, bool) {
		v := calc.Cell(i, j, n)
		return v, v > opts.MinPMI
	})
	return &Result{PMI: pmi, Px: calc.px, Py: calc.py}, nil
}
