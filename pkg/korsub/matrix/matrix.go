// Package matrix assembles count tables into labelled sparse matrices.
package matrix

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
)

// Matrix is an immutable sparse matrix with labelled rows and columns.
// A matrix with a zero dimension has no backing CSR.
type Matrix struct {
	rows *count.Vocabulary
	cols *count.Vocabulary
	x    *sparse.CSR
}

// Assemble converts a count table into a matrix. Rows and columns are
// ordered by descending marginal total, ties by ascending label. Every
// stored cell of t appears exactly once.
func Assemble(t *count.Table) *Matrix {
	rowSums := count.NewCounter()
	colSums := count.NewCounter()
	t.Each(func(row, col string, n int64) {
		rowSums.Add(row, n)
		colSums.Add(col, n)
	})
	rows := count.Rank(rowSums)
	cols := count.Rank(colSums)

	ia := make([]int, rows.Len()+1)
	ja := make([]int, 0, t.NNZ())
	data := make([]float64, 0, t.NNZ())
	for i := 0; i < rows.Len(); i++ {
		r := t.Row(rows.Label(i))
		idx := make([]int, 0, len(r))
		for col := range r {
			j, _ := cols.Index(col)
			idx = append(idx, j)
		}
		sort.Ints(idx)
		for _, j := range idx {
			ja = append(ja, j)
			data = append(data, float64(r[cols.Label(j)]))
		}
		ia[i+1] = len(ja)
	}
	return newMatrix(rows, cols, ia, ja, data)
}

// FromTriplets builds a matrix from (row, col, value) triplets over the
// given labels, which are kept in order. Zero values are dropped and
// duplicate coordinates are rejected.
func FromTriplets(rowLabels, colLabels []string, ri, ci []int, v []float64) (*Matrix, error) {
	if len(ri) != len(ci) || len(ri) != len(v) {
		return nil, fmt.Errorf("%w: triplet lengths differ (%d, %d, %d)", internalerr.ErrInvalidInput, len(ri), len(ci), len(v))
	}
	nr, nc := len(rowLabels), len(colLabels)
	order := make([]int, len(ri))
	for k := range order {
		if ri[k] < 0 || ri[k] >= nr || ci[k] < 0 || ci[k] >= nc {
			return nil, fmt.Errorf("%w: cell (%d, %d) outside %dx%d", internalerr.ErrInvalidInput, ri[k], ci[k], nr, nc)
		}
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if ri[ka] != ri[kb] {
			return ri[ka] < ri[kb]
		}
		return ci[ka] < ci[kb]
	})

	ia := make([]int, nr+1)
	ja := make([]int, 0, len(order))
	data := make([]float64, 0, len(order))
	prevR, prevC := -1, -1
	for _, k := range order {
		if ri[k] == prevR && ci[k] == prevC {
			return nil, fmt.Errorf("%w: duplicate cell (%d, %d)", internalerr.ErrInvalidInput, ri[k], ci[k])
		}
		prevR, prevC = ri[k], ci[k]
		if v[k] == 0 {
			continue
		}
		ja = append(ja, ci[k])
		data = append(data, v[k])
		ia[ri[k]+1]++
	}
	for i := 0; i < nr; i++ {
		ia[i+1] += ia[i]
	}
	return newMatrix(count.NewVocabulary(rowLabels, nil), count.NewVocabulary(colLabels, nil), ia, ja, data), nil
}

func newMatrix(rows, cols *count.Vocabulary, ia, ja []int, data []float64) *Matrix {
	m := &Matrix{rows: rows, cols: cols}
	if rows.Len() > 0 && cols.Len() > 0 {
		m.x = sparse.NewCSR(rows.Len(), cols.Len(), ia, ja, data)
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) {
	return m.rows.Len(), m.cols.Len()
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	if m.x == nil {
		return 0
	}
	return m.x.NNZ()
}

// At returns the value at (i, j).
func (m *Matrix) At(i, j int) float64 {
	if m.x == nil {
		return 0
	}
	return m.x.At(i, j)
}

// DoNonZero calls fn for every stored entry in row-major order.
func (m *Matrix) DoNonZero(fn func(i, j int, v float64)) {
	if m.x == nil {
		return
	}
	m.x.DoNonZero(fn)
}

// CSR returns the backing sparse matrix, nil when a dimension is zero.
func (m *Matrix) CSR() *sparse.CSR {
	return m.x
}

// Rows returns the row vocabulary. For assembled matrices Count(i) is the
// row marginal the order was derived from.
func (m *Matrix) Rows() *count.Vocabulary { return m.rows }

// Cols returns the column vocabulary.
func (m *Matrix) Cols() *count.Vocabulary { return m.cols }

// RowLabels returns a copy of the row labels in index order.
func (m *Matrix) RowLabels() []string { return m.rows.Labels() }

// ColLabels returns a copy of the column labels in index order.
func (m *Matrix) ColLabels() []string { return m.cols.Labels() }

// RowSums returns the sum of every row.
func (m *Matrix) RowSums() []float64 {
	sums := make([]float64, m.rows.Len())
	m.DoNonZero(func(i, _ int, v float64) { sums[i] += v })
	return sums
}

// ColSums returns the sum of every column.
func (m *Matrix) ColSums() []float64 {
	sums := make([]float64, m.cols.Len())
	m.DoNonZero(func(_, j int, v float64) { sums[j] += v })
	return sums
}

// Triplets returns the stored entries in row-major order.
func (m *Matrix) Triplets() (ri, ci []int, v []float64) {
	n := m.NNZ()
	ri, ci, v = make([]int, 0, n), make([]int, 0, n), make([]float64, 0, n)
	m.DoNonZero(func(i, j int, x float64) {
		ri = append(ri, i)
		ci = append(ci, j)
		v = append(v, x)
	})
	return ri, ci, v
}

// Filter returns a matrix with the same labels holding fn(i, j, v) for every
// entry where fn reports true. A zero result is not stored.
func (m *Matrix) Filter(fn func(i, j int, v float64) (float64, bool)) *Matrix {
	nr := m.rows.Len()
	ia := make([]int, nr+1)
	var ja []int
	var data []float64
	m.DoNonZero(func(i, j int, v float64) {
		if out, keep := fn(i, j, v); keep && out != 0 {
			ja = append(ja, j)
			data = append(data, out)
			ia[i+1]++
		}
	})
	for i := 0; i < nr; i++ {
		ia[i+1] += ia[i]
	}
	return newMatrix(m.rows, m.cols, ia, ja, data)
}
