// Package svd factors a PMI matrix into unit and context embeddings.
package svd

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
)

// ErrNoConvergence is returned when the SVD solver fails.
var ErrNoConvergence = errors.New("svd did not converge")

const (
	// eps is the float64 machine epsilon used for the numerical rank cutoff.
	eps = 2.220446049250313e-16

	// oversample extra random directions are drawn beyond the target rank.
	oversample = 10
	// powerIters sharpens the range estimate when the spectrum decays slowly.
	powerIters = 4
	// dropTol is the relative residual below which a basis column is
	// considered linearly dependent and removed.
	dropTol = 1e-10

	seed = 0x6b6f72737562
)

// Embedding holds the truncated factorization of a matrix.
type Embedding struct {
	// Vectors = U·Σ^½, one row per matrix row.
	Vectors *mat.Dense
	// Mapper = V·Σ^-½, one row per matrix column.
	Mapper *mat.Dense
	// Values are the retained singular values in descending order.
	Values []float64
}

// Rank returns the number of latent dimensions.
func (e *Embedding) Rank() int {
	return len(e.Values)
}

// Factorize computes a rank-k truncated SVD of m.
//
// The solver is a randomized range finder: m is only touched through
// sparse products with tall dense blocks of width k+oversample, so the
// cost grows with the number of stored cells rather than rows×cols. When
// k+oversample covers min(rows, cols) the result is exact up to rounding.
// The random test matrix is seeded, so equal inputs give equal outputs.
//
// The effective rank is min(rank, rows, cols) further reduced to the
// numerical rank of m, so a low-rank matrix yields fewer dimensions rather
// than an error. An empty matrix yields an empty embedding.
func Factorize(m *matrix.Matrix, rank int) (*Embedding, error) {
	if rank < 1 {
		return nil, fmt.Errorf("%w: rank must be >= 1, got %d", internalerr.ErrInvalidConfig, rank)
	}
	r, c := m.Dims()
	if r == 0 || c == 0 || m.NNZ() == 0 {
		return &Embedding{}, nil
	}
	k := min(rank, r, c)
	l := min(k+oversample, r, c)

	rng := rand.New(rand.NewPCG(seed, uint64(r)<<32|uint64(c)))
	omega := mat.NewDense(c, l, nil)
	for i := 0; i < c; i++ {
		row := omega.RawRowView(i)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
	}

	q := orthonormalize(mul(m, omega))
	for it := 0; q != nil && it < powerIters; it++ {
		z := orthonormalize(mulT(m, q))
		if z == nil {
			q = nil
			break
		}
		q = orthonormalize(mul(m, z))
	}
	if q == nil {
		return &Embedding{}, nil
	}

	// Bᵀ = AᵀQ = Ũ·Σ·Ṽᵀ, so A ≈ (Q·Ṽ)·Σ·Ũᵀ.
	bt := mulT(m, q)
	var s mat.SVD
	if !s.Factorize(bt, mat.SVDThin) {
		return nil, ErrNoConvergence
	}
	values := s.Values(nil)

	k = min(k, len(values))
	tol := values[0] * float64(max(r, c)) * eps
	for k > 0 && values[k-1] <= tol {
		k--
	}
	if k == 0 {
		return &Embedding{}, nil
	}

	var v, w, u mat.Dense
	s.UTo(&v)
	s.VTo(&w)
	u.Mul(q, &w)

	vectors := mat.NewDense(r, k, nil)
	mapper := mat.NewDense(c, k, nil)
	for j := 0; j < k; j++ {
		root := math.Sqrt(values[j])
		for i := 0; i < r; i++ {
			vectors.Set(i, j, u.At(i, j)*root)
		}
		for i := 0; i < c; i++ {
			mapper.Set(i, j, v.At(i, j)/root)
		}
	}

	return &Embedding{
		Vectors: vectors,
		Mapper:  mapper,
		Values:  append([]float64(nil), values[:k]...),
	}, nil
}

// mul returns m·b for a dense b with one row per column of m.
func mul(m *matrix.Matrix, b *mat.Dense) *mat.Dense {
	r, _ := m.Dims()
	_, l := b.Dims()
	out := mat.NewDense(r, l, nil)
	m.DoNonZero(func(i, j int, x float64) {
		floats.AddScaled(out.RawRowView(i), x, b.RawRowView(j))
	})
	return out
}

// mulT returns mᵀ·b for a dense b with one row per row of m.
func mulT(m *matrix.Matrix, b *mat.Dense) *mat.Dense {
	_, c := m.Dims()
	_, l := b.Dims()
	out := mat.NewDense(c, l, nil)
	m.DoNonZero(func(i, j int, x float64) {
		floats.AddScaled(out.RawRowView(j), x, b.RawRowView(i))
	})
	return out
}

// orthonormalize returns an orthonormal basis for the column space of a
// using Gram-Schmidt with one reorthogonalization pass. Dependent columns
// are dropped; nil means a has no nonzero column.
func orthonormalize(a *mat.Dense) *mat.Dense {
	n, l := a.Dims()
	basis := make([][]float64, 0, l)
	for j := 0; j < l; j++ {
		col := mat.Col(nil, j, a)
		norm0 := floats.Norm(col, 2)
		if norm0 == 0 || math.IsNaN(norm0) {
			continue
		}
		for pass := 0; pass < 2; pass++ {
			for _, b := range basis {
				floats.AddScaled(col, -floats.Dot(col, b), b)
			}
		}
		norm := floats.Norm(col, 2)
		if norm <= dropTol*norm0 {
			continue
		}
		floats.Scale(1/norm, col)
		basis = append(basis, col)
	}
	if len(basis) == 0 {
		return nil
	}
	out := mat.NewDense(n, len(basis), nil)
	for j, b := range basis {
		out.SetCol(j, b)
	}
	return out
}

// Project folds a sparse row over the matrix columns into the latent space:
// x · Mapper. For a row of the factored matrix this recovers its vector.
// Column indices outside the mapper are ignored.
func (e *Embedding) Project(x map[int]float64) []float64 {
	k := e.Rank()
	out := make([]float64, k)
	if k == 0 {
		return out
	}
	cols, _ := e.Mapper.Dims()
	idx := make([]int, 0, len(x))
	for i, w := range x {
		if w != 0 && i >= 0 && i < cols {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	for _, i := range idx {
		out = vek.Add(out, vek.MulNumber(e.Mapper.RawRowView(i), x[i]))
	}
	return out
}
