package svd

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
)

func dense(t *testing.T, rows [][]float64) *matrix.Matrix {
	t.Helper()
	var ri, ci []int
	var v []float64
	var rl, cl []string
	for i, row := range rows {
		rl = append(rl, string(rune('a'+i)))
		for j, x := range row {
			if i == 0 {
				cl = append(cl, string(rune('p'+j)))
			}
			if x != 0 {
				ri, ci, v = append(ri, i), append(ci, j), append(v, x)
			}
		}
	}
	m, err := matrix.FromTriplets(rl, cl, ri, ci, v)
	require.NoError(t, err)
	return m
}

func TestFactorizeShapes(t *testing.T) {
	m := dense(t, [][]float64{
		{3, 1, 0, 0},
		{1, 2, 0, 1},
		{0, 0, 4, 1},
	})
	e, err := Factorize(m, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, e.Rank())
	r, c := e.Vectors.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	r, c = e.Mapper.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c)
	assert.GreaterOrEqual(t, e.Values[0], e.Values[1])
}

func TestFactorizeRankBoundary(t *testing.T) {
	// rank one: every row is a multiple of the first
	m := dense(t, [][]float64{
		{1, 2, 3},
		{2, 4, 6},
		{3, 6, 9},
	})
	e, err := Factorize(m, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Rank())
	_, c := e.Vectors.Dims()
	assert.Equal(t, 1, c)
}

func TestFactorizeReconstructs(t *testing.T) {
	rows := [][]float64{
		{3, 1, 0},
		{1, 2, 1},
		{0, 1, 4},
	}
	m := dense(t, rows)
	e, err := Factorize(m, 3)
	require.NoError(t, err)
	require.Equal(t, 3, e.Rank())

	// U√Σ · (V√Σ)ᵀ = UΣVᵀ
	var scaled mat.Dense
	scaled.Apply(func(_, j int, v float64) float64 { return v * e.Values[j] }, e.Mapper)
	var got mat.Dense
	got.Mul(e.Vectors, scaled.T())
	for i, row := range rows {
		for j, want := range row {
			assert.InDelta(t, want, got.At(i, j), 1e-9, "cell (%d, %d)", i, j)
		}
	}
}

func TestProjectRecoversRowVectors(t *testing.T) {
	rows := [][]float64{
		{2, 0, 1},
		{0, 3, 1},
		{1, 1, 0},
	}
	m := dense(t, rows)
	e, err := Factorize(m, 3)
	require.NoError(t, err)

	for i, row := range rows {
		x := map[int]float64{}
		for j, v := range row {
			x[j] = v
		}
		got := e.Project(x)
		want := mat.Row(nil, i, e.Vectors)
		assert.InDeltaSlice(t, want, got, 1e-9, "row %d", i)
	}
}

func TestProjectIgnoresUnknownColumns(t *testing.T) {
	m := dense(t, [][]float64{{1, 0}, {0, 2}})
	e, err := Factorize(m, 2)
	require.NoError(t, err)

	assert.Equal(t, e.Project(map[int]float64{0: 1}), e.Project(map[int]float64{0: 1, 7: 3, -1: 2}))
	assert.Equal(t, []float64{0, 0}, e.Project(nil))
}

func TestFactorizeEmpty(t *testing.T) {
	e, err := Factorize(matrix.Assemble(count.NewTable()), 10)
	require.NoError(t, err)
	assert.Zero(t, e.Rank())
	assert.Empty(t, e.Project(map[int]float64{0: 1}))
}

func TestFactorizeInvalidRank(t *testing.T) {
	_, err := Factorize(matrix.Assemble(count.NewTable()), 0)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func build(t *testing.T, rows, cols int, cell func(i, j int) float64) *matrix.Matrix {
	t.Helper()
	rl := make([]string, rows)
	for i := range rl {
		rl[i] = "r" + strconv.Itoa(i)
	}
	cl := make([]string, cols)
	for j := range cl {
		cl[j] = "c" + strconv.Itoa(j)
	}
	var ri, ci []int
	var v []float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if x := cell(i, j); x != 0 {
				ri, ci, v = append(ri, i), append(ci, j), append(v, x)
			}
		}
	}
	m, err := matrix.FromTriplets(rl, cl, ri, ci, v)
	require.NoError(t, err)
	return m
}

func TestFactorizeLowRankSparse(t *testing.T) {
	// three disjoint blocks, each an outer product: rank 3
	cell := func(i, j int) float64 {
		if i%3 != j%3 {
			return 0
		}
		return float64(1+i%5) * float64(1+j%7)
	}
	m := build(t, 200, 300, cell)
	e, err := Factorize(m, 10)
	require.NoError(t, err)
	require.Equal(t, 3, e.Rank())

	var scaled mat.Dense
	scaled.Apply(func(_, j int, v float64) float64 { return v * e.Values[j] }, e.Mapper)
	var got mat.Dense
	got.Mul(e.Vectors, scaled.T())
	for i := 0; i < 200; i++ {
		for j := 0; j < 300; j++ {
			require.InDelta(t, cell(i, j), got.At(i, j), 1e-8, "cell (%d, %d)", i, j)
		}
	}
}

func TestFactorizeTopValuesMatchDense(t *testing.T) {
	// a strong rank-3 block structure plus small sparse noise
	rng := rand.New(rand.NewPCG(7, 11))
	const rows, cols = 80, 120
	noise := make([][]float64, rows)
	for i := range noise {
		noise[i] = make([]float64, cols)
		for n := 0; n < 6; n++ {
			noise[i][rng.IntN(cols)] = 0.01 * rng.Float64()
		}
	}
	cell := func(i, j int) float64 {
		x := noise[i][j]
		if i%3 == j%3 {
			x += float64(1+i%5) * float64(1+j%7)
		}
		return x
	}
	m := build(t, rows, cols, cell)

	e, err := Factorize(m, 3)
	require.NoError(t, err)
	require.Equal(t, 3, e.Rank())

	a := mat.NewDense(rows, cols, nil)
	m.DoNonZero(a.Set)
	var full mat.SVD
	require.True(t, full.Factorize(a, mat.SVDNone))
	want := full.Values(nil)

	for j := 0; j < e.Rank(); j++ {
		assert.InEpsilon(t, want[j], e.Values[j], 1e-6, "value %d", j)
		assert.LessOrEqual(t, e.Values[j], want[j]*(1+1e-9), "value %d", j)
	}
}

func TestFactorizeDeterministic(t *testing.T) {
	cell := func(i, j int) float64 {
		if (i*7+j*3)%5 != 0 {
			return 0
		}
		return float64(1 + (i+j)%4)
	}
	m := build(t, 40, 60, cell)
	a, err := Factorize(m, 5)
	require.NoError(t, err)
	b, err := Factorize(m, 5)
	require.NoError(t, err)
	assert.Equal(t, a.Values, b.Values)
	assert.True(t, mat.Equal(a.Vectors, b.Vectors))
	assert.True(t, mat.Equal(a.Mapper, b.Mapper))
}
