package pmi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
)

func associated() *matrix.Matrix {
	t := count.NewTable()
	t.Add("a", "+x", 100)
	t.Add("a", "+y", 1)
	t.Add("b", "+x", 1)
	t.Add("b", "+y", 100)
	t.Add("c", "+z", 3)
	return matrix.Assemble(t)
}

func index(t *testing.T, m *matrix.Matrix, row, col string) (int, int) {
	t.Helper()
	i, ok := m.Rows().Index(row)
	require.True(t, ok, row)
	j, ok := m.Cols().Index(col)
	require.True(t, ok, col)
	return i, j
}

func TestTransformSignSanity(t *testing.T) {
	x := associated()
	res, err := Transform(x, DefaultOptions())
	require.NoError(t, err)

	i, j := index(t, res.PMI, "a", "+x")
	assert.Greater(t, res.PMI.At(i, j), 0.0)

	// below expectation, so dropped at the default floor
	i, j = index(t, res.PMI, "a", "+y")
	assert.Zero(t, res.PMI.At(i, j))

	// never co-occurring pairs are absent, not stored zeros
	res.PMI.DoNonZero(func(_, _ int, v float64) {
		assert.Greater(t, v, 0.0)
	})
	assert.LessOrEqual(t, res.PMI.NNZ(), x.NNZ())
}

func TestTransformKeepsShape(t *testing.T) {
	x := associated()
	res, err := Transform(x, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, x.RowLabels(), res.PMI.RowLabels())
	assert.Equal(t, x.ColLabels(), res.PMI.ColLabels())
	r, c := x.Dims()
	assert.Len(t, res.Px, r)
	assert.Len(t, res.Py, c)
}

func TestTransformValues(t *testing.T) {
	x := associated()
	opts := Options{Beta: 1, MinPMI: math.Inf(-1), Shift: 1}
	res, err := Transform(x, opts)
	require.NoError(t, err)

	// N = 205, rowsum(a) = 101, colsum(+x) = 101
	i, j := index(t, res.PMI, "a", "+x")
	want := math.Log((100.0 / 205) / ((101.0 / 205) * (101.0 / 205)))
	assert.InDelta(t, want, res.PMI.At(i, j), 1e-12)

	i, j = index(t, res.PMI, "a", "+y")
	assert.Less(t, res.PMI.At(i, j), 0.0)
	assert.Equal(t, x.NNZ(), res.PMI.NNZ())
}

func TestSmoothedContextDistribution(t *testing.T) {
	x := associated()
	for _, beta := range []float64{0.5, 0.75, 1} {
		res, err := Transform(x, Options{Beta: beta, Shift: 1})
		require.NoError(t, err)

		var px, py float64
		for _, p := range res.Px {
			px += p
		}
		for _, p := range res.Py {
			py += p
		}
		assert.InDelta(t, 1.0, px, 1e-12)
		assert.InDelta(t, 1.0, py, 1e-12)
	}

	// smoothing raises the mass of rare contexts
	plain, err := Transform(x, Options{Beta: 1, Shift: 1})
	require.NoError(t, err)
	smooth, err := Transform(x, DefaultOptions())
	require.NoError(t, err)
	_, z := index(t, x, "c", "+z")
	assert.Greater(t, smooth.Py[z], plain.Py[z])
}

func TestShiftLowersEveryValue(t *testing.T) {
	x := associated()
	calc := NewCalculator(x, Options{Beta: 0.75, Shift: 1})
	shifted := NewCalculator(x, Options{Beta: 0.75, Shift: 5})

	i, j := index(t, x, "a", "+x")
	assert.InDelta(t, math.Log(5), calc.Cell(i, j, 100)-shifted.Cell(i, j, 100), 1e-12)
	assert.True(t, math.IsInf(calc.Cell(i, j, 0), -1))
	assert.Equal(t, 205.0, calc.Total())
}

func TestTransformEmpty(t *testing.T) {
	res, err := Transform(matrix.Assemble(count.NewTable()), DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, res.PMI.NNZ())
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.ErrorIs(t, Options{Beta: 0, Shift: 1}.Validate(), internalerr.ErrInvalidConfig)
	assert.ErrorIs(t, Options{Beta: 1, Shift: 0.5}.Validate(), internalerr.ErrInvalidConfig)

	_, err := Transform(associated(), Options{Beta: -1, Shift: 1})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestTransformDropsZeroPMI(t *testing.T) {
	// independent rows and columns: every cell has PMI exactly 0
	tb := count.NewTable()
	tb.Add("a", "+x", 1)
	tb.Add("a", "+y", 1)
	tb.Add("b", "+x", 1)
	tb.Add("b", "+y", 1)
	x := matrix.Assemble(tb)

	opts := DefaultOptions()
	opts.Beta = 1
	opts.MinPMI = -1
	calc := NewCalculator(x, opts)
	assert.Equal(t, 0.0, calc.Cell(0, 0, 1))

	res, err := Transform(x, opts)
	require.NoError(t, err)
	assert.Zero(t, res.PMI.NNZ())
	r, c := res.PMI.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
}
