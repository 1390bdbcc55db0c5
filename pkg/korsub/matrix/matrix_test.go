package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
)

func sampleTable() *count.Table {
	t := count.NewTable()
	t.Add("a", "+x", 3)
	t.Add("a", "-y", 1)
	t.Add("b", "+x", 5)
	t.Add("b", "-z", 4)
	t.Add("c", "-y", 2)
	return t
}

func TestAssembleFrequencyOrder(t *testing.T) {
	m := Assemble(sampleTable())

	assert.Equal(t, []string{"b", "a", "c"}, m.RowLabels())
	assert.Equal(t, []string{"+x", "-z", "-y"}, m.ColLabels())

	rows := m.RowSums()
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1], rows[i])
	}
	cols := m.ColSums()
	for j := 1; j < len(cols); j++ {
		assert.GreaterOrEqual(t, cols[j-1], cols[j])
	}
	assert.Equal(t, int64(9), m.Rows().Count(0))
}

func TestAssembleEveryCellOnce(t *testing.T) {
	tb := sampleTable()
	m := Assemble(tb)

	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, tb.NNZ(), m.NNZ())

	seen := map[[2]int]bool{}
	m.DoNonZero(func(i, j int, v float64) {
		key := [2]int{i, j}
		assert.False(t, seen[key], "cell %v emitted twice", key)
		seen[key] = true
		assert.Equal(t, float64(tb.Get(m.Rows().Label(i), m.Cols().Label(j))), v)
	})
	assert.Len(t, seen, tb.NNZ())
}

func TestAssembleEmpty(t *testing.T) {
	m := Assemble(count.NewTable())
	r, c := m.Dims()
	assert.Zero(t, r)
	assert.Zero(t, c)
	assert.Zero(t, m.NNZ())
	assert.Nil(t, m.CSR())
	assert.Zero(t, m.At(0, 0))
}

func TestAssembleTiesAreDeterministic(t *testing.T) {
	tb := count.NewTable()
	for _, row := range []string{"다", "가", "나"} {
		tb.Add(row, "+f", 1)
	}
	first := Assemble(tb).RowLabels()
	assert.Equal(t, []string{"가", "나", "다"}, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Assemble(tb).RowLabels())
	}
}

func TestFromTripletsRoundTrip(t *testing.T) {
	m := Assemble(sampleTable())
	ri, ci, v := m.Triplets()

	back, err := FromTriplets(m.RowLabels(), m.ColLabels(), ri, ci, v)
	require.NoError(t, err)

	assert.Equal(t, m.RowLabels(), back.RowLabels())
	assert.Equal(t, m.ColLabels(), back.ColLabels())
	bri, bci, bv := back.Triplets()
	assert.Equal(t, ri, bri)
	assert.Equal(t, ci, bci)
	assert.Equal(t, v, bv)
}

func TestFromTripletsUnsortedAndZero(t *testing.T) {
	m, err := FromTriplets([]string{"r0", "r1"}, []string{"c0", "c1"},
		[]int{1, 0, 0}, []int{0, 1, 0}, []float64{2, 0, 1})
	require.NoError(t, err)

	assert.Equal(t, 2, m.NNZ())
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 2.0, m.At(1, 0))
}

func TestFromTripletsInvalid(t *testing.T) {
	labels := []string{"a", "b"}

	_, err := FromTriplets(labels, labels, []int{0}, []int{0, 1}, []float64{1})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = FromTriplets(labels, labels, []int{2}, []int{0}, []float64{1})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = FromTriplets(labels, labels, []int{0, 0}, []int{1, 1}, []float64{1, 2})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestFilterKeepsShape(t *testing.T) {
	m := Assemble(sampleTable())
	f := m.Filter(func(i, j int, v float64) (float64, bool) {
		return v * 10, v >= 3
	})

	r, c := f.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, f.NNZ())
	assert.Equal(t, 50.0, f.At(0, 0))
	assert.Zero(t, f.At(1, 2))
}
