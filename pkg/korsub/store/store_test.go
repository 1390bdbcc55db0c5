package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
)

func TestNewIDSortable(t *testing.T) {
	now := time.Now()
	prev := NewID(now)
	for i := 0; i < 100; i++ {
		id := NewID(now)
		assert.Greater(t, id, prev)
		prev = id
	}
	assert.Greater(t, NewID(now.Add(time.Second)), prev)
	assert.Len(t, prev, 26)
}

func TestModelValidate(t *testing.T) {
	assert.ErrorIs(t, Model{}.Validate(), internalerr.ErrInvalidInput)

	x, err := matrix.FromTriplets([]string{"a", "b"}, []string{"c"}, []int{0}, []int{0}, []float64{1})
	require.NoError(t, err)

	assert.NoError(t, Model{Counts: x}.Validate())
	assert.NoError(t, Model{Counts: x, RowTags: []string{"Noun", ""}}.Validate())
	assert.ErrorIs(t, Model{Counts: x, RowTags: []string{"Noun"}}.Validate(), internalerr.ErrInvalidInput)
	assert.ErrorIs(t, Model{Counts: x, RowMorphs: []string{"a", "b", "c"}}.Validate(), internalerr.ErrInvalidInput)

	info := Model{ID: "1", Name: "n", Counts: x}.Info()
	assert.Equal(t, ModelInfo{ID: "1", Name: "n", Rows: 2, Cols: 1, NNZ: 1}, info)
}
