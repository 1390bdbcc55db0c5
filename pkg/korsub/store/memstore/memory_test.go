package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/korsub/pkg/korsub/matrix"
	"github.com/cognicore/korsub/pkg/korsub/store"
	"github.com/cognicore/korsub/pkg/korsub/store/storetest"
)

func TestMemoryStoreConformance(t *testing.T) {
	st := New()
	defer st.Close()
	storetest.RunConformance(t, st)
}

func TestMemoryStoreCopiesLabels(t *testing.T) {
	ctx := context.Background()
	st := New()

	x, err := matrix.FromTriplets([]string{"a"}, []string{"b"}, []int{0}, []int{0}, []float64{1})
	require.NoError(t, err)
	tags := []string{"Noun"}
	id, err := st.SaveModel(ctx, store.Model{Name: "m", Counts: x, RowTags: tags})
	require.NoError(t, err)

	tags[0] = "Verb"
	got, err := st.LoadModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Noun"}, got.RowTags)
}
