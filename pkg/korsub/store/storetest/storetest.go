// Package storetest holds a conformance suite for store.Store implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
	"github.com/cognicore/korsub/pkg/korsub/store"
)

// RunConformance exercises a Store implementation. Each implementation
// calls it from its own tests with a fresh, empty store.
func RunConformance(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()

	x, err := matrix.FromTriplets(
		[]string{"컬렉션/L", "이라는/R", "이름/L"},
		[]string{"+이름", "-컬렉션", "+으로"},
		[]int{0, 1, 1, 2, 2},
		[]int{0, 0, 1, 2, 0},
		[]float64{3, 2, 5, 1, 4},
	)
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		id, err := st.SaveModel(ctx, store.Model{
			Name:      "tagged",
			Counts:    x,
			RowTags:   []string{"Noun", "", "Noun"},
			RowMorphs: []string{"컬렉션", "", "이름"},
			Params:    map[string]string{"variant": "lr"},
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := st.LoadModel(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "tagged", got.Name)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, x.RowLabels(), got.Counts.RowLabels())
		assert.Equal(t, x.ColLabels(), got.Counts.ColLabels())

		wi, wj, wv := x.Triplets()
		gi, gj, gv := got.Counts.Triplets()
		assert.Equal(t, wi, gi)
		assert.Equal(t, wj, gj)
		assert.Equal(t, wv, gv)

		assert.Equal(t, []string{"Noun", "", "Noun"}, got.RowTags)
		assert.Equal(t, []string{"컬렉션", "", "이름"}, got.RowMorphs)
		assert.Equal(t, "lr", got.Params["variant"])
	})

	t.Run("UntaggedRoundTrip", func(t *testing.T) {
		id, err := st.SaveModel(ctx, store.Model{Name: "plain", Counts: x})
		require.NoError(t, err)

		got, err := st.LoadModel(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got.RowTags)
		assert.Empty(t, got.RowMorphs)
		assert.Equal(t, x.NNZ(), got.Counts.NNZ())
	})

	t.Run("Latest", func(t *testing.T) {
		base := time.Now()
		first, err := st.SaveModel(ctx, store.Model{Name: "versions", Counts: x, CreatedAt: base})
		require.NoError(t, err)
		second, err := st.SaveModel(ctx, store.Model{Name: "versions", Counts: x, CreatedAt: base.Add(time.Minute)})
		require.NoError(t, err)
		require.Greater(t, second, first)

		got, err := st.LatestModel(ctx, "versions")
		require.NoError(t, err)
		assert.Equal(t, second, got.ID)

		_, err = st.LatestModel(ctx, "nothing")
		assert.ErrorIs(t, err, internalerr.ErrNotFound)
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		infos, err := st.ListModels(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, infos)
		for i := 1; i < len(infos); i++ {
			assert.Less(t, infos[i-1].ID, infos[i].ID)
		}
		victim := infos[0]
		assert.Equal(t, 3, victim.Rows)
		assert.Equal(t, 3, victim.Cols)
		assert.Equal(t, 5, victim.NNZ)

		require.NoError(t, st.DeleteModel(ctx, victim.ID))
		_, err = st.LoadModel(ctx, victim.ID)
		assert.ErrorIs(t, err, internalerr.ErrNotFound)

		after, err := st.ListModels(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(infos)-1)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := st.SaveModel(ctx, store.Model{Name: "empty"})
		assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

		_, err = st.SaveModel(ctx, store.Model{Name: "bad", Counts: x, RowTags: []string{"x"}})
		assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	})
}
