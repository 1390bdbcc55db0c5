package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/korsub/pkg/korsub/matrix"
	"github.com/cognicore/korsub/pkg/korsub/store"
	"github.com/cognicore/korsub/pkg/korsub/store/storetest"
)

func TestSQLiteStoreConformance(t *testing.T) {
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	defer st.Close()

	storetest.RunConformance(t, st)
}

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, initSchema(ctx, db), "iteration %d", i)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 4, count) // models, model_rows, model_cols, model_cells
}

func TestSQLiteReopenPreservesModels(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "models.db")

	x, err := matrix.FromTriplets([]string{"학교", "갔다"}, []string{"+에", "-에"},
		[]int{0, 1}, []int{0, 1}, []float64{2, 3})
	require.NoError(t, err)

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	id, err := st.SaveModel(ctx, store.Model{Name: "subword", Counts: x, Params: map[string]string{"config": "svd:\n  rank: 2\n"}})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st2, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st2.Close()

	got, err := st2.LatestModel(ctx, "subword")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, []string{"학교", "갔다"}, got.Counts.RowLabels())
	assert.Equal(t, 3.0, got.Counts.At(1, 1))
	assert.Equal(t, "svd:\n  rank: 2\n", got.Params["config"])
}

func TestSQLiteDeleteCascades(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "models.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	x, err := matrix.FromTriplets([]string{"a"}, []string{"b"}, []int{0}, []int{0}, []float64{1})
	require.NoError(t, err)
	id, err := st.SaveModel(ctx, store.Model{Name: "m", Counts: x})
	require.NoError(t, err)
	require.NoError(t, st.DeleteModel(ctx, id))

	s := st.(*sqliteStore)
	for _, table := range []string{"model_rows", "model_cols", "model_cells"} {
		var n int
		require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE model_id = ?", id).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestSQLiteForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	defer st.Close()
	s := st.(*sqliteStore)

	// hold one connection so the store has to open another
	pinned, err := s.db.Conn(ctx)
	require.NoError(t, err)
	defer pinned.Close()

	var fk int
	require.NoError(t, pinned.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	x, err := matrix.FromTriplets([]string{"a", "b"}, []string{"c"}, []int{0, 1}, []int{0, 0}, []float64{1, 2})
	require.NoError(t, err)
	id, err := st.SaveModel(ctx, store.Model{Name: "m", Counts: x})
	require.NoError(t, err)

	// saving under the same id replaces the rows
	_, err = st.SaveModel(ctx, store.Model{ID: id, Name: "m", Counts: x})
	require.NoError(t, err)

	require.NoError(t, st.DeleteModel(ctx, id))
	for _, table := range []string{"model_rows", "model_cols", "model_cells"} {
		var n int
		require.NoError(t, pinned.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE model_id = ?", id).Scan(&n))
		assert.Zero(t, n, table)
	}
}
