package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
	"github.com/cognicore/korsub/pkg/korsub/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys enabled.
// The pragmas are part of the DSN so every pooled connection carries them.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS models (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	n_rows INTEGER NOT NULL,
	n_cols INTEGER NOT NULL,
	nnz INTEGER NOT NULL,
	has_tags INTEGER NOT NULL DEFAULT 0,
	has_morphs INTEGER NOT NULL DEFAULT 0,
	params TEXT
);

CREATE INDEX IF NOT EXISTS idx_models_name ON models(name, id);

CREATE TABLE IF NOT EXISTS model_rows (
	model_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	label TEXT NOT NULL,
	tag TEXT NOT NULL DEFAULT '',
	morph TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(model_id, idx),
	FOREIGN KEY(model_id) REFERENCES models(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS model_cols (
	model_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	label TEXT NOT NULL,
	PRIMARY KEY(model_id, idx),
	FOREIGN KEY(model_id) REFERENCES models(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS model_cells (
	model_id TEXT NOT NULL,
	row INTEGER NOT NULL,
	col INTEGER NOT NULL,
	value REAL NOT NULL,
	PRIMARY KEY(model_id, row, col),
	FOREIGN KEY(model_id) REFERENCES models(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveModel writes the model header, label arrays and cells in one transaction
func (s *sqliteStore) SaveModel(ctx context.Context, m store.Model) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ID == "" {
		m.ID = store.NewID(m.CreatedAt)
	}

	params, err := json.Marshal(m.Params)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// Saving under an existing ID replaces the model
	if _, err := tx.ExecContext(ctx, `DELETE FROM models WHERE id=?`, m.ID); err != nil {
		return "", err
	}

	info := m.Info()
	_, err = tx.ExecContext(ctx, `
INSERT INTO models (id, name, created_at, n_rows, n_cols, nnz, has_tags, has_morphs, params)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.Name,
		m.CreatedAt.UTC().Format(time.RFC3339Nano),
		info.Rows,
		info.Cols,
		info.NNZ,
		boolInt(len(m.RowTags) > 0),
		boolInt(len(m.RowMorphs) > 0),
		string(params),
	)
	if err != nil {
		return "", err
	}

	if err := insertRows(ctx, tx, m); err != nil {
		return "", err
	}
	if err := insertCols(ctx, tx, m.ID, m.Counts.ColLabels()); err != nil {
		return "", err
	}
	if err := insertCells(ctx, tx, m.ID, m.Counts); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return m.ID, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, m store.Model) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_rows (model_id, idx, label, tag, morph) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, label := range m.Counts.RowLabels() {
		var tag, morph string
		if len(m.RowTags) > 0 {
			tag = m.RowTags[i]
		}
		if len(m.RowMorphs) > 0 {
			morph = m.RowMorphs[i]
		}
		if _, err := stmt.ExecContext(ctx, m.ID, i, label, tag, morph); err != nil {
			return err
		}
	}
	return nil
}

func insertCols(ctx context.Context, tx *sql.Tx, id string, labels []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_cols (model_id, idx, label) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for j, label := range labels {
		if _, err := stmt.ExecContext(ctx, id, j, label); err != nil {
			return err
		}
	}
	return nil
}

func insertCells(ctx context.Context, tx *sql.Tx, id string, x *matrix.Matrix) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_cells (model_id, row, col, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ri, ci, v := x.Triplets()
	for k := range v {
		if _, err := stmt.ExecContext(ctx, id, ri[k], ci[k], v[k]); err != nil {
			return err
		}
	}
	return nil
}

// LoadModel retrieves a model by ID
func (s *sqliteStore) LoadModel(ctx context.Context, id string) (store.Model, error) {
	var (
		m                  store.Model
		createdAt, params  string
		nRows, nCols, nnz  int
		hasTags, hasMorphs int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, created_at, n_rows, n_cols, nnz, has_tags, has_morphs, COALESCE(params, '')
FROM models WHERE id = ?`, id).Scan(
		&m.ID, &m.Name, &createdAt, &nRows, &nCols, &nnz, &hasTags, &hasMorphs, &params,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Model{}, fmt.Errorf("model %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Model{}, err
	}

	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		m.CreatedAt = ts
	}
	if params != "" && params != "null" {
		if err := json.Unmarshal([]byte(params), &m.Params); err != nil {
			return store.Model{}, fmt.Errorf("model %s params: %w", id, err)
		}
	}

	rows, tags, morphs, err := s.loadRows(ctx, id, nRows)
	if err != nil {
		return store.Model{}, err
	}
	if hasTags != 0 {
		m.RowTags = tags
	}
	if hasMorphs != 0 {
		m.RowMorphs = morphs
	}

	cols, err := s.loadCols(ctx, id, nCols)
	if err != nil {
		return store.Model{}, err
	}

	ri, ci, v, err := s.loadCells(ctx, id, nnz)
	if err != nil {
		return store.Model{}, err
	}

	m.Counts, err = matrix.FromTriplets(rows, cols, ri, ci, v)
	if err != nil {
		return store.Model{}, fmt.Errorf("model %s: %w", id, err)
	}
	return m, nil
}

func (s *sqliteStore) loadRows(ctx context.Context, id string, n int) (labels, tags, morphs []string, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, tag, morph FROM model_rows WHERE model_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	labels = make([]string, 0, n)
	tags = make([]string, 0, n)
	morphs = make([]string, 0, n)
	for rows.Next() {
		var label, tag, morph string
		if err := rows.Scan(&label, &tag, &morph); err != nil {
			return nil, nil, nil, err
		}
		labels = append(labels, label)
		tags = append(tags, tag)
		morphs = append(morphs, morph)
	}
	return labels, tags, morphs, rows.Err()
}

func (s *sqliteStore) loadCols(ctx context.Context, id string, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label FROM model_cols WHERE model_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make([]string, 0, n)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (s *sqliteStore) loadCells(ctx context.Context, id string, n int) (ri, ci []int, v []float64, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT row, col, value FROM model_cells WHERE model_id = ? ORDER BY row, col`, id)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	ri = make([]int, 0, n)
	ci = make([]int, 0, n)
	v = make([]float64, 0, n)
	for rows.Next() {
		var i, j int
		var x float64
		if err := rows.Scan(&i, &j, &x); err != nil {
			return nil, nil, nil, err
		}
		ri = append(ri, i)
		ci = append(ci, j)
		v = append(v, x)
	}
	return ri, ci, v, rows.Err()
}

// LatestModel returns the newest model saved under name
func (s *sqliteStore) LatestModel(ctx context.Context, name string) (store.Model, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM models WHERE name = ? ORDER BY id DESC LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Model{}, fmt.Errorf("model named %q: %w", name, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Model{}, err
	}
	return s.LoadModel(ctx, id)
}

// ListModels returns every model header, oldest first
func (s *sqliteStore) ListModels(ctx context.Context) ([]store.ModelInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at, n_rows, n_cols, nnz FROM models ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ModelInfo
	for rows.Next() {
		var info store.ModelInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Name, &createdAt, &info.Rows, &info.Cols, &info.NNZ); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			info.CreatedAt = ts
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteModel removes a model and, through the cascade, its labels and cells
func (s *sqliteStore) DeleteModel(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
