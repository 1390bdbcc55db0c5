package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
)

// Store persists trained count matrices and their label arrays
type Store interface {
	Close() error

	// SaveModel stores m and returns its ID. An empty m.ID is assigned.
	SaveModel(ctx context.Context, m Model) (string, error)
	// LoadModel returns the model with the given ID or ErrNotFound.
	LoadModel(ctx context.Context, id string) (Model, error)
	// LatestModel returns the most recently saved model named name.
	LatestModel(ctx context.Context, name string) (Model, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
	DeleteModel(ctx context.Context, id string) error
}

// Model is a persisted co-occurrence matrix
type Model struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Counts    *matrix.Matrix
	RowTags   []string // optional, parallel to the rows
	RowMorphs []string // optional, parallel to the rows
	Params    map[string]string
}

// ModelInfo summarizes a stored model
type ModelInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Rows      int
	Cols      int
	NNZ       int
}

// Info summarizes m
func (m Model) Info() ModelInfo {
	info := ModelInfo{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
	if m.Counts != nil {
		info.Rows, info.Cols = m.Counts.Dims()
		info.NNZ = m.Counts.NNZ()
	}
	return info
}

// Validate checks that m can be stored
func (m Model) Validate() error {
	if m.Counts == nil {
		return fmt.Errorf("%w: model has no matrix", internalerr.ErrInvalidInput)
	}
	rows, _ := m.Counts.Dims()
	if len(m.RowTags) > 0 && len(m.RowTags) != rows {
		return fmt.Errorf("%w: %d row tags for %d rows", internalerr.ErrInvalidInput, len(m.RowTags), rows)
	}
	if len(m.RowMorphs) > 0 && len(m.RowMorphs) != rows {
		return fmt.Errorf("%w: %d row morphs for %d rows", internalerr.ErrInvalidInput, len(m.RowMorphs), rows)
	}
	return nil
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexically sortable model ID
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
