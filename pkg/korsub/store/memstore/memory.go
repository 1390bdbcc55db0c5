package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	models map[string]store.Model
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{models: make(map[string]store.Model)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveModel stores a copy of m.
func (s *Store) SaveModel(ctx context.Context, m store.Model) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ID == "" {
		m.ID = store.NewID(m.CreatedAt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[m.ID] = copyModel(m)
	return m.ID, nil
}

// LoadModel returns a stored model by ID.
func (s *Store) LoadModel(ctx context.Context, id string) (store.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.models[id]
	if !ok {
		return store.Model{}, fmt.Errorf("model %s: %w", id, internalerr.ErrNotFound)
	}
	return copyModel(m), nil
}

// LatestModel returns the newest model with the given name.
func (s *Store) LatestModel(ctx context.Context, name string) (store.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *store.Model
	for id := range s.models {
		m := s.models[id]
		if m.Name != name {
			continue
		}
		if latest == nil || m.ID > latest.ID {
			latest = &m
		}
	}
	if latest == nil {
		return store.Model{}, fmt.Errorf("model named %q: %w", name, internalerr.ErrNotFound)
	}
	return copyModel(*latest), nil
}

// ListModels returns every model, oldest first.
func (s *Store) ListModels(ctx context.Context) ([]store.ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ModelInfo, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteModel removes a model. Deleting an unknown ID is not an error.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.models, id)
	return nil
}

// copyModel copies the mutable parts of m. The matrix is immutable and shared.
func copyModel(m store.Model) store.Model {
	out := m
	out.RowTags = append([]string(nil), m.RowTags...)
	out.RowMorphs = append([]string(nil), m.RowMorphs...)
	if m.Params != nil {
		out.Params = make(map[string]string, len(m.Params))
		for k, v := range m.Params {
			out.Params[k] = v
		}
	}
	return out
}
