package korsub

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
	"github.com/cognicore/korsub/pkg/korsub/similar"
	"github.com/cognicore/korsub/pkg/korsub/svd"
)

// Model is a trained embedding together with the matrices it came from
type Model struct {
	// ID is set once the model has been saved or restored
	ID string

	X         *matrix.Matrix // co-occurrence counts
	PMI       *matrix.Matrix
	Px        []float64
	Py        []float64
	Embedding *svd.Embedding

	// RowTags and RowMorphs hold the dominant analysis of each row for
	// tagged models, empty otherwise.
	RowTags   []string
	RowMorphs []string
	Params    map[string]string
}

// MostSimilar returns the topk rows nearest to query by cosine similarity.
// topk <= 0 returns every row. Unknown queries yield an empty result.
func (m *Model) MostSimilar(query string, topk int) []similar.Neighbor {
	if m.Embedding == nil || m.Embedding.Rank() == 0 {
		return nil
	}
	return similar.MostSimilar(query, m.Embedding.Vectors, m.X.Rows(), topk)
}

// Vector returns a copy of the embedding of a row label
func (m *Model) Vector(label string) ([]float64, bool) {
	if m.Embedding == nil || m.Embedding.Rank() == 0 {
		return nil, false
	}
	i, ok := m.X.Rows().Index(label)
	if !ok {
		return nil, false
	}
	return mat.Row(nil, i, m.Embedding.Vectors), true
}

// Infer embeds a weighted bag of column labels through the mapper.
// Unknown labels are ignored; it fails when none is known.
func (m *Model) Infer(contexts map[string]float64) ([]float64, error) {
	if m.Embedding == nil || m.Embedding.Rank() == 0 {
		return nil, internalerr.ErrEmptyModel
	}
	x := make(map[int]float64, len(contexts))
	for label, w := range contexts {
		if j, ok := m.X.Cols().Index(label); ok {
			x[j] += w
		}
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no known contexts", internalerr.ErrNotFound)
	}
	return m.Embedding.Project(x), nil
}

// Analysis returns the dominant morpheme and tag recorded for a row label
func (m *Model) Analysis(label string) (morph, tag string, ok bool) {
	i, found := m.X.Rows().Index(label)
	if !found || i >= len(m.RowTags) || i >= len(m.RowMorphs) {
		return "", "", false
	}
	if m.RowTags[i] == "" && m.RowMorphs[i] == "" {
		return "", "", false
	}
	return m.RowMorphs[i], m.RowTags[i], true
}
