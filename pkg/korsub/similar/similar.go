// Package similar answers cosine nearest-neighbour queries over an
// embedding matrix.
package similar

import (
	"sort"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
)

// Neighbor is a label and its cosine similarity to the query.
type Neighbor struct {
	Label      string
	Similarity float64
}

// Labels maps between row labels and row indices.
type Labels interface {
	Index(label string) (int, bool)
	Label(i int) string
}

// MostSimilar returns the rows closest to query by cosine distance, most
// similar first. topk <= 0 returns every row. The query itself is never in
// the result and an unknown query yields an empty result. Rows with a zero
// norm have similarity 0. Equal distances keep row order.
func MostSimilar(query string, vectors mat.Matrix, labels Labels, topk int) []Neighbor {
	if vectors == nil {
		return nil
	}
	q, ok := labels.Index(query)
	if !ok {
		return nil
	}
	r, c := vectors.Dims()
	if c == 0 || q >= r {
		return nil
	}

	qv := mat.Row(nil, q, vectors)
	qn := vek.Norm(qv)
	dist := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, vectors)
		dist[i] = 1 - cosine(qv, qn, row)
	}

	order := make([]int, r)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dist[order[a]] < dist[order[b]]
	})
	if topk > 0 && len(order) > topk+1 {
		order = order[:topk+1]
	}

	out := make([]Neighbor, 0, len(order))
	for _, i := range order {
		if i == q {
			continue
		}
		out = append(out, Neighbor{Label: labels.Label(i), Similarity: 1 - dist[i]})
	}
	if topk > 0 && len(out) > topk {
		out = out[:topk]
	}
	return out
}

func cosine(q []float64, qn float64, x []float64) float64 {
	xn := vek.Norm(x)
	if qn == 0 || xn == 0 {
		return 0
	}
	return vek.Dot(q, x) / (qn * xn)
}
