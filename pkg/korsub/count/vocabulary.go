package count

import "sort"

// Vocabulary is an immutable ordered bijection between labels and dense
// indices. Each label carries the count its rank was derived from.
type Vocabulary struct {
	labels []string
	counts []int64
	index  map[string]int
}

// Rank builds a vocabulary from c ordered by descending count. Ties are
// broken by ascending label so the order is a pure function of the counts.
func Rank(c Counter) *Vocabulary {
	labels := make([]string, 0, len(c))
	for k := range c {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		ci, cj := c[labels[i]], c[labels[j]]
		if ci != cj {
			return ci > cj
		}
		return labels[i] < labels[j]
	})
	counts := make([]int64, len(labels))
	for i, l := range labels {
		counts[i] = c[l]
	}
	return newVocabulary(labels, counts)
}

// NewVocabulary builds a vocabulary that keeps labels in the given order.
// counts may be nil. Duplicate labels keep their first index.
func NewVocabulary(labels []string, counts []int64) *Vocabulary {
	l := make([]string, len(labels))
	copy(l, labels)
	c := make([]int64, len(labels))
	copy(c, counts)
	return newVocabulary(l, c)
}

func newVocabulary(labels []string, counts []int64) *Vocabulary {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; !dup {
			index[l] = i
		}
	}
	return &Vocabulary{labels: labels, counts: counts, index: index}
}

// Len returns the number of labels
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.labels)
}

// Label returns the label at index i
func (v *Vocabulary) Label(i int) string {
	return v.labels[i]
}

// Count returns the count recorded for index i
func (v *Vocabulary) Count(i int) int64 {
	return v.counts[i]
}

// Index returns the index of label
func (v *Vocabulary) Index(label string) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.index[label]
	return i, ok
}

// Contains reports whether label is in the vocabulary
func (v *Vocabulary) Contains(label string) bool {
	_, ok := v.Index(label)
	return ok
}

// Labels returns a copy of the labels in index order
func (v *Vocabulary) Labels() []string {
	out := make([]string, v.Len())
	if v != nil {
		copy(out, v.labels)
	}
	return out
}
