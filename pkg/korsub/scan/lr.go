package scan

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cognicore/korsub/internal/progress"
	"github.com/cognicore/korsub/pkg/korsub/corpus"
	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/features"
)

// LRResult holds the unit vocabularies of a tagged corpus.
type LRResult struct {
	L *count.Vocabulary
	R *count.Vocabulary
	// Analysis maps a left unit to its most frequent morpheme and tag.
	Analysis map[string]Analysis
}

// Analysis is the dominant morphological reading of a left unit.
type Analysis struct {
	Morph string
	Tag   string
}

// LROptions configures the tagged-corpus scanners.
type LROptions struct {
	// MinCount is the final threshold on every entry.
	MinCount int64

	ProgressEvery int
	Logger        *slog.Logger
}

// Known returns the vocabularies as an extractor filter.
func (r *LRResult) Known() *features.Known {
	return &features.Known{L: r.L, R: r.R}
}

// ScanLR counts left units and non-empty right units, keeping those that
// occur at least opts.MinCount times.
func ScanLR(src corpus.LRSource, opts LROptions) (*LRResult, error) {
	if err := src.Reset(); err != nil {
		return nil, fmt.Errorf("reset corpus: %w", err)
	}
	ls, rs := count.NewCounter(), count.NewCounter()
	readings := count.NewTable()
	pr := progress.New(opts.Logger, "scan-lr", opts.ProgressEvery)
	sizes := func() []any { return []any{"l", len(ls), "r", len(rs)} }

	for {
		sent, ok := src.Next()
		if !ok {
			break
		}
		for _, w := range sent {
			ls.Inc(w.L)
			if w.R != "" {
				rs.Inc(w.R)
			}
			if w.Tag != "" {
				readings.Inc(w.L, w.Morph+"/"+w.Tag)
			}
		}
		pr.Tick(sizes)
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	ls.Prune(opts.MinCount)
	rs.Prune(opts.MinCount)
	pr.Done(sizes)

	analysis := make(map[string]Analysis, len(ls))
	for l := range ls {
		if a, ok := dominant(readings.Row(l)); ok {
			analysis[l] = a
		}
	}
	return &LRResult{L: count.Rank(ls), R: count.Rank(rs), Analysis: analysis}, nil
}

func dominant(c count.Counter) (Analysis, bool) {
	if len(c) == 0 {
		return Analysis{}, false
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c[keys[i]] != c[keys[j]] {
			return c[keys[i]] > c[keys[j]]
		}
		return keys[i] < keys[j]
	})
	best := keys[0]
	i := strings.LastIndexByte(best, '/')
	return Analysis{Morph: best[:i], Tag: best[i+1:]}, true
}

// ScanFeatures counts the contexts emitted by the extractor under the
// known-unit filter and keeps those seen at least opts.MinCount times.
// Labels are Context.String() values.
func ScanFeatures(src corpus.LRSource, known *features.Known, opts LROptions) (*count.Vocabulary, error) {
	if err := src.Reset(); err != nil {
		return nil, fmt.Errorf("reset corpus: %w", err)
	}
	feats := count.NewCounter()
	pr := progress.New(opts.Logger, "scan-features", opts.ProgressEvery)
	sizes := func() []any { return []any{"features", len(feats)} }

	for {
		sent, ok := src.Next()
		if !ok {
			break
		}
		for _, occ := range features.Extract(sent, known) {
			for c := range occ.Features {
				feats.Inc(c.String())
			}
		}
		pr.Tick(sizes)
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	feats.Prune(opts.MinCount)
	pr.Done(sizes)
	return count.Rank(feats), nil
}
