// Package scan discovers subword and feature vocabularies in a streaming
// pass over a corpus.
package scan

import (
	"fmt"
	"log/slog"

	"github.com/cognicore/korsub/internal/progress"
	"github.com/cognicore/korsub/pkg/korsub/corpus"
	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
)

// Options configures ScanSubwords.
type Options struct {
	// Submax bounds the length of prefix features and of suffix remainders.
	Submax int
	// MinCount is the final threshold applied to subwords.
	MinCount int64
	// PrunePerSent is the pruning cadence in sentences; 0 disables pruning.
	PrunePerSent int
	// PruneMinCount is the threshold an entry must reach to survive a prune.
	PruneMinCount int64

	ProgressEvery int
	Logger        *slog.Logger
}

// DefaultOptions returns the default scan options.
func DefaultOptions() Options {
	return Options{
		Submax:        5,
		MinCount:      10,
		PrunePerSent:  2000000,
		PruneMinCount: 2,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	switch {
	case o.Submax < 1:
		return fmt.Errorf("%w: submax must be >= 1, got %d", internalerr.ErrInvalidConfig, o.Submax)
	case o.MinCount < 0, o.PruneMinCount < 0:
		return fmt.Errorf("%w: min counts must be >= 0", internalerr.ErrInvalidConfig)
	case o.PrunePerSent < 0:
		return fmt.Errorf("%w: prune_per_sent must be >= 0, got %d", internalerr.ErrInvalidConfig, o.PrunePerSent)
	}
	return nil
}

// Result holds the counters produced by ScanSubwords.
type Result struct {
	Subwords count.Counter
	Features count.Counter
}

// SubwordVocab ranks the subwords by frequency.
func (r *Result) SubwordVocab() *count.Vocabulary { return count.Rank(r.Subwords) }

// FeatureVocab ranks the features by frequency.
func (r *Result) FeatureVocab() *count.Vocabulary { return count.Rank(r.Features) }

// ScanSubwords counts candidate subwords and features.
//
// For every word of n > 1 runes, each prefix word[:i] with 2 <= i <= n is a
// subword. Each split i also yields the prefix word[:i] as a feature when
// i <= Submax and the remainder word[i:] when n-i < Submax.
//
// Both counters are pruned at PruneMinCount before every PrunePerSent-th
// sentence, so the result is an approximate lower bound unless PrunePerSent
// exceeds the corpus size. Subwords are finally filtered at MinCount;
// features keep only the prune threshold.
func ScanSubwords(src corpus.Source, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := src.Reset(); err != nil {
		return nil, fmt.Errorf("reset corpus: %w", err)
	}

	subwords := count.NewCounter()
	feats := count.NewCounter()
	sizes := func() []any {
		return []any{"subwords", len(subwords), "features", len(feats)}
	}
	pr := progress.New(opts.Logger, "scan", opts.ProgressEvery)

	for i := 0; ; i++ {
		words, ok := src.Next()
		if !ok {
			break
		}
		if opts.PrunePerSent > 0 && i%opts.PrunePerSent == 0 {
			feats.Prune(opts.PruneMinCount)
			subwords.Prune(opts.PruneMinCount)
		}
		for _, word := range words {
			countWord([]rune(word), opts.Submax, subwords, feats)
		}
		pr.Tick(sizes)
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}

	subwords.Prune(opts.MinCount)
	pr.Done(sizes)
	return &Result{Subwords: subwords, Features: feats}, nil
}

func countWord(w []rune, submax int, subwords, feats count.Counter) {
	n := len(w)
	if n <= 1 {
		return
	}
	for i := 2; i <= n; i++ {
		if i <= submax {
			feats.Inc(string(w[:i]))
		}
		if n-i < submax {
			feats.Inc(string(w[i:]))
		}
		subwords.Inc(string(w[:i]))
	}
}
