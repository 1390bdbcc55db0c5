// Package cooc accumulates subword/context co-occurrence counts.
package cooc

import (
	"fmt"
	"log/slog"

	"github.com/cognicore/korsub/internal/progress"
	"github.com/cognicore/korsub/pkg/korsub/corpus"
	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/features"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
)

// DefaultWidth is the context enumeration width in runes.
const DefaultWidth = 5

// Options configures the counters.
type Options struct {
	// MinCount is the final threshold on every cell.
	MinCount int64
	// PrunePerSent is the pruning cadence in sentences; 0 disables pruning.
	PrunePerSent int
	// PruneMinCount is the threshold a cell must reach to survive a prune.
	PruneMinCount int64
	// Width bounds the neighbouring prefixes and suffixes that are enumerated.
	Width int

	ProgressEvery int
	Logger        *slog.Logger
}

// DefaultOptions returns the default counter options.
func DefaultOptions() Options {
	return Options{
		MinCount:      2,
		PrunePerSent:  1000000,
		PruneMinCount: 2,
		Width:         DefaultWidth,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	switch {
	case o.Width < 1:
		return fmt.Errorf("%w: width must be >= 1, got %d", internalerr.ErrInvalidConfig, o.Width)
	case o.MinCount < 0, o.PruneMinCount < 0:
		return fmt.Errorf("%w: min counts must be >= 0", internalerr.ErrInvalidConfig)
	case o.PrunePerSent < 0:
		return fmt.Errorf("%w: prune_per_sent must be >= 0, got %d", internalerr.ErrInvalidConfig, o.PrunePerSent)
	}
	return nil
}

// Count builds the subword -> context table of a plain corpus.
//
// For every known prefix word[:e] (2 <= e <= n) of a word:
//   - each known suffix of the previous word (1..Width runes) is recorded
//     as a left context;
//   - the remainder r = word[e:] must be empty or a known feature,
//     otherwise the split contributes nothing further;
//   - a non-empty r is recorded as a right context, and so is r followed by
//     each known prefix (2..Width runes) of the next word.
//
// Row labels are subwords, column labels are features.Context strings.
func Count(src corpus.Source, subwords, feats features.Lookup, opts Options) (*count.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := src.Reset(); err != nil {
		return nil, fmt.Errorf("reset corpus: %w", err)
	}

	t := count.NewTable()
	pr := progress.New(opts.Logger, "cooc", opts.ProgressEvery)
	sizes := func() []any { return []any{"rows", t.Len(), "cells", t.NNZ()} }

	for i := 0; ; i++ {
		words, ok := src.Next()
		if !ok {
			break
		}
		if opts.PrunePerSent > 0 && i%opts.PrunePerSent == 0 {
			t.Prune(opts.PruneMinCount)
		}
		countSentence(t, words, subwords, feats, opts.Width)
		pr.Tick(sizes)
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("count corpus: %w", err)
	}

	t.Prune(opts.MinCount)
	pr.Done(sizes)
	return t, nil
}

func countSentence(t *count.Table, words []string, subwords, feats features.Lookup, width int) {
	runes := make([][]rune, len(words))
	for i, w := range words {
		runes[i] = []rune(w)
	}
	last := len(runes) - 1

	for iw, word := range runes {
		n := len(word)
		if n <= 1 {
			continue
		}
		var lefts, rights []string
		if iw > 0 {
			lefts = suffixes(runes[iw-1], width, feats)
		}
		if iw < last {
			rights = prefixes(runes[iw+1], width, feats)
		}

		for e := 2; e <= n; e++ {
			sub := string(word[:e])
			if !subwords.Contains(sub) {
				continue
			}
			for _, left := range lefts {
				t.Inc(sub, features.Context{Text: left, Sign: features.Left}.String())
			}

			r := string(word[e:])
			if r != "" && !feats.Contains(r) {
				continue
			}
			if r != "" {
				t.Inc(sub, features.Context{Text: r, Sign: features.Right}.String())
			}
			for _, right := range rights {
				t.Inc(sub, features.Context{Text: r + right, Sign: features.Right}.String())
			}
		}
	}
}

// suffixes returns the known suffixes of w of length 1..width, shortest first.
func suffixes(w []rune, width int, known features.Lookup) []string {
	var out []string
	for i := 1; i <= width && i <= len(w); i++ {
		if s := string(w[len(w)-i:]); known.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}

// prefixes returns the known prefixes of w of length 2..width, shortest first.
func prefixes(w []rune, width int, known features.Lookup) []string {
	var out []string
	for i := 2; i <= width && i <= len(w); i++ {
		if s := string(w[:i]); known.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}
