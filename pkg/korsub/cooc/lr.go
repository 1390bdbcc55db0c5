package cooc

import (
	"fmt"

	"github.com/cognicore/korsub/internal/progress"
	"github.com/cognicore/korsub/pkg/korsub/corpus"
	"github.com/cognicore/korsub/pkg/korsub/count"
	"github.com/cognicore/korsub/pkg/korsub/features"
)

// CountLR builds the unit -> context table of a tagged corpus from the
// extractor output. Occurrences of units missing from known, and contexts
// whose label is not in feats, are ignored. known also blanks out unknown
// neighbouring units exactly as during feature discovery.
//
// Row labels are features.Unit strings, column labels features.Context
// strings. Width is unused.
func CountLR(src corpus.LRSource, known *features.Known, feats features.Lookup, opts Options) (*count.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := src.Reset(); err != nil {
		return nil, fmt.Errorf("reset corpus: %w", err)
	}

	t := count.NewTable()
	pr := progress.New(opts.Logger, "cooc-lr", opts.ProgressEvery)
	sizes := func() []any { return []any{"rows", t.Len(), "cells", t.NNZ()} }

	for i := 0; ; i++ {
		sent, ok := src.Next()
		if !ok {
			break
		}
		if opts.PrunePerSent > 0 && i%opts.PrunePerSent == 0 {
			t.Prune(opts.PruneMinCount)
		}
		for _, occ := range features.Extract(sent, known) {
			if !known.Has(occ.Unit) {
				continue
			}
			row := occ.Unit.String()
			for c := range occ.Features {
				if col := c.String(); feats.Contains(col) {
					t.Inc(row, col)
				}
			}
		}
		pr.Tick(sizes)
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("count corpus: %w", err)
	}

	t.Prune(opts.MinCount)
	pr.Done(sizes)
	return t, nil
}
