package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/korsub/pkg/korsub/corpus"
)

var (
	maxSentences   int
	lowercase      bool
	adjectiveSplit bool
)

var trainCmd = &cobra.Command{
	Use:   "train <corpus.txt|corpus.html>",
	Short: "Train subword embeddings on a plain corpus",
	Long: `Train subword embeddings on a whitespace-tokenized corpus with one
sentence per line. Files ending in .html or .htm are read as HTML, one
sentence per block element.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		trainer, st, log, err := setup(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := corpus.TextOptions{MaxSentences: maxSentences, Lowercase: lowercase}
		var src corpus.Source
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".html", ".htm":
			s, err := corpus.OpenHTML(args[0], opts)
			if err != nil {
				return err
			}
			src = s
		default:
			f, err := corpus.OpenText(args[0], opts)
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}

		m, err := trainer.TrainSubwords(src)
		if err != nil {
			return err
		}
		id, err := trainer.Save(ctx, st, modelName, m)
		if err != nil {
			return err
		}
		log.Info("done", "id", id)
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var trainLRCmd = &cobra.Command{
	Use:   "train-lr <corpus.tsv>...",
	Short: "Train L/R unit embeddings on four-column tagged corpora",
	Long: `Train embeddings for the leading and trailing units of each word on
tab-separated corpora: surface, analysis, two split variants, one token
per line, blank line between sentences.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		trainer, st, log, err := setup(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		split := adjectiveSplit || trainer.Config().Tagged.AdjectiveSplit
		src, err := corpus.OpenFourColumn(args, corpus.FourColumnOptions{
			AdjectiveSplit: split,
			MaxSentences:   maxSentences,
			Logger:         log,
		})
		if err != nil {
			return err
		}
		defer src.Close()

		m, err := trainer.TrainLR(src)
		if err != nil {
			return err
		}
		if n := src.Skipped(); n > 0 {
			log.Warn("skipped malformed records", "count", n)
		}
		id, err := trainer.Save(ctx, st, modelName, m)
		if err != nil {
			return err
		}
		log.Info("done", "id", id)
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{trainCmd, trainLRCmd} {
		c.Flags().IntVar(&maxSentences, "max-sentences", 0, "Stop after this many sentences (0 reads all)")
	}
	trainCmd.Flags().BoolVar(&lowercase, "lowercase", false, "Lowercase tokens")
	trainLRCmd.Flags().BoolVar(&adjectiveSplit, "adjective-split", false, "Read the adjective-split column")
}
