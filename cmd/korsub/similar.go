package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/korsub/pkg/korsub"
)

var (
	topK    int
	modelID string
)

var similarCmd = &cobra.Command{
	Use:   "similar <query>...",
	Short: "Print the nearest neighbours of units in a stored model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		trainer, st, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var model *korsub.Model
		if modelID != "" {
			model, err = trainer.Restore(ctx, st, modelID)
		} else {
			model, err = trainer.RestoreLatest(ctx, st, modelName)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, q := range args {
			fmt.Fprintf(out, "%s\n", q)
			res := model.MostSimilar(q, topK)
			if len(res) == 0 {
				fmt.Fprintln(out, "  (no results)")
				continue
			}
			for _, n := range res {
				fmt.Fprintf(out, "  %-20s %.4f\n", n.Label, n.Similarity)
			}
		}
		return nil
	},
}

func init() {
	similarCmd.Flags().IntVar(&topK, "topk", 10, "Number of neighbours (<= 0 prints all)")
	similarCmd.Flags().StringVar(&modelID, "id", "", "Model ID (defaults to the latest model with --name)")
}
