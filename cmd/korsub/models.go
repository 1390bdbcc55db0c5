package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var deleteID string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List stored models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, st, log, err := setup(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if deleteID != "" {
			if err := st.DeleteModel(ctx, deleteID); err != nil {
				return err
			}
			log.Info("deleted model", "id", deleteID)
			return nil
		}

		infos, err := st.ListModels(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCREATED\tROWS\tCOLS\tNNZ")
		for _, m := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				m.ID, m.Name, m.CreatedAt.Local().Format(time.DateTime), m.Rows, m.Cols, m.NNZ)
		}
		return w.Flush()
	},
}

func init() {
	modelsCmd.Flags().StringVar(&deleteID, "delete", "", "Delete the model with this ID")
}
