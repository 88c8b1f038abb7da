package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobboard/geo-service/internal/proximity"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Geocode and store coordinates for entities with only location text",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		rep, err := proximity.NewService(st, nil, nil).Backfill(ctx)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render("Backfill complete"))
		fmt.Printf("  Jobs updated:       %d\n", rep.JobsUpdated)
		fmt.Printf("  Candidates updated: %d\n", rep.CandidatesUpdated)
		fmt.Printf("  Unresolved:         %d\n", rep.Unresolved)
		fmt.Printf("  Failed:             %d\n", rep.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}
