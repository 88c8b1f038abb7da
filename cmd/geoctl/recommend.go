package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobboard/geo-service/internal/recommend"
)

var recommendLimit int

var recommendCmd = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Rank jobs for a user and explain each match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, cfg, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		limit := recommendLimit
		if limit <= 0 {
			limit = cfg.RecommendTopK
		}
		recommender, err := recommend.Open(cfg.RecommendModel)
		if err != nil {
			return err
		}
		recs, err := recommend.NewService(st, recommender).RecommendForUser(ctx, args[0], limit)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("Recommendations for %s", args[0])))
		if len(recs) == 0 {
			fmt.Println(mutedStyle.Render("No active jobs to recommend."))
			return nil
		}
		for i, r := range recs {
			fmt.Printf("%s %s %s\n", labelStyle.Render(fmt.Sprintf("%d.", i+1)), r.Job.Title, mutedStyle.Render(fmt.Sprintf("(%s, %.1f)", r.Job.ID, r.Score)))
			for _, reason := range r.Reasons {
				fmt.Printf("     • %s\n", reason)
			}
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "number of jobs to return (default RECOMMEND_TOP_K)")
	rootCmd.AddCommand(recommendCmd)
}
