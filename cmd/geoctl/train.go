package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobboard/geo-service/internal/recommend"
)

var (
	trainEngaged []string
	trainOut     string
	trainEpochs  int
	trainRate    float64
)

var trainCmd = &cobra.Command{
	Use:   "train <user-id>",
	Short: "Fit the re-ranking model from jobs a user engaged with",
	Long: `train labels the active job pool for a user (jobs passed with --engaged
are positives) and writes a logistic model that the server loads through
RECOMMEND_MODEL_FILE.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(trainEngaged) == 0 {
			return fmt.Errorf("--engaged needs at least one job id")
		}
		ctx := cmd.Context()
		st, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		examples, err := recommend.NewService(st, nil).TrainingExamples(ctx, args[0], trainEngaged)
		if err != nil {
			return err
		}
		m := recommend.NewLogisticModel()
		if err := m.Train(examples, trainEpochs, trainRate); err != nil {
			return err
		}
		if err := m.SaveFile(trainOut); err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Model trained"))
		fmt.Printf("  Examples: %d\n", len(examples))
		fmt.Printf("  Written:  %s\n", trainOut)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringSliceVar(&trainEngaged, "engaged", nil, "job ids the user applied to or saved")
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "model.json", "where to write the model")
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 300, "gradient descent epochs")
	trainCmd.Flags().Float64Var(&trainRate, "rate", 0.5, "learning rate")
	rootCmd.AddCommand(trainCmd)
}
