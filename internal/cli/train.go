package cli

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"hotel_recommender/internal/app"
)

var (
	trainSource string
	trainCSV    string
	trainURL    string
	trainJSON   bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a model over the booking corpus",
	Long: `Loads the booking corpus, fits the feature pipeline and the
nearest-neighbor index, and writes the model to the configured store
(MODEL_STORE=file writes MODEL_PATH, MODEL_STORE=mysql appends to the
models table).`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainSource, "source", "csv", "corpus source: csv, url or mysql")
	trainCmd.Flags().StringVar(&trainCSV, "csv", "", "CSV path (default $CSV_PATH)")
	trainCmd.Flags().StringVar(&trainURL, "url", "", "dataset URL (default $DATASET_URL)")
	trainCmd.Flags().BoolVar(&trainJSON, "json", false, "print model info as JSON")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, closeSrc, err := openSource(ctx, trainSource, trainCSV, trainURL)
	if err != nil {
		return err
	}
	defer closeSrc()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	m, err := app.NewTrainingService(store).Train(ctx, src)
	if err != nil {
		return fmt.Errorf("train failed: %w", err)
	}

	info := m.Info()
	if trainJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal model info: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Printf("Model %s trained on %d bookings (%d features, schema v%d)\n",
		info.ID, info.CorpusSize, len(info.FeatureNames), info.SchemaVersion)
	return nil
}
