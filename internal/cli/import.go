package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hotel_recommender/internal/app"
)

var (
	importCSV     string
	importURL     string
	importWorkers int
	importBatch   int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a booking CSV into MySQL",
	Long: `Reads a booking CSV from disk (--csv) or over HTTP (--url) and upserts
it into the bookings table in batches. Rows keep their file position as
their id; rows past the end of the new file are deleted afterwards, so the
table always mirrors the last import.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importCSV, "csv", "", "CSV path (default $CSV_PATH)")
	importCmd.Flags().StringVar(&importURL, "url", "", "download the CSV from this URL instead")
	importCmd.Flags().IntVarP(&importWorkers, "workers", "w", 0, "concurrent batches (default $IMPORT_WORKERS)")
	importCmd.Flags().IntVar(&importBatch, "batch", 0, "rows per batch (default $IMPORT_BATCH)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	kind := sourceCSV
	if importURL != "" {
		kind = sourceURL
	}
	src, closeSrc, err := openSource(ctx, kind, importCSV, importURL)
	if err != nil {
		return err
	}
	defer closeSrc()

	repo, closeRepo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	workers, batch := cfg.ImportWorker, cfg.ImportBatch
	if importWorkers > 0 {
		workers = importWorkers
	}
	if importBatch > 0 {
		batch = importBatch
	}

	rep, err := app.NewImportService(repo, workers, batch).Import(ctx, src)
	if rep.Batches > 0 {
		cmd.Printf("Imported %d rows in %d batches (%d failed)\n", rep.Rows, rep.Batches, rep.Failed)
	}
	if rep.Trimmed > 0 {
		cmd.Printf("Removed %d stale rows\n", rep.Trimmed)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}
