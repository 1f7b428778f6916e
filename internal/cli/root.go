// Package cli implements the hotelrec command line: import bookings, train
// a model and query it offline.
package cli

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_recommender/internal/adapters/observability"
	"hotel_recommender/internal/shared"
)

var cfg shared.Config

var rootCmd = &cobra.Command{
	Use:   "hotelrec",
	Short: "Hotel stay recommender",
	Long: `hotelrec imports historical hotel bookings, fits a nearest-neighbor
model over them and recommends similar stays for a preference profile.

Settings come from config.yaml (or $CONFIG_PATH), .env and environment
variables such as MODEL_PATH, MODEL_STORE and MYSQL_DSN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := shared.Load()
		if err != nil {
			return err
		}
		cfg = c
		log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command. Results go to stdout, logs to stderr.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}
