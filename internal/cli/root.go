// Package cli implements the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvallade/maha/internal/config"
	"github.com/rvallade/maha/internal/store"
)

var (
	dbPath  string
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "maha",
	Short: "Play and organize a local music library",
	Long:  `Maha is a local-library music player with persistent queue state, smart playlists and listening stats.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default: XDG data dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initApp() error {
	var err error
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log = zap.NewNop()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return nil
}

// openStore opens the database at the configured location. The caller
// owns the returned manager and must close it.
func openStore() (*store.Manager, error) {
	if dbPath != "" {
		return store.OpenAt(dbPath, log)
	}
	return store.Open(log)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
