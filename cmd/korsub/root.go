package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/korsub/pkg/korsub"
	"github.com/cognicore/korsub/pkg/korsub/config"
	"github.com/cognicore/korsub/pkg/korsub/store"
	"github.com/cognicore/korsub/pkg/korsub/store/sqlite"
)

var (
	configPath string
	dbPath     string
	modelName  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "korsub",
	Short: "Korean subword embeddings",
	Long: `korsub learns embeddings for Korean subword units from co-occurrence
counts, PMI and a truncated SVD, and answers nearest-neighbour queries.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite model database (overrides store.path)")
	rootCmd.PersistentFlags().StringVar(&modelName, "name", "default", "Model name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(trainCmd, trainLRCmd, similarCmd, modelsCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	return cfg, nil
}

// setup loads the configuration, opens the model store and builds a trainer
func setup(ctx context.Context) (*korsub.Trainer, store.Store, *slog.Logger, error) {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	trainer, err := korsub.New(korsub.Options{Config: cfg, Logger: log})
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug("opened store", "path", cfg.Store.Path)
	return trainer, st, log, nil
}
