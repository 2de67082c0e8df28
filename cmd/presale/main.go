// Package main provides the presale dashboard CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hmesh/presale-dashboard/internal/config"
)

var configPath string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "presale",
		Short:         "Presale dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configPath != "" {
				return os.Setenv("PRESALE_CONFIG_PATH", configPath)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newAPIKeyCmd())

	return rootCmd
}

// openApp loads config and wires the app for one-shot commands, which log to
// stderr.
func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, closeLog := newLogger(cfg.Log.Level, cfg.Log.Path, true)
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return a, func() {
		a.Close()
		closeLog()
	}, nil
}

func logErrf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
