// Command hotspot finds geographic event hotspots in a tabular dataset.
//
// Usage:
//
//	hotspot analyze --out ./out --groups "Group A,Group B" --start 2024-01-01
//	hotspot serve
//	hotspot validate data/events.csv
//
// Settings come from the environment (see internal/config); a .env file in the
// working directory is loaded first when present.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("hotspot failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "hotspot",
		Short: "Density and partition clustering of geotagged events",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newAnalyzeCommand(), newServeCommand(), newValidateCommand())
	return cmd
}
