package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/geo-hotspot/internal/export"
	"github.com/couchcryptid/geo-hotspot/internal/pipeline"
	"github.com/spf13/cobra"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		flags  analysisFlags
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis pass and write the result tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			params, err := flags.apply(cmd, a.cfg.Params)
			if err != nil {
				return err
			}

			p := pipeline.New(a.source, a.store, nil, a.logger, a.metrics)
			res, err := p.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			if res.Empty {
				a.logger.Warn("no events match the filters; nothing written",
					"valid", res.Valid, "groups", params.Groups, "regions", params.Regions)
				return nil
			}

			if err := writeTables(outDir, res, a.cfg.ExportDelim); err != nil {
				return err
			}
			a.logger.Info("tables written", "dir", outDir, "run_id", res.RunID)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Insights)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for events.csv, clusters.csv and centers.csv")
	return cmd
}

func writeTables(dir string, res *pipeline.Result, delim rune) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tables := []export.Table{
		export.Events(res.Labeled),
		export.Clusters(res.Clusters),
		export.Centers(res.Centers),
	}
	for _, t := range tables {
		if err := writeTable(filepath.Join(dir, t.Name()+".csv"), t, delim); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(path string, t export.Table, delim rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(f, t, export.WithDelimiter(delim)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
