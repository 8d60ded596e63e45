package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/adapter/csvfile"
	"github.com/couchcryptid/geo-hotspot/internal/store"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file.csv]",
		Short: "Check a CSV dataset and report valid and dropped rows",
		Long:  "Loads the file (DATA_PATH when no argument is given) through the same validation as analysis runs and reports what would be dropped.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			path := a.cfg.DataPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no file given and DATA_PATH is not set")
			}

			ds, err := a.store.Dataset(cmd.Context(), csvfile.NewSource(path, a.logger))
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), path, ds)
			if len(ds.Events) == 0 {
				return fmt.Errorf("%s: no valid rows", path)
			}
			return nil
		},
	}
}

func report(w io.Writer, path string, ds *store.Dataset) {
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  valid:   %d\n", len(ds.Events))
	fmt.Fprintf(w, "  dropped: %d\n", ds.Dropped)

	reasons := make([]string, 0, len(ds.DropReasons))
	for r := range ds.DropReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "    %-14s %d\n", r, ds.DropReasons[r])
	}

	if len(ds.Events) == 0 {
		return
	}
	obs := ds.Observed
	fmt.Fprintf(w, "  groups:  %v\n", obs.Groups)
	fmt.Fprintf(w, "  regions: %v\n", obs.Regions)
	fmt.Fprintf(w, "  dates:   %s .. %s\n", obs.First.Format(time.DateOnly), obs.Last.Format(time.DateOnly))
}
