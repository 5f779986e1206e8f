package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indexbench/internal/stats"
	"github.com/Aman-CERP/indexbench/internal/telemetry"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded benchmark runs",
		Long: `List benchmark runs recorded with --record, newest first.

Runs are kept in an SQLite database (default: ~/.indexbench/history.db).`,
		Args: noPositionalArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer a.stopOnError(cmd, &err)

			ctx := cmd.Context()
			history, err := telemetry.OpenHistory(ctx, a.cfg.Telemetry.HistoryDB)
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			runs, err := history.List(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				if runs == nil {
					runs = []telemetry.Run{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs. Run a benchmark with --record first.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tSTARTED\tENGINE\tDOCS\tREPS\tINC\tSTORE\tMEAN\tTRIMMED")
			_, _ = fmt.Fprintln(w, "--\t-------\t------\t----\t----\t---\t-----\t----\t-------")
			for _, r := range runs {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s %s\t%d\t%d\t%d\t%t\t%s\t%s\n",
					r.ID,
					humanize.Time(r.StartedAt),
					r.Engine, r.EngineVersion,
					r.Docs, r.Reps, r.Increment, r.Store,
					stats.FormatSeconds(r.MeanSeconds),
					stats.FormatSeconds(r.TrimmedMeanSeconds))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", telemetry.DefaultHistoryLimit, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output runs as JSON")

	return cmd
}
