package cmd

import (
	"fmt"
	"time"

	"attendance-reconciler/core/database"
	"attendance-reconciler/feature/roster"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var runsLimit int

// runsCmd lists persisted reconciliation runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List reconciliation runs stored in the history database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := historyService()
		if err != nil {
			return err
		}

		runs, err := svc.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			pterm.Info.Println("No runs recorded yet")
			return nil
		}

		data := pterm.TableData{{"ID", "Started", "Source", "Files", "People", "Failures", "Duration"}}
		for _, r := range runs {
			data = append(data, []string{
				r.ID,
				r.StartedAt.Local().Format(time.DateTime),
				truncate(r.Source, 40),
				fmt.Sprint(r.Files),
				fmt.Sprint(r.Identities),
				fmt.Sprint(r.Failures),
				(time.Duration(r.DurationMillis) * time.Millisecond).String(),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

// runsShowCmd prints the ranked roster of one run.
var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the ranked roster of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := historyService()
		if err != nil {
			return err
		}

		run, err := svc.GetRun(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load run %s: %w", args[0], err)
		}

		pterm.DefaultSection.Printfln("Run %s", run.ID)
		pterm.Printfln("  Source: %s", run.Source)
		pterm.Printfln("  Started: %s", run.StartedAt.Local().Format(time.DateTime))
		pterm.Printfln("  Files processed: %d of %d", run.FilesProcessed, run.Files)
		pterm.Printfln("  Bindings: %d", run.Bindings)

		entries := make([]roster.Entry, len(run.Appearances))
		for i, a := range run.Appearances {
			entries[i] = roster.Entry{Rank: a.Position, Name: a.Name, Email: a.Email, Count: a.Count}
		}
		printTop(entries, runsLimit)
		return nil
	},
}

func init() {
	runsCmd.PersistentFlags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum rows to show")
	runsCmd.AddCommand(runsShowCmd)
	RootCmd.AddCommand(runsCmd)
}

func historyService() (*roster.Service, error) {
	cfg, l, err := bootstrap()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	return roster.NewService(nil, cfg.Storage, cfg.Reconcile, db, l), nil
}
