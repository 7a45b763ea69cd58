// cmd/agentd/history.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chrischeng-c4/agentd-sub001/internal/config"
	"github.com/chrischeng-c4/agentd-sub001/internal/runner"
	"github.com/chrischeng-c4/agentd-sub001/internal/store"
	"github.com/chrischeng-c4/agentd-sub001/internal/tui"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recorded fillback runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := runner.ResolveSource(args)
			if err != nil {
				return err
			}
			root, err := config.FindProjectRoot(start)
			if err != nil {
				return fmt.Errorf("finding project root: %w", err)
			}

			dbPath := config.HistoryPath(root)
			if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer st.Close()

			runs, err := st.ListRuns(limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show (0 = all)")
	return cmd
}

func printRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("STARTED", "STATUS", "STRATEGY", "CHANGE", "MODULES", "FILES", "DURATION", "ID")
	for _, r := range runs {
		change := r.ChangeID
		if change == "" {
			change = "-"
		}
		t.Row(
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.Strategy,
			change,
			fmt.Sprint(r.Modules),
			fmt.Sprint(r.Files),
			r.Duration.Round(time.Millisecond).String(),
			shortID(r.ID),
		)
	}

	fmt.Fprintln(w, tui.Header("Fillback history"))
	fmt.Fprintln(w, t.Render())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
