package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicsignal/hearingwatch/internal/archive"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show archived reconciliation runs",
	Long: `List recent reconciliation runs from the archive database, or show
the individual changes recorded under one run id.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		arc, err := archive.Open(cfg.ArchivePath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open archive: %v\n", err)
			os.Exit(1)
		}
		defer arc.Close()

		ctx := context.Background()

		if len(args) == 1 {
			showRunEntries(ctx, arc, args[0])
			return
		}

		runs, err := arc.RecentRuns(ctx, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Println("No archived runs yet")
			return
		}

		bold := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s\n", bold("RUN                                   STARTED               FETCHED  NEW  DEF  RES  MOV  CONF"))
		for _, r := range runs {
			fmt.Printf("%-36s  %-19s  %7d  %3d  %3d  %3d  %3d  %4d\n",
				r.ID,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Fetched,
				r.NewCount,
				r.DeferredCount,
				r.RescheduleCount,
				r.MovedCount,
				r.ConfirmedCount)
		}
	},
}

func showRunEntries(ctx context.Context, arc *archive.Archive, runID string) {
	entries, err := arc.RunEntries(ctx, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Printf("No entries recorded for run %s\n", runID)
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("  %-14s %s", e.Category, e.EventID)
		if e.RelatedID != "" {
			line += " -> " + e.RelatedID
		}
		if e.Detail != "" {
			line += "  (" + e.Detail + ")"
		}
		fmt.Println(line)
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}
