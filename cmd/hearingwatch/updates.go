package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicsignal/hearingwatch/internal/matching"
	"github.com/civicsignal/hearingwatch/internal/reconcile"
	"github.com/civicsignal/hearingwatch/internal/storage"
	"github.com/civicsignal/hearingwatch/internal/types"
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Show hearings whose alert fired recently",
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if days <= 0 {
			days = cfg.UpdatesWindowDays
		}

		store := storage.NewFileStore(cfg.StatePath())
		state, err := store.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: load state: %v\n", err)
			os.Exit(1)
		}

		engine, err := reconcile.New(reconcile.Config{
			Matching: matching.Config{
				SimilarityThreshold: cfg.CommentSimilarityThreshold,
				GraceWindowDays:     cfg.GraceWindowDays,
			},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		updates := engine.RecentUpdates(state, days)
		if len(updates) == 0 {
			fmt.Printf("No updates in the last %d days\n", days)
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("%d updates in the last %d days:\n\n", len(updates), days)
		for _, u := range updates {
			ev := u.Event
			when := u.AlertAt.Format("2006-01-02 15:04")
			date := ev.Latest.Date
			if date == "" {
				date = "TBD"
			}

			switch {
			case u.AlertType == types.AlertNew && ev.RescheduledFrom != "":
				fmt.Printf("  %s [%s] %s on %s (rescheduled from event %s)\n",
					cyan("»"), when, ev.Latest.BodyName, date, ev.RescheduledFrom)
			case u.AlertType == types.AlertNew:
				fmt.Printf("  %s [%s] %s on %s\n",
					green("+"), when, ev.Latest.BodyName, date)
			case ev.Status == types.StatusDeferredRescheduled:
				fmt.Printf("  %s [%s] %s deferred, replacement is event %s\n",
					cyan("»"), when, ev.Latest.BodyName, ev.RescheduledTo)
			case ev.Status == types.StatusDeferredNoMatch:
				fmt.Printf("  %s [%s] %s deferred, no replacement found\n",
					yellow("~"), when, ev.Latest.BodyName)
			default:
				fmt.Printf("  %s [%s] %s deferred, awaiting replacement\n",
					yellow("~"), when, ev.Latest.BodyName)
			}
		}
	},
}

func init() {
	updatesCmd.Flags().IntP("days", "d", 0, "Lookback window in days (default from config)")
	rootCmd.AddCommand(updatesCmd)
}
