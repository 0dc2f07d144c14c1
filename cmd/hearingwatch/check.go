package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicsignal/hearingwatch/internal/archive"
	"github.com/civicsignal/hearingwatch/internal/legistar"
	"github.com/civicsignal/hearingwatch/internal/matching"
	"github.com/civicsignal/hearingwatch/internal/notify"
	"github.com/civicsignal/hearingwatch/internal/reconcile"
	"github.com/civicsignal/hearingwatch/internal/storage"
	"github.com/civicsignal/hearingwatch/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch upcoming hearings and reconcile against saved state",
	Long: `Fetch the hearing calendar for the configured window, compare it
against the saved state, and report new, deferred, rescheduled, and
moved hearings. State is saved back atomically; if the save fails the
previous state file is left intact and the command exits non-zero.`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		noNotify, _ := cmd.Flags().GetBool("no-notify")
		bodyID, _ := cmd.Flags().GetInt("body")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		lockPath, err := storage.AcquireRunLock(cfg.DataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "Hint: another check may be running. Remove the lock file if it is stale.\n")
			os.Exit(1)
		}
		defer storage.ReleaseRunLock(lockPath)

		ctx := context.Background()
		started := time.Now()

		client := legistar.New(cfg.Client, cfg.Token)
		now := time.Now()
		query := legistar.EventsQuery{
			Start:  now.AddDate(0, 0, -cfg.LookbackDays),
			End:    now.AddDate(0, 0, cfg.LookaheadDays),
			BodyID: bodyID,
		}

		fmt.Printf("Fetching hearings for %s (%s to %s)...\n",
			cfg.Client,
			query.Start.Format(types.DateLayout),
			query.End.Format(types.DateLayout))

		records, err := client.FetchRecords(ctx, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: fetch failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Fetched %d hearing records\n", len(records))

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

		changelog, err := engine.Reconcile(state, records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reconcile failed: %v\n", err)
			os.Exit(1)
		}

		if dryRun {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("%s Dry run: state not saved\n", yellow("!"))
			printChangelog(changelog)
			return
		}

		if err := store.Save(state); err != nil {
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s Failed to save state: %v\n", red("✗"), err)
			fmt.Fprintf(os.Stderr, "The previous state file was left untouched.\n")
			os.Exit(1)
		}

		if arc, err := archive.Open(cfg.ArchivePath()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: archive unavailable: %v\n", err)
		} else {
			if _, err := arc.RecordRun(ctx, started, time.Now(), len(records), changelog); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to archive run: %v\n", err)
			}
			arc.Close()
		}

		if !noNotify && !changelog.Empty() {
			dispatcher := notify.NewDispatcher(cfg.Notify, cfg.DataDir)
			if err := dispatcher.Dispatch(ctx, changelog, state); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: some notifications failed: %v\n", err)
			}
		}

		printChangelog(changelog)
	},
}

func init() {
	checkCmd.Flags().Bool("dry-run", false, "Reconcile and report without saving state")
	checkCmd.Flags().Bool("no-notify", false, "Skip notifications for this run")
	checkCmd.Flags().Int("body", 0, "Restrict the fetch to one body id (0 means all)")
	rootCmd.AddCommand(checkCmd)
}

// printChangelog writes the run summary in the same shape every time so
// cron mail stays greppable.
func printChangelog(changelog *types.Changelog) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	if changelog.Empty() {
		fmt.Printf("%s No changes detected\n", green("✓"))
		if changelog.SkippedRecords > 0 {
			fmt.Printf("  Skipped %d malformed records\n", changelog.SkippedRecords)
		}
		return
	}

	fmt.Printf("%s %d changes detected\n", green("✓"), changelog.Total())
	if n := len(changelog.NewlyAdded); n > 0 {
		fmt.Printf("  %s %d new hearings\n", green("+"), n)
	}
	if n := len(changelog.NewlyDeferred); n > 0 {
		fmt.Printf("  %s %d deferred\n", yellow("~"), n)
	}
	if n := len(changelog.NewlyRescheduled); n > 0 {
		fmt.Printf("  %s %d rescheduled\n", cyan("»"), n)
		for _, pair := range changelog.NewlyRescheduled {
			fmt.Printf("      %s -> %s (similarity %.2f)\n", pair.DeferredID, pair.ReplacementID, pair.Similarity)
		}
	}
	if n := len(changelog.DateChanged); n > 0 {
		fmt.Printf("  %s %d date changes\n", cyan("»"), n)
		for _, dc := range changelog.DateChanged {
			fmt.Printf("      %s: %s -> %s\n", dc.BodyName, dc.OldDate, dc.NewDate)
		}
	}
	if n := len(changelog.DateConfirmed); n > 0 {
		fmt.Printf("  %s %d dates confirmed\n", green("+"), n)
	}
	if changelog.SkippedRecords > 0 {
		fmt.Printf("  Skipped %d malformed records\n", changelog.SkippedRecords)
	}
}
