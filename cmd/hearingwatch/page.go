package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicsignal/hearingwatch/internal/matching"
	"github.com/civicsignal/hearingwatch/internal/reconcile"
	"github.com/civicsignal/hearingwatch/internal/storage"
	"github.com/civicsignal/hearingwatch/internal/webgen"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Regenerate the static site from saved state",
	Long: `Render the saved hearing state into the static site directory.
Safe to run at any time; the page is derived entirely from the state
file, so a failed or skipped run is fixed by running it again.`,
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
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
		updates := engine.RecentUpdates(state, cfg.UpdatesWindowDays)

		genCfg := webgen.DefaultConfig()
		genCfg.SiteDir = cfg.SiteDir
		genCfg.PageSize = cfg.PageSize
		genCfg.BadgeWindowDays = cfg.UpdatesWindowDays
		if title != "" {
			genCfg.Title = title
		}

		gen, err := webgen.New(genCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := gen.Generate(state, updates); err != nil {
			fmt.Fprintf(os.Stderr, "Error: generate site: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Site written to %s (%d tracked events, %d recent updates)\n",
			green("✓"), cfg.SiteDir, len(state), len(updates))
	},
}

func init() {
	pageCmd.Flags().String("title", "", "Override the page title")
	rootCmd.AddCommand(pageCmd)
}
