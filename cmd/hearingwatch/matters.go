package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicsignal/hearingwatch/internal/legistar"
)

var mattersCmd = &cobra.Command{
	Use:   "matters",
	Short: "List legislative matters from the API",
	Long: `List matters (bills, resolutions, land use items) from the Legistar
API, optionally filtered by type, status, or introduction date.`,
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		statusName, _ := cmd.Flags().GetString("status")
		sinceDays, _ := cmd.Flags().GetInt("since-days")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		query := legistar.MattersQuery{
			TypeName:   typeName,
			StatusName: statusName,
		}
		if sinceDays > 0 {
			query.IntroducedSince = time.Now().AddDate(0, 0, -sinceDays)
		}

		client := legistar.New(cfg.Client, cfg.Token)
		matters, err := client.Matters(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, m := range matters {
			fmt.Printf("%6d  %-16s %-12s %s\n", m.MatterID, m.MatterFile, m.MatterStatusName, m.MatterName)
		}
		fmt.Printf("\n%d matters\n", len(matters))
	},
}

func init() {
	mattersCmd.Flags().String("type", "", "Filter by matter type name")
	mattersCmd.Flags().String("status", "", "Filter by matter status name")
	mattersCmd.Flags().Int("since-days", 0, "Only matters introduced in the last N days")
	rootCmd.AddCommand(mattersCmd)
}
