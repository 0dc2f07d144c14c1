package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/civicsignal/hearingwatch/internal/legistar"
)

var bodiesCmd = &cobra.Command{
	Use:   "bodies",
	Short: "List the legislative bodies known to the API",
	Long: `List committees and other bodies from the Legistar API. Useful for
finding the body id to filter checks with.`,
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		client := legistar.New(cfg.Client, cfg.Token)
		bodies, err := client.Bodies(context.Background(), !all)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, b := range bodies {
			fmt.Printf("%6d  %-40s %s\n", b.BodyID, b.BodyName, b.BodyTypeName)
		}
		fmt.Printf("\n%d bodies\n", len(bodies))
	},
}

func init() {
	bodiesCmd.Flags().Bool("all", false, "Include inactive bodies")
	rootCmd.AddCommand(bodiesCmd)
}
