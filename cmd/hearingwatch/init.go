package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicsignal/hearingwatch/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file to the path given by --config
(hearingwatch.yaml by default). Refuses to overwrite an existing file
unless --force is set.

Example:
  hearingwatch init
  hearingwatch init -c /etc/hearingwatch.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(configPath); err == nil && !initForce {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", configPath)
			os.Exit(1)
		}

		cfg := config.DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Wrote default configuration to %s\n", green("✓"), configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Edit the file to set your Legistar client (jurisdiction) and token")
		fmt.Println("  2. Run 'hearingwatch check' to take the first snapshot")
		fmt.Println("  3. Run 'hearingwatch page' to generate the site")
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}
