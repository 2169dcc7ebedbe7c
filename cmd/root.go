// Package cmd implements the autopost command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "autopost",
		Short: "Idempotent content publishing pipeline",
		Long: `autopost plans, generates, enhances, and schedules articles on a
WordPress site. Runs are idempotent: re-running converges the site
toward the same state instead of duplicating work.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so config env overrides are visible.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("autopost version %s\n", version)
		},
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(maintainCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(registryCmd)
}

// version is set at build time via -ldflags.
var version = "dev"
