package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/notedocs/internal/config"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ notedocs: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notedocs",
	Short: "notedocs - bookmark and document collection service",
	Long: `notedocs stores bookmarks captured from the browser and a relational
collection of documents grouped into per-user categories.

Running it without a subcommand starts the HTTP server. Configuration comes
from NOTEDOCS_* environment variables (a .env file is honoured).`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config and builds the logger every command starts with.
func setup() (*config.Config, logger.Logger) {
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
