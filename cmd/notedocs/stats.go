package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/notedocs/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Regenerate the stats snapshot and print it",
	Long: `Rescan every bookmark, persist a fresh stats snapshot and print it.

With --summary the dashboard summary is printed instead.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("summary", false, "print the dashboard summary")
}

func runStats(cmd *cobra.Command, args []string) error {
	summary, _ := cmd.Flags().GetBool("summary")

	cfg, log := setup()
	defer func() { _ = log.Sync() }()

	rt, err := app.Open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	st, err := rt.Stats.Generate(cmd.Context())
	if err != nil {
		return err
	}

	var out any = st
	if summary {
		if out, err = rt.Stats.Summary(cmd.Context()); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
