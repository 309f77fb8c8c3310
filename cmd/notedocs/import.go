package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/notedocs/internal/app"
	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/importer"
	"github.com/MrSnakeDoc/notedocs/internal/sources/homepage"
	"github.com/MrSnakeDoc/notedocs/internal/sources/netscape"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import bookmarks from an export file",
	Long: `Import bookmarks into the configured bookmark backend.

Bookmarks whose URL is already stored are skipped.

Examples:
  # Homepage bookmarks.yaml
  notedocs import --format homepage bookmarks.yaml

  # Browser or Delicious export, check first
  notedocs import --format netscape --dry-run bookmarks.html`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringP("format", "f", netscape.SourceName, "input format: netscape | homepage")
	importCmd.Flags().Bool("dry-run", false, "validate and count without writing")
}

func loadInputs(format, path string) ([]domain.BookmarkInput, error) {
	switch format {
	case netscape.SourceName:
		return netscape.Load(path)
	case homepage.SourceName:
		cfg, err := homepage.Load(path)
		if err != nil {
			return nil, err
		}
		return homepage.Inputs(cfg), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want netscape or homepage)", format)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	inputs, err := loadInputs(format, args[0])
	if err != nil {
		return err
	}

	cfg, log := setup()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := importer.New(rt.Repo, rt.Bookmarks, log.Named("import"), dryRun).Import(ctx, format, inputs)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
