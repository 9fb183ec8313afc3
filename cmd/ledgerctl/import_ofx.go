package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importOFXCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Examples:
  # Preview what would be imported
  ledgerctl import-ofx --dry-run ~/Downloads/checking_jan.qfx

  # Import every export in a directory
  ledgerctl import-ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			parser := ofx.NewParser(a.logger)
			var inputs []models.TransactionInput
			for _, path := range files {
				parsed, err := parseFile(parser, path)
				if err != nil {
					return err
				}
				a.logger.Info("Parsed file", "file", filepath.Base(path), "transactions", len(parsed))
				inputs = append(inputs, parsed...)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				renderTable(out, []string{"Date", "Type", "Amount", "Category", "Description"}, inputRows(inputs))
				fmt.Fprintf(out, "Dry run: %d transactions from %d files, nothing was sent\n", len(inputs), len(files))
				return nil
			}

			if err := a.requireUser(); err != nil {
				return err
			}

			bar := progressbar.NewOptions(len(inputs),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Importing transactions"),
				progressbar.OptionClearOnFinish(),
			)

			var imported int
			for _, in := range inputs {
				if cmd.Context().Err() != nil {
					break
				}
				if a.client.CreateTransaction(cmd.Context(), in) != nil {
					imported++
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			fmt.Fprintf(out, "Imported %d of %d transactions\n", imported, len(inputs))
			if imported < len(inputs) {
				return fmt.Errorf("%d transactions failed to import", len(inputs)-imported)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "parse and show the transactions without sending them")

	return cmd
}

func parseFile(parser *ofx.Parser, path string) ([]models.TransactionInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	inputs, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inputs, nil
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("no files found matching %s", pattern)
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	return files, nil
}
