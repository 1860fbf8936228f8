package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/philvuai/bnk/internal/cli"
	"github.com/philvuai/bnk/internal/config"
	"github.com/philvuai/bnk/internal/export"
	"github.com/philvuai/bnk/internal/export/sheets"
)

func exportCmd() *cobra.Command {
	var (
		output   string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "export <document-id>",
		Short: "Export a stored analysis",
		Long:  `Export a document's analysis as CSV, or push it to Google Sheets.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			result, err := store.GetAnalysis(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if toSheets {
				sheetsCfg, err := config.LoadSheetsConfig()
				if err != nil {
					return fmt.Errorf("failed to load sheets config: %w", err)
				}
				writer, err := sheets.NewWriter(cmd.Context(), *sheetsCfg, slog.Default())
				if err != nil {
					return err
				}
				if err := writer.Write(cmd.Context(), result); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("report written to Google Sheets"))
				return nil
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output) // #nosec G304
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			if err := export.WriteCSV(out, result); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("CSV written to "+output))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to this file instead of stdout")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "push the report to Google Sheets")

	return cmd
}
