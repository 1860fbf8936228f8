package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/philvuai/bnk/internal/analyze"
	"github.com/philvuai/bnk/internal/cli"
	"github.com/philvuai/bnk/internal/common"
	"github.com/philvuai/bnk/internal/extract"
	"github.com/philvuai/bnk/internal/llm"
)

func analyzeCmd() *cobra.Command {
	var (
		fallbackOnly bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a financial document",
		Long: `Extract text from a document (PDF, DOCX, XLSX, CSV, OFX or plain text),
classify its transactions and print the categorized result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path) // #nosec G304
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			text, err := extract.FromBytes(data, filepath.Base(path), "")
			if err != nil {
				return common.NewUserError("could not extract text from "+path, err)
			}

			var client llm.Client
			if !fallbackOnly {
				client, err = createLLMClient()
				if err != nil {
					slog.Warn("no model client available, using pattern extraction", "error", err)
				}
			}

			analyzer, err := analyze.New(client, slog.Default())
			if err != nil {
				return err
			}

			result := analyzer.Analyze(cmd.Context(), text)

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderAnalysis(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fallbackOnly, "fallback", false, "skip the model and use pattern extraction only")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the raw analysis result as JSON")

	return cmd
}
