package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philvuai/bnk/internal/cli"
	"github.com/philvuai/bnk/internal/model"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the expense categories",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Expense categories"))
			for _, info := range model.Categories() {
				fmt.Fprintf(out, "  %s\n", cli.BoldStyle.Render(string(info.Name)))
				fmt.Fprintf(out, "    %s\n", cli.SubtleStyle.Render(info.Examples))
			}
		},
	}
}
