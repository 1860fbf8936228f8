package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/philvuai/bnk/internal/model"
)

// RenderAnalysis renders an analysis result as a terminal report: the
// transaction table followed by the category summary.
func RenderAnalysis(result *model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Analysis"))
	b.WriteString("\n")
	if result.Source == model.SourceFallback {
		b.WriteString(FormatWarning("pattern-based extraction (no model response used)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-12s %-40s %-28s %10s %6s",
		"Date", "Description", "Category", "Amount", "Conf")))
	b.WriteString("\n")

	for _, txn := range result.Transactions {
		desc := txn.Description
		if runes := []rune(desc); len(runes) > 40 {
			desc = string(runes[:37]) + "..."
		}
		row := fmt.Sprintf("%-12s %-40s %-28s %10.2f %5d%%",
			txn.Date, desc, txn.Category, txn.Amount, txn.Confidence)
		if txn.Category == model.CategoryUnknown {
			row = SubtleStyle.Render(row)
		}
		b.WriteString(TableCellStyle.Render(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderSummary(result.Summary))
	return b.String()
}

// RenderSummary renders the aggregate block: per-category counts and
// amounts, largest first, then the totals.
func RenderSummary(summary model.Summary) string {
	var b strings.Builder

	b.WriteString(BoldStyle.Render("Summary"))
	b.WriteString("\n")

	categories := make([]model.Category, 0, len(summary.CategoryBreakdown))
	for category := range summary.CategoryBreakdown {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return summary.CategoryAmounts[categories[i]] > summary.CategoryAmounts[categories[j]]
	})

	for _, category := range categories {
		b.WriteString(fmt.Sprintf("  %-28s %4d  £%.2f\n",
			category, summary.CategoryBreakdown[category], summary.CategoryAmounts[category]))
	}

	b.WriteString(fmt.Sprintf("  %-28s %4d  £%.2f\n",
		"Total", summary.TotalTransactions, summary.TotalAmount))
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("  %d of %d categorized",
		summary.CategorizedTransactions, summary.TotalTransactions)))

	return b.String()
}
