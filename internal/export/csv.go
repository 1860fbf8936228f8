// Package export renders analysis results for consumption outside the
// application, as CSV downloads or Google Sheets reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/philvuai/bnk/internal/model"
)

var csvHeader = []string{"Date", "Description", "Category", "Subcategory", "Amount", "Confidence"}

// WriteCSV renders an analysis result as CSV: one row per transaction
// followed by a per-category summary block.
func WriteCSV(w io.Writer, result *model.AnalysisResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range result.Transactions {
		record := []string{
			txn.Date,
			txn.Description,
			string(txn.Category),
			txn.Subcategory,
			fmt.Sprintf("%.2f", txn.Amount),
			fmt.Sprintf("%d", txn.Confidence),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return fmt.Errorf("failed to write CSV separator: %w", err)
	}
	if err := cw.Write([]string{"Category", "Count", "Amount"}); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	for _, info := range model.Categories() {
		count := result.Summary.CategoryBreakdown[info.Name]
		if count == 0 {
			continue
		}
		record := []string{
			string(info.Name),
			fmt.Sprintf("%d", count),
			fmt.Sprintf("%.2f", result.Summary.CategoryAmounts[info.Name]),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write summary record: %w", err)
		}
	}
	if count := result.Summary.CategoryBreakdown[model.CategoryUnknown]; count > 0 {
		record := []string{
			string(model.CategoryUnknown),
			fmt.Sprintf("%d", count),
			fmt.Sprintf("%.2f", result.Summary.CategoryAmounts[model.CategoryUnknown]),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write summary record: %w", err)
		}
	}

	if err := cw.Write([]string{"Total", fmt.Sprintf("%d", result.Summary.TotalTransactions), fmt.Sprintf("%.2f", result.Summary.TotalAmount)}); err != nil {
		return fmt.Errorf("failed to write total record: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
