package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philvuai/bnk/internal/model"
)

func TestPrepareReportData(t *testing.T) {
	transactions := []model.TransactionRecord{
		{Date: "2025-06-05", Description: "OFFICE SUPPLIES LTD", Amount: -45.99, Category: model.CategoryOffice, Confidence: 90},
		{Date: "2025-06-10", Description: "TRAIN TICKET", Amount: -132.50, Category: model.CategoryTravel, Confidence: 65},
	}
	result := &model.AnalysisResult{
		CreatedAt:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		DocumentID:   "doc-1",
		Source:       model.SourceModel,
		Transactions: transactions,
		Summary:      model.Summarize(transactions),
	}

	w := &Writer{config: DefaultConfig()}
	values := w.prepareReportData(result)

	require.NotEmpty(t, values)
	assert.Equal(t, []any{"Expense Report", "Jun 15, 2025"}, values[0])

	// Category breakdown is sorted by amount descending, so the larger
	// travel spend comes first.
	var breakdown [][]any
	for i, row := range values {
		if len(row) == 3 && row[0] == "Category" {
			breakdown = values[i+1 : i+3]
			break
		}
	}
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Travel costs", breakdown[0][0])
	assert.Equal(t, "Office costs", breakdown[1][0])

	// The detail section carries one row per transaction.
	last := values[len(values)-1]
	assert.Equal(t, "TRAIN TICKET", last[1])
	assert.Equal(t, -132.50, last[2])
}
