package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philvuai/bnk/internal/model"
)

func TestWriteCSV(t *testing.T) {
	transactions := []model.TransactionRecord{
		{Date: "2025-06-05", Description: "OFFICE SUPPLIES LTD", Amount: -45.99, Category: model.CategoryOffice, Confidence: 90},
		{Date: "2025-06-10", Description: "TRAIN, LONDON", Amount: -32.50, Category: model.CategoryTravel, Confidence: 65},
		{Date: "2025-06-12", Description: "MYSTERY DEBIT", Amount: -5, Category: model.CategoryUnknown, Confidence: 50},
	}
	result := &model.AnalysisResult{
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		DocumentID:   "doc-1",
		Source:       model.SourceModel,
		Transactions: transactions,
		Summary:      model.Summarize(transactions),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "Date,Description,Category,Subcategory,Amount,Confidence", lines[0])
	assert.Equal(t, "2025-06-05,OFFICE SUPPLIES LTD,Office costs,,-45.99,90", lines[1])
	// Embedded commas are quoted.
	assert.Equal(t, `2025-06-10,"TRAIN, LONDON",Travel costs,,-32.50,65`, lines[2])

	// Summary block lists only non-empty categories plus Unknown and a total.
	assert.Contains(t, out, "Office costs,1,45.99")
	assert.Contains(t, out, "Travel costs,1,32.50")
	assert.Contains(t, out, "Unknown,1,5.00")
	assert.Contains(t, out, "Total,3,83.49")
	assert.NotContains(t, out, "Staff costs")
}

func TestWriteCSVEmptyResult(t *testing.T) {
	result := &model.AnalysisResult{Summary: model.Summarize(nil)}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))

	assert.Contains(t, buf.String(), "Date,Description")
	assert.Contains(t, buf.String(), "Total,0,0.00")
}
