package fallback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philvuai/bnk/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestExtractor() *Extractor {
	e := New()
	e.now = fixedClock
	return e
}

func TestExtractStatementLine(t *testing.T) {
	e := newTestExtractor()

	transactions := e.Extract("05/06/2025 OFFICE SUPPLIES LTD £45.99")
	require.Len(t, transactions, 1)

	txn := transactions[0]
	assert.Equal(t, "2025-06-05", txn.Date)
	assert.Equal(t, "OFFICE SUPPLIES LTD", txn.Description)
	assert.InDelta(t, 45.99, -txn.Amount, 0.001)
	assert.Equal(t, model.CategoryOffice, txn.Category)
	assert.Equal(t, 65, txn.Confidence)
}

func TestExtractPicksLargestAmount(t *testing.T) {
	e := newTestExtractor()

	// The largest magnitude on the line wins, grouped thousands included.
	transactions := e.Extract("12/03/2025 CARD PAYMENT COFFEE 3.20 1,250.00")
	require.Len(t, transactions, 1)
	assert.InDelta(t, 1250.00, -transactions[0].Amount, 0.001)
}

func TestExtractMultipleLines(t *testing.T) {
	e := newTestExtractor()

	text := "05/06/2025 TRAIN TICKET LONDON 32.50\n" +
		"header line without numbers\n" +
		"06/06/2025 ADOBE SOFTWARE SUBSCRIPTION 19.99\n"

	transactions := e.Extract(text)
	require.Len(t, transactions, 2)
	assert.Equal(t, model.CategoryTravel, transactions[0].Category)
	assert.Equal(t, model.CategoryEquipment, transactions[1].Category)
}

func TestExtractShortDescriptionPlaceholder(t *testing.T) {
	e := newTestExtractor()

	transactions := e.Extract("05/06/2025 99.00")
	require.Len(t, transactions, 1)
	assert.Equal(t, "Transaction 1", transactions[0].Description)
	assert.Equal(t, model.CategoryUnknown, transactions[0].Category)
}

func TestExtractOFXRenderedLines(t *testing.T) {
	e := newTestExtractor()

	// The shape the OFX extractor renders: day-first dates, explicit signs.
	text := "05/06/2025 TESCO STORES -982.50\n" +
		"10/06/2025 CLIENT PAYMENT +250.00\n"

	transactions := e.Extract(text)
	require.Len(t, transactions, 2, "every rendered line must match the primary pattern")

	assert.Equal(t, "2025-06-05", transactions[0].Date)
	assert.Equal(t, "TESCO STORES", transactions[0].Description)
	assert.InDelta(t, -982.50, transactions[0].Amount, 0.001)
	assert.Equal(t, 65, transactions[0].Confidence)

	assert.Equal(t, "2025-06-10", transactions[1].Date)
	assert.Equal(t, "CLIENT PAYMENT", transactions[1].Description)
	assert.InDelta(t, 250.00, transactions[1].Amount, 0.001)
}

func TestExtractExplicitSigns(t *testing.T) {
	e := newTestExtractor()

	transactions := e.Extract("05/06/2025 CLIENT REFUND +120.00\n06/06/2025 RENT PAYMENT -800.00")
	require.Len(t, transactions, 2)
	assert.InDelta(t, 120.00, transactions[0].Amount, 0.001)
	assert.InDelta(t, -800.00, transactions[1].Amount, 0.001)
}

func TestSecondaryAmountScan(t *testing.T) {
	e := newTestExtractor()

	// No date tokens at all, so the amount scan kicks in.
	transactions := e.Extract("totals due 120.50 then 120.50 again and 98.75")
	require.Len(t, transactions, 2, "duplicate amounts must be deduplicated")

	for _, txn := range transactions {
		assert.Equal(t, "2025-06-15", txn.Date)
		assert.Equal(t, model.CategoryOther, txn.Category)
		assert.Equal(t, 45, txn.Confidence)
		assert.Negative(t, txn.Amount)
	}
}

func TestSecondaryScanLimits(t *testing.T) {
	e := newTestExtractor()

	text := "1.01 2.02 3.03 4.04 5.05 6.06 7.07 8.08 9.09 10.10 11.11 12.12"
	transactions := e.Extract(text)
	assert.Len(t, transactions, 10, "secondary scan caps at ten transactions")
}

func TestDemoFallbackAlwaysNonEmpty(t *testing.T) {
	e := newTestExtractor()

	for _, input := range []string{"", "no numbers here at all", "\n\n\n"} {
		transactions := e.Extract(input)
		require.Len(t, transactions, 3, "input %q", input)
		assert.Equal(t, model.CategoryOffice, transactions[0].Category)
		assert.InDelta(t, -45.99, transactions[0].Amount, 0.001)
		assert.Equal(t, model.CategoryEquipment, transactions[1].Category)
		assert.InDelta(t, -29.99, transactions[1].Amount, 0.001)
		assert.Equal(t, model.CategoryTravel, transactions[2].Category)
		assert.InDelta(t, -125.50, transactions[2].Amount, 0.001)
		for _, txn := range transactions {
			assert.Equal(t, "2025-06-15", txn.Date)
		}
	}
}
