package model

import "fmt"

// DefaultConfidence is assumed when a classification source does not supply
// an explicit confidence value.
const DefaultConfidence = 50

// TransactionRecord represents a single classified financial movement
// extracted from a document.
type TransactionRecord struct {
	// Date is always stored in ISO form (YYYY-MM-DD) after normalization.
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	// Amount is signed: negative for outflows, positive for credits.
	Amount float64 `json:"amount"`
	// Confidence is a heuristic 0-100 percentage; it is advisory only and
	// not statistically calibrated.
	Confidence int `json:"confidence"`
}

// PlaceholderDescription builds the synthetic description used when
// extraction leaves nothing usable. Index is 1-based.
func PlaceholderDescription(index int) string {
	return fmt.Sprintf("Transaction %d", index)
}

// Sanitize enforces the record invariants in place: a non-empty description,
// a valid category (falling back to Unknown) and a confidence within [0,100].
func (t *TransactionRecord) Sanitize(index int) {
	if t.Description == "" {
		t.Description = PlaceholderDescription(index)
	}
	if !t.Category.Valid() || t.Category == "" {
		t.Category = CategoryUnknown
	}
	if t.Confidence < 0 {
		t.Confidence = 0
	}
	if t.Confidence > 100 {
		t.Confidence = 100
	}
}
