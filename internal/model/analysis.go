package model

import (
	"math"
	"time"
)

// ResultSource indicates which pipeline path produced an analysis.
type ResultSource string

// Result source constants.
const (
	SourceModel    ResultSource = "model"
	SourceFallback ResultSource = "fallback"
)

// Summary holds the aggregate statistics derived from a transaction list.
// It is always recomputed in full from the transactions, never patched
// incrementally.
type Summary struct {
	CategoryBreakdown       map[Category]int     `json:"categoryBreakdown"`
	CategoryAmounts         map[Category]float64 `json:"categoryAmounts"`
	TotalTransactions       int                  `json:"totalTransactions"`
	CategorizedTransactions int                  `json:"categorizedTransactions"`
	TotalAmount             float64              `json:"totalAmount"`
}

// AnalysisResult is the full output of one pipeline run over a document.
type AnalysisResult struct {
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	DocumentID   string              `json:"documentId"`
	Source       ResultSource        `json:"source"`
	Transactions []TransactionRecord `json:"transactions"`
	Summary      Summary             `json:"summary"`
}

// Summarize computes the summary block for a transaction list. Sums track
// magnitude, not net: the absolute amount is used throughout.
func Summarize(transactions []TransactionRecord) Summary {
	s := Summary{
		CategoryBreakdown: make(map[Category]int),
		CategoryAmounts:   make(map[Category]float64),
		TotalTransactions: len(transactions),
	}

	for _, txn := range transactions {
		amount := math.Abs(txn.Amount)
		s.TotalAmount += amount
		s.CategoryBreakdown[txn.Category]++
		s.CategoryAmounts[txn.Category] += amount
		if txn.Category != CategoryUnknown {
			s.CategorizedTransactions++
		}
	}

	return s
}
