// Package fallback implements the deterministic pattern-based transaction
// extractor used when no model call is available or the model response is
// unusable. It is guaranteed to return a non-empty, well-formed result for
// any input.
package fallback

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/philvuai/bnk/internal/model"
	"github.com/philvuai/bnk/internal/normalize"
)

// Extraction confidence bands. The pattern matcher is intentionally humbler
// than the model path.
const (
	lineConfidence   = 65
	amountConfidence = 45
	demoConfidence   = 40
)

// Secondary-scan limits: amounts outside (0, 10000) are treated as reference
// numbers or balances, and at most ten synthetic transactions are emitted.
const (
	maxScanAmount       = 10000
	maxScanTransactions = 10
)

var amountTokenRe = regexp.MustCompile(`[+-]?£?\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)

// Extractor performs regex-based transaction extraction from normalized text.
type Extractor struct {
	now func() time.Time
}

// New creates an extractor. The clock is injectable for tests.
func New() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract scans the text for transaction lines. Per the three-tier strategy
// it never returns an empty slice: line matching first, then a whole-text
// amount scan, then fixed demonstration transactions.
func (e *Extractor) Extract(text string) []model.TransactionRecord {
	transactions := e.extractLines(text)
	if len(transactions) == 0 {
		transactions = e.scanAmounts(text)
	}
	if len(transactions) == 0 {
		transactions = e.demoTransactions()
	}
	return transactions
}

// extractLines applies the primary pattern: any line carrying both a date
// token and at least one amount token is treated as a transaction.
func (e *Extractor) extractLines(text string) []model.TransactionRecord {
	var transactions []model.TransactionRecord

	for i, line := range strings.Split(text, "\n") {
		dateToken := normalize.DatePattern().FindString(line)
		if dateToken == "" {
			continue
		}
		date := normalize.Date(dateToken)
		if date == "" {
			continue
		}

		amountTokens := amountTokens(line, dateToken)
		if len(amountTokens) == 0 {
			continue
		}

		// Of all amounts on the line, the largest magnitude is taken as
		// the transaction amount; smaller numbers are usually running
		// balances or reference values.
		amount := largestAmount(amountTokens)

		description := buildDescription(line, dateToken, amountTokens, i+1)

		txn := model.TransactionRecord{
			Date:        date,
			Description: description,
			Amount:      amount,
			Category:    model.GuessCategory(description),
			Confidence:  lineConfidence,
		}
		txn.Sanitize(i + 1)
		transactions = append(transactions, txn)
	}

	return transactions
}

// amountTokens returns the currency-like tokens on a line, excluding anything
// overlapping the date token.
func amountTokens(line, dateToken string) []string {
	stripped := strings.Replace(line, dateToken, " ", 1)
	var tokens []string
	for _, tok := range amountTokenRe.FindAllString(stripped, -1) {
		if _, ok := parseAmount(tok); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// largestAmount parses the tokens and returns the signed value with the
// greatest magnitude. Tokens with no explicit sign are treated as outflows:
// statement debit columns rarely carry one.
func largestAmount(tokens []string) float64 {
	var best float64
	var bestToken string
	for _, tok := range tokens {
		v, ok := parseAmount(tok)
		if ok && math.Abs(v) > math.Abs(best) {
			best = v
			bestToken = tok
		}
	}
	if !strings.HasPrefix(bestToken, "+") && best > 0 {
		best = -best
	}
	return best
}

func parseAmount(token string) (float64, bool) {
	cleaned := strings.NewReplacer("£", "", ",", "", "+", "").Replace(token)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// buildDescription removes the date and amount substrings from the line and
// collapses the rest. Fewer than three remaining characters means nothing
// useful survived, so a synthetic placeholder keeps the record usable.
func buildDescription(line, dateToken string, amounts []string, index int) string {
	desc := strings.Replace(line, dateToken, " ", 1)
	for _, tok := range amounts {
		desc = strings.Replace(desc, tok, " ", 1)
	}
	desc = strings.Join(strings.Fields(desc), " ")
	if len(desc) < 3 {
		return model.PlaceholderDescription(index)
	}
	return desc
}

// scanAmounts is the secondary pattern: when no line matched, any plausible
// amount anywhere in the text becomes one synthetic expense transaction.
func (e *Extractor) scanAmounts(text string) []model.TransactionRecord {
	seen := make(map[float64]bool)
	date := e.now().Format("2006-01-02")

	var transactions []model.TransactionRecord
	for _, tok := range amountTokenRe.FindAllString(text, -1) {
		parsed, ok := parseAmount(tok)
		if !ok {
			continue
		}
		v := math.Abs(parsed)
		if v <= 0 || v >= maxScanAmount || seen[v] {
			continue
		}
		seen[v] = true

		transactions = append(transactions, model.TransactionRecord{
			Date:        date,
			Description: model.PlaceholderDescription(len(transactions) + 1),
			Amount:      -v,
			Category:    model.CategoryOther,
			Confidence:  amountConfidence,
		})
		if len(transactions) == maxScanTransactions {
			break
		}
	}

	return transactions
}

// demoTransactions is the final tier: a fixed trio of placeholder expenses so
// the pipeline always hands downstream consumers a non-degenerate result.
func (e *Extractor) demoTransactions() []model.TransactionRecord {
	date := e.now().Format("2006-01-02")
	return []model.TransactionRecord{
		{Date: date, Description: "Office supplies", Amount: -45.99, Category: model.CategoryOffice, Confidence: demoConfidence},
		{Date: date, Description: "Software subscription", Amount: -29.99, Category: model.CategoryEquipment, Confidence: demoConfidence},
		{Date: date, Description: "Travel expense", Amount: -125.50, Category: model.CategoryTravel, Confidence: demoConfidence},
	}
}
