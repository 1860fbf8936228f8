package repair

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/philvuai/bnk/internal/model"
	"github.com/philvuai/bnk/internal/normalize"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// rawTransaction mirrors one entry of the model's transactions array before
// validation. Pointer fields distinguish "absent" from zero.
type rawTransaction struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Amount      *float64 `json:"amount"`
	Confidence  *float64 `json:"confidence"`
}

// envelope is the response shape the prompt demands.
type envelope struct {
	Transactions []rawTransaction `json:"transactions"`
}

// ParseTransactions turns raw model response text into validated transaction
// records. It fails with ErrNoJSON when no object is present and with
// ErrParseFailure when nothing usable survives repair and filtering; the
// orchestrator demotes to the fallback extractor on either.
func ParseTransactions(response string) ([]model.TransactionRecord, error) {
	body, err := ExtractObject(StripFences(response))
	if err != nil {
		return nil, err
	}

	repaired := Structural(body)

	var env envelope
	if err := json.Unmarshal([]byte(repaired), &env); err != nil {
		slog.Debug("strict parse failed, reconstructing line by line", "error", err)
		env.Transactions = fromBlocks(ReconstructBlocks(repaired))
	}

	transactions := validate(env.Transactions)
	if len(transactions) == 0 {
		return nil, ErrParseFailure
	}
	return transactions, nil
}

// validate discards entries missing date, description or category, or whose
// amount is absent (zero is a valid amount, null is not), and normalizes the
// survivors.
func validate(raw []rawTransaction) []model.TransactionRecord {
	var transactions []model.TransactionRecord

	for _, entry := range raw {
		if entry.Date == "" || entry.Description == "" || entry.Category == "" || entry.Amount == nil {
			continue
		}

		txn := model.TransactionRecord{
			Date:        normalizeDate(entry.Date),
			Description: strings.TrimSpace(entry.Description),
			Category:    matchCategory(entry.Category),
			Subcategory: strings.TrimSpace(entry.Subcategory),
			Amount:      *entry.Amount,
			Confidence:  normalizeConfidence(entry.Confidence),
		}
		txn.Sanitize(len(transactions) + 1)
		transactions = append(transactions, txn)
	}

	return transactions
}

// normalizeDate keeps ISO dates as-is and rewrites D/M/Y forms; anything else
// passes through unchanged rather than losing the record.
func normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if isoDateRe.MatchString(date) {
		return date
	}
	if normalized := normalize.Date(date); normalized != "" {
		return normalized
	}
	return date
}

// matchCategory maps the model's label onto the taxonomy, tolerating case
// differences. Labels outside the taxonomy collapse to Unknown so the closed
// set is never widened by a creative model.
func matchCategory(label string) model.Category {
	label = strings.TrimSpace(label)
	if c := model.Category(label); c.Valid() {
		return c
	}
	for _, info := range model.Categories() {
		if strings.EqualFold(string(info.Name), label) {
			return info.Name
		}
	}
	return model.CategoryUnknown
}

// normalizeConfidence defaults a missing confidence to 50 and recovers
// fractional scores (0.9 meaning 90%) that some models emit despite the
// prompt asking for a 0-100 integer.
func normalizeConfidence(confidence *float64) int {
	if confidence == nil {
		return model.DefaultConfidence
	}
	c := *confidence
	if c > 0 && c <= 1 {
		c *= 100
	}
	return int(c)
}

// fromBlocks converts reconstructed key/value blocks into raw transaction
// entries, keeping only keys the schema knows about.
func fromBlocks(blocks []map[string]any) []rawTransaction {
	var raw []rawTransaction
	for _, block := range blocks {
		entry := rawTransaction{
			Date:        stringField(block, "date"),
			Description: stringField(block, "description"),
			Category:    stringField(block, "category"),
			Subcategory: stringField(block, "subcategory"),
		}
		if v, ok := block["amount"].(float64); ok {
			entry.Amount = &v
		}
		if v, ok := block["confidence"].(float64); ok {
			entry.Confidence = &v
		}
		raw = append(raw, entry)
	}
	return raw
}

func stringField(block map[string]any, key string) string {
	if v, ok := block[key].(string); ok {
		return v
	}
	return ""
}
