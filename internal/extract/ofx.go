package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/philvuai/bnk/internal/common"
)

// Real-world OFX exports are frequently malformed SGML. These fixes are
// applied before handing the content to ofxgo.
var (
	severityCaseRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	unclosedTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in OFX exports: leading
// whitespace before the header, mixed-case SEVERITY values, and SGML opening
// tags missing their closing angle bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityCaseRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = unclosedTagRe.ReplaceAllString(content, "$1>")
	return content
}

// extractOFX parses an OFX/QFX export and renders every bank and credit card
// transaction as one "date description amount" line, the shape the rest of
// the pipeline expects from statements.
func extractOFX(data []byte) (string, error) {
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(data))))
	if err != nil {
		return "", fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var buf strings.Builder

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			writeOFXTransactions(&buf, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			writeOFXTransactions(&buf, stmt.BankTranList.Transactions)
		}
	}

	if buf.Len() == 0 {
		return "", fmt.Errorf("%w: OFX file contains no transactions", common.ErrEmptyDocument)
	}
	return buf.String(), nil
}

func writeOFXTransactions(buf *strings.Builder, txns []ofxgo.Transaction) {
	for _, tx := range txns {
		amount, _ := tx.TrnAmt.Float64()
		// Day-first dates and explicit signs keep each line parseable by the
		// pattern extractor when no model is configured.
		fmt.Fprintf(buf, "%s %s %+.2f\n",
			tx.DtPosted.Time.Format("02/01/2006"),
			ofxDescription(tx),
			amount)
	}
}

// ofxDescription prefers the payee name, then NAME, then MEMO when NAME is a
// generic placeholder like "DEBIT" or "PURCHASE".
func ofxDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericOFXName(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	if name == "" {
		name = fmt.Sprintf("%v", tx.TrnType)
	}
	return name
}

func isGenericOFXName(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
