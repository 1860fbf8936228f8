// Package normalize repairs noisy text produced by document extraction and
// normalizes date tokens into ISO form.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
	dateTokenRe  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
)

// despacedTokenThreshold is the minimum token count before a line is even
// considered character-spaced. Short lines are left alone so genuine initials
// or single letters never trigger the join.
const despacedTokenThreshold = 10

// Text repairs character-spaced runs ("E X A M P L E" style output from poor
// PDF extraction) and collapses repeated whitespace. Line structure is
// preserved. The function is pure and idempotent.
func Text(input string) string {
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		lines[i] = normalizeLine(line)
	}
	return strings.Join(lines, "\n")
}

// normalizeLine joins a line's tokens without separators when the token-length
// distribution strongly signals character-by-character splitting: more than
// half the tokens are single characters and the line carries more than ten
// tokens. Anything else only gets its spacing collapsed.
func normalizeLine(line string) string {
	collapsed := strings.TrimSpace(multiSpaceRe.ReplaceAllString(line, " "))

	tokens := strings.Fields(collapsed)
	if len(tokens) <= despacedTokenThreshold {
		return collapsed
	}

	single := 0
	for _, tok := range tokens {
		if len([]rune(tok)) == 1 {
			single++
		}
	}
	if single*2 <= len(tokens) {
		return collapsed
	}

	return strings.Join(tokens, "")
}

// Date rewrites a D/M/Y or D-M-Y token into YYYY-MM-DD. Two-digit years are
// expanded by prefixing "20". It returns an empty string when the token is
// not a recognizable date.
func Date(token string) string {
	m := dateTokenRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return ""
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := m[3]
	if len(year) == 2 {
		year = "20" + year
	}
	if len(year) == 3 || day < 1 || day > 31 || month < 1 || month > 12 {
		return ""
	}

	return fmt.Sprintf("%s-%02d-%02d", year, month, day)
}

// DatePattern exposes the date token expression for callers that scan lines
// for transaction candidates.
func DatePattern() *regexp.Regexp {
	return dateTokenRe
}
