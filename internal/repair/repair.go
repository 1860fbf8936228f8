// Package repair turns loosely-structured model output into validated
// transaction records. Models frequently emit near-valid JSON (trailing
// commas, missing separators, stray prose); rejecting on the first parse
// error would discard recoverable data, so a best-effort structural repair
// precedes a last-resort line-oriented reconstruction before giving up.
//
// Each tier is an isolated pure function over text so it can be tested on
// its own: StripFences, ExtractObject, Structural and ReconstructBlocks.
package repair

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Parse failure sentinels. Both demote the pipeline to the fallback path.
var (
	// ErrNoJSON means the response contained no JSON object at all.
	ErrNoJSON = errors.New("no JSON object found in response")
	// ErrParseFailure means a JSON object was found but no usable
	// transactions could be recovered from it.
	ErrParseFailure = errors.New("failed to parse transactions from response")
)

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	missingCommaRe  = regexp.MustCompile(`}\s*{`)
	emptyValueRe    = regexp.MustCompile(`:\s*([,}\]])`)
	duplicateComma  = regexp.MustCompile(`,\s*,+`)
	blankRunRe      = regexp.MustCompile(`[ \t]+`)
	kvPairRe        = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_]*)"\s*:\s*("(?:[^"\\]|\\.)*"|-?\d+(?:\.\d+)?|true|false|null)`)
)

// StripFences removes a Markdown code-fence wrapper if the response carries
// one. Text without fences passes through untouched.
func StripFences(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(s)
}

// ExtractObject returns the substring spanning the first '{' to the last '}'.
// This is a greedy whole-object match: prose before or after the object is
// dropped wholesale.
func ExtractObject(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

// Structural applies the best-effort repair pass: trailing commas before
// closing brackets are dropped, missing commas between adjacent object
// boundaries inserted, empty values filled with null, duplicate commas
// collapsed and whitespace runs normalized. It operates on raw text and
// makes no attempt to respect string literals; that trade-off is inherited
// from the repairs models actually need.
func Structural(s string) string {
	s = blankRunRe.ReplaceAllString(s, " ")
	s = missingCommaRe.ReplaceAllString(s, "},{")
	s = duplicateComma.ReplaceAllString(s, ",")
	s = emptyValueRe.ReplaceAllString(s, ": null$1")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s
}

// ReconstructBlocks is the last-resort tier: it walks the text line by line,
// tracks entry and exit of { } blocks, and harvests "key": value pairs from
// inside each block. Every completed block becomes one candidate object with
// numeric-looking values coerced to float64 and quoted values to strings.
func ReconstructBlocks(s string) []map[string]any {
	var blocks []map[string]any
	var current map[string]any
	depth := 0

	for _, line := range strings.Split(s, "\n") {
		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")

		if depth > 0 || opens > 0 {
			if current == nil {
				current = make(map[string]any)
			}
			for _, m := range kvPairRe.FindAllStringSubmatch(line, -1) {
				key, value := m[1], coerceValue(m[2])
				if _, exists := current[key]; !exists {
					current[key] = value
				}
			}
		}

		depth += opens - closes
		if depth < 0 {
			depth = 0
		}

		if closes > 0 && depth <= 1 && current != nil {
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = nil
		}
	}

	if current != nil && len(current) > 0 {
		blocks = append(blocks, current)
	}

	return blocks
}

// coerceValue converts a matched value token to its natural Go type.
func coerceValue(token string) any {
	switch token {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}

	if strings.HasPrefix(token, `"`) {
		unquoted, err := strconv.Unquote(token)
		if err != nil {
			return strings.Trim(token, `"`)
		}
		return unquoted
	}

	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}
	return token
}
