// Package reconcile turns the free-form text of an AI drafting response back
// into the ordered clause array that was sent as input. Responses are
// untrustworthy: models wrap JSON in code fences, bury it in prose, or fall
// back to markdown. Extraction therefore degrades through ordered tiers and
// never fails — the worst case is the whole response as a single clause.
//
// Whether the returned count matches the reference clause count is caller
// policy: a mismatch is a soft warning for human review, never an error here.
package reconcile

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Clause is one reconciled clause record.
type Clause struct {
	Number  int    `json:"clause_number"`
	Title   string `json:"clause_title"`
	Content string `json:"content"`
}

// Tier identifies which extraction tier produced the result, so callers can
// flag low-confidence extractions for review.
type Tier int

const (
	TierFencedJSON  Tier = iota + 1 // ```json fenced array
	TierFencedBlock                 // any fenced block starting with [
	TierBareArray                   // balanced-bracket scan of raw text
	TierHeading                     // markdown 제N항 heading split
	TierPlainText                   // whole response as one clause
)

func (t Tier) String() string {
	switch t {
	case TierFencedJSON:
		return "fenced_json"
	case TierFencedBlock:
		return "fenced_block"
	case TierBareArray:
		return "bare_array"
	case TierHeading:
		return "heading"
	case TierPlainText:
		return "plain_text"
	}
	return "unknown"
}

var (
	fencedJSONRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	fencedAnyRe  = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\s*(.*?)\\s*```")
)

// Reconcile extracts an ordered clause array from an AI response. Tiers are
// tried in order and the first that yields a non-empty array wins; the
// returned Tier reports which one did. The result always has at least one
// record.
func Reconcile(responseText string) ([]Clause, Tier) {
	for _, tier := range []struct {
		t  Tier
		fn func(string) []Clause
	}{
		{TierFencedJSON, fromFencedJSON},
		{TierFencedBlock, fromFencedBlock},
		{TierBareArray, fromBareArray},
		{TierHeading, fromHeadings},
	} {
		if clauses := tier.fn(responseText); len(clauses) > 0 {
			return clauses, tier.t
		}
	}
	return []Clause{{Number: 1, Content: strings.TrimSpace(responseText)}}, TierPlainText
}

// ExtractPlainText flattens a response to a single string: the content of a
// lone JSON-extracted clause, or the response itself when the structure is
// anything else.
func ExtractPlainText(responseText string) string {
	for _, fn := range []func(string) []Clause{fromFencedJSON, fromFencedBlock, fromBareArray} {
		if clauses := fn(responseText); len(clauses) > 0 {
			if len(clauses) == 1 {
				return clauses[0].Content
			}
			return responseText
		}
	}
	return responseText
}

func fromFencedJSON(text string) []Clause {
	m := fencedJSONRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return parseClauseArray(m[1])
}

func fromFencedBlock(text string) []Clause {
	for _, m := range fencedAnyRe.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "[") {
			if clauses := parseClauseArray(body); clauses != nil {
				return clauses
			}
		}
	}
	return nil
}

// fromBareArray finds the first top-level JSON array in the raw text with a
// balanced-bracket scan. A naive first-'['/last-']' slice breaks when clause
// content itself contains brackets, so the scan is string- and escape-aware.
func fromBareArray(text string) []Clause {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return nil
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return parseClauseArray(text[start : i+1])
			}
		}
	}
	return nil
}

// wireClause tolerates the number arriving as a JSON number or a numeric
// string ("본문"-style non-numeric values coerce to 0).
type wireClause struct {
	Number  any    `json:"clause_number"`
	Title   string `json:"clause_title"`
	Content string `json:"content"`
}

func parseClauseArray(raw string) []Clause {
	var wire []wireClause
	if err := json.Unmarshal([]byte(raw), &wire); err != nil || len(wire) == 0 {
		return nil
	}
	clauses := make([]Clause, 0, len(wire))
	for _, w := range wire {
		clauses = append(clauses, Clause{
			Number:  coerceNumber(w.Number),
			Title:   w.Title,
			Content: w.Content,
		})
	}
	return clauses
}

func coerceNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}
