package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zombor/bill-tracker/internal/document"
)

const fence = "```"

// keyAliases maps keys the oracle is asked for (or commonly invents) onto
// CandidateDocument keys.
var keyAliases = [][2]string{
	{"vendor", "name"},
	{"transactionType", "type"},
	{"line_items", "lineItems"},
	{"expense_category", "expenseCategory"},
	{"income_category", "incomeCategory"},
}

// StripFence removes one leading code fence marker (with an optional json tag)
// and one trailing marker.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
		s = strings.TrimSpace(s)
	}
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// decodeJSON parses exactly one JSON value, keeping numbers as json.Number so
// range problems surface when the candidate is decoded rather than here.
func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// decodeObject parses the oracle answer as a JSON object. When the whole text
// does not parse, the span between the first '{' and the last '}' is tried.
func decodeObject(text string) (map[string]any, error) {
	v, err := decodeJSON(text)
	if err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start == -1 || end <= start {
			return nil, document.NewError(document.ErrMalformedExtraction, "no JSON object found in answer", err)
		}
		if v, err = decodeJSON(text[start : end+1]); err != nil {
			return nil, document.NewError(document.ErrMalformedExtraction, "answer is not valid JSON", err)
		}
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, document.NewError(document.ErrMalformedExtraction, fmt.Sprintf("answer is JSON %T, not an object", v), nil)
	}
	return m, nil
}

// normalizeKeys renames aliased keys and coerces loosely typed values in place.
// It returns the list of adjustments for logging.
func normalizeKeys(m map[string]any) []string {
	var changed []string
	rename := func(obj map[string]any, from, to string) {
		v, ok := obj[from]
		if !ok {
			return
		}
		if _, exists := obj[to]; !exists {
			obj[to] = v
		}
		delete(obj, from)
		changed = append(changed, from+"->"+to)
	}

	for _, alias := range keyAliases {
		rename(m, alias[0], alias[1])
	}

	if coerceNumber(m, "amount") {
		changed = append(changed, "amount(string)")
	}

	if v, ok := m["currency"].(string); ok {
		m["currency"] = strings.ToUpper(strings.TrimSpace(v))
	}

	for _, k := range []string{"expenseCategory", "incomeCategory"} {
		v, ok := m[k].(string)
		if !ok {
			continue
		}
		s := strings.TrimSpace(v)
		if s == "" || strings.EqualFold(s, "null") {
			m[k] = nil
			changed = append(changed, k+"(empty)")
			continue
		}
		m[k] = strings.ToUpper(strings.ReplaceAll(s, " ", "_"))
	}

	if items, ok := m["lineItems"].([]any); ok {
		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			rename(item, "total_price", "totalPrice")
			coerceNumber(item, "totalPrice")
			coerceNumber(item, "quantity")
			if q, ok := item["quantity"]; !ok || q == nil {
				item["quantity"] = 1.0
			}
		}
	}

	return changed
}

// coerceNumber turns a numeric string value into a number
func coerceNumber(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	if !ok {
		return false
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	m[key] = f
	return true
}

// parseCandidate turns the oracle's answer text into a CandidateDocument for userID.
func parseCandidate(answer, userID string, schema *jsonschema.Schema) (document.CandidateDocument, []string, error) {
	m, err := decodeObject(StripFence(answer))
	if err != nil {
		return document.CandidateDocument{}, nil, err
	}

	changed := normalizeKeys(m)
	m["userId"] = userID

	if err := schema.Validate(m); err != nil {
		return document.CandidateDocument{}, changed, document.NewError(document.ErrSchemaViolation, "answer does not match the document schema", err)
	}

	b, err := json.Marshal(m)
	if err != nil {
		return document.CandidateDocument{}, changed, document.NewError(document.ErrSchemaViolation, "re-encode answer", err)
	}
	var out document.CandidateDocument
	if err := json.Unmarshal(b, &out); err != nil {
		return document.CandidateDocument{}, changed, document.NewError(document.ErrSchemaViolation, "answer has a value out of range", err)
	}
	return out, changed, nil
}
