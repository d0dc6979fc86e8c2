package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zombor/bill-tracker/internal/document"
)

// CandidateJSONSchema describes a CandidateDocument after userId injection.
// Categories are nullable enums; the transaction type is only required to be
// present because Validate owns that check.
func CandidateJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    map[string]any{"type": "number"},
			"totalPrice":  map[string]any{"type": "number"},
		},
		"required": []string{"description", "totalPrice"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId":          map[string]any{"type": "string", "minLength": 1},
			"name":            map[string]any{"type": "string"},
			"amount":          map[string]any{"type": "number"},
			"type":            map[string]any{"type": "string", "minLength": 1},
			"expenseCategory": nullableEnum(document.ExpenseCategoryNames()),
			"incomeCategory":  nullableEnum(document.IncomeCategoryNames()),
			"currency":        map[string]any{"type": "string", "minLength": 1},
			"description":     map[string]any{"type": []string{"string", "null"}},
			"lineItems": map[string]any{
				"type":  []string{"array", "null"},
				"items": lineItem,
			},
		},
		"required": []string{"userId", "name", "amount", "type", "currency"},
	}
}

func nullableEnum(values []string) map[string]any {
	enum := make([]any, 0, len(values)+1)
	for _, v := range values {
		enum = append(enum, v)
	}
	return map[string]any{"enum": append(enum, nil)}
}

// compileSchema compiles a schema map for repeated validation
func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("candidate.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("candidate.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
