package extraction

import (
	"strings"

	"github.com/zombor/bill-tracker/internal/document"
)

// BuildPrompt composes the oracle instruction: field schema, the rule that the
// category depends on the transaction type, and the text to analyze.
func BuildPrompt(text string) string {
	expense := strings.Join(document.ExpenseCategoryNames(), ", ")
	income := strings.Join(document.IncomeCategoryNames(), ", ")

	rules := []string{
		"1. Identify the transaction type and return it in a field named \"transactionType\". It MUST be exactly \"Expense\" or \"Income\".",
		"2. Based on the transaction type, you MUST categorize it:",
		"   - If it is \"Expense\", \"expenseCategory\" MUST be one of: [" + expense + "]. \"incomeCategory\" MUST be null.",
		"   - If it is \"Income\", \"incomeCategory\" MUST be one of: [" + income + "]. \"expenseCategory\" MUST be null.",
		"3. Identify the name of the vendor or source of income and return it in a field named \"vendor\".",
		"4. Identify the total \"amount\" as a number and the \"currency\" as a 3-letter ISO 4217 code (use INR for ₹, USD for $).",
		"5. Write a brief \"description\" summarizing the transaction (e.g. \"Grocery shopping at Reliance Fresh Mart\").",
		"6. For \"lineItems\", each item MUST be an object with \"description\", \"quantity\" and \"totalPrice\". Use an empty list if no items are visible.",
	}

	fields := []string{
		`- "vendor": string`,
		`- "amount": number`,
		`- "transactionType": "Expense" | "Income"`,
		`- "expenseCategory": string enum or null`,
		`- "incomeCategory": string enum or null`,
		`- "currency": string`,
		`- "description": string`,
		`- "lineItems": [{"description": string, "quantity": number, "totalPrice": number}]`,
	}

	var b strings.Builder
	b.WriteString("You are an expert financial data entry assistant. Analyze the raw text from a financial document.\n\n")
	b.WriteString("Crucial Instructions:\n")
	b.WriteString(strings.Join(rules, "\n"))
	b.WriteString("\n\nOutput Format:\n")
	b.WriteString("Provide the output ONLY as a single valid JSON object with camelCase keys. Do not include \"userId\".\n")
	b.WriteString("Fields:\n")
	b.WriteString(strings.Join(fields, "\n"))
	b.WriteString("\n\n---\nRaw Text to Analyze:\n")
	b.WriteString(text)
	b.WriteString("\n---\n")
	return b.String()
}
