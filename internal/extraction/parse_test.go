package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/bill-tracker/internal/document"
)

var _ = Describe("StripFence", func() {
	DescribeTable("removes code fences",
		func(input, expected string) {
			Expect(StripFence(input)).To(Equal(expected))
		},
		Entry("json fence", "```json\n{\"a\":1}\n```", `{"a":1}`),
		Entry("upper case tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`),
		Entry("bare fence", "```\n{\"a\":1}\n```", `{"a":1}`),
		Entry("no fence", `  {"a":1}  `, `{"a":1}`),
	)
})

var _ = Describe("parseCandidate", func() {
	parse := func(answer string) (document.CandidateDocument, []string, error) {
		schema, err := compileSchema(CandidateJSONSchema())
		Expect(err).NotTo(HaveOccurred())
		return parseCandidate(answer, "user-1", schema)
	}

	It("maps vendor and transactionType onto the candidate", func() {
		c, changed, err := parse("```json\n" + `{"vendor":"Reliance Fresh Mart","amount":96.0,"transactionType":"Expense","expenseCategory":"FOOD_AND_DINING","incomeCategory":null,"currency":"INR","description":"Groceries"}` + "\n```")
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(ContainElements("vendor->name", "transactionType->type"))
		Expect(c.UserID).To(Equal("user-1"))
		Expect(c.Name).To(Equal("Reliance Fresh Mart"))
		Expect(c.Amount).To(Equal(96.0))
		Expect(c.Type).To(Equal(document.Expense))
		Expect(c.ExpenseCategory).NotTo(BeNil())
		Expect(*c.ExpenseCategory).To(Equal(document.FoodAndDining))
		Expect(c.IncomeCategory).To(BeNil())
	})

	It("prefers the canonical key when both are present", func() {
		c, _, err := parse(`{"name":"Canonical","vendor":"Alias","amount":1,"type":"Income","incomeCategory":"SALARY","currency":"USD"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name).To(Equal("Canonical"))
	})

	It("extracts the object from surrounding prose", func() {
		c, _, err := parse(`Here you go: {"name":"Acme","amount":10,"type":"Income","incomeCategory":"SALARY","currency":"usd"} Thanks!`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name).To(Equal("Acme"))
		Expect(c.Currency).To(Equal("USD"))
	})

	It("coerces numeric strings and defaults line item quantity", func() {
		c, _, err := parse(`{"name":"Shop","amount":"1,250.50","type":"Expense","expenseCategory":"shopping","currency":"INR",
			"line_items":[{"description":"Shirt","total_price":"1250.50"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Amount).To(Equal(1250.50))
		Expect(*c.ExpenseCategory).To(Equal(document.Shopping))
		Expect(c.LineItems).To(ConsistOf(document.LineItem{Description: "Shirt", Quantity: 1, TotalPrice: 1250.50}))
	})

	It("treats empty category strings as absent", func() {
		c, _, err := parse(`{"name":"Shop","amount":5,"type":"Expense","expenseCategory":"TRAVEL","incomeCategory":"","currency":"INR"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.IncomeCategory).To(BeNil())
	})

	It("overrides a userId supplied by the model", func() {
		c, _, err := parse(`{"userId":"someone-else","name":"Shop","amount":5,"type":"Expense","expenseCategory":"TRAVEL","currency":"INR"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.UserID).To(Equal("user-1"))
	})

	It("rejects plain text", func() {
		_, _, err := parse("I could not read this receipt.")
		Expect(err).To(MatchError(document.ErrMalformedExtraction))
	})

	It("rejects a JSON array", func() {
		_, _, err := parse(`[1, 2, 3]`)
		Expect(err).To(MatchError(document.ErrMalformedExtraction))
	})

	It("rejects an unknown category", func() {
		_, _, err := parse(`{"name":"Shop","amount":5,"type":"Expense","expenseCategory":"GROCERIES","currency":"INR"}`)
		Expect(err).To(MatchError(document.ErrSchemaViolation))
	})

	It("rejects a missing amount", func() {
		_, _, err := parse(`{"name":"Shop","type":"Expense","expenseCategory":"TRAVEL","currency":"INR"}`)
		Expect(err).To(MatchError(document.ErrSchemaViolation))
	})

	It("rejects a non-numeric amount", func() {
		_, _, err := parse(`{"name":"Shop","amount":"lots","type":"Expense","expenseCategory":"TRAVEL","currency":"INR"}`)
		Expect(err).To(MatchError(document.ErrSchemaViolation))
	})

	It("rejects an amount that overflows a float", func() {
		_, _, err := parse(`{"name":"Shop","amount":1e400,"type":"Expense","expenseCategory":"TRAVEL","currency":"INR"}`)
		Expect(err).To(MatchError(document.ErrSchemaViolation))
	})

	It("rejects a line item price that overflows a float", func() {
		_, _, err := parse(`{"name":"Shop","amount":5,"type":"Expense","expenseCategory":"TRAVEL","currency":"INR","lineItems":[{"description":"Milk","totalPrice":-1e999}]}`)
		Expect(err).To(MatchError(document.ErrSchemaViolation))
	})

	It("keeps exact integer amounts", func() {
		c, _, err := parse(`{"name":"Shop","amount":120,"type":"Expense","expenseCategory":"TRAVEL","currency":"INR","lineItems":[{"description":"Fare","quantity":3,"totalPrice":120}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Amount).To(Equal(120.0))
		Expect(c.LineItems[0].Quantity).To(Equal(3.0))
	})

	It("leaves the transaction type for validation", func() {
		c, _, err := parse(`{"name":"Landlord","amount":5,"type":"Rent","currency":"INR"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Type).To(Equal(document.TransactionType("Rent")))
	})
})

var _ = Describe("BuildPrompt", func() {
	It("embeds the text and every category", func() {
		p := BuildPrompt("TOTAL 96.00")
		Expect(p).To(ContainSubstring("Raw Text to Analyze:\nTOTAL 96.00\n---"))
		for _, c := range document.ExpenseCategoryNames() {
			Expect(p).To(ContainSubstring(c))
		}
		for _, c := range document.IncomeCategoryNames() {
			Expect(p).To(ContainSubstring(c))
		}
		Expect(p).To(ContainSubstring(`"transactionType"`))
	})
})
