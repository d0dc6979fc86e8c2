package pipeline

import (
	"bytes"
	"net/http"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/rs/zerolog"

	"github.com/zombor/bill-tracker/internal/currency"
	"github.com/zombor/bill-tracker/internal/document"
	"github.com/zombor/bill-tracker/internal/extraction"
	"github.com/zombor/bill-tracker/internal/logger"
)

type MockExtractor struct {
	candidate document.CandidateDocument
	err       error
	texts     []string
}

func (m *MockExtractor) Extract(text, userID string) (document.CandidateDocument, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return document.CandidateDocument{}, m.err
	}
	c := m.candidate
	c.UserID = userID
	return c, nil
}

type MockConverter struct {
	calls int
}

func (m *MockConverter) Normalize(doc document.FinancialDocument) document.ProcessedFinancialDocument {
	m.calls++
	return document.ProcessedFinancialDocument{OriginalData: doc, TotalAmountINR: doc.Amount, ExchangeRateDate: "2024-05-10"}
}

func oracleAnswer(answer string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": answer}}}},
		},
	}
}

var _ = Describe("Pipeline", func() {
	Context("with stub stages", func() {
		var (
			extractor *MockExtractor
			converter *MockConverter
			p         *Pipeline
		)

		BeforeEach(func() {
			food := document.FoodAndDining
			extractor = &MockExtractor{candidate: document.CandidateDocument{
				Name: "Cafe", Amount: 12, Type: document.Expense, ExpenseCategory: &food, Currency: "INR",
			}}
			converter = &MockConverter{}
			p = New(extractor, converter, zerolog.Nop())
		})

		It("rejects short text without calling the extractor", func() {
			_, err := p.Process(document.DocumentInput{UserID: "u1", RawText: "  TOTAL  5  "})
			Expect(err).To(MatchError(document.ErrTooShort))
			Expect(extractor.texts).To(BeEmpty())
			Expect(converter.calls).To(BeZero())
		})

		It("rejects blank text", func() {
			_, err := p.Process(document.DocumentInput{UserID: "u1", RawText: " \n\t "})
			Expect(err).To(MatchError(document.ErrTooShort))
		})

		It("sends sanitized text to the extractor", func() {
			out, err := p.Process(document.DocumentInput{UserID: "u1", RawText: "Cafe\n\n  TOTAL ₹12.00  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(extractor.texts).To(Equal([]string{"Cafe TOTAL ₹12.00"}))
			Expect(out.OriginalData.UserID).To(Equal("u1"))
			Expect(converter.calls).To(Equal(1))
		})

		It("returns extractor errors unchanged", func() {
			extractor.err = document.NewError(document.ErrMalformedExtraction, "bad", nil)
			_, err := p.Process(document.DocumentInput{UserID: "u1", RawText: "Some receipt text here"})
			Expect(err).To(BeIdenticalTo(extractor.err))
			Expect(converter.calls).To(BeZero())
		})

		It("stops on a category conflict", func() {
			salary := document.Salary
			extractor.candidate.IncomeCategory = &salary
			_, err := p.Process(document.DocumentInput{UserID: "u1", RawText: "Some receipt text here"})
			Expect(err).To(MatchError(document.ErrCategoryConflict))
			Expect(converter.calls).To(BeZero())
		})

		It("logs each stage", func() {
			buf := &bytes.Buffer{}
			p = New(extractor, converter, logger.NewWithWriter(buf))

			_, err := p.Process(document.DocumentInput{UserID: "u1", RawText: "Some receipt text here"})
			Expect(err).NotTo(HaveOccurred())
			for _, s := range []Stage{StageStart, StageSanitized, StageExtracted, StageValidated, StageNormalized, StageDone} {
				Expect(buf.String()).To(ContainSubstring(`"stage":"` + string(s) + `"`))
			}
		})
	})

	Context("end to end", func() {
		var (
			oracle *ghttp.Server
			rates  *ghttp.Server
			p      *Pipeline
		)

		BeforeEach(func() {
			oracle = ghttp.NewServer()
			rates = ghttp.NewServer()

			client, err := extraction.NewClient(extraction.Config{
				APIKey:  "key",
				BaseURL: oracle.URL(),
				Model:   "test-model",
				Timeout: 5 * time.Second,
			}, zerolog.Nop())
			Expect(err).NotTo(HaveOccurred())

			normalizer := currency.NewNormalizer(currency.NewFrankfurter(rates.URL(), time.Second), zerolog.Nop())
			normalizer.SetTimeSource(func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) })
			p = New(client, normalizer, zerolog.Nop())
		})

		AfterEach(func() {
			oracle.Close()
			rates.Close()
		})

		input := document.DocumentInput{UserID: "user-7", RawText: "Reliance Fresh Mart\nMilk 2 x 30.00\nTOTAL ₹96.00"}

		It("processes a grocery receipt", func() {
			oracle.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/v1beta/models/test-model:generateContent"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, oracleAnswer(
					"```json\n"+`{"vendor":"Reliance Fresh Mart","amount":96.0,"transactionType":"Expense","expenseCategory":"FOOD_AND_DINING","incomeCategory":null,"currency":"INR","description":"Groceries"}`+"\n```",
				)),
			))
			rates.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyForm(url.Values{"from": {"INR"}, "to": {"USD"}}),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"date":  "2024-05-10",
					"rates": map[string]float64{"USD": 0.012},
				}),
			))

			out, err := p.Process(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.OriginalData.UserID).To(Equal("user-7"))
			Expect(out.OriginalData.Name).To(Equal("Reliance Fresh Mart"))
			Expect(*out.OriginalData.ExpenseCategory).To(Equal(document.FoodAndDining))
			Expect(out.TotalAmountINR).To(Equal(96.0))
			Expect(out.TotalAmountUSD).To(Equal(1.15))
			Expect(out.ExchangeRateDate).To(Equal("2024-05-10"))
			Expect(oracle.ReceivedRequests()).To(HaveLen(1))
			Expect(rates.ReceivedRequests()).To(HaveLen(1))
		})

		It("rejects a category conflict without asking for rates", func() {
			oracle.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, oracleAnswer(
				`{"vendor":"Reliance Fresh Mart","amount":96.0,"transactionType":"Expense","expenseCategory":"FOOD_AND_DINING","incomeCategory":"SALARY","currency":"INR"}`,
			)))

			_, err := p.Process(input)
			Expect(err).To(MatchError(document.ErrCategoryConflict))
			Expect(rates.ReceivedRequests()).To(BeEmpty())
		})

		It("surfaces an oracle outage", func() {
			oracle.AppendHandlers(ghttp.RespondWith(http.StatusServiceUnavailable, "unavailable"))

			_, err := p.Process(input)
			Expect(err).To(MatchError(document.ErrExtractionService))
			Expect(rates.ReceivedRequests()).To(BeEmpty())
		})

		It("degrades when rates are down", func() {
			oracle.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, oracleAnswer(
				`{"vendor":"Reliance Fresh Mart","amount":96.0,"transactionType":"Expense","expenseCategory":"FOOD_AND_DINING","currency":"INR"}`,
			)))
			rates.AppendHandlers(ghttp.RespondWith(http.StatusServiceUnavailable, ""))

			out, err := p.Process(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.TotalAmountINR).To(Equal(96.0))
			Expect(out.TotalAmountUSD).To(BeZero())
			Expect(out.ExchangeRateDate).To(Equal("2024-03-20"))
			Expect(out.RatesDegraded).To(BeTrue())
		})

		It("rejects a malformed answer", func() {
			oracle.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, oracleAnswer("no idea")))

			_, err := p.Process(input)
			Expect(err).To(MatchError(document.ErrMalformedExtraction))
		})
	})
})
