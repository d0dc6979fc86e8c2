package currency

import (
	"net/http"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Frankfurter", func() {
	var (
		server *ghttp.Server
		source *Frankfurter
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		source = NewFrankfurter(server.URL(), time.Second)
	})

	AfterEach(func() {
		server.Close()
	})

	It("requests the latest rates for the targets", func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodGet, "/latest"),
			ghttp.VerifyForm(url.Values{"from": {"EUR"}, "to": {"USD,INR"}}),
			ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"amount": 1.0,
				"base":   "EUR",
				"date":   "2024-05-10",
				"rates":  map[string]float64{"USD": 1.08, "INR": 90.1},
			}),
		))

		q, err := source.Latest("EUR", []string{"USD", "INR"})
		Expect(err).NotTo(HaveOccurred())
		Expect(q.Date).To(Equal("2024-05-10"))
		Expect(q.Rates).To(HaveKeyWithValue("USD", 1.08))
		Expect(q.Rates).To(HaveKeyWithValue("INR", 90.1))
		Expect(q.Degraded).To(BeFalse())
	})

	It("fails on a non-200 response", func() {
		server.AppendHandlers(ghttp.RespondWith(http.StatusServiceUnavailable, "down"))

		_, err := source.Latest("INR", []string{"USD"})
		Expect(err).To(MatchError(ContainSubstring("status 503")))
	})

	It("fails on an undecodable body", func() {
		server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "not json"))

		_, err := source.Latest("INR", []string{"USD"})
		Expect(err).To(HaveOccurred())
	})

	It("fails when the body has no rates", func() {
		server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"date": "2024-05-10"}))

		_, err := source.Latest("INR", []string{"USD"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("DegradedQuote", func() {
	It("has no rates and is dated on the given day", func() {
		q := DegradedQuote(time.Date(2024, 3, 20, 23, 0, 0, 0, time.UTC))
		Expect(q.Rates).To(BeEmpty())
		Expect(q.Date).To(Equal("2024-03-20"))
		Expect(q.Degraded).To(BeTrue())
		Expect(q.Rate("USD")).To(BeZero())
	})
})
