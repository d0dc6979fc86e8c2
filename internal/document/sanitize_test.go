package document

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sanitize", func() {
	DescribeTable("cleaning raw OCR text",
		func(input, expected string) {
			Expect(Sanitize(input)).To(Equal(expected))
		},
		Entry("empty input", "", ""),
		Entry("whitespace only", " \t\n\r  ", ""),
		Entry("non-breaking spaces", "TOTAL\u00a0\u00a0₹96.00", "TOTAL ₹96.00"),
		Entry("mixed whitespace runs", "Reliance  Fresh\n\nMart\t\tTOTAL", "Reliance Fresh Mart TOTAL"),
		Entry("leading and trailing whitespace", "\n  Grocery bill  \n", "Grocery bill"),
		Entry("already clean", "Grocery bill", "Grocery bill"),
	)

	It("is idempotent", func() {
		once := Sanitize("  a  b \n c  ")
		Expect(Sanitize(once)).To(Equal(once))
	})
})

var _ = Describe("TooShort", func() {
	It("rejects text under ten characters", func() {
		Expect(TooShort("123456789")).To(BeTrue())
	})

	It("accepts exactly ten characters", func() {
		Expect(TooShort("1234567890")).To(BeFalse())
	})

	It("counts characters rather than bytes", func() {
		Expect(TooShort("₹₹₹₹₹₹₹₹₹")).To(BeTrue())
	})
})
