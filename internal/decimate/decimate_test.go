package decimate

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/loopsim/internal/table"
)

func series(rows ...[]float64) *table.Table {
	t := table.New([]string{"t", "h", "u"}, len(rows))
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

var _ = Describe("Decimate", func() {
	var full *table.Table

	BeforeEach(func() {
		full = series(
			[]float64{0, 0.0, 0},
			[]float64{1, 0.52, 3},
			[]float64{2, 0.48, 5},
			[]float64{3, 0.21, 1},
			[]float64{4, 0.19, 2},
		)
	})

	It("keeps the element-wise maximum of each bucket in key order", func() {
		out, err := Decimate(full, "h", 0.1)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Columns).To(Equal([]string{"t", "h", "u"}))
		Expect(out.Rows).To(Equal([][]float64{
			{0, 0, 0},
			{0, 0, 0},
			{4, 0.2, 2},
			{2, 0.5, 5},
		}))
	})

	It("does not preserve temporal order", func() {
		out, err := Decimate(full, "h", 0.1)
		Expect(err).NotTo(HaveOccurred())

		t := out.Column("t")
		Expect(t[2]).To(BeNumerically(">", t[3]))
	})

	It("never increases the row count", func() {
		for _, tol := range []float64{1e-6, 0.01, 0.1, 1, 100} {
			out, err := Decimate(full, "h", tol)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Len()).To(BeNumerically("<=", full.Len()+1))
			Expect(out.Len()).To(BeNumerically(">=", 2))
		}
	})

	DescribeTable("is idempotent for powers of ten",
		func(tol float64) {
			once, err := Decimate(full, "h", tol)
			Expect(err).NotTo(HaveOccurred())

			twice, err := Decimate(once, "h", tol)
			Expect(err).NotTo(HaveOccurred())
			Expect(twice.Rows).To(Equal(once.Rows))
		},
		Entry("1", 1.0),
		Entry("0.1", 0.1),
		Entry("0.001", 0.001),
	)

	It("merges buckets on a second pass when the tolerance is not a power of ten", func() {
		halves := series(
			[]float64{0, 0, 0},
			[]float64{1, 0.6, 2},
			[]float64{2, 1.4, 1},
		)

		once, err := Decimate(halves, "h", 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(once.Rows).To(Equal([][]float64{
			{0, 0, 0},
			{0, 0, 0},
			{1, 1, 2},
			{2, 1, 1},
		}))

		twice, err := Decimate(once, "h", 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(twice.Rows).To(Equal([][]float64{
			{0, 0, 0},
			{0, 0, 0},
			{2, 1, 2},
		}))
	})

	It("collapses a constant series into one bucket", func() {
		flat := series(
			[]float64{0, 2, 0},
			[]float64{1, 2, 1},
			[]float64{2, 2, 4},
		)

		out, err := Decimate(flat, "h", 0.01)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Rows).To(Equal([][]float64{
			{0, 2, 0},
			{2, 2, 4},
		}))
	})

	It("rounds values to the decimals implied by the tolerance", func() {
		fine := series(
			[]float64{0, 1.23456, 0.98765},
		)

		out, err := Decimate(fine, "h", 0.01)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Rows[1]).To(Equal([]float64{0, 1.23, 0.99}))
	})

	It("prepends the first row as the initial condition", func() {
		out, err := Decimate(full, "h", 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Row(0)).To(Equal(map[string]float64{"t": 0, "h": 0, "u": 0}))
	})

	It("drops rows whose primary value is NaN", func() {
		full.Append([]float64{5, math.NaN(), 9})

		out, err := Decimate(full, "h", 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Len()).To(Equal(4))
		Expect(out.Column("u")).NotTo(ContainElement(9.0))
	})

	It("leaves the input untouched", func() {
		before := full.Clone()
		_, err := Decimate(full, "h", 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(full.Rows).To(Equal(before.Rows))
	})

	DescribeTable("rejects invalid input",
		func(in *table.Table, primary string, tol float64, expected error) {
			_, err := Decimate(in, primary, tol)
			Expect(err).To(MatchError(expected))
		},
		Entry("zero tolerance", series([]float64{0, 0, 0}), "h", 0.0, ErrInvalidTolerance),
		Entry("negative tolerance", series([]float64{0, 0, 0}), "h", -0.1, ErrInvalidTolerance),
		Entry("NaN tolerance", series([]float64{0, 0, 0}), "h", math.NaN(), ErrInvalidTolerance),
		Entry("tolerance with an infinite inverse", series([]float64{0, 0, 0}), "h", 1e-320, ErrInvalidTolerance),
		Entry("unknown column", series([]float64{0, 0, 0}), "P", 0.1, ErrUnknownColumn),
		Entry("empty table", series(), "h", 0.1, ErrEmptyTable),
	)
})
