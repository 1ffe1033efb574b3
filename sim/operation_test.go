package sim

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Operation", func() {
	DescribeTable("should apply",
		func(op Operation, old, wantHi, wantLo uint64) {
			hi, lo := op.Apply(old)

			Expect(hi).To(Equal(wantHi))
			Expect(lo).To(Equal(wantLo))
		},
		Entry("add constant", Add(6), uint64(54), uint64(0), uint64(60)),
		Entry("add self", Double(), uint64(21), uint64(0), uint64(42)),
		Entry("multiply constant", Multiply(19), uint64(79), uint64(0), uint64(1501)),
		Entry("multiply self", Square(), uint64(79), uint64(0), uint64(6241)),
		Entry("add carries", Add(1), uint64(math.MaxUint64), uint64(1), uint64(0)),
		Entry("add self carries", Double(), uint64(1<<63), uint64(1), uint64(0)),
		Entry("square into high word", Square(), uint64(1<<32), uint64(1), uint64(0)),
		Entry("multiply into high word",
			Multiply(1<<40), uint64(1<<40), uint64(1<<16), uint64(0)),
	)

	It("should ignore the operand of self operations", func() {
		op := Operation{Kind: MultiplySelf, Operand: 1000}

		_, lo := op.Apply(3)

		Expect(lo).To(Equal(uint64(9)))
	})

	It("should render as in the notes", func() {
		Expect(Multiply(19).String()).To(Equal("old * 19"))
		Expect(Add(6).String()).To(Equal("old + 6"))
		Expect(Square().String()).To(Equal("old * old"))
		Expect(Double().String()).To(Equal("old + old"))
	})

	It("should reject unknown kinds", func() {
		op := Operation{Kind: OperationKind(42)}

		Expect(op.Validate()).To(HaveOccurred())
		Expect(func() { op.Apply(1) }).To(Panic())
		Expect(op.String()).To(Equal("OperationKind(42)"))
	})

	It("should accept known kinds", func() {
		for _, op := range []Operation{Add(1), Double(), Multiply(2), Square()} {
			Expect(op.Validate()).To(Succeed())
		}
	})
})
