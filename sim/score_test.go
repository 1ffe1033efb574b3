package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Score", func() {
	It("should multiply the two largest counts", func() {
		Expect(Score([]uint64{101, 95, 7, 105})).To(Equal(uint64(10605)))
	})

	It("should handle ties at the top", func() {
		first, second := TopTwo([]uint64{3, 9, 9, 1})

		Expect(first).To(Equal(uint64(9)))
		Expect(second).To(Equal(uint64(9)))
		Expect(Score([]uint64{3, 9, 9, 1})).To(Equal(uint64(81)))
	})

	It("should not reorder its input", func() {
		counts := []uint64{1, 3, 2}

		Score(counts)

		Expect(counts).To(Equal([]uint64{1, 3, 2}))
	})

	It("should be wide enough for large counts", func() {
		Expect(Score([]uint64{52166, 47830, 1938, 52013})).
			To(Equal(uint64(2713310158)))
	})

	It("should handle degenerate inputs", func() {
		Expect(Score(nil)).To(BeZero())
		Expect(Score([]uint64{7})).To(Equal(uint64(7)))
		Expect(Score([]uint64{0, 0, 0})).To(BeZero())
	})
})
