package sim

import (
	"errors"
	"math"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Relief", func() {
	Context("common modulus", func() {
		It("should use the lcm", func() {
			m, err := CommonModulus([]uint64{4, 6, 10}, LCMModulus)

			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(uint64(60)))
		})

		It("should use the product", func() {
			m, err := CommonModulus([]uint64{4, 6, 10}, ProductModulus)

			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(uint64(240)))
		})

		It("should agree for pairwise coprime divisors", func() {
			lcm, _ := CommonModulus([]uint64{23, 19, 13, 17}, LCMModulus)
			product, _ := CommonModulus([]uint64{23, 19, 13, 17}, ProductModulus)

			Expect(lcm).To(Equal(uint64(96577)))
			Expect(product).To(Equal(lcm))
		})

		It("should report overflow", func() {
			divisors := []uint64{math.MaxUint32, math.MaxUint32 - 2, 7}

			_, err := CommonModulus(divisors, ProductModulus)

			var cfgErr *ConfigurationError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal("modulus"))
		})

		It("should avoid overflow with the lcm of repeated divisors", func() {
			divisors := []uint64{math.MaxUint32, math.MaxUint32, math.MaxUint32}

			m, err := CommonModulus(divisors, LCMModulus)

			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(uint64(math.MaxUint32)))
		})

		It("should reject a zero divisor", func() {
			_, err := CommonModulus([]uint64{3, 0}, LCMModulus)

			Expect(err).To(HaveOccurred())
		})
	})

	Context("divide", func() {
		var relief Relief

		BeforeEach(func() {
			reg, _ := NewRegistry(sampleSpecs())
			relief, _ = NewRelief(DivideRelief, reg, LCMModulus)
		})

		It("should divide by three rounding down", func() {
			v, ok := relief.Reduce(0, 1501)

			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(uint64(500)))
			Expect(relief.Modulus()).To(BeZero())
			Expect(relief.Mode()).To(Equal(DivideRelief))
		})

		It("should divide values above 64 bits", func() {
			v, ok := relief.Reduce(2, 0)

			Expect(ok).To(BeTrue())

			want := new(big.Int).Lsh(big.NewInt(2), 64)
			want.Div(want, big.NewInt(3))
			Expect(v).To(Equal(want.Uint64()))
		})

		It("should fail when the quotient does not fit", func() {
			_, ok := relief.Reduce(3, 0)

			Expect(ok).To(BeFalse())
		})
	})

	Context("modulo", func() {
		var relief Relief

		BeforeEach(func() {
			reg, _ := NewRegistry(sampleSpecs())
			relief, _ = NewRelief(ModuloRelief, reg, LCMModulus)
		})

		It("should reduce by the common modulus", func() {
			v, ok := relief.Reduce(0, 96577*5+11)

			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(uint64(11)))
			Expect(relief.Modulus()).To(Equal(uint64(96577)))
		})

		It("should reduce 128-bit values exactly", func() {
			hi, lo := Square().Apply(math.MaxUint64 - 4)

			v, ok := relief.Reduce(hi, lo)

			x := new(big.Int).SetUint64(math.MaxUint64 - 4)
			x.Mul(x, x)
			x.Mod(x, big.NewInt(96577))

			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(x.Uint64()))
		})

		It("should never change a divisibility outcome", func() {
			for v := uint64(0); v < 3*96577; v += 37 {
				reduced, _ := relief.Reduce(0, v)

				for _, d := range []uint64{23, 19, 13, 17} {
					Expect(reduced % d).To(Equal(v % d))
				}
			}
		})
	})

	It("should parse modes and strategies", func() {
		mode, err := ParseReliefMode("modulo")
		Expect(err).NotTo(HaveOccurred())
		Expect(mode).To(Equal(ModuloRelief))
		Expect(mode.String()).To(Equal("modulo"))

		_, err = ParseReliefMode("none")
		Expect(err).To(HaveOccurred())

		strategy, err := ParseModulusStrategy("product")
		Expect(err).NotTo(HaveOccurred())
		Expect(strategy.String()).To(Equal("product"))

		strategy, err = ParseModulusStrategy("")
		Expect(err).NotTo(HaveOccurred())
		Expect(strategy).To(Equal(LCMModulus))

		_, err = ParseModulusStrategy("gcd")
		Expect(err).To(HaveOccurred())
	})
})
