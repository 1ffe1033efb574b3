package sim

import (
	"fmt"
	"math/bits"
)

// ReliefMode selects how item values are brought back down after each
// operation.
type ReliefMode int

const (
	// DivideRelief divides every item by three, rounding down.
	DivideRelief ReliefMode = iota

	// ModuloRelief reduces every item modulo a common multiple of all the
	// divisors, which keeps items bounded without changing any test result.
	ModuloRelief
)

// ParseReliefMode converts "divide" or "modulo" into a ReliefMode.
func ParseReliefMode(s string) (ReliefMode, error) {
	switch s {
	case "divide":
		return DivideRelief, nil
	case "modulo":
		return ModuloRelief, nil
	default:
		return 0, runConfigError("relief", "unknown mode %q", s)
	}
}

func (m ReliefMode) String() string {
	switch m {
	case DivideRelief:
		return "divide"
	case ModuloRelief:
		return "modulo"
	default:
		return fmt.Sprintf("ReliefMode(%d)", int(m))
	}
}

// ModulusStrategy selects how the common modulus of modulo relief is built.
type ModulusStrategy int

const (
	// LCMModulus uses the least common multiple of the divisors.
	LCMModulus ModulusStrategy = iota

	// ProductModulus uses the plain product of the divisors.
	ProductModulus
)

// ParseModulusStrategy converts "lcm" or "product" into a ModulusStrategy.
func ParseModulusStrategy(s string) (ModulusStrategy, error) {
	switch s {
	case "lcm", "":
		return LCMModulus, nil
	case "product":
		return ProductModulus, nil
	default:
		return 0, runConfigError("modulus", "unknown strategy %q", s)
	}
}

func (s ModulusStrategy) String() string {
	switch s {
	case LCMModulus:
		return "lcm"
	case ProductModulus:
		return "product"
	default:
		return fmt.Sprintf("ModulusStrategy(%d)", int(s))
	}
}

// CommonModulus returns a value that every divisor divides. For any such
// value M and divisor d, (v mod M) mod d == v mod d.
func CommonModulus(
	divisors []uint64,
	strategy ModulusStrategy,
) (uint64, error) {
	m := uint64(1)

	for i, d := range divisors {
		if d == 0 {
			return 0, agentConfigError(i, "divisor", "must be positive")
		}

		factor := d
		if strategy == LCMModulus {
			factor = d / gcd(m, d)
		}

		hi, lo := bits.Mul64(m, factor)
		if hi != 0 {
			return 0, runConfigError("modulus",
				"%s of divisors overflows 64 bits", strategy)
		}

		m = lo
	}

	return m, nil
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// Relief is the bounding step applied to every item right after the agent's
// operation.
type Relief struct {
	mode    ReliefMode
	modulus uint64
}

// NewRelief creates the relief step for a registry.
func NewRelief(
	mode ReliefMode,
	reg *Registry,
	strategy ModulusStrategy,
) (Relief, error) {
	switch mode {
	case DivideRelief:
		return Relief{mode: DivideRelief}, nil
	case ModuloRelief:
		m, err := CommonModulus(reg.Divisors(), strategy)
		if err != nil {
			return Relief{}, err
		}

		return Relief{mode: ModuloRelief, modulus: m}, nil
	default:
		return Relief{}, runConfigError("relief", "unknown mode %d", int(mode))
	}
}

// Mode returns the relief mode.
func (r Relief) Mode() ReliefMode {
	return r.mode
}

// Modulus returns the common modulus, or 0 in divide mode.
func (r Relief) Modulus() uint64 {
	return r.modulus
}

// Reduce brings the 128-bit value hi:lo back into 64 bits. It returns false
// if the reduced value still does not fit, which only divide relief can
// produce.
func (r Relief) Reduce(hi, lo uint64) (uint64, bool) {
	if r.mode == ModuloRelief {
		return bits.Rem64(hi, lo, r.modulus), true
	}

	if hi >= 3 {
		return 0, false
	}

	q, _ := bits.Div64(hi, lo, 3)

	return q, true
}
