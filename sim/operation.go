package sim

import (
	"fmt"
	"math/bits"
	"strconv"
)

// OperationKind enumerates the transforms an agent can apply to an item.
type OperationKind int

// The closed set of operation kinds.
const (
	AddConstant OperationKind = iota
	AddSelf
	MultiplyConstant
	MultiplySelf
)

func (k OperationKind) String() string {
	switch k {
	case AddConstant:
		return "AddConstant"
	case AddSelf:
		return "AddSelf"
	case MultiplyConstant:
		return "MultiplyConstant"
	case MultiplySelf:
		return "MultiplySelf"
	default:
		return "OperationKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// An Operation is the transform an agent applies to every item it inspects.
// Operand is only meaningful for the constant kinds.
type Operation struct {
	Kind    OperationKind
	Operand uint64
}

// Add returns an operation computing old + n.
func Add(n uint64) Operation {
	return Operation{Kind: AddConstant, Operand: n}
}

// Multiply returns an operation computing old * n.
func Multiply(n uint64) Operation {
	return Operation{Kind: MultiplyConstant, Operand: n}
}

// Double returns an operation computing old + old.
func Double() Operation {
	return Operation{Kind: AddSelf}
}

// Square returns an operation computing old * old.
func Square() Operation {
	return Operation{Kind: MultiplySelf}
}

// Apply evaluates the operation on old. The result is returned as a 128-bit
// value, which cannot overflow for any uint64 input.
func (o Operation) Apply(old uint64) (hi, lo uint64) {
	switch o.Kind {
	case AddConstant:
		lo, hi = bits.Add64(old, o.Operand, 0)
	case AddSelf:
		lo, hi = bits.Add64(old, old, 0)
	case MultiplyConstant:
		hi, lo = bits.Mul64(old, o.Operand)
	case MultiplySelf:
		hi, lo = bits.Mul64(old, old)
	default:
		panic(fmt.Sprintf("unknown operation kind %d", o.Kind))
	}

	return hi, lo
}

// Validate reports whether the operation kind is one of the known kinds.
func (o Operation) Validate() error {
	switch o.Kind {
	case AddConstant, AddSelf, MultiplyConstant, MultiplySelf:
		return nil
	default:
		return fmt.Errorf("unknown operation kind %d", int(o.Kind))
	}
}

// String renders the operation the way it is written in agent notes, for
// example "old * 19" or "old + old".
func (o Operation) String() string {
	switch o.Kind {
	case AddConstant:
		return "old + " + strconv.FormatUint(o.Operand, 10)
	case AddSelf:
		return "old + old"
	case MultiplyConstant:
		return "old * " + strconv.FormatUint(o.Operand, 10)
	case MultiplySelf:
		return "old * old"
	default:
		return o.Kind.String()
	}
}
