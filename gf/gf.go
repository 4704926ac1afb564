package gf

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Elem is an element of GF(2^16).
type Elem uint16

const (
	Zero Elem = 0
	One  Elem = 1

	// ElemSize is the width of a serialized field element in bytes.
	ElemSize = 2
)

// reductionPoly is the irreducible polynomial x^16 + x^12 + x^3 + x + 1
// defining the field.
const reductionPoly uint32 = 0x1100B

// ErrInvalidOperand is returned when inverting or dividing by the zero
// element.
var ErrInvalidOperand = errors.New("gf: division by zero element")

// Add returns a + b. Addition in a binary field is XOR.
func Add(a, b Elem) Elem {
	return a ^ b
}

// Sub returns a - b. Subtraction coincides with addition in
// characteristic two.
func Sub(a, b Elem) Elem {
	return a ^ b
}

// Mul returns a * b. The multiplication runs a fixed 16-round
// shift-and-add loop with mask arithmetic instead of branches or table
// lookups, so its timing does not depend on either operand.
func Mul(a, b Elem) Elem {
	var product uint32
	aa := uint32(a)
	bb := uint32(b)
	for i := 0; i < 16; i++ {
		// Accumulate aa whenever the low bit of bb is set.
		mask := uint32(0) - (bb & 1)
		product ^= aa & mask
		bb >>= 1

		// Multiply aa by x, reducing modulo the field polynomial.
		carry := uint32(0) - ((aa >> 15) & 1)
		aa = ((aa << 1) ^ (reductionPoly & carry)) & 0x1FFFF
	}
	return Elem(product)
}

// invExponent is 2^16 - 2; raising to it yields the multiplicative
// inverse by Fermat's little theorem.
const invExponent = 1<<16 - 2

// Inv returns the multiplicative inverse of a, or ErrInvalidOperand for
// the zero element. The square-and-multiply chain walks a fixed public
// exponent, so the operation is constant-time in a.
func Inv(a Elem) (Elem, error) {
	if a == Zero {
		return Zero, ErrInvalidOperand
	}
	r := One
	for i := 15; i >= 0; i-- {
		r = Mul(r, r)
		if (invExponent>>uint(i))&1 == 1 {
			r = Mul(r, a)
		}
	}
	return r, nil
}

// Div returns a / b, failing with ErrInvalidOperand when b is zero.
func Div(a, b Elem) (Elem, error) {
	inv, err := Inv(b)
	if err != nil {
		return Zero, err
	}
	return Mul(a, inv), nil
}

// SplitBytes packs data into big-endian field elements, zero-padding
// the final element when len(data) is odd.
func SplitBytes(data []byte) []Elem {
	elems := make([]Elem, (len(data)+ElemSize-1)/ElemSize)
	for i := range elems {
		hi := data[i*ElemSize]
		var lo byte
		if i*ElemSize+1 < len(data) {
			lo = data[i*ElemSize+1]
		}
		elems[i] = Elem(uint16(hi)<<8 | uint16(lo))
	}
	return elems
}

// JoinBytes is the inverse of SplitBytes, truncating the unpacked
// bytes to length.
func JoinBytes(elems []Elem, length int) ([]byte, error) {
	if length > len(elems)*ElemSize || length < 0 {
		return nil, fmt.Errorf("gf: %d elements cannot hold %d bytes", len(elems), length)
	}
	buf := make([]byte, len(elems)*ElemSize)
	for i, e := range elems {
		binary.BigEndian.PutUint16(buf[i*ElemSize:], uint16(e))
	}
	out := make([]byte, length)
	copy(out, buf)
	for i := range buf {
		buf[i] = 0
	}
	return out, nil
}

// WipeElems zeroizes a slice of field elements holding secret material.
func WipeElems(elems []Elem) {
	for i := range elems {
		elems[i] = Zero
	}
}
