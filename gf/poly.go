package gf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Polynomial is a polynomial over GF(2^16) in coefficient form; index i
// holds the coefficient of x^i.
type Polynomial []Elem

// Point is one evaluation of a polynomial.
type Point struct {
	X Elem
	Y Elem
}

// NewRandomPolynomial builds a polynomial of the given degree with the
// requested constant term and all other coefficients drawn from rng.
func NewRandomPolynomial(degree int, constant Elem, rng io.Reader) (Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("gf: negative polynomial degree %d", degree)
	}
	buf := make([]byte, ElemSize*(degree+1))
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, fmt.Errorf("reading polynomial coefficients: %w", err)
	}
	p := make(Polynomial, degree+1)
	for i := range p {
		p[i] = Elem(binary.BigEndian.Uint16(buf[i*ElemSize:]))
	}
	p[0] = constant
	for i := range buf {
		buf[i] = 0
	}
	return p, nil
}

// Constant returns the constant term.
func (p Polynomial) Constant() Elem {
	if len(p) == 0 {
		return Zero
	}
	return p[0]
}

// Eval evaluates the polynomial at x using Horner's rule.
func (p Polynomial) Eval(x Elem) Elem {
	var y Elem
	for i := len(p) - 1; i >= 0; i-- {
		y = Add(Mul(y, x), p[i])
	}
	return y
}

// Wipe zeroizes the coefficients.
func (p Polynomial) Wipe() {
	WipeElems(p)
}

// Interpolate recovers the unique polynomial of degree len(points)-1
// passing through all points via Lagrange interpolation. The x
// coordinates must be pairwise distinct; a repeated x surfaces as
// ErrInvalidOperand from the basis denominator.
func Interpolate(points []Point) (Polynomial, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("gf: no points to interpolate")
	}
	result := make(Polynomial, len(points))
	basis := make(Polynomial, 0, len(points))
	for j, pj := range points {
		// Basis numerator: prod over m != j of (x + x_m).
		basis = append(basis[:0], One)
		denom := One
		for m, pm := range points {
			if m == j {
				continue
			}
			basis = mulLinear(basis, pm.X)
			denom = Mul(denom, Add(pj.X, pm.X))
		}
		invDenom, err := Inv(denom)
		if err != nil {
			result.Wipe()
			return nil, err
		}
		scale := Mul(pj.Y, invDenom)
		for i := range basis {
			result[i] = Add(result[i], Mul(basis[i], scale))
		}
	}
	return result, nil
}

// InterpolateConstant evaluates the interpolated polynomial at x = 0
// without recovering its coefficients. This is the fast path for
// recovering a shared secret chunk.
func InterpolateConstant(points []Point) (Elem, error) {
	if len(points) == 0 {
		return Zero, fmt.Errorf("gf: no points to interpolate")
	}
	var constant Elem
	for j, pj := range points {
		num := One
		denom := One
		for m, pm := range points {
			if m == j {
				continue
			}
			num = Mul(num, pm.X)
			denom = Mul(denom, Add(pj.X, pm.X))
		}
		invDenom, err := Inv(denom)
		if err != nil {
			return Zero, err
		}
		constant = Add(constant, Mul(pj.Y, Mul(num, invDenom)))
	}
	return constant, nil
}

// mulLinear multiplies p by the monic linear factor (x + x0), growing
// the coefficient slice by one. In characteristic two (x + x0) and
// (x - x0) are the same factor.
func mulLinear(p Polynomial, x0 Elem) Polynomial {
	out := make(Polynomial, len(p)+1)
	for i, c := range p {
		out[i] = Add(out[i], Mul(c, x0))
		out[i+1] = Add(out[i+1], c)
	}
	return out
}
