// Package gf implements arithmetic over the finite field GF(2^16),
// the substrate for polynomial secret sharing.
//
// The field is defined by the irreducible polynomial
// x^16 + x^12 + x^3 + x + 1. A 16-bit element width keeps chunk
// arithmetic fixed-cost while leaving the field comfortably larger
// than the maximum supported share count (65535), so every share index
// 1..N is a usable evaluation point.
//
// All arithmetic on potentially secret operands (Mul, Inv, Div,
// polynomial evaluation) avoids secret-dependent branches and table
// lookups: multiplication is a fixed 16-round masked shift-and-add
// loop and inversion is exponentiation along a fixed public chain.
// Division by the zero element fails with ErrInvalidOperand; every
// other operation is total over the field.
//
// Polynomial provides the two interpolation paths secret sharing
// needs: InterpolateConstant recovers only the constant term (fast
// secret recovery), while Interpolate recovers the full coefficient
// vector so surplus shares can be checked against the unique
// polynomial determined by a threshold-sized subset.
package gf
