// Package sharing implements threshold secret sharing over GF(2^16).
//
// A secret is split into N shares so that any K of them reconstruct it
// and fewer than K reveal nothing. The secret is chunked into 16-bit
// field elements and each chunk is shared independently: a random
// polynomial of degree K-1 carries the chunk as its constant term and
// is evaluated at the fixed indices x = 1..N. Sharing chunk-wise over a
// small field keeps the arithmetic fixed-cost and constant-time; the
// shared value is a fixed-size symmetric key, so the extra chunks are
// cheap.
//
// Combine applies Lagrange interpolation at x = 0. When more than K
// shares are presented, the surplus shares are cross-checked against
// the polynomial determined by the first K and any disagreement fails
// the attempt with ErrShareMismatch, which turns a quietly wrong
// reconstruction (mixed or tampered share sets) into an explicit error.
package sharing
