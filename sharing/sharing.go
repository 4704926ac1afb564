package sharing

import (
	"errors"
	"fmt"
	"io"

	"github.com/ruteri/papervault/gf"
)

var (
	// ErrInvalidThreshold is returned when the requested K/N pair is out
	// of range. It is reported before any cryptographic work occurs.
	ErrInvalidThreshold = errors.New("sharing: threshold must satisfy 1 <= k <= n")

	// ErrEmptySecret is returned when splitting a zero-length secret.
	ErrEmptySecret = errors.New("sharing: secret must not be empty")

	// ErrInsufficientShares is returned when fewer than K shares with
	// distinct indices are available for reconstruction.
	ErrInsufficientShares = errors.New("sharing: not enough distinct shares to meet the threshold")

	// ErrShareMismatch is returned when the presented shares are not all
	// consistent with a single splitting run.
	ErrShareMismatch = errors.New("sharing: shares are inconsistent")
)

// Share is one evaluation point of the sharing polynomials: a 1-based
// index X (never zero) and one Y element per secret chunk. All shares
// of one run carry the same Ys length and SecretLen.
type Share struct {
	X         uint16
	Ys        []gf.Elem
	SecretLen int
}

// Wipe zeroizes the share's secret-dependent material.
func (s *Share) Wipe() {
	gf.WipeElems(s.Ys)
}

// Split shares secret among n holders so that any k of them can
// reconstruct it. The secret is chunked into field elements; each
// chunk is protected by an independent random polynomial of degree
// k-1 whose constant term is the chunk, evaluated at x = 1..n. All
// polynomial coefficients other than the constant terms come from rng,
// which must be a cryptographically secure source.
func Split(secret []byte, n, k uint16, rng io.Reader) ([]Share, error) {
	if k < 1 || k > n {
		return nil, ErrInvalidThreshold
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	chunks := gf.SplitBytes(secret)
	defer gf.WipeElems(chunks)

	polys := make([]gf.Polynomial, len(chunks))
	defer func() {
		for _, p := range polys {
			p.Wipe()
		}
	}()
	for i, chunk := range chunks {
		poly, err := gf.NewRandomPolynomial(int(k)-1, chunk, rng)
		if err != nil {
			return nil, fmt.Errorf("generating sharing polynomial: %w", err)
		}
		polys[i] = poly
	}

	shares := make([]Share, n)
	for i := range shares {
		x := gf.Elem(i + 1)
		ys := make([]gf.Elem, len(polys))
		for j, poly := range polys {
			ys[j] = poly.Eval(x)
		}
		shares[i] = Share{X: uint16(i + 1), Ys: ys, SecretLen: len(secret)}
	}
	return shares, nil
}

// Combine reconstructs the secret from at least k shares with pairwise
// distinct indices. Exactly k shares determine the result; any surplus
// shares are cross-checked against the polynomial interpolated from
// the first k, and a share lying off that polynomial fails the whole
// attempt with ErrShareMismatch. Exact duplicates of an already seen
// share are tolerated, conflicting duplicates are not.
func Combine(shares []Share, k uint16) ([]byte, error) {
	if k < 1 {
		return nil, ErrInvalidThreshold
	}

	selected, err := selectDistinct(shares)
	if err != nil {
		return nil, err
	}
	if len(selected) < int(k) {
		return nil, ErrInsufficientShares
	}

	numChunks := len(selected[0].Ys)
	secretLen := selected[0].SecretLen

	chunks := make([]gf.Elem, numChunks)
	defer gf.WipeElems(chunks)

	points := make([]gf.Point, int(k))
	for c := 0; c < numChunks; c++ {
		for i := 0; i < int(k); i++ {
			points[i] = gf.Point{X: gf.Elem(selected[i].X), Y: selected[i].Ys[c]}
		}

		if len(selected) == int(k) {
			chunks[c], err = gf.InterpolateConstant(points)
			if err != nil {
				return nil, fmt.Errorf("interpolating secret chunk: %w", err)
			}
			continue
		}

		poly, err := gf.Interpolate(points)
		if err != nil {
			return nil, fmt.Errorf("interpolating secret chunk: %w", err)
		}
		for _, s := range selected[k:] {
			if poly.Eval(gf.Elem(s.X)) != s.Ys[c] {
				poly.Wipe()
				return nil, fmt.Errorf("%w: share %d disagrees with the reconstructing subset", ErrShareMismatch, s.X)
			}
		}
		chunks[c] = poly.Constant()
		poly.Wipe()
	}

	secret, err := gf.JoinBytes(chunks, secretLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShareMismatch, err)
	}
	return secret, nil
}

// selectDistinct filters shares down to one per index, preserving
// presentation order, and rejects structurally inconsistent sets.
func selectDistinct(shares []Share) ([]Share, error) {
	selected := make([]Share, 0, len(shares))
	seen := make(map[uint16]int, len(shares))
	for _, s := range shares {
		if s.X == 0 {
			return nil, fmt.Errorf("%w: share index zero", ErrShareMismatch)
		}
		if len(selected) > 0 {
			if len(s.Ys) != len(selected[0].Ys) || s.SecretLen != selected[0].SecretLen {
				return nil, fmt.Errorf("%w: shares describe different secrets", ErrShareMismatch)
			}
		}
		if prev, ok := seen[s.X]; ok {
			if !equalYs(selected[prev].Ys, s.Ys) {
				return nil, fmt.Errorf("%w: conflicting shares for index %d", ErrShareMismatch, s.X)
			}
			continue
		}
		seen[s.X] = len(selected)
		selected = append(selected, s)
	}
	return selected, nil
}

func equalYs(a, b []gf.Elem) bool {
	if len(a) != len(b) {
		return false
	}
	// Not constant-time, but duplicate submission of the same index is
	// already an error path driven by the holder.
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
