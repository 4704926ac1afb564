package sharing

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/ruteri/papervault/gf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSecret(t *testing.T, n int) []byte {
	t.Helper()
	secret := make([]byte, n)
	_, err := rand.Read(secret)
	require.NoError(t, err, "Failed to generate test secret")
	return secret
}

func TestSplitValidation(t *testing.T) {
	secret := randomSecret(t, 32)

	_, err := Split(secret, 5, 0, rand.Reader)
	assert.ErrorIs(t, err, ErrInvalidThreshold, "k=0 should be rejected")

	_, err = Split(secret, 5, 6, rand.Reader)
	assert.ErrorIs(t, err, ErrInvalidThreshold, "k>n should be rejected")

	_, err = Split(nil, 5, 3, rand.Reader)
	assert.ErrorIs(t, err, ErrEmptySecret, "empty secret should be rejected")
}

func TestSplitShape(t *testing.T) {
	secret := randomSecret(t, 32)
	shares, err := Split(secret, 5, 3, rand.Reader)
	require.NoError(t, err)
	require.Len(t, shares, 5, "should produce exactly n shares")

	for i, s := range shares {
		assert.Equal(t, uint16(i+1), s.X, "share indices should be 1-based and sequential")
		assert.Len(t, s.Ys, 16, "32-byte secret should shard into 16 chunks")
		assert.Equal(t, 32, s.SecretLen)
	}
}

func TestCombineAllKSubsets(t *testing.T) {
	secret := randomSecret(t, 32)
	shares, err := Split(secret, 5, 3, rand.Reader)
	require.NoError(t, err)

	// Every 3-subset of 5 shares must yield the same secret.
	for i := 0; i < len(shares); i++ {
		for j := i + 1; j < len(shares); j++ {
			for k := j + 1; k < len(shares); k++ {
				subset := []Share{shares[i], shares[j], shares[k]}
				recovered, err := Combine(subset, 3)
				require.NoError(t, err, "subset (%d,%d,%d) should combine", i, j, k)
				assert.Equal(t, secret, recovered, "subset (%d,%d,%d) should recover the secret", i, j, k)
			}
		}
	}
}

func TestCombineInsufficientShares(t *testing.T) {
	secret := randomSecret(t, 32)
	shares, err := Split(secret, 5, 3, rand.Reader)
	require.NoError(t, err)

	_, err = Combine(shares[:2], 3)
	assert.ErrorIs(t, err, ErrInsufficientShares, "two shares should not meet a threshold of three")

	// Duplicates of one index do not count towards the threshold.
	_, err = Combine([]Share{shares[0], shares[0], shares[0]}, 3)
	assert.ErrorIs(t, err, ErrInsufficientShares, "repeated share should count once")
}

func TestCombineBelowThresholdLeaksNothing(t *testing.T) {
	secret := randomSecret(t, 32)
	shares, err := Split(secret, 5, 3, rand.Reader)
	require.NoError(t, err)

	recovered, err := Combine(shares[:2], 3)
	assert.ErrorIs(t, err, ErrInsufficientShares)
	assert.Nil(t, recovered, "failed combine should return no data at all")
}

func TestCombineCrossValidation(t *testing.T) {
	secret := randomSecret(t, 32)
	shares, err := Split(secret, 5, 3, rand.Reader)
	require.NoError(t, err)

	// All five genuine shares pass the surplus check.
	recovered, err := Combine(shares, 3)
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)

	// A tampered surplus share fails the whole attempt.
	tampered := make([]Share, len(shares))
	copy(tampered, shares)
	badYs := make([]gf.Elem, len(shares[4].Ys))
	copy(badYs, shares[4].Ys)
	badYs[0] ^= 1
	tampered[4] = Share{X: shares[4].X, Ys: badYs, SecretLen: shares[4].SecretLen}

	_, err = Combine(tampered, 3)
	assert.ErrorIs(t, err, ErrShareMismatch, "off-polynomial surplus share should be detected")
}

func TestCombineConflictingDuplicate(t *testing.T) {
	secret := randomSecret(t, 16)
	shares, err := Split(secret, 4, 2, rand.Reader)
	require.NoError(t, err)

	forged := Share{X: shares[0].X, Ys: make([]gf.Elem, len(shares[0].Ys)), SecretLen: shares[0].SecretLen}
	copy(forged.Ys, shares[0].Ys)
	forged.Ys[0] ^= 0xFF

	_, err = Combine([]Share{shares[0], forged, shares[1]}, 2)
	assert.ErrorIs(t, err, ErrShareMismatch, "conflicting duplicate index should be rejected")
}

func TestCombineInconsistentShape(t *testing.T) {
	secret := randomSecret(t, 16)
	shares, err := Split(secret, 3, 2, rand.Reader)
	require.NoError(t, err)

	other := Share{X: 7, Ys: make([]gf.Elem, 1), SecretLen: 2}
	_, err = Combine([]Share{shares[0], other}, 2)
	assert.ErrorIs(t, err, ErrShareMismatch, "shares of different shapes should not mix")

	zeroIdx := Share{X: 0, Ys: shares[0].Ys, SecretLen: shares[0].SecretLen}
	_, err = Combine([]Share{zeroIdx, shares[1]}, 2)
	assert.ErrorIs(t, err, ErrShareMismatch, "index zero is never a valid share")
}

func TestSplitCombineOddLengths(t *testing.T) {
	for _, n := range []int{1, 3, 15, 17, 33} {
		secret := randomSecret(t, n)
		shares, err := Split(secret, 4, 2, rand.Reader)
		require.NoError(t, err)

		recovered, err := Combine(shares[1:3], 2)
		require.NoError(t, err)
		assert.Equal(t, secret, recovered, "length %d should round-trip", n)
	}
}

func TestThresholdEdges(t *testing.T) {
	secret := randomSecret(t, 32)

	// k = 1: every share alone recovers the secret.
	shares, err := Split(secret, 3, 1, rand.Reader)
	require.NoError(t, err)
	for _, s := range shares {
		recovered, err := Combine([]Share{s}, 1)
		require.NoError(t, err)
		assert.Equal(t, secret, recovered, "k=1 share should recover alone")
	}

	// k = n: all shares are needed.
	shares, err = Split(secret, 4, 4, rand.Reader)
	require.NoError(t, err)
	recovered, err := Combine(shares, 4)
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)

	_, err = Combine(shares[:3], 4)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestCombineZeroThreshold(t *testing.T) {
	_, err := Combine(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestShareWipe(t *testing.T) {
	secret := randomSecret(t, 16)
	shares, err := Split(secret, 3, 2, rand.Reader)
	require.NoError(t, err)

	shares[0].Wipe()
	for _, y := range shares[0].Ys {
		assert.Equal(t, gf.Zero, y, "wiped share should hold no residue")
	}
}

// The entropy source is an explicit parameter, so a fixed source
// reproduces the exact same shares.
func TestSplitDeterministicWithFixedEntropy(t *testing.T) {
	secret := randomSecret(t, 32)
	seed := randomSecret(t, 4096)

	first, err := Split(secret, 5, 3, bytes.NewReader(seed))
	require.NoError(t, err)
	second, err := Split(secret, 5, 3, bytes.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical entropy should reproduce identical shares")

	third, err := Split(secret, 5, 3, rand.Reader)
	require.NoError(t, err)
	assert.NotEqual(t, first, third, "fresh entropy should produce fresh polynomials")
}
