package seal

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// SecretSize is the width of the symmetric document key.
	SecretSize = chacha20poly1305.KeySize
	// NonceSize is the width of the XChaCha20-Poly1305 nonce.
	NonceSize = chacha20poly1305.NonceSizeX
	// TagSize is the width of the Poly1305 authentication tag.
	TagSize = chacha20poly1305.Overhead
)

var (
	// ErrAuthenticationFailed is returned when decryption or signature
	// verification does not check out: wrong secret, tampered
	// ciphertext, nonce, tag or bound metadata. It is never downgraded
	// to a partial result.
	ErrAuthenticationFailed = errors.New("seal: authentication failed")

	// ErrSealerClosed is returned when signing is attempted after the
	// private signing key has been discarded.
	ErrSealerClosed = errors.New("seal: signing key already discarded")
)

// adLabel domain-separates the associated data and carries the format
// generation; bumping the wire version bumps the label.
var adLabel = []byte("papervault/v1")

// SealResult holds the outputs of one sealing operation. The private
// signing key stays inside the result and is only reachable through
// SignShard; Close zeroizes it (and must run on every exit path, so
// defer it right after Seal). The Secret is handed to the caller for
// splitting and is the caller's to wipe.
type SealResult struct {
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
	PublicKey  ed25519.PublicKey
	Secret     []byte

	signingKey ed25519.PrivateKey
}

// Seal encrypts plaintext under a fresh random secret and generates
// the signing keypair that authenticates the document's shards. All
// randomness is drawn from rng, which must be a cryptographically
// secure source.
func Seal(plaintext []byte, rng io.Reader) (*SealResult, error) {
	secret := make([]byte, SecretSize)
	if _, err := io.ReadFull(rng, secret); err != nil {
		return nil, fmt.Errorf("generating document secret: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		WipeBytes(secret)
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rng)
	if err != nil {
		WipeBytes(secret)
		return nil, fmt.Errorf("generating signing keypair: %w", err)
	}

	aead, err := chacha20poly1305.NewX(secret)
	if err != nil {
		WipeBytes(secret)
		WipeBytes(priv)
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, associatedData(pub))
	return &SealResult{
		Nonce:      nonce,
		Ciphertext: sealed[:len(sealed)-TagSize],
		Tag:        sealed[len(sealed)-TagSize:],
		PublicKey:  pub,
		Secret:     secret,
		signingKey: priv,
	}, nil
}

// SignShard signs one shard's canonical bytes with the document's
// private key.
func (r *SealResult) SignShard(payload []byte) ([]byte, error) {
	if r.signingKey == nil {
		return nil, ErrSealerClosed
	}
	return ed25519.Sign(r.signingKey, payload), nil
}

// Close discards the private signing key. It is idempotent.
func (r *SealResult) Close() {
	if r.signingKey != nil {
		WipeBytes(r.signingKey)
		r.signingKey = nil
	}
}

// Unseal decrypts a sealed document in one step, verifying the
// authentication tag over the ciphertext and the bound metadata. On
// any mismatch it returns ErrAuthenticationFailed and no plaintext.
func Unseal(secret, nonce, ciphertext, tag []byte, publicKey ed25519.PublicKey) ([]byte, error) {
	if len(secret) != SecretSize || len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrAuthenticationFailed
	}

	aead, err := chacha20poly1305.NewX(secret)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, associatedData(publicKey))
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Sign signs payload with an Ed25519 private key.
func Sign(payload []byte, privateKey ed25519.PrivateKey) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("seal: malformed private key of length %d", len(privateKey))
	}
	return ed25519.Sign(privateKey, payload), nil
}

// Verify reports whether signature is a valid signature of payload
// under publicKey. It never panics: malformed keys or signatures
// simply verify as false.
func Verify(payload, signature, publicKey []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), payload, signature)
}

// WipeBytes zeroizes key material in place.
func WipeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

func associatedData(publicKey ed25519.PublicKey) []byte {
	ad := make([]byte, 0, len(adLabel)+len(publicKey))
	ad = append(ad, adLabel...)
	ad = append(ad, publicKey...)
	return ad
}
