package quorum

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ruteri/papervault/humancode"
	"github.com/ruteri/papervault/seal"
	"github.com/ruteri/papervault/sharing"
	"github.com/ruteri/papervault/wire"
)

var (
	// ErrDuplicate is returned when a shard with an already accepted
	// share index is offered again. The recovery attempt keeps
	// accepting further offers.
	ErrDuplicate = errors.New("quorum: duplicate shard")

	// ErrDocumentMismatch is returned when an offered shard does not
	// belong to the recovery attempt's document, or disagrees with its
	// siblings on the threshold parameters.
	ErrDocumentMismatch = errors.New("quorum: shard does not belong to this document")

	// ErrFinalized is returned when offering or finalizing after the
	// attempt reached a terminal state.
	ErrFinalized = errors.New("quorum: recovery attempt already finalized")
)

// Create seals plaintext under a fresh secret and splits that secret
// into n signed shards with recovery threshold k. The secret and the
// private signing key live only for the duration of this call. All
// randomness is drawn from rng.
func Create(plaintext []byte, n, k uint16, rng io.Reader) (*wire.Document, []*wire.Shard, error) {
	// Parameter errors surface before any cryptographic work.
	if k < 1 || k > n {
		return nil, nil, sharing.ErrInvalidThreshold
	}

	sealed, err := seal.Seal(plaintext, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("sealing document: %w", err)
	}
	defer sealed.Close()
	defer seal.WipeBytes(sealed.Secret)

	shares, err := sharing.Split(sealed.Secret, n, k, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("splitting document secret: %w", err)
	}

	doc := &wire.Document{
		Version:    wire.FormatV1,
		PublicKey:  sealed.PublicKey,
		Nonce:      sealed.Nonce,
		Ciphertext: sealed.Ciphertext,
		Tag:        sealed.Tag,
	}
	doc.ID = wire.ComputeDocumentID(doc.Version, doc.PublicKey, doc.Nonce, doc.Ciphertext, doc.Tag)

	shards := make([]*wire.Shard, 0, n)
	for i := range shares {
		shard := &wire.Shard{
			Version:   wire.FormatV1,
			DocID:     doc.ID,
			Threshold: k,
			Total:     n,
			Share:     shares[i],
		}
		shard.Checksum = shard.ComputeChecksum()
		signature, err := sealed.SignShard(shard.SigningBytes())
		if err != nil {
			return nil, nil, fmt.Errorf("signing shard %d: %w", shard.Share.X, err)
		}
		shard.Signature = signature
		shards = append(shards, shard)
	}
	return doc, shards, nil
}

// State describes the progress of one recovery attempt.
type State int

const (
	// Collecting means fewer than threshold shards are accepted.
	Collecting State = iota
	// Ready means enough shards are accepted to attempt finalization.
	Ready
	// Recovered is the terminal success state.
	Recovered
	// Failed is the terminal failure state: combination or unsealing
	// failed despite a full quorum.
	Failed
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Ready:
		return "ready"
	case Recovered:
		return "recovered"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Recovery collects shards for one document until a quorum forms and
// then reconstructs the plaintext. Each offered shard is verified
// independently; rejecting one never disturbs the others. A Recovery
// is safe for concurrent use, though recovery is normally an
// interactive, sequential affair.
type Recovery struct {
	mu       sync.RWMutex
	doc      *wire.Document
	state    State
	accepted map[uint16]*wire.Shard

	// Threshold parameters are fixed by the first accepted shard.
	bound     bool
	threshold uint16
	total     uint16
}

// NewRecovery starts a recovery attempt for the given document. The
// document's identifier is recomputed from its contents: a mismatch
// means the blob was tampered with and fails immediately.
func NewRecovery(doc *wire.Document) (*Recovery, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", wire.ErrMalformedEncoding)
	}
	computed := wire.ComputeDocumentID(doc.Version, doc.PublicKey, doc.Nonce, doc.Ciphertext, doc.Tag)
	if computed != doc.ID {
		return nil, fmt.Errorf("%w: document identifier does not match contents", seal.ErrAuthenticationFailed)
	}
	return &Recovery{
		doc:      doc,
		state:    Collecting,
		accepted: make(map[uint16]*wire.Shard),
	}, nil
}

// Offer verifies a decoded shard and, if it checks out, adds it to the
// quorum. Verification order: shard checksum, document membership and
// threshold agreement, signature against the document's verification
// key, duplicate share index. Membership runs before the signature so
// a genuine shard of some other document reports ErrDocumentMismatch
// rather than a signature failure. Every rejection reports its
// specific reason and leaves the attempt collecting.
func (r *Recovery) Offer(shard *wire.Shard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Recovered || r.state == Failed {
		return ErrFinalized
	}
	if shard == nil || shard.Version != wire.FormatV1 {
		return fmt.Errorf("%w: missing or unversioned shard", wire.ErrMalformedEncoding)
	}

	if shard.ComputeChecksum() != shard.Checksum {
		return fmt.Errorf("%w: shard checksum does not match its fields", seal.ErrAuthenticationFailed)
	}
	if shard.DocID != r.doc.ID {
		return fmt.Errorf("%w: shard identifies document %s", ErrDocumentMismatch, shard.DocID.Hex())
	}
	if r.bound && (shard.Threshold != r.threshold || shard.Total != r.total) {
		return fmt.Errorf("%w: threshold parameters disagree with accepted shards", ErrDocumentMismatch)
	}
	if !seal.Verify(shard.SigningBytes(), shard.Signature, r.doc.PublicKey) {
		return fmt.Errorf("%w: shard signature rejected", seal.ErrAuthenticationFailed)
	}
	if shard.Share.X > shard.Total {
		return fmt.Errorf("%w: share index %d exceeds total %d", wire.ErrMalformedEncoding, shard.Share.X, shard.Total)
	}
	if _, exists := r.accepted[shard.Share.X]; exists {
		return fmt.Errorf("%w: share index %d already accepted", ErrDuplicate, shard.Share.X)
	}

	if !r.bound {
		r.threshold = shard.Threshold
		r.total = shard.Total
		r.bound = true
	}
	r.accepted[shard.Share.X] = shard

	if r.state == Collecting && len(r.accepted) >= int(r.threshold) {
		r.state = Ready
	}
	return nil
}

// OfferText parses a transcribed shard (either codec) and offers it.
// Parse failures are per-shard and user-recoverable.
func (r *Recovery) OfferText(text string) error {
	raw, err := humancode.Decode(text)
	if err != nil {
		return err
	}
	shard, err := wire.DecodeShard(raw)
	if err != nil {
		return err
	}
	return r.Offer(shard)
}

// State returns the attempt's current state.
func (r *Recovery) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Ready reports whether enough shards are accepted to finalize.
func (r *Recovery) Ready() bool {
	return r.State() == Ready
}

// Accepted returns the number of distinct accepted shards.
func (r *Recovery) Accepted() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accepted)
}

// Threshold returns the threshold fixed by the first accepted shard,
// or zero while none is accepted.
func (r *Recovery) Threshold() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.threshold
}

// Finalize combines the accepted shares and unseals the document.
// Called below threshold it fails with ErrInsufficientShares and the
// attempt keeps collecting. A combination or unsealing failure is
// terminal: the accepted shards formed a quorum and still could not
// produce the plaintext, which means an inconsistent shard set
// (ErrShareMismatch) or a corrupted document (ErrAuthenticationFailed)
// rather than a fixable input.
func (r *Recovery) Finalize() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Recovered || r.state == Failed {
		return nil, ErrFinalized
	}
	if !r.bound || len(r.accepted) < int(r.threshold) {
		return nil, sharing.ErrInsufficientShares
	}

	shares := make([]sharing.Share, 0, len(r.accepted))
	for _, shard := range r.accepted {
		shares = append(shares, shard.Share)
	}

	secret, err := sharing.Combine(shares, r.threshold)
	if err != nil {
		r.state = Failed
		return nil, fmt.Errorf("combining shares: %w", err)
	}
	defer seal.WipeBytes(secret)

	plaintext, err := seal.Unseal(secret, r.doc.Nonce, r.doc.Ciphertext, r.doc.Tag, r.doc.PublicKey)
	if err != nil {
		r.state = Failed
		return nil, err
	}

	r.state = Recovered
	return plaintext, nil
}
