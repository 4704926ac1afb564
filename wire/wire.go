package wire

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/ruteri/papervault/gf"
	"github.com/ruteri/papervault/sharing"
)

// FormatV1 is the only released format version. The leading version
// byte of every encoding selects the decode path; its value is stable
// across releases.
const FormatV1 uint8 = 1

const (
	// DocumentIDSize is the width of a document identifier.
	DocumentIDSize = sha256.Size
	// ChecksumSize is the width of a shard's own checksum.
	ChecksumSize = 4
)

// ErrMalformedEncoding is returned for any structurally invalid
// encoding: truncation, invalid length prefixes, unknown version tags,
// or trailing garbage. Decoding performs no semantic validation;
// checksums and signatures are the quorum protocol's job.
var ErrMalformedEncoding = errors.New("wire: malformed encoding")

// DocumentID is the content-derived hash binding a document and its
// shards together.
type DocumentID [DocumentIDSize]byte

// NewDocumentID validates and copies a raw identifier.
func NewDocumentID(data []byte) (DocumentID, error) {
	var id DocumentID
	if len(data) != DocumentIDSize {
		return id, fmt.Errorf("%w: document identifier must be %d bytes, got %d", ErrMalformedEncoding, DocumentIDSize, len(data))
	}
	copy(id[:], data)
	return id, nil
}

// Hex returns the identifier in lowercase hexadecimal.
func (id DocumentID) Hex() string {
	return hex.EncodeToString(id[:])
}

// ComputeDocumentID derives the identifier from the document's
// contents. Each field is length-prefixed into the hash so field
// boundaries cannot alias.
func ComputeDocumentID(version uint8, publicKey, nonce, ciphertext, tag []byte) DocumentID {
	h := sha256.New()
	h.Write([]byte{version})
	for _, field := range [][]byte{publicKey, nonce, ciphertext, tag} {
		var lenBuf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(lenBuf[:], uint64(len(field)))
		h.Write(lenBuf[:n])
		h.Write(field)
	}
	var id DocumentID
	copy(id[:], h.Sum(nil))
	return id
}

// Document is the sealed, immutable unit protecting one plaintext.
type Document struct {
	Version    uint8
	ID         DocumentID
	PublicKey  []byte
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// EncodeDocument serializes a document. Encoding is deterministic:
// equal documents always produce equal bytes.
func EncodeDocument(doc *Document) ([]byte, error) {
	if doc.Version != FormatV1 {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrMalformedEncoding, doc.Version)
	}
	buf := []byte{doc.Version}
	buf = append(buf, doc.ID[:]...)
	buf = appendLenPrefixed(buf, doc.PublicKey)
	buf = appendLenPrefixed(buf, doc.Nonce)
	buf = appendLenPrefixed(buf, doc.Ciphertext)
	buf = appendLenPrefixed(buf, doc.Tag)
	return buf, nil
}

// DecodeDocument parses a serialized document. It either returns a
// fully parsed structure or fails with ErrMalformedEncoding.
func DecodeDocument(data []byte) (*Document, error) {
	d := decoder{buf: data}

	version, err := d.readByte()
	if err != nil {
		return nil, err
	}
	if version != FormatV1 {
		return nil, fmt.Errorf("%w: unknown version tag %d", ErrMalformedEncoding, version)
	}

	doc := &Document{Version: version}
	idBytes, err := d.readFixed(DocumentIDSize)
	if err != nil {
		return nil, err
	}
	copy(doc.ID[:], idBytes)

	if doc.PublicKey, err = d.readLenPrefixed(); err != nil {
		return nil, err
	}
	if doc.Nonce, err = d.readLenPrefixed(); err != nil {
		return nil, err
	}
	if doc.Ciphertext, err = d.readLenPrefixed(); err != nil {
		return nil, err
	}
	if doc.Tag, err = d.readLenPrefixed(); err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Shard is the durable, transcribable unit: one share plus the
// metadata and authentication material binding it to its document.
type Shard struct {
	Version   uint8
	DocID     DocumentID
	Threshold uint16
	Total     uint16
	Share     sharing.Share
	Checksum  [ChecksumSize]byte
	Signature []byte
}

// SigningBytes returns the canonical serialization of every shard
// field except the checksum and the signature; both are computed over
// these bytes. Deterministic by construction.
func (s *Shard) SigningBytes() []byte {
	buf := []byte{s.Version}
	buf = append(buf, s.DocID[:]...)
	buf = binary.AppendUvarint(buf, uint64(s.Threshold))
	buf = binary.AppendUvarint(buf, uint64(s.Total))
	buf = binary.AppendUvarint(buf, uint64(s.Share.X))
	buf = binary.AppendUvarint(buf, uint64(len(s.Share.Ys)))
	for _, y := range s.Share.Ys {
		buf = binary.BigEndian.AppendUint16(buf, uint16(y))
	}
	buf = binary.AppendUvarint(buf, uint64(s.Share.SecretLen))
	return buf
}

// ComputeChecksum returns the shard's own integrity checksum: the
// leading bytes of SHA-256 over the canonical shard fields.
func (s *Shard) ComputeChecksum() [ChecksumSize]byte {
	sum := sha256.Sum256(s.SigningBytes())
	var checksum [ChecksumSize]byte
	copy(checksum[:], sum[:ChecksumSize])
	return checksum
}

// EncodeShard serializes a shard deterministically.
func EncodeShard(s *Shard) ([]byte, error) {
	if s.Version != FormatV1 {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrMalformedEncoding, s.Version)
	}
	buf := s.SigningBytes()
	buf = append(buf, s.Checksum[:]...)
	buf = appendLenPrefixed(buf, s.Signature)
	return buf, nil
}

// DecodeShard parses a serialized shard, validating structure only:
// field widths, value ranges of the fixed-width integers, consistency
// of the share vector with the declared secret length, and absence of
// trailing bytes.
func DecodeShard(data []byte) (*Shard, error) {
	d := decoder{buf: data}

	version, err := d.readByte()
	if err != nil {
		return nil, err
	}
	if version != FormatV1 {
		return nil, fmt.Errorf("%w: unknown version tag %d", ErrMalformedEncoding, version)
	}

	s := &Shard{Version: version}
	idBytes, err := d.readFixed(DocumentIDSize)
	if err != nil {
		return nil, err
	}
	copy(s.DocID[:], idBytes)

	if s.Threshold, err = d.readUint16(); err != nil {
		return nil, err
	}
	if s.Total, err = d.readUint16(); err != nil {
		return nil, err
	}
	if s.Share.X, err = d.readUint16(); err != nil {
		return nil, err
	}
	if s.Share.X == 0 {
		return nil, fmt.Errorf("%w: share index zero", ErrMalformedEncoding)
	}

	ysLen, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if ysLen > uint64(len(d.buf))/gf.ElemSize {
		return nil, fmt.Errorf("%w: share vector length %d exceeds input", ErrMalformedEncoding, ysLen)
	}
	s.Share.Ys = make([]gf.Elem, ysLen)
	for i := range s.Share.Ys {
		raw, err := d.readFixed(gf.ElemSize)
		if err != nil {
			return nil, err
		}
		s.Share.Ys[i] = gf.Elem(binary.BigEndian.Uint16(raw))
	}

	secretLen, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if secretLen > math.MaxInt32 || (secretLen+gf.ElemSize-1)/gf.ElemSize != ysLen {
		return nil, fmt.Errorf("%w: secret length %d does not match share vector of %d elements", ErrMalformedEncoding, secretLen, ysLen)
	}
	s.Share.SecretLen = int(secretLen)

	checksum, err := d.readFixed(ChecksumSize)
	if err != nil {
		return nil, err
	}
	copy(s.Checksum[:], checksum)

	if s.Signature, err = d.readLenPrefixed(); err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return s, nil
}

func appendLenPrefixed(buf, field []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(field)))
	return append(buf, field...)
}

// decoder is a cursor over an encoding. All read failures collapse to
// ErrMalformedEncoding so callers never see partial state.
type decoder struct {
	buf []byte
}

func (d *decoder) readByte() (byte, error) {
	if len(d.buf) < 1 {
		return 0, fmt.Errorf("%w: truncated input", ErrMalformedEncoding)
	}
	b := d.buf[0]
	d.buf = d.buf[1:]
	return b, nil
}

func (d *decoder) readFixed(n int) ([]byte, error) {
	if len(d.buf) < n {
		return nil, fmt.Errorf("%w: truncated input", ErrMalformedEncoding)
	}
	out := make([]byte, n)
	copy(out, d.buf[:n])
	d.buf = d.buf[n:]
	return out, nil
}

func (d *decoder) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf)
	if n <= 0 {
		return 0, fmt.Errorf("%w: invalid length prefix", ErrMalformedEncoding)
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *decoder) readUint16() (uint16, error) {
	v, err := d.readUvarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint16 {
		return 0, fmt.Errorf("%w: value %d exceeds 16 bits", ErrMalformedEncoding, v)
	}
	return uint16(v), nil
}

func (d *decoder) readLenPrefixed() ([]byte, error) {
	n, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(d.buf)) {
		return nil, fmt.Errorf("%w: length prefix %d exceeds input", ErrMalformedEncoding, n)
	}
	return d.readFixed(int(n))
}

func (d *decoder) done() error {
	if len(d.buf) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformedEncoding, len(d.buf))
	}
	return nil
}
