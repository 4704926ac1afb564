package humancode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/tv42/zbase32"
)

// compactPrefix tags compact-text shards with the format generation.
const compactPrefix = "pv1:"

// compactGroupSize is the number of characters between separators in
// the rendered text.
const compactGroupSize = 4

// compactAlphabet is the z-base-32 character set: case-insensitive and
// chosen to exclude easily confused glyphs (0/o, 1/l, 2/z, v/u).
const compactAlphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

// CompactText maps bytes to grouped z-base-32 text for holders who
// prefer a dense single-line form over a word list. The encoded
// payload is data || checksum under a pv1: prefix.
type CompactText struct{}

// Name implements Codec.
func (CompactText) Name() string { return "compact" }

// Encode implements Codec.
func (CompactText) Encode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}

	buf := make([]byte, 0, len(data)+checksumBits/8)
	buf = append(buf, data...)
	buf = binary.BigEndian.AppendUint16(buf, checksum(data))

	encoded := zbase32.EncodeToString(buf)

	var b strings.Builder
	b.WriteString(compactPrefix)
	for i, r := range encoded {
		if i > 0 && i%compactGroupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// Decode implements Codec. Separators and case are normalized away;
// characters outside the z-base-32 alphabet fail with
// ErrInvalidSymbol and a checksum mismatch fails with
// ErrTranscription.
func (CompactText) Decode(text string) ([]byte, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimPrefix(normalized, compactPrefix)

	var compact strings.Builder
	for _, r := range normalized {
		switch {
		case r == '-' || r == ' ' || r == '\t':
			continue
		case strings.ContainsRune(compactAlphabet, r):
			compact.WriteRune(r)
		default:
			return nil, fmt.Errorf("%w: character %q", ErrInvalidSymbol, r)
		}
	}
	if compact.Len() == 0 {
		return nil, fmt.Errorf("%w: no characters entered", ErrInvalidSymbol)
	}

	buf, err := zbase32.DecodeString(compact.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSymbol, err)
	}
	if len(buf) <= checksumBits/8 {
		return nil, fmt.Errorf("%w: too short to carry a checksum", ErrTranscription)
	}

	data := buf[:len(buf)-checksumBits/8]
	want := binary.BigEndian.Uint16(buf[len(buf)-checksumBits/8:])
	if checksum(data) != want {
		return nil, ErrTranscription
	}
	return data, nil
}
