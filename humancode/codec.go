package humancode

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTranscription is returned when an entered shard fails its
	// transcription checksum. The holder re-enters the shard; nothing
	// else is affected.
	ErrTranscription = errors.New("humancode: transcription checksum mismatch")

	// ErrInvalidSymbol is returned when the entered text contains a
	// character or word outside the codec's accepted set.
	ErrInvalidSymbol = errors.New("humancode: symbol outside the accepted set")

	// ErrEmptyPayload is returned when encoding zero bytes.
	ErrEmptyPayload = errors.New("humancode: empty payload")

	// ErrUnknownCodec is returned by ByName for unrecognized names.
	ErrUnknownCodec = errors.New("humancode: unknown codec")
)

// Codec is a reversible mapping between a shard's wire bytes and a
// human-transcribable text form. Both implementations protect the
// payload with a 16-bit checksum, so decode detects (never silently
// corrects) transcription mistakes.
type Codec interface {
	Name() string
	Encode(data []byte) (string, error)
	Decode(text string) ([]byte, error)
}

// Codecs returns the available codecs.
func Codecs() []Codec {
	return []Codec{Mnemonic{}, CompactText{}}
}

// ByName selects a codec by its name.
func ByName(name string) (Codec, error) {
	for _, c := range Codecs() {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// Decode dispatches on the shape of the entered text: compact-text
// carries the pv1: version prefix, everything else is treated as a
// mnemonic word sequence.
func Decode(text string) ([]byte, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), compactPrefix) {
		return CompactText{}.Decode(text)
	}
	return Mnemonic{}.Decode(text)
}

// checksumBits is the transcription checksum width. A single
// substituted word or character slips through with probability 2^-16.
const checksumBits = 16

func checksum(payload []byte) uint16 {
	sum := sha256.Sum256(payload)
	return binary.BigEndian.Uint16(sum[:2])
}
