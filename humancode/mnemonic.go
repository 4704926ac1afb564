package humancode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// wordBits is the payload carried per mnemonic word: the word list has
// 2048 entries.
const wordBits = 11

var wordIndex = func() map[string]int {
	idx := make(map[string]int, len(wordlists.English))
	for i, w := range wordlists.English {
		idx[w] = i
	}
	return idx
}()

// Mnemonic maps bytes to a sequence of words from the BIP-39 English
// list. The encoded stream is uvarint(len) || data || checksum,
// bit-packed 11 bits per word with zero padding to a word boundary.
// The explicit length prefix makes the payload length unambiguous
// regardless of how the final word boundary falls.
type Mnemonic struct{}

// Name implements Codec.
func (Mnemonic) Name() string { return "mnemonic" }

// Encode implements Codec.
func (Mnemonic) Encode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}

	buf := binary.AppendUvarint(nil, uint64(len(data)))
	buf = append(buf, data...)
	buf = binary.BigEndian.AppendUint16(buf, checksum(buf))

	words := make([]string, 0, (len(buf)*8+wordBits-1)/wordBits)
	var acc uint32
	var accBits int
	for _, b := range buf {
		acc = acc<<8 | uint32(b)
		accBits += 8
		for accBits >= wordBits {
			words = append(words, wordlists.English[(acc>>(accBits-wordBits))&(1<<wordBits-1)])
			accBits -= wordBits
		}
	}
	if accBits > 0 {
		// Left-align the tail and zero-pad to a full word.
		words = append(words, wordlists.English[(acc<<(wordBits-accBits))&(1<<wordBits-1)])
	}
	return strings.Join(words, " "), nil
}

// Decode implements Codec. Unknown words fail with ErrInvalidSymbol;
// any inconsistency of the recovered bit stream (checksum, length
// prefix, nonzero padding) fails with ErrTranscription.
func (Mnemonic) Decode(text string) ([]byte, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no words entered", ErrInvalidSymbol)
	}

	indices := make([]uint32, len(fields))
	for i, word := range fields {
		idx, ok := wordIndex[word]
		if !ok {
			return nil, fmt.Errorf("%w: word %q is not in the list", ErrInvalidSymbol, word)
		}
		indices[i] = uint32(idx)
	}

	totalBits := wordBits * len(indices)
	buf := make([]byte, 0, totalBits/8)
	var acc uint32
	var accBits int
	for _, idx := range indices {
		acc = acc<<wordBits | idx
		accBits += wordBits
		for accBits >= 8 {
			buf = append(buf, byte(acc>>(accBits-8)))
			accBits -= 8
		}
	}
	if acc&(1<<accBits-1) != 0 {
		return nil, fmt.Errorf("%w: nonzero padding bits", ErrTranscription)
	}

	length, n := binary.Uvarint(buf)
	if n <= 0 || length == 0 {
		return nil, fmt.Errorf("%w: unreadable length prefix", ErrTranscription)
	}
	// Bound the length before doing arithmetic on it so an absurd
	// varint cannot wrap the end offset around.
	if length > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: too few words for the declared length", ErrTranscription)
	}
	end := uint64(n) + length + checksumBits/8
	if end > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: too few words for the declared length", ErrTranscription)
	}
	// The bit packing emits at most one byte beyond the payload; it
	// must be zero.
	for _, b := range buf[end:] {
		if b != 0 {
			return nil, fmt.Errorf("%w: nonzero padding bytes", ErrTranscription)
		}
	}

	body := buf[:end-checksumBits/8]
	want := binary.BigEndian.Uint16(buf[end-checksumBits/8 : end])
	if checksum(body) != want {
		return nil, ErrTranscription
	}

	data := make([]byte, length)
	copy(data, buf[n:end-checksumBits/8])
	return data, nil
}
