package humancode

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/tyler-smith/go-bip39/wordlists"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPayload(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestCodecRoundTrip(t *testing.T) {
	for _, codec := range Codecs() {
		for _, n := range []int{1, 2, 3, 16, 31, 32, 33, 100, 139} {
			payload := randomPayload(t, n)

			text, err := codec.Encode(payload)
			require.NoError(t, err, "%s should encode %d bytes", codec.Name(), n)

			decoded, err := codec.Decode(text)
			require.NoError(t, err, "%s should decode its own output for %d bytes", codec.Name(), n)
			assert.Equal(t, payload, decoded, "%s round-trip for %d bytes", codec.Name(), n)
		}
	}
}

func TestCodecRejectsEmptyPayload(t *testing.T) {
	for _, codec := range Codecs() {
		_, err := codec.Encode(nil)
		assert.ErrorIs(t, err, ErrEmptyPayload, "%s should reject an empty payload", codec.Name())
	}
}

func TestMnemonicUsesWordList(t *testing.T) {
	text, err := Mnemonic{}.Encode([]byte("paper backup"))
	require.NoError(t, err)

	for _, word := range strings.Fields(text) {
		_, ok := wordIndex[word]
		assert.True(t, ok, "emitted word %q should come from the list", word)
	}
}

func TestMnemonicDetectsWordSubstitution(t *testing.T) {
	payload := randomPayload(t, 64)
	text, err := Mnemonic{}.Encode(payload)
	require.NoError(t, err)

	words := strings.Fields(text)
	for _, pos := range []int{0, len(words) / 2, len(words) - 1} {
		mutated := append([]string{}, words...)
		// Substitute with a different valid word.
		replacement := wordlists.English[0]
		if mutated[pos] == replacement {
			replacement = wordlists.English[1]
		}
		mutated[pos] = replacement

		_, err := Mnemonic{}.Decode(strings.Join(mutated, " "))
		assert.ErrorIs(t, err, ErrTranscription, "substituted word at position %d should be detected", pos)
	}
}

func TestMnemonicRejectsUnknownWord(t *testing.T) {
	payload := randomPayload(t, 16)
	text, err := Mnemonic{}.Encode(payload)
	require.NoError(t, err)

	words := strings.Fields(text)
	words[1] = "notarealword"
	_, err = Mnemonic{}.Decode(strings.Join(words, " "))
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}

// packWords bit-packs an arbitrary byte stream the way Encode does,
// without the length/checksum framing, to forge hostile inputs.
func packWords(buf []byte) string {
	var words []string
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
		words = append(words, wordlists.English[(acc<<(wordBits-accBits))&(1<<wordBits-1)])
	}
	return strings.Join(words, " ")
}

func TestMnemonicRejectsOverflowingLengthPrefix(t *testing.T) {
	// A length prefix near 2^64 would wrap the end-of-payload offset
	// if added before being bounds-checked.
	for _, length := range []uint64{math.MaxUint64, math.MaxUint64 - 1, math.MaxUint64 - 11} {
		forged := binary.AppendUvarint(nil, length)
		forged = append(forged, 0, 0)

		_, err := Mnemonic{}.Decode(packWords(forged))
		assert.ErrorIs(t, err, ErrTranscription, "length %d should be rejected", length)
	}
}

func TestMnemonicRejectsTruncation(t *testing.T) {
	payload := randomPayload(t, 32)
	text, err := Mnemonic{}.Encode(payload)
	require.NoError(t, err)

	words := strings.Fields(text)
	_, err = Mnemonic{}.Decode(strings.Join(words[:len(words)-2], " "))
	assert.ErrorIs(t, err, ErrTranscription, "dropped words should be detected")

	_, err = Mnemonic{}.Decode("   ")
	assert.ErrorIs(t, err, ErrInvalidSymbol, "blank entry should be rejected")
}

func TestMnemonicNormalizesCaseAndWhitespace(t *testing.T) {
	payload := randomPayload(t, 24)
	text, err := Mnemonic{}.Encode(payload)
	require.NoError(t, err)

	messy := "  " + strings.ToUpper(strings.ReplaceAll(text, " ", "\n ")) + "\t"
	decoded, err := Mnemonic{}.Decode(messy)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestCompactTextShape(t *testing.T) {
	text, err := CompactText{}.Encode(randomPayload(t, 32))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, compactPrefix), "compact text should carry the version prefix")
	for _, group := range strings.Split(strings.TrimPrefix(text, compactPrefix), "-") {
		assert.LessOrEqual(t, len(group), compactGroupSize)
		for _, r := range group {
			assert.True(t, strings.ContainsRune(compactAlphabet, r), "character %q should be in the alphabet", r)
		}
	}
}

func TestCompactTextDetectsCharacterSubstitution(t *testing.T) {
	payload := randomPayload(t, 48)
	text, err := CompactText{}.Encode(payload)
	require.NoError(t, err)

	// Substitute one in-alphabet character with a different one.
	body := []byte(strings.TrimPrefix(text, compactPrefix))
	pos := len(body) / 2
	for body[pos] == '-' {
		pos++
	}
	original := body[pos]
	for _, c := range []byte(compactAlphabet) {
		if c != original {
			body[pos] = c
			break
		}
	}

	_, err = CompactText{}.Decode(compactPrefix + string(body))
	assert.ErrorIs(t, err, ErrTranscription, "substituted character should be detected")
}

func TestCompactTextRejectsInvalidCharacter(t *testing.T) {
	payload := randomPayload(t, 16)
	text, err := CompactText{}.Encode(payload)
	require.NoError(t, err)

	// '0' and 'l' are deliberately excluded from the alphabet.
	_, err = CompactText{}.Decode(text + "0")
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	_, err = CompactText{}.Decode(text + "l")
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	_, err = CompactText{}.Decode(compactPrefix)
	assert.ErrorIs(t, err, ErrInvalidSymbol, "empty body should be rejected")
}

func TestCompactTextNormalizesCaseAndSeparators(t *testing.T) {
	payload := randomPayload(t, 24)
	text, err := CompactText{}.Encode(payload)
	require.NoError(t, err)

	messy := strings.ToUpper(strings.ReplaceAll(text, "-", " "))
	// The prefix survives uppercasing because Decode lowercases first.
	decoded, err := CompactText{}.Decode(messy)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeDispatch(t *testing.T) {
	payload := randomPayload(t, 40)

	mnText, err := Mnemonic{}.Encode(payload)
	require.NoError(t, err)
	ctText, err := CompactText{}.Encode(payload)
	require.NoError(t, err)

	fromMn, err := Decode(mnText)
	require.NoError(t, err)
	assert.Equal(t, payload, fromMn, "word sequences should dispatch to the mnemonic codec")

	fromCt, err := Decode(ctText)
	require.NoError(t, err)
	assert.Equal(t, payload, fromCt, "pv1: text should dispatch to the compact codec")
}

func TestByName(t *testing.T) {
	mn, err := ByName("mnemonic")
	require.NoError(t, err)
	assert.Equal(t, "mnemonic", mn.Name())

	ct, err := ByName("compact")
	require.NoError(t, err)
	assert.Equal(t, "compact", ct.Name())

	_, err = ByName("qr")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}
