// Package humancode renders shard wire bytes into forms a person can
// write on paper and type back in, and parses them again.
//
// Two codecs are provided. Mnemonic maps the bytes to words from the
// BIP-39 English list (11 bits per word), for holders who find word
// sequences easier to transcribe without error. CompactText maps them
// to grouped z-base-32 under a pv1: prefix, a denser form whose
// alphabet is case-insensitive and excludes visually confusable
// characters.
//
// Both codecs append a 16-bit SHA-256 checksum before mapping to
// symbols, so a mistyped or substituted word/character is detected at
// decode time rather than silently corrected; the false-negative rate
// is 2^-16 per entry attempt. Decode failures are user-recoverable:
// ErrInvalidSymbol means a symbol outside the accepted set,
// ErrTranscription means the symbols are all valid but the content
// does not check out, and in either case the holder simply re-enters
// the shard.
package humancode
