// Package wire defines the canonical binary encoding of documents and
// shards.
//
// Every encoding starts with a one-byte format version selecting the
// decode path, followed by the structure's fields in a fixed order.
// Variable-length fields carry an unsigned-varint length prefix;
// fixed-width integers are encoded as varints as well, with range
// checks on decode. Encoding is deterministic, which is what makes
// shard checksums and signatures reproducible, and decoding is total:
// it yields a fully parsed structure or ErrMalformedEncoding for
// truncation, invalid prefixes, unknown versions, or trailing bytes.
//
// Decoding is purely structural. Checksum and signature verification
// belong to the quorum protocol, which sees every decoded shard before
// it is accepted.
package wire
