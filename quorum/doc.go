// Package quorum orchestrates backup creation and recovery.
//
// Create runs the full creation pipeline: seal the plaintext under a
// fresh secret, split the secret into N shares with threshold K, and
// wrap each share in a shard carrying the document identifier, the
// threshold parameters, its own checksum, and a signature under the
// document's Ed25519 key. The secret and the signing key are zeroized
// before Create returns.
//
// Recovery is a state machine over one recovery attempt:
//
//	Collecting --Offer x K--> Ready --Finalize--> Recovered
//	                                        \---> Failed
//
// Shards are offered one at a time and verified independently:
// checksum, signature against the document's embedded verification
// key, document membership, threshold agreement, and duplicate index.
// A rejected shard reports its specific reason and leaves the rest of
// the attempt untouched, so a holder can simply re-enter a mistyped
// shard. Finalize below threshold reports ErrInsufficientShares and
// keeps collecting; once a quorum is present, a combine or unseal
// failure is terminal because no further shard can fix it.
package quorum
