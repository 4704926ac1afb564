// Command papervault drives backup creation and recovery from the
// command line.
//
// It is the interactive plumbing around the core packages: it reads
// and writes document blobs and shard text files, picks the
// transcription codec, and reports per-shard acceptance during
// recovery. The core packages never touch the filesystem; everything
// durable flows through this command.
//
//	papervault create --input secrets.txt -n 5 -k 3 --out-dir ./backup
//	papervault recover --document ./backup/document.pvd shard-01.txt shard-04.txt shard-05.txt
//	papervault inspect shard-01.txt
package main
