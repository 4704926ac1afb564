package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ruteri/papervault/cmd/flags"
	"github.com/ruteri/papervault/humancode"
	"github.com/ruteri/papervault/quorum"
	"github.com/ruteri/papervault/sharing"
	"github.com/ruteri/papervault/wire"
	"github.com/urfave/cli/v2"
)

var PapervaultLogFlag = flags.LogServiceFlagFn("papervault")

var InputFlag = &cli.StringFlag{
	Name:  "input",
	Value: "-",
	Usage: "file to back up, '-' for stdin",
}
var OutDirFlag = &cli.StringFlag{
	Name:  "out-dir",
	Value: ".",
	Usage: "directory to write the document blob and shard texts to",
}
var SharesFlag = &cli.UintFlag{
	Name:     "shares",
	Aliases:  []string{"n"},
	Required: true,
	Usage:    "total number of shards to produce",
}
var ThresholdFlag = &cli.UintFlag{
	Name:     "threshold",
	Aliases:  []string{"k"},
	Required: true,
	Usage:    "number of shards required to recover",
}
var CodecFlag = &cli.StringFlag{
	Name:  "codec",
	Value: "mnemonic",
	Usage: "shard text form: 'mnemonic' or 'compact'",
}
var DocumentFlag = &cli.StringFlag{
	Name:     "document",
	Required: true,
	Usage:    "path to the document blob",
}
var OutputFlag = &cli.StringFlag{
	Name:  "output",
	Value: "-",
	Usage: "file to write the recovered plaintext to, '-' for stdout",
}

func main() {
	app := &cli.App{
		Name:  "papervault",
		Usage: "Paper-durable threshold backups",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Encrypt a document and split its key into transcribable shards",
				Flags:  append([]cli.Flag{InputFlag, OutDirFlag, SharesFlag, ThresholdFlag, CodecFlag, PapervaultLogFlag}, flags.CommonFlags...),
				Action: runCreate,
			},
			{
				Name:      "recover",
				Usage:     "Reassemble a document from its blob and at least K shard texts",
				ArgsUsage: "shard-file [shard-file ...]",
				Flags:     append([]cli.Flag{DocumentFlag, OutputFlag, PapervaultLogFlag}, flags.CommonFlags...),
				Action:    runRecover,
			},
			{
				Name:      "inspect",
				Usage:     "Decode a shard text and report its parameters without recovering",
				ArgsUsage: "shard-file",
				Flags:     append([]cli.Flag{PapervaultLogFlag}, flags.CommonFlags...),
				Action:    runInspect,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCreate(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	n := cCtx.Uint(SharesFlag.Name)
	k := cCtx.Uint(ThresholdFlag.Name)
	if n == 0 || n > 65535 || k > 65535 {
		return fmt.Errorf("shares and threshold must fit in 1..65535")
	}

	codec, err := humancode.ByName(cCtx.String(CodecFlag.Name))
	if err != nil {
		return err
	}

	plaintext, err := readInput(cCtx.String(InputFlag.Name))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, shards, err := quorum.Create(plaintext, uint16(n), uint16(k), rand.Reader)
	if err != nil {
		logger.Error("Failed to create backup", "err", err)
		return err
	}
	logger.Info("Document sealed", "documentID", doc.ID.Hex(), "shares", n, "threshold", k)

	outDir := cCtx.String(OutDirFlag.Name)
	docBlob, err := wire.EncodeDocument(doc)
	if err != nil {
		return err
	}
	docPath := filepath.Join(outDir, "document.pvd")
	if err := os.WriteFile(docPath, docBlob, 0o644); err != nil {
		return fmt.Errorf("writing document blob: %w", err)
	}
	logger.Info("Document blob written", "path", docPath, "bytes", len(docBlob))

	for _, shard := range shards {
		encoded, err := wire.EncodeShard(shard)
		if err != nil {
			return err
		}
		text, err := codec.Encode(encoded)
		if err != nil {
			return err
		}
		shardPath := filepath.Join(outDir, fmt.Sprintf("shard-%02d.txt", shard.Share.X))
		if err := os.WriteFile(shardPath, []byte(text+"\n"), 0o600); err != nil {
			return fmt.Errorf("writing shard %d: %w", shard.Share.X, err)
		}
		logger.Info("Shard written", "path", shardPath, "index", shard.Share.X, "codec", codec.Name())
	}

	logger.Info("Backup complete", "documentID", doc.ID.Hex())
	return nil
}

func runRecover(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	if cCtx.NArg() == 0 {
		return fmt.Errorf("at least one shard file is required")
	}

	docBlob, err := os.ReadFile(cCtx.String(DocumentFlag.Name))
	if err != nil {
		return fmt.Errorf("reading document blob: %w", err)
	}
	doc, err := wire.DecodeDocument(docBlob)
	if err != nil {
		logger.Error("Document blob is malformed", "err", err)
		return err
	}

	rec, err := quorum.NewRecovery(doc)
	if err != nil {
		logger.Error("Document rejected", "err", err)
		return err
	}
	logger.Info("Recovery started", "documentID", doc.ID.Hex())

	for _, path := range cCtx.Args().Slice() {
		text, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read shard file", "path", path, "err", err)
			continue
		}
		if err := rec.OfferText(string(text)); err != nil {
			// Per-shard rejections are recoverable: report and move on.
			logger.Warn("Shard rejected", "path", path, "err", err)
			continue
		}
		logger.Info("Shard accepted", "path", path, "accepted", rec.Accepted(), "threshold", rec.Threshold())
	}

	plaintext, err := rec.Finalize()
	if err != nil {
		if errors.Is(err, sharing.ErrInsufficientShares) {
			logger.Error("Not enough valid shards", "accepted", rec.Accepted(), "threshold", rec.Threshold())
		} else {
			logger.Error("Recovery failed", "err", err, "state", rec.State().String())
		}
		return err
	}

	if err := writeOutput(cCtx.String(OutputFlag.Name), plaintext); err != nil {
		return fmt.Errorf("writing recovered plaintext: %w", err)
	}
	logger.Info("Recovery complete", "documentID", doc.ID.Hex(), "bytes", len(plaintext))
	return nil
}

func runInspect(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("exactly one shard file is required")
	}

	text, err := os.ReadFile(cCtx.Args().First())
	if err != nil {
		return fmt.Errorf("reading shard file: %w", err)
	}
	raw, err := humancode.Decode(string(text))
	if err != nil {
		return err
	}
	shard, err := wire.DecodeShard(raw)
	if err != nil {
		return err
	}

	checksumState := "ok"
	if shard.ComputeChecksum() != shard.Checksum {
		checksumState = "MISMATCH"
	}
	fmt.Printf("document:  %s\n", shard.DocID.Hex())
	fmt.Printf("share:     %d of %d\n", shard.Share.X, shard.Total)
	fmt.Printf("threshold: %d\n", shard.Threshold)
	fmt.Printf("checksum:  %s\n", checksumState)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
