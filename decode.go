package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/mike76-dev/xpresshuff/compress"
	"github.com/mike76-dev/xpresshuff/compress/lz77huff"
	"github.com/mike76-dev/xpresshuff/config"
	"github.com/mike76-dev/xpresshuff/smb2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	formatAuto = "auto"
	formatRaw  = "raw"
	formatSMB2 = "smb2"
)

// decodeJob decompresses a set of files with the same settings.
type decodeJob struct {
	cfg      config.Config
	format   string
	algo     uint16
	outDir   string
	messages *compress.MessageDecoder
	logger   *zap.SugaredLogger
}

// newDecodeJob validates the settings and returns a decodeJob.
func newDecodeJob(cfg config.Config, format, algoName, outDir string) (*decodeJob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	algorithms, _ := cfg.AlgorithmIDs()
	job := &decodeJob{
		cfg:      cfg,
		format:   format,
		outDir:   outDir,
		messages: compress.NewMessageDecoder(algorithms, cfg.MaxOutputSize),
		logger:   zap.NewNop().Sugar(),
	}

	switch format {
	case formatRaw, formatAuto:
		algo, err := compress.ParseAlgorithm(algoName)
		if err != nil {
			return nil, err
		}
		job.algo = algo

	case formatSMB2:

	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}

	return job, nil
}

// run decodes the files in parallel and returns the number of failures.
// A failing file does not stop the others.
func (j *decodeJob) run(paths []string) int {
	workers := j.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if j.format != formatRaw {
		j.messages.SetLogger(j.logger)
	}

	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := j.decodeFile(path); err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	return int(failed.Load())
}

// decodeFile decodes a single file and writes the result next to it,
// or into the output directory.
func (j *decodeJob) decodeFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		j.logger.Errorw("cannot read input", "file", path, "error", err)
		return err
	}

	if fi.Size() > int64(j.cfg.MaxInputSize) {
		err := fmt.Errorf("%w: %d bytes", lz77huff.ErrInputTooLarge, fi.Size())
		j.logger.Errorw("input rejected", "file", path, "error", err)
		return err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		j.logger.Errorw("cannot read input", "file", path, "error", err)
		return err
	}

	dst, err := j.decode(src)
	if err != nil {
		j.report(path, src, err)
		return err
	}

	out := j.outputPath(path)
	if err := os.WriteFile(out, dst, 0644); err != nil {
		j.logger.Errorw("cannot write output", "file", out, "error", err)
		return err
	}

	j.logger.Infow("decompressed", "file", path, "output", out, "compressed", len(src), "decompressed", len(dst))
	return nil
}

// decode decompresses src according to the input format. In auto mode,
// input starting with the compressed SMB2 protocol id is an SMB2 message.
func (j *decodeJob) decode(src []byte) ([]byte, error) {
	if j.format == formatSMB2 || j.format == formatAuto && smb2.Header(src).IsCompressed() {
		return j.messages.Decompress(src)
	}

	d := compress.New(j.algo)
	d.SetLogger(j.logger)
	return d.Decompress(src, j.cfg.MaxOutputSize)
}

// report logs a failed region together with the leading raw bytes, so that
// the compressed data can be inspected.
func (j *decodeJob) report(path string, src []byte, err error) {
	n := min(len(src), j.cfg.HexDumpBytes)
	j.logger.Errorw("unable to decompress",
		"file", path,
		"error", err,
		"size", len(src),
		"raw", hex.EncodeToString(src[:n]),
	)
}

// outputPath returns the path of the decompressed file.
func (j *decodeJob) outputPath(path string) string {
	dir := j.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, filepath.Base(path)+".out")
}
