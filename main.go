package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mike76-dev/xpresshuff/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

var (
	configDir = flag.String("dir", ".", "directory containing "+config.FileName)
	format    = flag.String("format", formatAuto, "input format: "+formatAuto+", "+formatRaw+" or "+formatSMB2)
	algoName  = flag.String("algo", "lz77+huffman", "compression algorithm of raw input")
	outDir    = flag.String("o", "", "output directory (default: next to each input file)")
	verbose   = flag.Bool("v", false, "enable debug output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Read the config file.
	dir, err := filepath.Abs(*configDir)
	if err != nil {
		fatal(err)
	}

	cfg, err := config.ReadConfig(dir)
	if err != nil {
		fatal(err)
	}

	level, _ := cfg.Level() // validated by ReadConfig
	logger, err := newLogger(level, *verbose)
	if err != nil {
		fatal(err)
	}
	defer logger.Sync()

	logger.Debugf("xpresshuff v%s", version)

	job, err := newDecodeJob(cfg, *format, *algoName, *outDir)
	if err != nil {
		fatal(err)
	}
	job.logger = logger

	if failed := job.run(flag.Args()); failed > 0 {
		logger.Errorf("%d of %d files failed", failed, flag.NArg())
		logger.Sync()
		os.Exit(1)
	}
}

// newLogger builds a JSON logger, or a console logger at debug level if
// verbose is set.
func newLogger(level zapcore.Level, verbose bool) (*zap.SugaredLogger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc = zap.NewDevelopmentConfig()
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}

	return l.Sugar(), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "xpresshuff:", err)
	os.Exit(2)
}
