package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mike76-dev/xpresshuff/compress"
	"github.com/mike76-dev/xpresshuff/compress/lz77huff"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file inside the config directory.
const FileName = "xpresshuff.yml"

// Config lists the config fields.
type Config struct {
	MaxInputSize  int      `yaml:"maxInputSize"`
	MaxOutputSize int      `yaml:"maxOutputSize"`
	HexDumpBytes  int      `yaml:"hexDumpBytes"`
	LogLevel      string   `yaml:"logLevel"`
	Workers       int      `yaml:"workers"`
	Algorithms    []string `yaml:"algorithms"`
}

// Default returns the config used when no config file is present.
func Default() Config {
	return Config{
		MaxInputSize:  lz77huff.MaxInputSize,
		MaxOutputSize: lz77huff.DefaultOutputLimit,
		HexDumpBytes:  64,
		LogLevel:      "info",
		Algorithms:    []string{"none", "lznt1", "lz77", "lz77+huffman", "lz4", "pattern_v1"},
	}
}

// ReadConfig tries to read the config from the specified directory.
// Fields missing from the file keep their default values.
func ReadConfig(dir string) (cfg Config, err error) {
	cfg = Default()
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	// An empty file decodes to io.EOF.
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	err = cfg.Validate()
	return
}

// Validate returns an error if any field is out of range.
func (cfg Config) Validate() error {
	if cfg.MaxInputSize <= 0 || cfg.MaxInputSize > lz77huff.MaxInputSize {
		return fmt.Errorf("maxInputSize must be between 1 and %d", lz77huff.MaxInputSize)
	}

	if cfg.MaxOutputSize <= 0 {
		return errors.New("maxOutputSize must be positive")
	}

	if cfg.HexDumpBytes < 0 {
		return errors.New("hexDumpBytes must not be negative")
	}

	if cfg.Workers < 0 {
		return errors.New("workers must not be negative")
	}

	if _, err := cfg.Level(); err != nil {
		return err
	}

	_, err := cfg.AlgorithmIDs()
	return err
}

// Level returns the parsed log level.
func (cfg Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(cfg.LogLevel)
}

// AlgorithmIDs returns the IDs of the accepted compression algorithms.
func (cfg Config) AlgorithmIDs() ([]uint16, error) {
	ids := make([]uint16, 0, len(cfg.Algorithms))
	for _, name := range cfg.Algorithms {
		id, err := compress.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
