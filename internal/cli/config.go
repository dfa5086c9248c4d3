package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	units "github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/megamerge/blobstore/minio"
	"github.com/hupe1980/megamerge/codec"
	"github.com/hupe1980/megamerge/internal/sink"
)

const (
	DefaultFormat      = "tsv"
	DefaultCompression = "zstd"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// Config is the YAML configuration file. Flags override it.
type Config struct {
	LogLevel  string      `yaml:"log-level"`
	LogFormat string      `yaml:"log-format"`
	Scan      ScanConfig  `yaml:"scan"`
	S3        S3Config    `yaml:"s3"`
	MinIO     MinIOConfig `yaml:"minio"`
}

// ScanConfig holds the scan command defaults.
type ScanConfig struct {
	Threshold   float64 `yaml:"threshold"`
	Workers     int     `yaml:"workers"`
	ChunkSize   int     `yaml:"chunk-size"`
	MemoryLimit string  `yaml:"memory-limit"`
	IOLimit     string  `yaml:"io-limit"`
	Format      string  `yaml:"format"`
	Compression string  `yaml:"compression"`
	Limit       int     `yaml:"limit"`
	CommitTable string  `yaml:"commit-table"`
}

// S3Config configures s3:// locations.
type S3Config struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// MinIOConfig configures minio:// locations. The bucket comes from the URI.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access-key"`
	SecretKey string `yaml:"secret-key"`
	Region    string `yaml:"region"`
	Secure    bool   `yaml:"secure"`
}

func (m MinIOConfig) store(bucket string) minio.Config {
	return minio.Config{
		Endpoint:  m.Endpoint,
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		Region:    m.Region,
		Secure:    m.Secure,
		Bucket:    bucket,
	}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Scan: ScanConfig{
			Format:      DefaultFormat,
			Compression: DefaultCompression,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error
// when path is empty.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decodeConfig(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate normalizes empty values to defaults and rejects unknown names.
func (c *Config) Validate() error {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log-format must be text or json, got %q", c.LogFormat)
	}
	return c.Scan.Validate()
}

// Validate checks the scan settings.
func (s *ScanConfig) Validate() error {
	if s.Format == "" {
		s.Format = DefaultFormat
	}
	if !slices.Contains(sink.Formats(), s.Format) {
		return fmt.Errorf("unknown output format %q (have %v)", s.Format, sink.Formats())
	}
	if _, err := s.limits(); err != nil {
		return err
	}
	if s.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", s.Limit)
	}
	return nil
}

// scanLimits holds the parsed string-valued scan settings.
type scanLimits struct {
	memory      int64
	io          int64
	compression codec.Compression
}

func (s *ScanConfig) limits() (scanLimits, error) {
	var (
		l   scanLimits
		err error
	)
	if l.compression, err = codec.ParseCompression(s.Compression); err != nil {
		return l, err
	}
	if l.memory, err = parseBytes(s.MemoryLimit); err != nil {
		return l, fmt.Errorf("memory-limit: %w", err)
	}
	if l.io, err = parseBytes(s.IOLimit); err != nil {
		return l, fmt.Errorf("io-limit: %w", err)
	}
	return l, nil
}

// parseBytes parses sizes like "512MiB" or "1g". Empty means 0.
func parseBytes(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return units.RAMInBytes(s)
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log-level: %w", err)
	}
	return lvl, nil
}
