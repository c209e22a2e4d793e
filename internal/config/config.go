// Package config loads the salinity runtime configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/observability/log"
)

var (
	ErrInvalidLevel    = errors.New("config: invalid log level")
	ErrInvalidEncoding = errors.New("config: invalid log encoding")
	ErrInvalidFormat   = errors.New("config: invalid document format")
	ErrEmptyAddr       = errors.New("config: server address is empty")
	ErrEmptyStorage    = errors.New("config: storage path is empty")
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Components ComponentsConfig `yaml:"components"`
	Assets     AssetsConfig     `yaml:"assets"`
	Document   DocumentConfig   `yaml:"document"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Token, when set, must accompany every request as a bearer token or a
	// "token" query parameter.
	Token string `yaml:"token"`
}

type ComponentsConfig struct {
	// Definitions is a YAML file of component definitions. Empty means no
	// components beyond those registered in code.
	Definitions string `yaml:"definitions"`
}

type AssetsConfig struct {
	Files []string `yaml:"files"`
}

type DocumentConfig struct {
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Encoding: "console"},
		Storage: StorageConfig{Path: "salinity.db"},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Document: DocumentConfig{Format: string(document.FormatJSON)},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, c.Log.Encoding)
	}
	if _, err := document.ParseFormat(c.Document.Format); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Document.Format)
	}
	if c.Server.Addr == "" {
		return ErrEmptyAddr
	}
	if c.Storage.Path == "" {
		return ErrEmptyStorage
	}
	return nil
}

// LogOptions converts the log section for log.NewWithConfig.
func (c Config) LogOptions() log.Config {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Config{Level: level, Encoding: c.Log.Encoding}
}

// DocumentFormat returns the validated default document format.
func (c Config) DocumentFormat() document.Format {
	f, err := document.ParseFormat(c.Document.Format)
	if err != nil {
		return document.FormatJSON
	}
	return f
}
