package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/corey/rube/internal/adapters/digest"
	"github.com/corey/rube/internal/domain/cipher"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// DefaultTargets are the SHA-256 digests of the ten trigrams of the hidden
// message.
var DefaultTargets = []string{
	"148b21617e48c6f456634cba6e3d7bbafeb70fe58cc60202d957a97d5051e4d4",
	"16125286d427ff5bc259e9a610f655ed842751d305a248ed17d6bbdde188b32d",
	"52c40b80aad6933ae8e2ee36db00cc57685832d6f2fb364252278f84c11c3acd",
	"55e55555bda8f3c12c5e3519c4ebac8c954064df16b06bfc2dbcb97c75a7fde4",
	"87a10abd1154f862c4c43a32fb73ba4933a229a7e20398cb6bb2d7cc5ec5ca73",
	"b4d1e7ae27690a2232ed40d03b0ed208f6936d7e9fd89529075042a13fce7222",
	"b9206b99a1f8399d486330256d636b0002bd26a8272cde4714e44e679255450f",
	"c80c8d50188f8d00db226979d98bde5c181e1f152e7b63ef8329b82553d69b30",
	"d01fc93f9400615a84e4db6ef2a584f36bd9070c62d80d853b9ac9f1f102aa6f",
	"d0a407921672a57e599416f08ccf8e876c73b2a3486101ffe3a6af9acd8a9b9e",
}

// Config is the resolved run configuration: compiled defaults, overlaid by
// .rube/config.yaml, overlaid by CLI flags.
type Config struct {
	NGram          int      `yaml:"ngram"`
	Algorithm      string   `yaml:"algorithm"`
	Targets        []string `yaml:"targets"`
	SourceURL      string   `yaml:"source_url"`
	PunctuationURL string   `yaml:"punctuation_url"`
	Alphabet       string   `yaml:"alphabet,omitempty"`    // skips harvesting when set
	Punctuation    string   `yaml:"punctuation,omitempty"` // skips the punctuation fetch when set
	Transform      string   `yaml:"transform"`
	Cache          bool     `yaml:"cache"`

	Search   SearchConfig   `yaml:"search"`
	Assemble AssembleConfig `yaml:"assemble"`
}

type SearchConfig struct {
	Workers     int           `yaml:"workers"`
	MaxAttempts uint64        `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
	Seed        uint64        `yaml:"seed"` // 0 = random
}

type AssembleConfig struct {
	Strict bool `yaml:"strict"`
}

// DefaultConfig returns the compiled defaults.
func DefaultConfig() Config {
	return Config{
		NGram:          3,
		Algorithm:      digest.Default,
		Targets:        append([]string(nil), DefaultTargets...),
		SourceURL:      "https://2020.pycon.org.au/program/sun/",
		PunctuationURL: "https://en.wikipedia.org/wiki/Exclamation_mark",
		Transform:      "rot13",
		Cache:          true,
		Search: SearchConfig{
			Workers: 1,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// WriteConfig writes cfg as YAML, creating or truncating path.
func WriteConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the pipeline depends on.
func (c Config) Validate() error {
	if c.NGram < 2 {
		return fmt.Errorf("%w: ngram must be at least 2, got %d", ErrInvalidConfig, c.NGram)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidConfig)
	}
	if _, err := digest.Lookup(c.Algorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := cipher.Lookup(c.Transform); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Alphabet == "" && c.SourceURL == "" {
		return fmt.Errorf("%w: need alphabet or source_url", ErrInvalidConfig)
	}
	if c.Alphabet == "" && c.Punctuation == "" && c.PunctuationURL == "" {
		return fmt.Errorf("%w: need punctuation or punctuation_url", ErrInvalidConfig)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("%w: search.workers must be at least 1", ErrInvalidConfig)
	}
	if c.Search.Timeout < 0 {
		return fmt.Errorf("%w: search.timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
