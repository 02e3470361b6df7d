// Package config loads application configuration from an optional TOML file
// and environment variables. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Scrypt work factor bounds accepted for passphrase mode.
const (
	MinScryptWorkFactor = 10
	MaxScryptWorkFactor = 22
)

// Config holds the application configuration.
type Config struct {
	ListenAddr       string  `toml:"listen_addr"`
	KeyDir           string  `toml:"key_dir"`
	ScryptWorkFactor int     `toml:"scrypt_work_factor"`
	Slots            int     `toml:"slots"`
	MaxLength        int     `toml:"max_length"`
	Clipboard        string  `toml:"clipboard"`
	ImportRate       float64 `toml:"import_rate"`
	ImportBurst      int     `toml:"import_burst"`
	LogLevel         string  `toml:"log_level"`

	// Passphrase selects passphrase mode. It is read from the environment
	// only and never from the config file.
	Passphrase string `toml:"-"`
}

// HasPassphrase reports whether envelopes use a passphrase-derived key
// rather than the stored identity.
func (c *Config) HasPassphrase() bool {
	return c.Passphrase != ""
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	keyDir := ".clipseal"
	if home, err := os.UserHomeDir(); err == nil {
		keyDir = filepath.Join(home, ".clipseal")
	}
	return &Config{
		ListenAddr:       "127.0.0.1:5000",
		KeyDir:           keyDir,
		ScryptWorkFactor: 18,
		Slots:            5,
		MaxLength:        4096,
		Clipboard:        "system",
		ImportRate:       5,
		ImportBurst:      10,
		LogLevel:         "info",
	}
}

// Load builds a validated Config. The file at path (or CLIPSEAL_CONFIG when
// path is empty) is applied over the defaults when set, then environment
// variables:
// CLIPSEAL_LISTEN_ADDR (127.0.0.1:5000), CLIPSEAL_KEY_DIR (~/.clipseal),
// CLIPSEAL_PASSPHRASE (unset selects identity mode),
// CLIPSEAL_SCRYPT_WORK_FACTOR (18), CLIPSEAL_SLOTS (5),
// CLIPSEAL_MAX_LENGTH (4096, 0 disables), CLIPSEAL_CLIPBOARD (system),
// CLIPSEAL_IMPORT_RATE (5 per second), CLIPSEAL_IMPORT_BURST (10),
// CLIPSEAL_LOG_LEVEL (info).
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("CLIPSEAL_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("CLIPSEAL_LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := os.LookupEnv("CLIPSEAL_KEY_DIR"); ok {
		c.KeyDir = v
	}
	if v, ok := os.LookupEnv("CLIPSEAL_PASSPHRASE"); ok {
		c.Passphrase = v
	}
	if v, ok := os.LookupEnv("CLIPSEAL_CLIPBOARD"); ok {
		c.Clipboard = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv("CLIPSEAL_LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CLIPSEAL_SCRYPT_WORK_FACTOR", &c.ScryptWorkFactor},
		{"CLIPSEAL_SLOTS", &c.Slots},
		{"CLIPSEAL_MAX_LENGTH", &c.MaxLength},
		{"CLIPSEAL_IMPORT_BURST", &c.ImportBurst},
	}
	for _, field := range ints {
		v, ok := os.LookupEnv(field.key)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s has invalid integer %q: %w", field.key, v, err)
		}
		*field.dst = parsed
	}

	if v, ok := os.LookupEnv("CLIPSEAL_IMPORT_RATE"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("CLIPSEAL_IMPORT_RATE has invalid number %q: %w", v, err)
		}
		c.ImportRate = parsed
	}
	return nil
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if c.KeyDir == "" && !c.HasPassphrase() {
		errs = append(errs, errors.New("key directory must not be empty in identity mode"))
	}
	if c.ScryptWorkFactor < MinScryptWorkFactor || c.ScryptWorkFactor > MaxScryptWorkFactor {
		errs = append(errs, fmt.Errorf("scrypt work factor %d outside [%d, %d]",
			c.ScryptWorkFactor, MinScryptWorkFactor, MaxScryptWorkFactor))
	}
	if c.Slots < 1 {
		errs = append(errs, fmt.Errorf("slots must be at least 1, got %d", c.Slots))
	}
	if c.MaxLength < 0 {
		errs = append(errs, fmt.Errorf("max length must not be negative, got %d", c.MaxLength))
	}
	switch c.Clipboard {
	case "system", "memory":
	default:
		errs = append(errs, fmt.Errorf("clipboard must be system or memory, got %q", c.Clipboard))
	}
	if c.ImportRate <= 0 {
		errs = append(errs, fmt.Errorf("import rate must be positive, got %v", c.ImportRate))
	}
	if c.ImportBurst < 1 {
		errs = append(errs, fmt.Errorf("import burst must be at least 1, got %d", c.ImportBurst))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level must be debug, info, warn or error, got %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
