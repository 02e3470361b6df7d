package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every CLIPSEAL_ env var that Load() reads.
var allConfigKeys = []string{
	"CLIPSEAL_CONFIG",
	"CLIPSEAL_LISTEN_ADDR",
	"CLIPSEAL_KEY_DIR",
	"CLIPSEAL_PASSPHRASE",
	"CLIPSEAL_SCRYPT_WORK_FACTOR",
	"CLIPSEAL_SLOTS",
	"CLIPSEAL_MAX_LENGTH",
	"CLIPSEAL_CLIPBOARD",
	"CLIPSEAL_IMPORT_RATE",
	"CLIPSEAL_IMPORT_BURST",
	"CLIPSEAL_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all CLIPSEAL_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clipseal.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.ListenAddr)
	assert.Equal(t, ".clipseal", filepath.Base(cfg.KeyDir))
	assert.Equal(t, 18, cfg.ScryptWorkFactor)
	assert.Equal(t, 5, cfg.Slots)
	assert.Equal(t, 4096, cfg.MaxLength)
	assert.Equal(t, "system", cfg.Clipboard)
	assert.Equal(t, 5.0, cfg.ImportRate)
	assert.Equal(t, 10, cfg.ImportBurst)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.HasPassphrase())
}

func TestLoad_Env(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CLIPSEAL_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("CLIPSEAL_KEY_DIR", "/tmp/keys")
	t.Setenv("CLIPSEAL_PASSPHRASE", "open sesame")
	t.Setenv("CLIPSEAL_SCRYPT_WORK_FACTOR", "12")
	t.Setenv("CLIPSEAL_SLOTS", "3")
	t.Setenv("CLIPSEAL_MAX_LENGTH", "0")
	t.Setenv("CLIPSEAL_CLIPBOARD", "Memory")
	t.Setenv("CLIPSEAL_IMPORT_RATE", "0.5")
	t.Setenv("CLIPSEAL_IMPORT_BURST", "2")
	t.Setenv("CLIPSEAL_LOG_LEVEL", "DEBUG")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/keys", cfg.KeyDir)
	assert.True(t, cfg.HasPassphrase())
	assert.Equal(t, 12, cfg.ScryptWorkFactor)
	assert.Equal(t, 3, cfg.Slots)
	assert.Equal(t, 0, cfg.MaxLength)
	assert.Equal(t, "memory", cfg.Clipboard)
	assert.Equal(t, 0.5, cfg.ImportRate)
	assert.Equal(t, 2, cfg.ImportBurst)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfigFile(t, `
listen_addr = "127.0.0.1:6000"
slots = 7
clipboard = "memory"
passphrase = "ignored"
`)
	t.Setenv("CLIPSEAL_SLOTS", "9")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6000", cfg.ListenAddr)
	assert.Equal(t, 9, cfg.Slots, "env wins over file")
	assert.Equal(t, "memory", cfg.Clipboard)
	assert.False(t, cfg.HasPassphrase(), "passphrase is never read from the file")
}

func TestLoad_FileFromEnv(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CLIPSEAL_CONFIG", writeConfigFile(t, `max_length = 128`))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 128, cfg.MaxLength)
}

func TestLoad_BadFile(t *testing.T) {
	isolateConfigEnv(t)

	_, err := Load(writeConfigFile(t, `slots = "many"`))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoad_InvalidInteger(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CLIPSEAL_SLOTS", "five")

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLIPSEAL_SLOTS")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"work factor too low", "CLIPSEAL_SCRYPT_WORK_FACTOR", "9", "scrypt work factor"},
		{"work factor too high", "CLIPSEAL_SCRYPT_WORK_FACTOR", "23", "scrypt work factor"},
		{"no slots", "CLIPSEAL_SLOTS", "0", "slots"},
		{"negative max length", "CLIPSEAL_MAX_LENGTH", "-1", "max length"},
		{"unknown clipboard", "CLIPSEAL_CLIPBOARD", "x11", "clipboard"},
		{"zero rate", "CLIPSEAL_IMPORT_RATE", "0", "import rate"},
		{"zero burst", "CLIPSEAL_IMPORT_BURST", "0", "import burst"},
		{"bad log level", "CLIPSEAL_LOG_LEVEL", "loud", "log level"},
		{"empty listen addr", "CLIPSEAL_LISTEN_ADDR", "", "listen address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
