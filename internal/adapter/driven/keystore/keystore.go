// Package keystore persists the X25519 identity used by identity-mode
// envelopes. The identity lives in a private directory as a standard age
// identity file, so age-compatible tools can open exported envelopes.
package keystore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"

	"github.com/ericfisherdev/clipseal/internal/secret"
)

const (
	// IdentityFile is the identity's file name inside the key directory.
	IdentityFile = "identity.txt"

	dirMode  fs.FileMode = 0o700
	fileMode fs.FileMode = 0o600
)

// ErrInsecurePermissions is returned when the identity file can be read by
// anyone other than its owner.
var ErrInsecurePermissions = errors.New("keystore: identity file is accessible to group or other")

// Store manages the identity file under Dir.
type Store struct {
	Dir    string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store rooted at dir.
func New(dir string, logger *slog.Logger) *Store {
	return &Store{Dir: dir, logger: logger, now: time.Now}
}

// Path returns the identity file's full path.
func (s *Store) Path() string {
	return filepath.Join(s.Dir, IdentityFile)
}

// LoadOrCreate returns the stored identity, generating and persisting one on
// first use. The directory is created with mode 0700, and an existing
// directory with wider permissions is tightened.
func (s *Store) LoadOrCreate() (*age.X25519Identity, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	identity, err := s.load()
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	identity, err = s.create()
	if errors.Is(err, fs.ErrExist) {
		// Another process created it between load and create.
		return s.load()
	}
	return identity, err
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.Dir, dirMode); err != nil {
		return fmt.Errorf("keystore: create directory: %w", err)
	}

	info, err := os.Stat(s.Dir)
	if err != nil {
		return fmt.Errorf("keystore: stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("keystore: %s is not a directory", s.Dir)
	}
	if info.Mode().Perm() != dirMode {
		if err := os.Chmod(s.Dir, dirMode); err != nil {
			return fmt.Errorf("keystore: tighten directory permissions: %w", err)
		}
		s.logger.Warn("tightened key directory permissions", "dir", s.Dir, "was", info.Mode().Perm().String())
	}
	return nil
}

func (s *Store) load() (*age.X25519Identity, error) {
	path := s.Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode().Perm()&0o077 != 0 {
		return nil, fmt.Errorf("%w: %s has mode %s", ErrInsecurePermissions, path, info.Mode().Perm())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keystore: read identity: %w", err)
	}
	buf, err := secret.NewFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("keystore: identity file %s is empty", path)
	}
	defer buf.Close()

	identities, err := age.ParseIdentities(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("keystore: parse identity file %s: %w", path, err)
	}
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			s.logger.Debug("loaded identity", "path", path, "recipient", x.Recipient().String())
			return x, nil
		}
	}
	return nil, fmt.Errorf("keystore: %s contains no X25519 identity", path)
}

func (s *Store) create() (*age.X25519Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("keystore: generate identity: %w", err)
	}

	content := fmt.Sprintf("# created: %s\n# public key: %s\n%s\n",
		s.now().UTC().Format(time.RFC3339),
		identity.Recipient().String(),
		identity.String(),
	)
	buf, err := secret.NewFromString(content)
	if err != nil {
		return nil, fmt.Errorf("keystore: protect identity: %w", err)
	}
	defer buf.Close()

	path := s.Path()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("keystore: write identity: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("keystore: sync identity: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("keystore: close identity: %w", err)
	}

	s.logger.Info("created identity", "path", path, "recipient", identity.Recipient().String())
	return identity, nil
}
