// Package agecodec implements the EnvelopeCodec port with age files in ASCII
// armor. An envelope carries its own recipient stanza (scrypt salt and work
// factor, or an X25519 ephemeral share), header MAC and payload nonce, so it
// can be opened by any holder of the same key.
package agecodec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
)

const (
	// MaxEnvelopeSize bounds the armored text Open will parse.
	MaxEnvelopeSize = 64 << 10
	// maxPlaintextSize bounds the decrypted payload Open will buffer.
	maxPlaintextSize = 16 << 10

	// MinWorkFactor and MaxWorkFactor bound the scrypt log2(N) parameter.
	MinWorkFactor = 10
	MaxWorkFactor = 22
)

// Internal failure reasons. They are logged at debug level and never
// returned to callers.
const (
	reasonMalformed     = "malformed"
	reasonNoMatchingKey = "no_matching_key"
	reasonPayload       = "payload"
)

// Compile-time interface satisfaction check.
var _ driven.EnvelopeCodec = (*Codec)(nil)

// Codec seals to one recipient and opens with the matching identity.
type Codec struct {
	mode      string
	recipient age.Recipient
	identity  age.Identity
	logger    *slog.Logger
}

// NewPassphrase returns a Codec whose key is derived from passphrase with
// scrypt at the given work factor.
func NewPassphrase(passphrase string, workFactor int, logger *slog.Logger) (*Codec, error) {
	if passphrase == "" {
		return nil, errors.New("agecodec: passphrase is empty")
	}
	if workFactor < MinWorkFactor || workFactor > MaxWorkFactor {
		return nil, fmt.Errorf("agecodec: scrypt work factor %d outside [%d, %d]", workFactor, MinWorkFactor, MaxWorkFactor)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("agecodec: scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(workFactor)

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("agecodec: scrypt identity: %w", err)
	}
	identity.SetMaxWorkFactor(MaxWorkFactor)

	return &Codec{mode: "passphrase", recipient: recipient, identity: identity, logger: logger}, nil
}

// NewX25519 returns a Codec that seals to the identity's own recipient.
func NewX25519(identity *age.X25519Identity, logger *slog.Logger) *Codec {
	return &Codec{mode: "identity", recipient: identity.Recipient(), identity: identity, logger: logger}
}

// Mode reports "passphrase" or "identity".
func (c *Codec) Mode() string { return c.mode }

// Seal encrypts the credential into an armored age file.
func (c *Codec) Seal(credential model.Credential) (model.Envelope, error) {
	if credential.IsZero() {
		return "", fmt.Errorf("%w: empty credential", model.ErrEncryptionFailure)
	}

	var out bytes.Buffer
	armored := armor.NewWriter(&out)
	w, err := age.Encrypt(armored, c.recipient)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrEncryptionFailure, err)
	}

	plaintext := []byte(credential.Reveal())
	defer clear(plaintext)

	if _, err := w.Write(plaintext); err != nil {
		return "", fmt.Errorf("%w: write payload: %v", model.ErrEncryptionFailure, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: finalize payload: %v", model.ErrEncryptionFailure, err)
	}
	if err := armored.Close(); err != nil {
		return "", fmt.Errorf("%w: finalize armor: %v", model.ErrEncryptionFailure, err)
	}

	return model.Envelope(strings.TrimSpace(out.String())), nil
}

// Open authenticates and decrypts an armored envelope. Surrounding
// whitespace is ignored. Every failure is model.ErrDecryptionFailure.
func (c *Codec) Open(envelope model.Envelope) (model.Credential, error) {
	text := strings.TrimSpace(envelope.Text())
	if text == "" || len(text) > MaxEnvelopeSize {
		return "", c.reject(reasonMalformed, nil)
	}

	r, err := age.Decrypt(armor.NewReader(strings.NewReader(text+"\n")), c.identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return "", c.reject(reasonNoMatchingKey, err)
		}
		return "", c.reject(reasonMalformed, err)
	}

	plaintext, err := io.ReadAll(io.LimitReader(r, maxPlaintextSize+1))
	defer clear(plaintext)
	if err != nil {
		return "", c.reject(reasonPayload, err)
	}
	if len(plaintext) == 0 || len(plaintext) > maxPlaintextSize {
		return "", c.reject(reasonPayload, fmt.Errorf("plaintext size %d", len(plaintext)))
	}

	return model.Credential(plaintext), nil
}

func (c *Codec) reject(reason string, cause error) error {
	if c.logger != nil {
		c.logger.Debug("envelope rejected", "reason", reason, "mode", c.mode, "error", cause)
	}
	return model.ErrDecryptionFailure
}
