package application

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

// Character classes a generated credential draws from.
const (
	UpperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowerChars  = "abcdefghijklmnopqrstuvwxyz"
	DigitChars  = "0123456789"
	SymbolChars = "!@#"

	CredentialAlphabet = UpperChars + LowerChars + DigitChars + SymbolChars
)

// DefaultMaxLength bounds a single generated credential.
const DefaultMaxLength = 4096

// Generator produces random credentials from CredentialAlphabet. Every
// character is an independent uniform draw, so class coverage is
// probabilistic rather than enforced.
type Generator struct {
	source    io.Reader
	maxLength int
}

// NewGenerator creates a Generator reading from source, or from crypto/rand
// when source is nil. maxLength caps the accepted length; 0 disables the cap.
func NewGenerator(source io.Reader, maxLength int) *Generator {
	if source == nil {
		source = rand.Reader
	}
	return &Generator{source: source, maxLength: maxLength}
}

// Generate returns a credential of exactly length characters. It fails with
// model.ErrInvalidLength when length < 1 or exceeds the configured cap, and
// with model.ErrEncryptionFailure when the random source cannot be read.
func (g *Generator) Generate(length int) (model.Credential, error) {
	if length < 1 {
		return "", model.ErrInvalidLength
	}
	if g.maxLength > 0 && length > g.maxLength {
		return "", fmt.Errorf("%w (maximum %d)", model.ErrInvalidLength, g.maxLength)
	}

	value, err := randomString(g.source, CredentialAlphabet, length)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrEncryptionFailure, err)
	}
	return model.Credential(value), nil
}
