package model

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// PreviewLength is the number of leading characters shown by Envelope.Preview.
const PreviewLength = 50

// Envelope is the ASCII-armored encrypted form of exactly one Credential.
// It embeds everything needed to decrypt it except the key.
type Envelope string

// Text returns the raw armored text.
func (e Envelope) Text() string {
	return string(e)
}

// Len returns the byte length of the armored text.
func (e Envelope) Len() int {
	return len(e)
}

// IsZero reports whether the envelope is empty.
func (e Envelope) IsZero() bool {
	return e == ""
}

// Preview returns the first PreviewLength characters followed by "..." when
// the envelope is longer than that.
func (e Envelope) Preview() string {
	if len(e) > PreviewLength {
		return string(e[:PreviewLength]) + "..."
	}
	return string(e)
}

// Fingerprint returns a short, non-secret identifier for the envelope: the
// first 8 bytes of its BLAKE3-256 digest, hex encoded. Empty envelopes have
// an empty fingerprint.
func (e Envelope) Fingerprint() string {
	if e == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(e))
	return hex.EncodeToString(sum[:8])
}
