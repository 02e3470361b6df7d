package model

import (
	"log/slog"
	"strings"
)

// Credential is a generated or decrypted plaintext secret. Its String and
// LogValue forms are masked, so formatting a Credential with %v or passing it
// to slog never prints the plaintext. Use Reveal at the points that need it.
type Credential string

// Len returns the number of characters in the credential.
func (c Credential) Len() int {
	return len([]rune(string(c)))
}

// IsZero reports whether the credential is empty.
func (c Credential) IsZero() bool {
	return c == ""
}

// Masked returns one '*' per character.
func (c Credential) Masked() string {
	return Mask(c.Len())
}

// Reveal returns the plaintext.
func (c Credential) Reveal() string {
	return string(c)
}

// String implements fmt.Stringer with the masked form.
func (c Credential) String() string {
	return c.Masked()
}

// LogValue implements slog.LogValuer with the masked form.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.Masked())
}

// Mask returns a display string of n asterisks.
func Mask(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("*", n)
}
