package application

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerator_ExactLengthAndAlphabet(t *testing.T) {
	g := NewGenerator(nil, DefaultMaxLength)

	for _, length := range []int{1, 2, 16, 64, 255, 1000} {
		c, err := g.Generate(length)
		require.NoError(t, err)
		assert.Equal(t, length, c.Len())
		for _, r := range c.Reveal() {
			assert.True(t, strings.ContainsRune(CredentialAlphabet, r), "unexpected character %q", r)
		}
	}
}

func TestGenerator_InvalidLength(t *testing.T) {
	g := NewGenerator(nil, DefaultMaxLength)

	for _, length := range []int{0, -1, -100} {
		c, err := g.Generate(length)
		require.ErrorIs(t, err, model.ErrInvalidLength)
		assert.True(t, c.IsZero())
	}
}

func TestGenerator_MaxLength(t *testing.T) {
	g := NewGenerator(nil, 32)

	_, err := g.Generate(32)
	require.NoError(t, err)

	_, err = g.Generate(33)
	require.ErrorIs(t, err, model.ErrInvalidLength)
	assert.Contains(t, err.Error(), "maximum 32")
}

func TestGenerator_NoCapWhenMaxLengthZero(t *testing.T) {
	g := NewGenerator(nil, 0)

	c, err := g.Generate(DefaultMaxLength + 1)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxLength+1, c.Len())
}

func TestGenerator_CoversEveryClassAtLength(t *testing.T) {
	g := NewGenerator(nil, DefaultMaxLength)

	c, err := g.Generate(2000)
	require.NoError(t, err)

	value := c.Reveal()
	for _, class := range []string{UpperChars, LowerChars, DigitChars, SymbolChars} {
		assert.True(t, strings.ContainsAny(value, class), "no character from %q", class)
	}
}

func TestGenerator_IndependentDraws(t *testing.T) {
	g := NewGenerator(nil, DefaultMaxLength)

	a, err := g.Generate(32)
	require.NoError(t, err)
	b, err := g.Generate(32)
	require.NoError(t, err)

	assert.NotEqual(t, a.Reveal(), b.Reveal())
}

func TestGenerator_DeterministicWithSeededSource(t *testing.T) {
	a, err := NewGenerator(rand.New(rand.NewSource(7)), 0).Generate(40)
	require.NoError(t, err)
	b, err := NewGenerator(rand.New(rand.NewSource(7)), 0).Generate(40)
	require.NoError(t, err)

	assert.Equal(t, a.Reveal(), b.Reveal())
}

func TestGenerator_SourceFailureIsAnError(t *testing.T) {
	g := NewGenerator(failingReader{}, 0)

	var (
		c   model.Credential
		err error
	)
	require.NotPanics(t, func() { c, err = g.Generate(8) })
	require.ErrorIs(t, err, model.ErrEncryptionFailure)
	assert.NotContains(t, err.Error(), "invalid length")
	assert.True(t, c.IsZero())
}

func TestRandomString_Uniform(t *testing.T) {
	const n = 65000
	value, err := randomString(rand.New(rand.NewSource(1)), CredentialAlphabet, n)
	require.NoError(t, err)
	require.Len(t, value, n)

	counts := make(map[rune]int)
	for _, r := range value {
		counts[r]++
	}
	require.Len(t, counts, len(CredentialAlphabet))

	expected := float64(n) / float64(len(CredentialAlphabet))
	for r, got := range counts {
		assert.InDelta(t, expected, float64(got), expected*0.2, "character %q", r)
	}
}
