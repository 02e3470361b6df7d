package memstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

func TestStore_EmptySlot(t *testing.T) {
	s := New()

	_, ok := s.GetCredential(0)
	assert.False(t, ok)
	_, ok = s.GetEnvelope(0)
	assert.False(t, ok)
	assert.Equal(t, model.SlotStatus{}, s.Status(0))
}

func TestStore_CredentialAndEnvelopeAreIndependent(t *testing.T) {
	s := New()

	s.PutCredential(1, "abc!@#")
	s.PutEnvelope(1, "ENVELOPE")

	c, ok := s.GetCredential(1)
	require.True(t, ok)
	assert.Equal(t, "abc!@#", c.Reveal())

	s.PutCredential(1, "replaced")
	e, ok := s.GetEnvelope(1)
	require.True(t, ok)
	assert.Equal(t, model.Envelope("ENVELOPE"), e)

	s.ClearEnvelope(1)
	_, ok = s.GetEnvelope(1)
	assert.False(t, ok)

	c, ok = s.GetCredential(1)
	require.True(t, ok)
	assert.Equal(t, "replaced", c.Reveal())
}

func TestStore_Status(t *testing.T) {
	s := New()
	s.PutCredential(2, "12345678")

	assert.Equal(t, model.SlotStatus{HasCredential: true, CredentialLength: 8}, s.Status(2))

	s.PutEnvelope(2, "sealed")
	assert.Equal(t, model.SlotStateSealed, s.Status(2).State())
	assert.Equal(t, model.SlotStatus{}, s.Status(3), "slots are independent")
}

func TestStore_EmptyValuesClear(t *testing.T) {
	s := New()
	s.PutCredential(0, "x")
	s.PutEnvelope(0, "y")

	s.PutCredential(0, "")
	s.PutEnvelope(0, "")

	assert.Equal(t, model.SlotStatus{}, s.Status(0))
}

func TestStore_CloseWipes(t *testing.T) {
	s := New()
	s.PutCredential(0, "secret")
	s.PutEnvelope(0, "env")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, ok := s.GetCredential(0)
	assert.False(t, ok)

	s.PutCredential(0, "after close")
	_, ok = s.GetCredential(0)
	assert.False(t, ok)
}

func TestStore_ConcurrentReadersSeeWholeValues(t *testing.T) {
	s := New()
	a := model.Credential("aaaaaaaaaaaaaaaa")
	b := model.Credential("bbbbbbbbbbbbbbbbbbbbbbbb")
	s.PutCredential(0, a)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 500 {
			if i%2 == 0 {
				s.PutCredential(0, a)
			} else {
				s.PutCredential(0, b)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 500 {
			c, ok := s.GetCredential(0)
			assert.True(t, ok)
			assert.True(t, c == a || c == b, "torn read")
		}
	}()
	wg.Wait()
}
