package application

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- instantClock ---

// instantClock fires every pause immediately and records what was asked for.
type instantClock struct {
	mu     sync.Mutex
	now    time.Time
	pauses []time.Duration
}

func newInstantClock() *instantClock {
	return &instantClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *instantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *instantClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.pauses = append(c.pauses, d)
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *instantClock) Pauses() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.pauses...)
}

// blockingClock never fires, so only cancellation ends a pause.
type blockingClock struct{}

func (blockingClock) Now() time.Time                        { return time.Time{} }
func (blockingClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

// --- recordingClipboard ---

type recordingClipboard struct {
	mu       sync.Mutex
	writes   []string
	failFrom int // 1-based write index that starts failing; 0 never fails
}

func (c *recordingClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return "", nil
	}
	return c.writes[len(c.writes)-1], nil
}

func (c *recordingClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFrom > 0 && len(c.writes)+1 >= c.failFrom {
		return errors.New("clipboard owner went away")
	}
	c.writes = append(c.writes, text)
	return nil
}

func (c *recordingClipboard) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

// --- mockCodec ---

const mockEnvelopePrefix = "MOCK-ENVELOPE:"

// mockCodec reverses the credential behind a fixed marker. Open rejects
// anything without the marker.
type mockCodec struct {
	sealErr error
}

func (c *mockCodec) Seal(credential model.Credential) (model.Envelope, error) {
	if c.sealErr != nil {
		return "", c.sealErr
	}
	return model.Envelope(mockEnvelopePrefix + reverse(credential.Reveal())), nil
}

func (c *mockCodec) Open(envelope model.Envelope) (model.Credential, error) {
	body, ok := strings.CutPrefix(envelope.Text(), mockEnvelopePrefix)
	if !ok || body == "" {
		return "", model.ErrDecryptionFailure
	}
	return model.Credential(reverse(body)), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// --- mockStore ---

type mockStore struct {
	mu          sync.RWMutex
	credentials map[model.SlotID]model.Credential
	envelopes   map[model.SlotID]model.Envelope
}

func newMockStore() *mockStore {
	return &mockStore{
		credentials: make(map[model.SlotID]model.Credential),
		envelopes:   make(map[model.SlotID]model.Envelope),
	}
}

func (s *mockStore) PutCredential(slot model.SlotID, c model.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[slot] = c
}

func (s *mockStore) GetCredential(slot model.SlotID) (model.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[slot]
	return c, ok
}

func (s *mockStore) PutEnvelope(slot model.SlotID, e model.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes[slot] = e
}

func (s *mockStore) GetEnvelope(slot model.SlotID) (model.Envelope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.envelopes[slot]
	return e, ok
}

func (s *mockStore) ClearEnvelope(slot model.SlotID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.envelopes, slot)
}

func (s *mockStore) Status(slot model.SlotID) model.SlotStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, hasCredential := s.credentials[slot]
	_, hasEnvelope := s.envelopes[slot]
	return model.SlotStatus{HasCredential: hasCredential, HasEnvelope: hasEnvelope, CredentialLength: c.Len()}
}

func (s *mockStore) Close() error { return nil }
