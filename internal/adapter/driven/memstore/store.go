// Package memstore is the process-scoped CredentialStore. Nothing it holds
// is ever written to disk; plaintext lives in secret.Buffer memory and is
// zeroed when replaced or when the store is closed.
package memstore

import (
	"sync"
	"unicode/utf8"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
	"github.com/ericfisherdev/clipseal/internal/secret"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*Store)(nil)

type entry struct {
	credential *secret.Buffer
	envelope   model.Envelope
}

// Store keeps one entry per slot, created on first write.
type Store struct {
	mu     sync.RWMutex
	slots  map[model.SlotID]*entry
	closed bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{slots: make(map[model.SlotID]*entry)}
}

// PutCredential stores the credential, wiping any previous one. An empty
// credential clears the slot's credential.
func (s *Store) PutCredential(slot model.SlotID, credential model.Credential) {
	var buf *secret.Buffer
	if !credential.IsZero() {
		// Only fails for empty input.
		buf, _ = secret.NewFromString(credential.Reveal())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		if buf != nil {
			buf.Close()
		}
		return
	}
	e := s.entry(slot)
	if e.credential != nil {
		e.credential.Close()
	}
	e.credential = buf
}

// GetCredential returns a copy of the slot's credential.
func (s *Store) GetCredential(slot model.SlotID) (model.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.slots[slot]
	if !ok || e.credential == nil {
		return "", false
	}
	return model.Credential(e.credential.String()), true
}

// PutEnvelope stores the envelope. An empty envelope clears it.
func (s *Store) PutEnvelope(slot model.SlotID, envelope model.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.entry(slot).envelope = envelope
}

// GetEnvelope returns the slot's envelope.
func (s *Store) GetEnvelope(slot model.SlotID) (model.Envelope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.slots[slot]
	if !ok || e.envelope.IsZero() {
		return "", false
	}
	return e.envelope, true
}

// ClearEnvelope removes the slot's envelope.
func (s *Store) ClearEnvelope(slot model.SlotID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.slots[slot]; ok {
		e.envelope = ""
	}
}

// Status reports the slot's contents without copying plaintext.
func (s *Store) Status(slot model.SlotID) model.SlotStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.slots[slot]
	if !ok {
		return model.SlotStatus{}
	}
	status := model.SlotStatus{HasEnvelope: !e.envelope.IsZero()}
	if e.credential != nil {
		status.HasCredential = true
		status.CredentialLength = utf8.RuneCount(e.credential.Bytes())
	}
	return status
}

// Close wipes every credential. Later writes are ignored and reads report
// empty slots.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for slot, e := range s.slots {
		if e.credential != nil {
			if err := e.credential.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(s.slots, slot)
	}
	return firstErr
}

func (s *Store) entry(slot model.SlotID) *entry {
	e, ok := s.slots[slot]
	if !ok {
		e = &entry{}
		s.slots[slot] = e
	}
	return e
}
