// Package driven defines secondary port interfaces for external adapters.
package driven

import "github.com/ericfisherdev/clipseal/internal/domain/model"

// CredentialStore defines the driven port for process-scoped slot storage.
// Each slot holds at most one Credential and at most one Envelope; setting
// one never clears the other. Every Put replaces the whole value atomically,
// so reads need no coordination with writers. The store never logs, persists
// or transmits its contents, and provides no cross-call locking; callers that
// need read-modify-write on a slot serialize it themselves.
type CredentialStore interface {
	// PutCredential stores or replaces the credential for the slot.
	PutCredential(slot model.SlotID, credential model.Credential)

	// GetCredential returns the slot's credential and whether one is present.
	GetCredential(slot model.SlotID) (model.Credential, bool)

	// PutEnvelope stores or replaces the envelope for the slot.
	PutEnvelope(slot model.SlotID, envelope model.Envelope)

	// GetEnvelope returns the slot's envelope and whether one is present.
	GetEnvelope(slot model.SlotID) (model.Envelope, bool)

	// ClearEnvelope removes the slot's envelope, if any.
	ClearEnvelope(slot model.SlotID)

	// Status reports what the slot holds without exposing plaintext.
	Status(slot model.SlotID) model.SlotStatus

	// Close wipes every held credential. The store is unusable afterwards.
	Close() error
}
