// Package application contains use-case orchestration services.
package application

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
	"github.com/ericfisherdev/clipseal/internal/metrics"
)

// Operation names used in errors, logs and metrics.
const (
	OpCreateCredential = "create_credential"
	OpEncrypt          = "encrypt"
	OpExport           = "export"
	OpImport           = "import"
	OpSanitize         = "sanitize"
)

// WorkflowService sequences generation, sealing, export, import and
// clipboard sanitization per slot. It is the only component aware of the
// generator, codec, store and sanitizer.
//
// Mutations of one slot are serialized; status reads and exports take no
// lock. Plaintext never leaves this service through a return value: callers
// receive slot status and envelopes only.
type WorkflowService struct {
	generator *Generator
	codec     driven.EnvelopeCodec
	store     driven.CredentialStore
	sanitizer *Sanitizer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	locks     slotLocks
}

// NewWorkflowService creates a WorkflowService with all required dependencies.
// generator, codec, store and sanitizer must be non-nil; m may be nil.
func NewWorkflowService(
	generator *Generator,
	codec driven.EnvelopeCodec,
	store driven.CredentialStore,
	sanitizer *Sanitizer,
	m *metrics.Metrics,
	logger *slog.Logger,
) *WorkflowService {
	if generator == nil || codec == nil || store == nil || sanitizer == nil {
		panic("application: NewWorkflowService requires a generator, codec, store and sanitizer")
	}
	return &WorkflowService{
		generator: generator,
		codec:     codec,
		store:     store,
		sanitizer: sanitizer,
		metrics:   m,
		logger:    logger,
	}
}

// CreateCredential generates a credential of the given length into the slot
// and drops the slot's envelope, which no longer matches the new plaintext.
func (s *WorkflowService) CreateCredential(slot model.SlotID, length int) (model.SlotStatus, error) {
	credential, err := s.generator.Generate(length)
	if err != nil {
		return model.SlotStatus{}, s.fail(OpCreateCredential, slot, model.StageGenerate, err)
	}

	unlock := s.locks.lock(slot)
	s.store.PutCredential(slot, credential)
	s.store.ClearEnvelope(slot)
	unlock()

	s.succeed(OpCreateCredential, slot, "length", credential.Len())
	return s.store.Status(slot), nil
}

// Encrypt seals the slot's credential and stores the resulting envelope.
func (s *WorkflowService) Encrypt(slot model.SlotID) (model.Envelope, error) {
	unlock := s.locks.lock(slot)
	defer unlock()

	credential, ok := s.store.GetCredential(slot)
	if !ok {
		return "", s.fail(OpEncrypt, slot, model.StageSeal, model.ErrNothingToEncrypt)
	}

	envelope, err := s.codec.Seal(credential)
	if err != nil {
		if !errors.Is(err, model.ErrEncryptionFailure) {
			err = fmt.Errorf("%w: %v", model.ErrEncryptionFailure, err)
		}
		return "", s.fail(OpEncrypt, slot, model.StageSeal, err)
	}
	s.store.PutEnvelope(slot, envelope)

	s.succeed(OpEncrypt, slot, "envelope", envelope.Fingerprint())
	return envelope, nil
}

// ExportForClipboard returns the slot's envelope for the caller to place on
// the clipboard. It does not modify the slot.
func (s *WorkflowService) ExportForClipboard(slot model.SlotID) (model.Envelope, error) {
	envelope, ok := s.store.GetEnvelope(slot)
	if !ok {
		return "", s.fail(OpExport, slot, model.StageExport, model.ErrNothingToExport)
	}

	s.succeed(OpExport, slot, "envelope", envelope.Fingerprint())
	return envelope, nil
}

// ImportFromClipboard opens envelope text read from the clipboard into the
// slot, replacing its credential and envelope, then schedules clipboard
// sanitization without waiting for it. On failure the slot is unchanged and
// no sanitization runs.
func (s *WorkflowService) ImportFromClipboard(slot model.SlotID, text string) (model.SlotStatus, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.SlotStatus{}, s.fail(OpImport, slot, model.StageOpen, model.ErrEmptyInput)
	}

	envelope := model.Envelope(text)
	credential, err := s.codec.Open(envelope)
	if err != nil {
		// The cause is dropped: malformed input and a wrong key look the same.
		return model.SlotStatus{}, s.fail(OpImport, slot, model.StageOpen, model.ErrDecryptionFailure)
	}

	unlock := s.locks.lock(slot)
	s.store.PutCredential(slot, credential)
	s.store.PutEnvelope(slot, envelope)
	status := s.store.Status(slot)
	unlock()

	s.succeed(OpImport, slot, "envelope", envelope.Fingerprint(), "length", status.CredentialLength)

	s.sanitizer.Trigger(OpImport + " slot " + slot.String())
	return status, nil
}

// Status reports the slot's contents.
func (s *WorkflowService) Status(slot model.SlotID) model.SlotStatus {
	return s.store.Status(slot)
}

// Inspect returns the slot's status and envelope for display. Unlike
// ExportForClipboard it is not an operation: nothing is logged or counted.
func (s *WorkflowService) Inspect(slot model.SlotID) (model.SlotStatus, model.Envelope) {
	envelope, _ := s.store.GetEnvelope(slot)
	return s.store.Status(slot), envelope
}

// SanitizeNow returns a fresh set of decoys for a front end to write to a
// clipboard it controls.
func (s *WorkflowService) SanitizeNow() ([]string, error) {
	decoys, err := s.sanitizer.Decoys()
	if err != nil {
		s.metrics.ObserveOperation(OpSanitize, err)
		s.logger.Warn("decoy generation failed", "op", OpSanitize, "code", model.ErrorCode(err))
		return nil, err
	}
	s.metrics.ObserveOperation(OpSanitize, nil)
	return decoys, nil
}

// SanitizeClipboard schedules a sanitization run on the configured clipboard
// channel and returns immediately.
func (s *WorkflowService) SanitizeClipboard(reason string) {
	s.sanitizer.Trigger(reason)
	s.metrics.ObserveOperation(OpSanitize, nil)
}

// LastSanitization returns the outcome of the most recent sanitization run.
func (s *WorkflowService) LastSanitization() (model.SanitizationReport, bool) {
	return s.sanitizer.LastReport()
}

func (s *WorkflowService) succeed(op string, slot model.SlotID, attrs ...any) {
	s.metrics.ObserveOperation(op, nil)
	s.logger.Info("workflow operation completed", append([]any{"op", op, "slot", int(slot)}, attrs...)...)
}

func (s *WorkflowService) fail(op string, slot model.SlotID, stage model.Stage, err error) error {
	opErr := &model.OpError{Op: op, Slot: slot, Stage: stage, Err: err}
	s.metrics.ObserveOperation(op, opErr)
	s.logger.Warn("workflow operation failed",
		"op", op,
		"slot", int(slot),
		"stage", stage,
		"code", model.ErrorCode(err),
	)
	return opErr
}
