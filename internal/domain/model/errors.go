package model

import (
	"errors"
	"fmt"
)

// The complete set of failures a workflow operation can report. Every error
// returned by the application layer wraps exactly one of these.
var (
	ErrInvalidLength       = errors.New("invalid length: must be at least 1")
	ErrNothingToEncrypt    = errors.New("nothing to encrypt: generate a credential first")
	ErrNothingToExport     = errors.New("nothing to export: encrypt the credential first")
	ErrEmptyInput          = errors.New("empty input: no envelope provided")
	ErrEncryptionFailure   = errors.New("encryption failed")
	ErrDecryptionFailure   = errors.New("decryption failed: input is not a valid envelope for this key")
	ErrSanitizationFailure = errors.New("clipboard sanitization failed")
)

// Stage names the pipeline step in which an operation failed.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageSeal     Stage = "seal"
	StageExport   Stage = "export"
	StageOpen     Stage = "open"
	StageSanitize Stage = "sanitize"
)

// OpError attaches the operation, slot and stage to a taxonomy error. The
// message never contains credential material.
type OpError struct {
	Op    string
	Slot  SlotID
	Stage Stage
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s slot %d (%s): %v", e.Op, e.Slot, e.Stage, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidLength, "invalid_length"},
	{ErrNothingToEncrypt, "nothing_to_encrypt"},
	{ErrNothingToExport, "nothing_to_export"},
	{ErrEmptyInput, "empty_input"},
	{ErrEncryptionFailure, "encryption_failure"},
	{ErrDecryptionFailure, "decryption_failure"},
	{ErrSanitizationFailure, "sanitization_failure"},
}

// ErrorCode returns the stable snake_case code of the taxonomy error wrapped
// by err, or "" when err is not part of the taxonomy.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}
