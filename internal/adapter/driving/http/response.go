package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeOpError maps a workflow error onto its status code and error body.
func writeOpError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: "internal server error", Code: model.ErrorCode(err)}

	var opErr *model.OpError
	if errors.As(err, &opErr) {
		slot := int(opErr.Slot)
		resp.Slot = &slot
		resp.Stage = string(opErr.Stage)
		resp.Error = opErr.Err.Error()
	}
	status := statusFor(err)
	switch {
	case resp.Code == "":
		resp.Error = "internal server error"
	case errors.Is(err, model.ErrEncryptionFailure):
		resp.Error = model.ErrEncryptionFailure.Error()
	case errors.Is(err, model.ErrSanitizationFailure):
		resp.Error = model.ErrSanitizationFailure.Error()
	}

	writeJSON(w, status, resp)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidLength),
		errors.Is(err, model.ErrNothingToEncrypt),
		errors.Is(err, model.ErrNothingToExport),
		errors.Is(err, model.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDecryptionFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Slot  *int   `json:"slot,omitempty"`
	Stage string `json:"stage,omitempty"`
}

// CreateCredentialRequest is the JSON body for the create credential endpoint.
type CreateCredentialRequest struct {
	Length *int `json:"length"`
}

// ImportRequest is the JSON body for the import endpoint.
type ImportRequest struct {
	Data string `json:"data"`
}

// CredentialResponse describes a freshly created credential.
type CredentialResponse struct {
	Slot   int    `json:"slot"`
	Length int    `json:"length"`
	Masked string `json:"masked"`
}

// EncryptResponse summarizes a sealed envelope.
type EncryptResponse struct {
	Slot    int    `json:"slot"`
	Preview string `json:"preview"`
	Length  int    `json:"length"`
}

// EnvelopeResponse carries the armored envelope for the clipboard.
type EnvelopeResponse struct {
	Slot int    `json:"slot"`
	Data string `json:"data"`
}

// ImportResponse describes the credential recovered from an envelope.
type ImportResponse struct {
	Slot    int    `json:"slot"`
	Length  int    `json:"length"`
	Masked  string `json:"masked"`
	Message string `json:"message"`
}

// StatusResponse is the JSON representation of a slot's status.
type StatusResponse struct {
	HasCredential    bool   `json:"has_credential"`
	HasEnvelope      bool   `json:"has_envelope"`
	CredentialLength int    `json:"credential_length"`
	State            string `json:"state"`
}

// SanitizeResponse carries decoys for a client-side clipboard.
type SanitizeResponse struct {
	SanitizedStrings []string `json:"sanitized_strings"`
	Message          string   `json:"message"`
}

// SanitizerResponse reports the most recent server-side sanitization run.
type SanitizerResponse struct {
	Ran        bool   `json:"ran"`
	Trigger    string `json:"trigger,omitempty"`
	Writes     int    `json:"writes"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toStatusResponse(s model.SlotStatus) StatusResponse {
	return StatusResponse{
		HasCredential:    s.HasCredential,
		HasEnvelope:      s.HasEnvelope,
		CredentialLength: s.CredentialLength,
		State:            string(s.State()),
	}
}

func toSanitizerResponse(report model.SanitizationReport, ran bool) SanitizerResponse {
	if !ran {
		return SanitizerResponse{}
	}
	resp := SanitizerResponse{
		Ran:        true,
		Trigger:    report.Trigger,
		Writes:     report.Writes,
		OK:         report.OK(),
		StartedAt:  report.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt: report.FinishedAt.UTC().Format(time.RFC3339Nano),
		DurationMS: report.Duration().Milliseconds(),
	}
	if report.Err != nil {
		resp.Error = model.ErrSanitizationFailure.Error()
	}
	return resp
}

// Legacy single-slot response bodies. Field names match the browser
// extension's expectations.

type legacyGenerateResponse struct {
	Success bool   `json:"success"`
	Length  int    `json:"length"`
	Masked  string `json:"masked"`
}

type legacyEncryptResponse struct {
	Success bool   `json:"success"`
	Preview string `json:"preview"`
	Length  int    `json:"length"`
}

type legacyEnvelopeResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Message string `json:"message,omitempty"`
}

type legacyImportResponse struct {
	Success bool   `json:"success"`
	Length  int    `json:"length"`
	Masked  string `json:"masked"`
	Message string `json:"message"`
}

type legacySanitizeResponse struct {
	Success          bool     `json:"success"`
	SanitizedStrings []string `json:"sanitized_strings"`
	Message          string   `json:"message"`
}

type legacyStatusResponse struct {
	HasPassword    bool `json:"has_password"`
	HasEncrypted   bool `json:"has_encrypted"`
	PasswordLength int  `json:"password_length"`
}
