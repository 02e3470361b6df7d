// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/clipseal/internal/application"
	"github.com/ericfisherdev/clipseal/internal/domain/model"
	"github.com/ericfisherdev/clipseal/internal/metrics"
)

const (
	// maxBodyBytes bounds every request body.
	maxBodyBytes = 128 << 10

	// defaultLength is used when a create request omits length.
	defaultLength = 16

	importMessage   = "Credential decrypted. Clipboard being sanitized..."
	sanitizeMessage = "Clipboard sanitized with 5 random 264-character strings"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	workflow      *application.WorkflowService
	slots         int
	importLimiter *rate.Limiter
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. Slot path
// values must lie in [0, slots). A nil limiter disables import throttling.
func NewHandler(
	workflow *application.WorkflowService,
	slots int,
	importLimiter *rate.Limiter,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		workflow:      workflow,
		slots:         slots,
		importLimiter: importLimiter,
		logger:        logger,
	}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/slots/{slot}/credential", h.CreateCredential)
	mux.HandleFunc("POST /api/v1/slots/{slot}/encrypt", h.Encrypt)
	mux.HandleFunc("GET /api/v1/slots/{slot}/envelope", h.Envelope)
	mux.HandleFunc("POST /api/v1/slots/{slot}/import", h.Import)
	mux.HandleFunc("GET /api/v1/slots/{slot}/status", h.Status)
	mux.HandleFunc("POST /api/v1/sanitize", h.Sanitize)
	mux.HandleFunc("GET /api/v1/sanitizer", h.SanitizerReport)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	h.registerLegacy(mux)
}

// NewServeMux creates an http.Handler with the API routes plus /metrics
// served from gatherer. Each register func adds further routes, such as the
// web panel, to the same mux. The result is wrapped with request ID, logging
// and recovery middleware.
func NewServeMux(h *Handler, gatherer prometheus.Gatherer, logger *slog.Logger, register ...func(*http.ServeMux)) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	if gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(gatherer))
	}
	for _, fn := range register {
		fn(mux)
	}
	return Wrap(mux, logger)
}

// Wrap applies the standard middleware chain to next.
func Wrap(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// CreateCredential generates a credential into the slot.
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}

	var req CreateCredentialRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	length := defaultLength
	if req.Length != nil {
		length = *req.Length
	}

	status, err := h.workflow.CreateCredential(slot, length)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CredentialResponse{
		Slot:   int(slot),
		Length: status.CredentialLength,
		Masked: model.Mask(status.CredentialLength),
	})
}

// Encrypt seals the slot's credential.
func (h *Handler) Encrypt(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}

	envelope, err := h.workflow.Encrypt(slot)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EncryptResponse{
		Slot:    int(slot),
		Preview: envelope.Preview(),
		Length:  envelope.Len(),
	})
}

// Envelope returns the slot's envelope for the client to copy.
func (h *Handler) Envelope(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}

	envelope, err := h.workflow.ExportForClipboard(slot)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EnvelopeResponse{Slot: int(slot), Data: envelope.Text()})
}

// Import opens envelope text pasted from the clipboard into the slot.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}
	if !h.allowImport(w, r) {
		return
	}

	var req ImportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := h.workflow.ImportFromClipboard(slot, req.Data)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Slot:    int(slot),
		Length:  status.CredentialLength,
		Masked:  model.Mask(status.CredentialLength),
		Message: importMessage,
	})
}

// Status reports the slot's contents.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toStatusResponse(h.workflow.Status(slot)))
}

// Sanitize returns decoys for the client to write to its own clipboard.
func (h *Handler) Sanitize(w http.ResponseWriter, _ *http.Request) {
	decoys, err := h.workflow.SanitizeNow()
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SanitizeResponse{SanitizedStrings: decoys, Message: sanitizeMessage})
}

// SanitizerReport returns the outcome of the last server-side sanitization.
func (h *Handler) SanitizerReport(w http.ResponseWriter, _ *http.Request) {
	report, ran := h.workflow.LastSanitization()
	writeJSON(w, http.StatusOK, toSanitizerResponse(report, ran))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// slot parses the {slot} path value and writes a 400 when it is not a
// configured slot.
func (h *Handler) slot(w http.ResponseWriter, r *http.Request) (model.SlotID, bool) {
	n, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil || n < 0 || n >= h.slots {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid slot: must be between 0 and %d", h.slots-1))
		return 0, false
	}
	return model.SlotID(n), true
}

// allowImport applies the import rate limit and writes a 429 when exceeded.
func (h *Handler) allowImport(w http.ResponseWriter, r *http.Request) bool {
	if h.importLimiter == nil || h.importLimiter.Allow() {
		return true
	}
	h.logger.Warn("import rate limited", "path", r.URL.Path, "request_id", RequestID(r.Context()))
	w.Header().Set("Retry-After", "1")
	writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many import attempts", Code: "rate_limited"})
	return false
}

// decodeBody decodes a JSON body into v. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
