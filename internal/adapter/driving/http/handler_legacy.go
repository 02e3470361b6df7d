package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

// legacySlot is the only slot the single-credential routes address.
const legacySlot model.SlotID = 0

const legacyCopyMessage = `Encrypted password ready to copy. Use "Copy to Clipboard" button.`

// registerLegacy adds the single-slot routes the browser extension calls.
func (h *Handler) registerLegacy(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate-password", h.legacyGenerate)
	mux.HandleFunc("POST /api/encrypt-password", h.legacyEncrypt)
	mux.HandleFunc("GET /api/get-encrypted", h.legacyGetEncrypted)
	mux.HandleFunc("GET /api/copy-to-clipboard", h.legacyCopy)
	mux.HandleFunc("POST /api/decrypt-from-clipboard", h.legacyDecrypt)
	mux.HandleFunc("POST /api/sanitize-clipboard", h.legacySanitize)
	mux.HandleFunc("GET /api/status", h.legacyStatus)
}

func (h *Handler) legacyGenerate(w http.ResponseWriter, r *http.Request) {
	var req CreateCredentialRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	length := defaultLength
	if req.Length != nil {
		length = *req.Length
	}

	status, err := h.workflow.CreateCredential(legacySlot, length)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, legacyGenerateResponse{
		Success: true,
		Length:  status.CredentialLength,
		Masked:  model.Mask(status.CredentialLength),
	})
}

func (h *Handler) legacyEncrypt(w http.ResponseWriter, _ *http.Request) {
	envelope, err := h.workflow.Encrypt(legacySlot)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, legacyEncryptResponse{
		Success: true,
		Preview: envelope.Preview(),
		Length:  envelope.Len(),
	})
}

func (h *Handler) legacyGetEncrypted(w http.ResponseWriter, _ *http.Request) {
	envelope, err := h.workflow.ExportForClipboard(legacySlot)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, legacyEnvelopeResponse{Success: true, Data: envelope.Text()})
}

func (h *Handler) legacyCopy(w http.ResponseWriter, _ *http.Request) {
	envelope, err := h.workflow.ExportForClipboard(legacySlot)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, legacyEnvelopeResponse{
		Success: true,
		Data:    envelope.Text(),
		Message: legacyCopyMessage,
	})
}

func (h *Handler) legacyDecrypt(w http.ResponseWriter, r *http.Request) {
	if !h.allowImport(w, r) {
		return
	}

	var req ImportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := h.workflow.ImportFromClipboard(legacySlot, req.Data)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, legacyImportResponse{
		Success: true,
		Length:  status.CredentialLength,
		Masked:  model.Mask(status.CredentialLength),
		Message: importMessage,
	})
}

func (h *Handler) legacySanitize(w http.ResponseWriter, _ *http.Request) {
	decoys, err := h.workflow.SanitizeNow()
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, legacySanitizeResponse{
		Success:          true,
		SanitizedStrings: decoys,
		Message:          sanitizeMessage,
	})
}

func (h *Handler) legacyStatus(w http.ResponseWriter, _ *http.Request) {
	status := h.workflow.Status(legacySlot)
	writeJSON(w, http.StatusOK, legacyStatusResponse{
		HasPassword:    status.HasCredential,
		HasEncrypted:   status.HasEnvelope,
		PasswordLength: status.CredentialLength,
	})
}
