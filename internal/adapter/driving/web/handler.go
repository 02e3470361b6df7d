// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ericfisherdev/clipseal/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/clipseal/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/clipseal/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/clipseal/internal/application"
	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

const (
	flashCookieName = "clipseal_flash"
	defaultLength   = 16
	maxFormBytes    = 128 << 10
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	workflow  *application.WorkflowService
	slots     int
	maxLength int
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. The panel
// shows slots rows.
func NewHandler(
	workflow *application.WorkflowService,
	slots int,
	maxLength int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		workflow:  workflow,
		slots:     slots,
		maxLength: maxLength,
		logger:    logger,
	}
}

// Panel renders the main page with the full HTML layout.
func (h *Handler) Panel(w http.ResponseWriter, r *http.Request) {
	panel := vm.PanelViewModel{
		Rows:          make([]vm.SlotRowViewModel, 0, h.slots),
		Flash:         popFlash(w, r),
		CSRFToken:     csrfToken(w, r),
		DefaultLength: defaultLength,
		MaxLength:     h.maxLength,
		HelpHTML:      HelpHTML(),
	}
	for i := range h.slots {
		slot := model.SlotID(i)
		status, envelope := h.workflow.Inspect(slot)
		panel.Rows = append(panel.Rows, toSlotRowViewModel(slot, status, envelope))
	}

	if v := r.URL.Query().Get("export"); v != "" {
		if slot, ok := h.parseSlot(v); ok {
			if _, envelope := h.workflow.Inspect(slot); !envelope.IsZero() {
				panel.Export = &vm.ExportViewModel{Slot: int(slot), Text: envelope.Text()}
			}
		}
	}
	panel.Sanitizer = toSanitizerViewModel(h.workflow.LastSanitization())

	w.Header().Set("Cache-Control", "no-store")
	layout := templates.Layout("clipseal", pages.Panel(panel))
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render panel", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// CreateCredential handles the per-row generate form.
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.formSlot(w, r, r.PathValue("slot"))
	if !ok {
		return
	}

	length := defaultLength
	if v := strings.TrimSpace(r.PostFormValue("length")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.redirect(w, r, "", "Length must be a whole number.", true)
			return
		}
		length = n
	}

	status, err := h.workflow.CreateCredential(slot, length)
	if err != nil {
		h.redirect(w, r, "", flashForError(err), true)
		return
	}
	h.redirect(w, r, "", fmt.Sprintf("Generated a %d-character credential in slot %d.", status.CredentialLength, int(slot)+1), false)
}

// Encrypt handles the per-row encrypt form.
func (h *Handler) Encrypt(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.formSlot(w, r, r.PathValue("slot"))
	if !ok {
		return
	}

	envelope, err := h.workflow.Encrypt(slot)
	if err != nil {
		h.redirect(w, r, "", flashForError(err), true)
		return
	}
	h.redirect(w, r, "", fmt.Sprintf("Encrypted slot %d (%s).", int(slot)+1, envelope.Fingerprint()), false)
}

// Export handles the per-row export form and shows the envelope.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.formSlot(w, r, r.PathValue("slot"))
	if !ok {
		return
	}

	if _, err := h.workflow.ExportForClipboard(slot); err != nil {
		h.redirect(w, r, "", flashForError(err), true)
		return
	}
	h.redirect(w, r, "export="+strconv.Itoa(int(slot)), "Envelope ready to copy.", false)
}

// Import handles the paste form.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.formSlot(w, r, r.PostFormValue("slot"))
	if !ok {
		return
	}

	status, err := h.workflow.ImportFromClipboard(slot, r.PostFormValue("data"))
	if err != nil {
		h.redirect(w, r, "", flashForError(err), true)
		return
	}
	h.redirect(w, r, "", fmt.Sprintf("Imported a %d-character credential into slot %d. Clipboard being sanitized...",
		status.CredentialLength, int(slot)+1), false)
}

// Sanitize starts a server-side clipboard sanitization.
func (h *Handler) Sanitize(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}

	h.workflow.SanitizeClipboard("web panel")
	h.redirect(w, r, "", "Clipboard sanitization started.", false)
}

// formSlot validates CSRF and the slot value of a POST form.
func (h *Handler) formSlot(w http.ResponseWriter, r *http.Request, raw string) (model.SlotID, bool) {
	if !h.checkForm(w, r) {
		return 0, false
	}
	slot, ok := h.parseSlot(raw)
	if !ok {
		http.Error(w, "invalid slot", http.StatusBadRequest)
		return 0, false
	}
	return slot, true
}

func (h *Handler) checkForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		h.logger.Warn("csrf validation failed", "path", r.URL.Path)
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (h *Handler) parseSlot(raw string) (model.SlotID, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n >= h.slots {
		return 0, false
	}
	return model.SlotID(n), true
}

// redirect stores text as a flash message and redirects to the panel.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, query, text string, isError bool) {
	kind := "ok"
	if isError {
		kind = "error"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    kind + ":" + url.QueryEscape(text),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	target := "/"
	if query != "" {
		target += "?" + query
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// flashForError phrases a workflow error for the panel.
func flashForError(err error) string {
	var opErr *model.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("Slot %d: %v", int(opErr.Slot)+1, opErr.Err)
	}
	return "Something went wrong."
}

// popFlash reads and clears the flash cookie.
func popFlash(w http.ResponseWriter, r *http.Request) *vm.FlashViewModel {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1})

	kind, escaped, ok := strings.Cut(cookie.Value, ":")
	if !ok {
		return nil
	}
	text, err := url.QueryUnescape(escaped)
	if err != nil || text == "" {
		return nil
	}
	return &vm.FlashViewModel{Message: text, IsError: kind == "error"}
}
