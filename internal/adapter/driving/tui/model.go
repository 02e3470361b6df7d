// Package tui is the terminal driving adapter: one row per slot, driven by
// single-key commands, with the system clipboard as the transfer channel.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericfisherdev/clipseal/internal/application"
	"github.com/ericfisherdev/clipseal/internal/domain/model"
	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
)

const defaultLength = 16

// sanitizeSettle is how long after a trigger the panel re-reads the last
// sanitization report.
const sanitizeSettle = model.DecoyCount*model.DecoyPause + 150*time.Millisecond

// actionMsg reports the outcome of one key command.
type actionMsg struct {
	text string
	err  error
	// sanitizing schedules a sanitizer report refresh.
	sanitizing bool
}

// sanitizedMsg asks the panel to show the latest sanitization report.
type sanitizedMsg struct{}

// Model is the bubbletea model for the slot panel.
type Model struct {
	workflow  *application.WorkflowService
	clipboard driven.Clipboard
	slots     int
	keys      KeyMap
	help      help.Model

	selected  int
	prompting bool
	input     textinput.Model

	status    string
	statusErr bool
	quitting  bool
}

// New creates a panel with rows slots that moves envelopes through cb.
func New(workflow *application.WorkflowService, cb driven.Clipboard, rows int) Model {
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(defaultLength)
	ti.CharLimit = 6
	ti.Width = 8
	ti.Prompt = "length: "

	return Model{
		workflow:  workflow,
		clipboard: cb,
		slots:     rows,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		input:     ti,
		status:    "Ready.",
	}
}

// Selected returns the highlighted slot.
func (m Model) Selected() model.SlotID { return model.SlotID(m.selected) }

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Prompting reports whether the length prompt is open.
func (m Model) Prompting() bool { return m.prompting }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case actionMsg:
		m.status, m.statusErr = msg.text, msg.err != nil
		if msg.err != nil {
			m.status = describeError(msg.err)
		}
		if msg.sanitizing {
			return m, tea.Tick(sanitizeSettle, func(time.Time) tea.Msg { return sanitizedMsg{} })
		}
		return m, nil

	case sanitizedMsg:
		if report, ok := m.workflow.LastSanitization(); ok {
			if report.OK() {
				m.status, m.statusErr = fmt.Sprintf("Clipboard sanitized (%d writes).", report.Writes), false
			} else {
				m.status, m.statusErr = fmt.Sprintf("Clipboard sanitization failed after %d writes.", report.Writes), true
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slot := m.Selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < m.slots-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Generate):
		m.prompting = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Encrypt):
		return m, m.encrypt(slot)
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyEnvelope(slot)
	case key.Matches(msg, m.keys.Paste):
		return m, m.importClipboard(slot)
	case key.Matches(msg, m.keys.Sanitize):
		return m, m.sanitize()
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.prompting = false
		m.input.Blur()
		m.status, m.statusErr = "Cancelled.", false
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.prompting = false
		m.input.Blur()

		length := defaultLength
		if v := strings.TrimSpace(m.input.Value()); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				m.status, m.statusErr = "Length must be a whole number.", true
				return m, nil
			}
			length = n
		}
		return m, m.generate(m.Selected(), length)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) generate(slot model.SlotID, length int) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		status, err := workflow.CreateCredential(slot, length)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("Generated a %d-character credential in slot %d.", status.CredentialLength, int(slot)+1)}
	}
}

func (m Model) encrypt(slot model.SlotID) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		envelope, err := workflow.Encrypt(slot)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("Encrypted slot %d (%s).", int(slot)+1, envelope.Fingerprint())}
	}
}

func (m Model) copyEnvelope(slot model.SlotID) tea.Cmd {
	workflow, cb := m.workflow, m.clipboard
	return func() tea.Msg {
		envelope, err := workflow.ExportForClipboard(slot)
		if err != nil {
			return actionMsg{err: err}
		}
		if err := cb.WriteText(envelope.Text()); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("Envelope of slot %d copied to the clipboard.", int(slot)+1)}
	}
}

func (m Model) importClipboard(slot model.SlotID) tea.Cmd {
	workflow, cb := m.workflow, m.clipboard
	return func() tea.Msg {
		text, err := cb.ReadText()
		if err != nil {
			return actionMsg{err: err}
		}
		status, err := workflow.ImportFromClipboard(slot, text)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			text:       fmt.Sprintf("Imported a %d-character credential into slot %d. Clipboard being sanitized...", status.CredentialLength, int(slot)+1),
			sanitizing: true,
		}
	}
}

func (m Model) sanitize() tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		workflow.SanitizeClipboard("tui")
		return actionMsg{text: "Sanitizing clipboard...", sanitizing: true}
	}
}

// describeError phrases an error for the status line.
func describeError(err error) string {
	var opErr *model.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("Slot %d: %v", int(opErr.Slot)+1, opErr.Err)
	}
	if errors.Is(err, driven.ErrClipboardUnavailable) {
		return "Clipboard unavailable."
	}
	return "Error: " + err.Error()
}
