package tui

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("clipseal"))
	b.WriteString("\n")

	for i := range m.slots {
		b.WriteString(m.renderRow(model.SlotID(i), i == m.selected))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.prompting {
		b.WriteString(promptStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(okStyle.Render(m.status))
	}
	b.WriteString("\n")

	if report, ok := m.workflow.LastSanitization(); ok {
		result := "ok"
		if !report.OK() {
			result = "failed"
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("last sanitization: %s, %d writes (%s)", result, report.Writes, report.Trigger)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderRow(slot model.SlotID, selected bool) string {
	status, envelope := m.workflow.Inspect(slot)
	state := status.State()

	credential := mutedStyle.Render("-")
	if status.HasCredential {
		credential = model.Mask(min(status.CredentialLength, 32))
		if status.CredentialLength > 32 {
			credential += "…"
		}
		credential += mutedStyle.Render(fmt.Sprintf(" (%d)", status.CredentialLength))
	}

	sealed := ""
	if status.HasEnvelope {
		sealed = mutedStyle.Render("envelope " + envelope.Fingerprint())
	}

	line := fmt.Sprintf("%d  %-16s %s  %s",
		int(slot)+1,
		stateStyles[string(state)].Render(string(state)),
		credential,
		sealed,
	)
	if selected {
		return selectedStyle.Render("> " + line)
	}
	return rowStyle.Render(line)
}
