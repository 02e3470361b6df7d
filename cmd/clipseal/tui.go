package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/ericfisherdev/clipseal/internal/adapter/driving/tui"
	"github.com/ericfisherdev/clipseal/internal/application"
	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
)

func runTUI(workflow *application.WorkflowService, cb driven.Clipboard, slots int) error {
	p := tea.NewProgram(tui.New(workflow, cb, slots), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal panel: %w", err)
	}
	return nil
}

// readPassphrase prompts on the controlling terminal without echo.
func readPassphrase() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--ask-passphrase needs an interactive terminal")
	}

	fmt.Fprint(os.Stderr, "Envelope passphrase: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("empty passphrase")
	}
	return string(raw), nil
}
