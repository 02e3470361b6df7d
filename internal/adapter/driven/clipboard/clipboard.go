// Package clipboard provides Clipboard port implementations: the desktop
// clipboard and an in-process channel for headless hosts and tests.
package clipboard

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
)

// Kinds accepted by Open.
const (
	KindSystem = "system"
	KindMemory = "memory"
)

var (
	_ driven.Clipboard = (*System)(nil)
	_ driven.Clipboard = (*Memory)(nil)
)

// System is the desktop clipboard through the platform utility
// (pbcopy, xclip, xsel, wl-clipboard or the Windows API).
type System struct{}

// NewSystem returns the desktop clipboard, or driven.ErrClipboardUnavailable
// when no clipboard utility is installed.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, driven.ErrClipboardUnavailable
	}
	return &System{}, nil
}

// ReadText returns the clipboard's text content.
func (*System) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: read: %v", driven.ErrClipboardUnavailable, err)
	}
	return text, nil
}

// WriteText replaces the clipboard's content.
func (*System) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: write: %v", driven.ErrClipboardUnavailable, err)
	}
	return nil
}

// Memory is an in-process clipboard. It keeps only the latest value and
// counts writes.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int
}

// NewMemory returns an empty Memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.writes++
	return nil
}

// Writes returns how many times WriteText has been called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Open returns the clipboard of the given kind. A system clipboard that is
// not available falls back to Memory with a warning.
func Open(kind string, logger *slog.Logger) (driven.Clipboard, error) {
	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindSystem, "":
		system, err := NewSystem()
		if err != nil {
			logger.Warn("system clipboard unavailable, using in-process clipboard", "error", err)
			return NewMemory(), nil
		}
		return system, nil
	default:
		return nil, fmt.Errorf("unknown clipboard kind %q", kind)
	}
}
