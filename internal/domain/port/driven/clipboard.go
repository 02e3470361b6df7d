package driven

import "errors"

// ErrClipboardUnavailable is returned when no clipboard channel can be reached.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard is the opaque read/write channel credentials travel through.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}
