// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// SlotRowViewModel holds presentation-ready data for one slot row.
type SlotRowViewModel struct {
	Slot             int
	Label            string
	State            string // empty, has_credential or sealed
	StateLabel       string
	Masked           string
	CredentialLength int
	HasCredential    bool
	HasEnvelope      bool
	Preview          string
	Fingerprint      string
}

// ExportViewModel carries the armored envelope shown for copying.
type ExportViewModel struct {
	Slot int
	Text string
}

// SanitizerViewModel summarizes the last sanitization run.
type SanitizerViewModel struct {
	Trigger  string
	Writes   int
	OK       bool
	Finished string
	Duration string
}

// FlashViewModel is the one-shot message shown after a form submission.
type FlashViewModel struct {
	Message string
	IsError bool
}

// PanelViewModel holds everything the main page renders.
type PanelViewModel struct {
	Rows          []SlotRowViewModel
	Export        *ExportViewModel
	Sanitizer     *SanitizerViewModel
	Flash         *FlashViewModel
	CSRFToken     string
	DefaultLength int
	MaxLength     int
	HelpHTML      string
}
