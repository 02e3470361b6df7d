package model

import "strconv"

// DefaultSlots is the number of slots an interactive front end shows.
const DefaultSlots = 5

// SlotID addresses one Credential/Envelope pair in the store.
type SlotID int

// String returns the slot number in decimal.
func (s SlotID) String() string {
	return strconv.Itoa(int(s))
}

// SlotState is the lifecycle position of a slot.
type SlotState string

const (
	SlotStateEmpty         SlotState = "empty"
	SlotStateHasCredential SlotState = "has_credential"
	SlotStateSealed        SlotState = "sealed"
)

// SlotStatus reports what a slot currently holds. It never carries plaintext.
type SlotStatus struct {
	HasCredential    bool
	HasEnvelope      bool
	CredentialLength int
}

// State derives the slot's lifecycle position from its contents. A slot that
// holds an envelope but no credential is reported as sealed.
func (s SlotStatus) State() SlotState {
	switch {
	case s.HasEnvelope:
		return SlotStateSealed
	case s.HasCredential:
		return SlotStateHasCredential
	default:
		return SlotStateEmpty
	}
}
