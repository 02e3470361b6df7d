package web

import (
	"fmt"
	"time"

	vm "github.com/ericfisherdev/clipseal/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

var stateLabels = map[model.SlotState]string{
	model.SlotStateEmpty:         "Empty",
	model.SlotStateHasCredential: "Generated",
	model.SlotStateSealed:        "Encrypted",
}

// toSlotRowViewModel converts a slot's status and envelope into a row.
func toSlotRowViewModel(slot model.SlotID, status model.SlotStatus, envelope model.Envelope) vm.SlotRowViewModel {
	state := status.State()
	return vm.SlotRowViewModel{
		Slot:             int(slot),
		Label:            fmt.Sprintf("Slot %d", int(slot)+1),
		State:            string(state),
		StateLabel:       stateLabels[state],
		Masked:           model.Mask(status.CredentialLength),
		CredentialLength: status.CredentialLength,
		HasCredential:    status.HasCredential,
		HasEnvelope:      status.HasEnvelope,
		Preview:          envelope.Preview(),
		Fingerprint:      envelope.Fingerprint(),
	}
}

// toSanitizerViewModel converts the last report. It returns nil if no run
// has finished yet.
func toSanitizerViewModel(report model.SanitizationReport, ran bool) *vm.SanitizerViewModel {
	if !ran {
		return nil
	}
	return &vm.SanitizerViewModel{
		Trigger:  report.Trigger,
		Writes:   report.Writes,
		OK:       report.OK(),
		Finished: report.FinishedAt.Format(time.TimeOnly),
		Duration: report.Duration().Round(time.Millisecond).String(),
	}
}
