package application

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
	"github.com/ericfisherdev/clipseal/internal/metrics"
)

type workflowFixture struct {
	svc       *WorkflowService
	store     *mockStore
	codec     *mockCodec
	clipboard *recordingClipboard
	sanitizer *Sanitizer
	registry  *prometheus.Registry
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	clipboard := &recordingClipboard{}
	sanitizer := NewSanitizer(clipboard, newInstantClock(), nil, m, discardLogger())
	t.Cleanup(sanitizer.Close)

	store := newMockStore()
	codec := &mockCodec{}
	svc := NewWorkflowService(NewGenerator(nil, DefaultMaxLength), codec, store, sanitizer, m, discardLogger())

	return &workflowFixture{
		svc:       svc,
		store:     store,
		codec:     codec,
		clipboard: clipboard,
		sanitizer: sanitizer,
		registry:  registry,
	}
}

func requireOpError(t *testing.T, err error, target error, stage model.Stage, slot model.SlotID) {
	t.Helper()

	require.ErrorIs(t, err, target)
	var opErr *model.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, stage, opErr.Stage)
	assert.Equal(t, slot, opErr.Slot)
}

func TestWorkflow_CreateCredential(t *testing.T) {
	f := newWorkflowFixture(t)

	status, err := f.svc.CreateCredential(0, 16)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatus{HasCredential: true, CredentialLength: 16}, status)

	c, ok := f.store.GetCredential(0)
	require.True(t, ok)
	assert.Equal(t, 16, c.Len())
}

func TestWorkflow_CreateCredentialInvalidLengthLeavesSlot(t *testing.T) {
	f := newWorkflowFixture(t)
	f.store.PutCredential(2, "keepme")

	_, err := f.svc.CreateCredential(2, 0)
	requireOpError(t, err, model.ErrInvalidLength, model.StageGenerate, 2)

	c, _ := f.store.GetCredential(2)
	assert.Equal(t, "keepme", c.Reveal())
}

func TestWorkflow_CreateCredentialSourceFailureLeavesSlot(t *testing.T) {
	f := newWorkflowFixture(t)
	f.svc.generator = NewGenerator(failingReader{}, DefaultMaxLength)
	f.store.PutCredential(1, "keepme")

	var err error
	require.NotPanics(t, func() { _, err = f.svc.CreateCredential(1, 16) })
	requireOpError(t, err, model.ErrEncryptionFailure, model.StageGenerate, 1)

	c, _ := f.store.GetCredential(1)
	assert.Equal(t, "keepme", c.Reveal())
	assert.Equal(t, 1.0, operationCount(t, f.registry, OpCreateCredential, "encryption_failure"))
}

func TestNewWorkflowService_RequiresDependencies(t *testing.T) {
	sanitizer := NewSanitizer(&recordingClipboard{}, newInstantClock(), nil, nil, discardLogger())
	t.Cleanup(sanitizer.Close)
	generator := NewGenerator(nil, DefaultMaxLength)

	assert.Panics(t, func() {
		NewWorkflowService(generator, &mockCodec{}, newMockStore(), nil, nil, discardLogger())
	})
	assert.Panics(t, func() {
		NewWorkflowService(nil, &mockCodec{}, newMockStore(), sanitizer, nil, discardLogger())
	})
	assert.NotPanics(t, func() {
		NewWorkflowService(generator, &mockCodec{}, newMockStore(), sanitizer, nil, discardLogger())
	})
}

func TestWorkflow_CreateCredentialDropsStaleEnvelope(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.CreateCredential(0, 12)
	require.NoError(t, err)
	_, err = f.svc.Encrypt(0)
	require.NoError(t, err)

	status, err := f.svc.CreateCredential(0, 20)
	require.NoError(t, err)
	assert.False(t, status.HasEnvelope)
	assert.Equal(t, model.SlotStateHasCredential, status.State())

	_, err = f.svc.ExportForClipboard(0)
	requireOpError(t, err, model.ErrNothingToExport, model.StageExport, 0)
}

func TestWorkflow_EncryptStoresEnvelope(t *testing.T) {
	f := newWorkflowFixture(t)
	_, err := f.svc.CreateCredential(1, 24)
	require.NoError(t, err)

	envelope, err := f.svc.Encrypt(1)
	require.NoError(t, err)
	assert.False(t, envelope.IsZero())

	stored, ok := f.store.GetEnvelope(1)
	require.True(t, ok)
	assert.Equal(t, envelope, stored)

	_, stillThere := f.store.GetCredential(1)
	assert.True(t, stillThere)
	assert.Equal(t, model.SlotStateSealed, f.svc.Status(1).State())
}

func TestWorkflow_EncryptEmptySlot(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.Encrypt(3)
	requireOpError(t, err, model.ErrNothingToEncrypt, model.StageSeal, 3)
	assert.Equal(t, model.SlotStateEmpty, f.svc.Status(3).State())
}

func TestWorkflow_EncryptWrapsCodecFailure(t *testing.T) {
	f := newWorkflowFixture(t)
	f.codec.sealErr = errors.New("entropy unavailable")
	_, err := f.svc.CreateCredential(0, 8)
	require.NoError(t, err)

	_, err = f.svc.Encrypt(0)
	requireOpError(t, err, model.ErrEncryptionFailure, model.StageSeal, 0)

	_, ok := f.store.GetEnvelope(0)
	assert.False(t, ok)
}

func TestWorkflow_ExportIsReadOnly(t *testing.T) {
	f := newWorkflowFixture(t)
	_, err := f.svc.CreateCredential(0, 10)
	require.NoError(t, err)
	sealed, err := f.svc.Encrypt(0)
	require.NoError(t, err)
	before := f.svc.Status(0)

	exported, err := f.svc.ExportForClipboard(0)
	require.NoError(t, err)
	assert.Equal(t, sealed, exported)
	assert.Equal(t, before, f.svc.Status(0))
}

func TestWorkflow_ExportWithoutEnvelope(t *testing.T) {
	f := newWorkflowFixture(t)
	_, err := f.svc.CreateCredential(0, 10)
	require.NoError(t, err)

	_, err = f.svc.ExportForClipboard(0)
	requireOpError(t, err, model.ErrNothingToExport, model.StageExport, 0)
}

func TestWorkflow_ExportImportAcrossSlots(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.CreateCredential(0, 16)
	require.NoError(t, err)
	_, err = f.svc.Encrypt(0)
	require.NoError(t, err)
	exported, err := f.svc.ExportForClipboard(0)
	require.NoError(t, err)

	status, err := f.svc.ImportFromClipboard(1, "\n  "+exported.Text()+"\n")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatus{HasCredential: true, HasEnvelope: true, CredentialLength: 16}, status)

	original, _ := f.store.GetCredential(0)
	imported, _ := f.store.GetCredential(1)
	assert.Equal(t, original.Reveal(), imported.Reveal())

	storedEnvelope, _ := f.store.GetEnvelope(1)
	assert.Equal(t, exported, storedEnvelope)

	f.sanitizer.Wait()
	report, ok := f.svc.LastSanitization()
	require.True(t, ok)
	assert.True(t, report.OK())
	assert.Equal(t, "import slot 1", report.Trigger)
	assert.Len(t, f.clipboard.Writes(), model.DecoyCount)
}

func TestWorkflow_ImportRejectsGarbage(t *testing.T) {
	f := newWorkflowFixture(t)
	f.store.PutCredential(4, "previous")

	_, err := f.svc.ImportFromClipboard(4, "not an envelope")
	requireOpError(t, err, model.ErrDecryptionFailure, model.StageOpen, 4)

	c, _ := f.store.GetCredential(4)
	assert.Equal(t, "previous", c.Reveal())
	_, hasEnvelope := f.store.GetEnvelope(4)
	assert.False(t, hasEnvelope)

	f.sanitizer.Wait()
	_, ran := f.svc.LastSanitization()
	assert.False(t, ran, "failed import must not sanitize")
	assert.Empty(t, f.clipboard.Writes())
}

func TestWorkflow_ImportEmptyInput(t *testing.T) {
	f := newWorkflowFixture(t)

	for _, text := range []string{"", "   ", "\n\t\n"} {
		_, err := f.svc.ImportFromClipboard(0, text)
		requireOpError(t, err, model.ErrEmptyInput, model.StageOpen, 0)
	}
	assert.Equal(t, model.SlotStateEmpty, f.svc.Status(0).State())
}

func TestWorkflow_ImportErrorCarriesNoCause(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.ImportFromClipboard(0, "MOCK-ENVELOPE:")
	require.Error(t, err)
	assert.Equal(t, "import slot 0 (open): "+model.ErrDecryptionFailure.Error(), err.Error())
}

func TestWorkflow_SanitizeNow(t *testing.T) {
	f := newWorkflowFixture(t)

	decoys, err := f.svc.SanitizeNow()
	require.NoError(t, err)
	require.Len(t, decoys, model.DecoyCount)
	assert.Empty(t, f.clipboard.Writes(), "SanitizeNow must only produce decoys")
}

func TestWorkflow_SanitizeClipboard(t *testing.T) {
	f := newWorkflowFixture(t)

	f.svc.SanitizeClipboard("manual")
	f.sanitizer.Wait()

	report, ok := f.svc.LastSanitization()
	require.True(t, ok)
	assert.Equal(t, "manual", report.Trigger)
	assert.Len(t, f.clipboard.Writes(), model.DecoyCount)
}

func TestWorkflow_ConcurrentSlotsIndependent(t *testing.T) {
	f := newWorkflowFixture(t)

	var wg sync.WaitGroup
	for slot := range model.SlotID(model.DefaultSlots) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				_, err := f.svc.CreateCredential(slot, 8+int(slot))
				assert.NoError(t, err)
				_, err = f.svc.Encrypt(slot)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for slot := range model.SlotID(model.DefaultSlots) {
		status := f.svc.Status(slot)
		assert.Equal(t, model.SlotStateSealed, status.State())
		assert.Equal(t, 8+int(slot), status.CredentialLength)

		c, _ := f.store.GetCredential(slot)
		e, _ := f.store.GetEnvelope(slot)
		opened, err := f.codec.Open(e)
		require.NoError(t, err)
		assert.Equal(t, c, opened, "envelope must match credential in slot %d", slot)
	}
}

func TestWorkflow_RecordsOperationMetrics(t *testing.T) {
	f := newWorkflowFixture(t)

	_, _ = f.svc.CreateCredential(0, 4)
	_, _ = f.svc.Encrypt(1)

	assert.Equal(t, 1.0, operationCount(t, f.registry, OpCreateCredential, "ok"))
	assert.Equal(t, 1.0, operationCount(t, f.registry, OpEncrypt, "nothing_to_encrypt"))
	assert.Equal(t, 0.0, operationCount(t, f.registry, OpEncrypt, "ok"))
}

func operationCount(t *testing.T, registry *prometheus.Registry, op, result string) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "clipseal_operations_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["op"] == op && labels["result"] == result {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestWorkflow_InspectDoesNotCount(t *testing.T) {
	f := newWorkflowFixture(t)
	_, err := f.svc.CreateCredential(0, 6)
	require.NoError(t, err)
	sealed, err := f.svc.Encrypt(0)
	require.NoError(t, err)

	status, envelope := f.svc.Inspect(0)
	assert.Equal(t, model.SlotStateSealed, status.State())
	assert.Equal(t, sealed, envelope)
	assert.Equal(t, 0.0, operationCount(t, f.registry, OpExport, "ok"))

	status, envelope = f.svc.Inspect(1)
	assert.Equal(t, model.SlotStateEmpty, status.State())
	assert.True(t, envelope.IsZero())
}
