package application

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/clipseal/internal/clock"
	"github.com/ericfisherdev/clipseal/internal/domain/model"
	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
	"github.com/ericfisherdev/clipseal/internal/metrics"
)

// Decoy character classes: ASCII letters, digits and punctuation.
const (
	PunctuationChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	DecoyAlphabet = UpperChars + LowerChars + DigitChars + PunctuationChars
)

// Sanitizer overwrites the clipboard channel with high-entropy decoys after a
// credential has passed through it. Runs started with Trigger are independent
// of each other: a later run never cancels an earlier one, and concurrent
// runs may interleave their writes.
type Sanitizer struct {
	clipboard driven.Clipboard
	clock     clock.Clock
	source    io.Reader
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// ctx is canceled only by Close, on process shutdown.
	ctx      context.Context
	cancel   context.CancelFunc
	inFlight sync.WaitGroup

	mu   sync.Mutex
	last *model.SanitizationReport
}

// NewSanitizer creates a Sanitizer writing to clipboard. A nil clk uses the
// real clock and a nil source uses crypto/rand.
func NewSanitizer(
	clipboard driven.Clipboard,
	clk clock.Clock,
	source io.Reader,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Sanitizer {
	if clk == nil {
		clk = clock.Real()
	}
	if source == nil {
		source = rand.Reader
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sanitizer{
		clipboard: clipboard,
		clock:     clk,
		source:    source,
		metrics:   m,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Decoys returns DecoyCount fresh decoy strings without touching the
// clipboard, for front ends that write to a clipboard the server cannot see.
func (s *Sanitizer) Decoys() ([]string, error) {
	decoys := make([]string, 0, model.DecoyCount)
	for range model.DecoyCount {
		decoy, err := randomString(s.source, DecoyAlphabet, model.DecoyLength)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrSanitizationFailure, err)
		}
		decoys = append(decoys, decoy)
	}
	return decoys, nil
}

// Sanitize writes DecoyCount decoys to the clipboard in sequence, pausing
// DecoyPause between writes. It stops at the first failed write and reports
// it as model.ErrSanitizationFailure. ctx cancellation aborts the sequence;
// nothing else does.
func (s *Sanitizer) Sanitize(ctx context.Context, trigger string) (report model.SanitizationReport) {
	report = model.SanitizationReport{Trigger: trigger, StartedAt: s.clock.Now()}
	defer func() { report.FinishedAt = s.clock.Now() }()

	for i := range model.DecoyCount {
		if i > 0 {
			select {
			case <-ctx.Done():
				report.Err = fmt.Errorf("%w: aborted after %d writes: %v", model.ErrSanitizationFailure, report.Writes, ctx.Err())
				return report
			case <-s.clock.After(model.DecoyPause):
			}
		}
		if err := ctx.Err(); err != nil {
			report.Err = fmt.Errorf("%w: aborted after %d writes: %v", model.ErrSanitizationFailure, report.Writes, err)
			return report
		}

		decoy, err := randomString(s.source, DecoyAlphabet, model.DecoyLength)
		if err != nil {
			report.Err = fmt.Errorf("%w: %v", model.ErrSanitizationFailure, err)
			return report
		}
		if err := s.clipboard.WriteText(decoy); err != nil {
			report.Err = fmt.Errorf("%w: write %d: %v", model.ErrSanitizationFailure, i+1, err)
			return report
		}
		report.Writes++
	}

	return report
}

// Trigger starts an independent sanitization run and returns immediately.
// The outcome is only observable through LastReport, logs and metrics.
func (s *Sanitizer) Trigger(reason string) {
	s.inFlight.Add(1)
	s.metrics.SanitizationStarted()

	go func() {
		defer s.inFlight.Done()
		s.record(s.Sanitize(s.ctx, reason))
	}()
}

// LastReport returns the most recently finished run, if any.
func (s *Sanitizer) LastReport() (model.SanitizationReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return model.SanitizationReport{}, false
	}
	return *s.last, true
}

// Wait blocks until every triggered run has finished.
func (s *Sanitizer) Wait() {
	s.inFlight.Wait()
}

// Close aborts in-flight runs at their next pause and waits for them.
func (s *Sanitizer) Close() {
	s.cancel()
	s.inFlight.Wait()
}

func (s *Sanitizer) record(report model.SanitizationReport) {
	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	s.metrics.ObserveSanitization(report)

	if report.Err != nil {
		s.logger.Warn("clipboard sanitization failed",
			"trigger", report.Trigger,
			"writes", report.Writes,
			"error", report.Err,
		)
		return
	}
	s.logger.Info("clipboard sanitized",
		"trigger", report.Trigger,
		"writes", report.Writes,
		"duration", report.Duration().Round(time.Millisecond),
	)
}
