package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/devicehub/internal/metrics"
	"github.com/rs/zerolog/log"
)

type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// saga tracks the completed steps of a multi-step write. When a later step
// fails the recorded compensations run newest first. This narrows the window
// for inconsistent state but does not close it: a crash mid-way or a failing
// compensation still leaves partial writes behind.
type saga struct {
	operation string
	steps     []compensation
	metrics   *metrics.Recorder
}

func newSaga(operation string, rec *metrics.Recorder) *saga {
	return &saga{operation: operation, metrics: rec}
}

// done registers the undo for a step that has just succeeded.
func (s *saga) done(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, compensation{name: name, undo: undo})
}

// abort compensates every completed step and returns cause joined with any
// compensation failures. Compensations ignore cancellation of ctx.
func (s *saga) abort(ctx context.Context, cause error) error {
	if len(s.steps) == 0 {
		return cause
	}

	ctx = context.WithoutCancel(ctx)
	errs := []error{cause}
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(ctx); err != nil {
			log.Error().Err(err).
				Str("operation", s.operation).
				Str("step", step.name).
				Msg("compensation failed, data may be inconsistent")
			errs = append(errs, fmt.Errorf("compensating %s: %w", step.name, err))
		}
	}
	s.steps = nil

	s.metrics.Compensated(s.operation)
	log.Warn().Err(cause).Str("operation", s.operation).Msg("write rolled back by compensation")
	return errors.Join(errs...)
}
