// Package pipeline implements the staged ETL run: extraction,
// transformation, loading and validation, coordinated by a Manager
// that owns per-stage timeouts and retries.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
)

// Manager executes the registered stages sequentially. A stage failure
// skips the remaining stages; whether the run still yields a usable
// report is the caller's decision.
type Manager struct {
	stages []Stage
	retry  RetryConfig
}

// NewManager creates a manager over the given stages, executed in
// order.
func NewManager(stages ...Stage) *Manager {
	return &Manager{
		stages: stages,
		retry:  NewRetryConfig(),
	}
}

// SetRetryConfig overrides the default stage retry policy.
func (m *Manager) SetRetryConfig(retry RetryConfig) {
	m.retry = retry
}

// Execute runs all stages against a fresh RunState. The returned state
// always carries whatever artifacts were produced before a failure.
func (m *Manager) Execute(ctx context.Context) (*RunState, error) {
	runID := infrastructure.GetRunID(ctx)
	if runID == "" {
		runID = infrastructure.GenerateRunID()
		ctx = infrastructure.WithRunID(ctx, runID)
	}
	logger := infrastructure.LoggerFromContext(ctx)

	state := NewRunState(runID)
	for _, stage := range m.stages {
		state.SetStage(stage.ID(), NewStageState(stage.ID(), stage.Name()))
	}

	state.Start()
	logger.InfoContext(ctx, "run started",
		slog.Int("stage_count", len(m.stages)))

	var runErr error
	for i, stage := range m.stages {
		if runErr != nil {
			state.GetStage(stage.ID()).Skip(fmt.Sprintf("previous stage failed: %v", runErr))
			continue
		}
		if err := ctx.Err(); err != nil {
			state.GetStage(stage.ID()).Skip("run cancelled")
			runErr = NewCancellationError(stage.ID())
			continue
		}

		if err := m.executeStage(ctx, state, stage); err != nil {
			runErr = WrapError(err, stage.ID(), "stage failed")
			logger.ErrorContext(ctx, "stage failed, skipping remaining stages",
				slog.String("stage", stage.ID()),
				slog.Int("remaining", len(m.stages)-i-1),
				slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		state.Fail(runErr)
	} else {
		state.Complete()
	}
	logger.InfoContext(ctx, "run finished",
		slog.String("status", string(state.GetStatus())),
		slog.Duration("duration", state.Duration()))
	return state, runErr
}

// executeStage runs one stage with its timeout and the retry policy.
// Only errors marked retryable are re-attempted.
func (m *Manager) executeStage(ctx context.Context, state *RunState, stage Stage) error {
	logger := infrastructure.LoggerFromContext(ctx)
	stageState := state.GetStage(stage.ID())
	if stageState == nil {
		return NewFatalError("stage state not found", nil)
	}

	if err := stage.Validate(state); err != nil {
		stageState.Skip(fmt.Sprintf("validation failed: %v", err))
		return NewValidationError(stage.ID(), err.Error())
	}

	timeout := StageTimeout(stage.ID())
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= m.retry.MaxAttempts; attempt++ {
		stageState.Start()
		logger.InfoContext(ctx, "stage started",
			slog.String("stage", stage.ID()),
			slog.Int("attempt", attempt))

		start := time.Now()
		err := stage.Execute(stageCtx, state)
		duration := time.Since(start)

		if err == nil {
			stageState.Complete()
			logger.InfoContext(ctx, "stage completed",
				slog.String("stage", stage.ID()),
				slog.Duration("duration", duration))
			return nil
		}
		lastErr = err

		if stageCtx.Err() == context.DeadlineExceeded {
			lastErr = NewTimeoutError(stage.ID(), timeout.String())
			break
		}
		if ctx.Err() != nil {
			lastErr = NewCancellationError(stage.ID())
			break
		}
		if !IsRetryable(err) {
			break
		}

		logger.WarnContext(ctx, "stage attempt failed",
			slog.String("stage", stage.ID()),
			slog.Int("attempt", attempt),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))

		if attempt < m.retry.MaxAttempts {
			if err := sleepContext(stageCtx, m.retryDelay(attempt)); err != nil {
				break
			}
		}
	}

	stageState.Fail(lastErr)
	return lastErr
}

// retryDelay computes the backoff before the given attempt's retry.
func (m *Manager) retryDelay(attempt int) time.Duration {
	delay := m.retry.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * m.retry.Multiplier)
	}
	if delay > m.retry.MaxDelay {
		delay = m.retry.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
