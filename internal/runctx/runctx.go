// Package runctx carries per-run identity through a pipeline's context.
package runctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const runKey key = 0

// Run identifies one pipeline invocation.
type Run struct {
	ID        string
	Pipeline  string
	StartTime time.Time
	Logger    zerolog.Logger
}

// Start attaches a new Run to ctx. The run's logger tags every event with
// run_id and pipeline.
func Start(ctx context.Context, pipeline string) (context.Context, *Run) {
	id := uuid.NewString()
	r := &Run{
		ID:        id,
		Pipeline:  pipeline,
		StartTime: time.Now(),
		Logger:    log.With().Str("run_id", id).Str("pipeline", pipeline).Logger(),
	}
	return context.WithValue(ctx, runKey, r), r
}

// From returns the Run stored in ctx, or a placeholder when there is none.
func From(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey).(*Run); ok {
		return r
	}
	return &Run{
		ID:        "unknown",
		StartTime: time.Now(),
		Logger:    log.Logger,
	}
}

// Elapsed returns the time since the run started.
func (r *Run) Elapsed() time.Duration {
	return time.Since(r.StartTime)
}

// RunError wraps an error with the run it belongs to
type RunError struct {
	RunID string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Wrap tags err with the run in ctx. A nil err stays nil.
func Wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{RunID: From(ctx).ID, Err: err}
}
