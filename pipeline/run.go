package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/coder/etlrun/config"
)

// Run identifies a single dispatch.
type Run struct {
	ID     uuid.UUID
	Target config.Target
}

type runKey struct{}

// WithRun returns a context carrying run.
func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// RunFromContext returns the run stored by WithRun, if any.
func RunFromContext(ctx context.Context) (Run, bool) {
	run, ok := ctx.Value(runKey{}).(Run)
	return run, ok
}

// Env returns the environment variables describing the run to an external
// pipeline command.
// The default target is reported as cora, whose parameters it uses.
func (r Run) Env() []string {
	target := r.Target
	if target == config.TargetDefault {
		target = config.TargetCora
	}
	return []string{
		"ETLRUN_RUN_ID=" + r.ID.String(),
		"ETLRUN_TARGET=" + target.String(),
	}
}
