// Package dispatch runs a pipeline with the parameter file selected by the
// invocation arguments.
package dispatch

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"cdr.dev/slog"

	"github.com/coder/etlrun/config"
	"github.com/coder/etlrun/pipeline"
)

type Options struct {
	// FS holds the parameter files. Paths are relative to its root.
	FS       afero.Fs
	Pipeline pipeline.Pipeline
	// Stdout receives the notice printed for the test target. May be nil.
	Stdout io.Writer
	Logger slog.Logger
}

type Dispatcher struct {
	opts *Options
}

func New(opts *Options) *Dispatcher {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	return &Dispatcher{opts: opts}
}

// Run selects the parameter file from args, loads it and calls the pipeline
// once with every field as a named parameter. A load failure is returned as
// a *config.LoadError and the pipeline is not called. An error from the
// pipeline is returned unmodified.
func (d *Dispatcher) Run(ctx context.Context, args []string) error {
	var (
		logger = d.opts.Logger
		target = config.TargetFromArgs(args)
		path   = config.SelectPath(args, d.opts.Stdout)
	)
	if target == config.TargetDefault && len(args) > 0 {
		logger.Debug(ctx, "unrecognized target, using default", slog.F("arg", args[0]))
	}

	record, err := config.Load(d.opts.FS, path)
	if err != nil {
		return err
	}

	run := pipeline.Run{
		ID:     uuid.New(),
		Target: target,
	}
	logger = logger.With(slog.F("run_id", run.ID))
	logger.Info(ctx, "dispatching pipeline",
		slog.F("target", target),
		slog.F("path", path),
		slog.F("parameters", record.Keys()),
	)

	return d.opts.Pipeline.Complete(pipeline.WithRun(ctx, run), record)
}
