package config

import (
	"context"

	"github.com/spf13/afero"
)

// TargetReport describes whether a target's parameter file can be loaded.
type TargetReport struct {
	Target   Target
	Path     string
	Loadable bool
	Keys     int
	Err      error
}

// Report holds a TargetReport for every recognized target.
type Report struct {
	Targets []TargetReport
}

// Run loads every recognized target's parameter file from fs. Load errors
// are recorded on the target's entry rather than returned.
func (r *Report) Run(ctx context.Context, fs afero.Fs) error {
	r.Targets = r.Targets[:0]
	for _, t := range Targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		tr := TargetReport{
			Target: t,
			Path:   t.Path(),
		}
		record, err := Load(fs, tr.Path)
		if err != nil {
			tr.Err = err
		} else {
			tr.Loadable = true
			tr.Keys = len(record)
		}
		r.Targets = append(r.Targets, tr)
	}
	return nil
}

// Loadable returns the number of targets whose file loaded.
func (r *Report) Loadable() int {
	var n int
	for _, tr := range r.Targets {
		if tr.Loadable {
			n++
		}
	}
	return n
}
