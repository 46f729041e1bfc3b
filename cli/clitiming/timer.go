// Package clitiming contains facilities for debugging what's taking so long
// for a run to complete.
package clitiming

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// std cannot be enabled by a CLI option because it's used to debug the CLI
// itself.
var std = New(os.Stderr, os.Getenv("ETLRUN_DEBUG_TIMING") != "")

// Recorder prints the time since it was created and since its previous
// record.
type Recorder struct {
	enabled bool

	mu    sync.Mutex
	w     io.Writer
	start time.Time
	last  time.Time
}

func New(w io.Writer, enabled bool) *Recorder {
	return &Recorder{
		enabled: enabled,
		w:       w,
		start:   time.Now(),
	}
}

func (r *Recorder) Record(fmtStr string, args ...interface{}) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var secSinceLast float64
	if !r.last.IsZero() {
		secSinceLast = now.Sub(r.last).Seconds()
	}
	r.last = now
	_, _ = fmt.Fprintf(
		r.w,
		"timing: %0.3fs %0.3fs: %s\n", now.Sub(r.start).Seconds(), secSinceLast, fmt.Sprintf(fmtStr, args...),
	)
}

// Stage records entering name and returns a func recording its exit.
//
//	defer r.Stage("load")()
func (r *Recorder) Stage(name string) func() {
	r.Record("enter %s", name)
	return func() {
		r.Record("exit %s", name)
	}
}

// Record records on the process-wide recorder, enabled by
// $ETLRUN_DEBUG_TIMING.
func Record(fmtStr string, args ...interface{}) {
	std.Record(fmtStr, args...)
}

// Stage is Recorder.Stage on the process-wide recorder.
func Stage(name string) func() {
	return std.Stage(name)
}
