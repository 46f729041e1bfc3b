// Package config selects and loads the parameter files that configure a
// pipeline run.
package config

import (
	"fmt"
	"io"
)

// Target identifies which parameter file a run uses.
type Target int

const (
	// TargetDefault is used when no target, or an unknown one, is given.
	// It resolves to the cora parameters.
	TargetDefault Target = iota
	TargetCora
	TargetTwitch
	TargetTest
)

// TestNotice is written before a run that uses the test parameters.
const TestNotice = "Loading in Test Data..."

// Targets lists every recognized target in a stable order.
var Targets = []Target{TargetCora, TargetTwitch, TargetTest}

// String returns the name used on the command line. TargetDefault has no
// name of its own.
func (t Target) String() string {
	switch t {
	case TargetCora:
		return "cora"
	case TargetTwitch:
		return "twitch"
	case TargetTest:
		return "test"
	case TargetDefault:
		return "default"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Path returns the parameter file for the target, relative to the base
// directory of the run.
func (t Target) Path() string {
	switch t {
	case TargetTwitch:
		return "config/twitch_params.json"
	case TargetTest:
		return "config/test_params.json"
	case TargetCora, TargetDefault:
		return "config/cora_params.json"
	default:
		// Out of range values fall back like unknown names do.
		return TargetDefault.Path()
	}
}

// ParseTarget maps a command line token onto a Target. Unknown names map
// onto TargetDefault and ok is false.
func ParseTarget(name string) (t Target, ok bool) {
	for _, candidate := range Targets {
		if candidate.String() == name {
			return candidate, true
		}
	}
	return TargetDefault, false
}

// TargetFromArgs inspects only the first argument. No arguments, or an
// unrecognized first argument, yields TargetDefault.
func TargetFromArgs(args []string) Target {
	if len(args) == 0 {
		return TargetDefault
	}
	t, _ := ParseTarget(args[0])
	return t
}

// SelectPath returns the parameter file for the invocation arguments. It
// never fails. Selecting the test target writes TestNotice to notice, which
// may be nil.
func SelectPath(args []string, notice io.Writer) string {
	t := TargetFromArgs(args)
	if t == TargetTest && notice != nil {
		_, _ = fmt.Fprintln(notice, TestNotice)
	}
	return t.Path()
}
