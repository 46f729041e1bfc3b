package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/armon/circbuf"
	"github.com/cli/safeexec"
	"github.com/go-playground/validator/v10"
	"github.com/google/shlex"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"

	"cdr.dev/slog"

	"github.com/coder/etlrun/config"
	"github.com/coder/etlrun/validate"
)

// stderrTailSize is how much of a failed command's stderr is kept on the
// returned RunError.
const stderrTailSize = 4 << 10

// Exec runs an external command as the pipeline. The command receives its
// own Args followed by the output of Flags.
type Exec struct {
	// Command is resolved against $PATH unless it contains a separator.
	Command string `validate:"required,executable"`
	Args    []string
	// Dir is the working directory of the command. Empty means the current
	// directory.
	Dir string
	// Env is appended to the current process environment.
	Env []string

	Stdout io.Writer `validate:"-"`
	Stderr io.Writer `validate:"-"`
	Logger slog.Logger `validate:"-"`
}

// ParseCommand splits a shell-style command line into an Exec.
func ParseCommand(line string) (*Exec, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, xerrors.Errorf("split pipeline command: %w", err)
	}
	if len(words) == 0 {
		return nil, xerrors.New("pipeline command is empty")
	}
	return &Exec{
		Command: words[0],
		Args:    words[1:],
	}, nil
}

// RunError is returned when the command could not be started or exited
// unsuccessfully.
type RunError struct {
	Command string
	// ExitCode is the command's exit code, or -1 if it did not exit
	// normally.
	ExitCode int
	// Stderr holds the end of the command's standard error.
	Stderr string
	Err    error
}

func (e *RunError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("pipeline %s exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("pipeline %s: %v", e.Command, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func newExecValidator() *validate.Validator {
	v := validate.New()
	err := v.RegisterValidation("executable", func(fl validator.FieldLevel) error {
		_, err := safeexec.LookPath(fl.Field().String())
		return err
	})
	if err != nil {
		panic(err)
	}
	return v
}

func (e *Exec) Complete(ctx context.Context, params config.Record) error {
	err := newExecValidator().Struct(e)
	if err != nil {
		return xerrors.Errorf("invalid pipeline command: %w", err)
	}
	flags, err := Flags(params)
	if err != nil {
		return err
	}
	path, err := safeexec.LookPath(e.Command)
	if err != nil {
		return xerrors.Errorf("look up %q: %w", e.Command, err)
	}

	tail, err := circbuf.NewBuffer(stderrTailSize)
	if err != nil {
		return xerrors.Errorf("create stderr buffer: %w", err)
	}

	args := append(slices.Clone(e.Args), flags...)
	//nolint:gosec
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = e.Dir
	cmd.Env = append(os.Environ(), e.Env...)
	if run, ok := RunFromContext(ctx); ok {
		cmd.Env = append(cmd.Env, run.Env()...)
	}
	cmd.Stdout = orDiscard(e.Stdout)
	cmd.Stderr = io.MultiWriter(orDiscard(e.Stderr), tail)

	e.Logger.Debug(ctx, "starting pipeline command",
		slog.F("path", path),
		slog.F("args", args),
	)
	err = cmd.Run()
	if err != nil {
		runErr := &RunError{
			Command:  e.Command,
			ExitCode: -1,
			Stderr:   tail.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			runErr.ExitCode = exitErr.ExitCode()
		}
		e.Logger.Warn(ctx, "pipeline command failed",
			slog.F("exit_code", runErr.ExitCode),
			slog.F("stderr_tail", runErr.Stderr),
			slog.Error(err),
		)
		return runErr
	}
	e.Logger.Debug(ctx, "pipeline command finished")
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
