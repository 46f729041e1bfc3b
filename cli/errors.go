package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coder/etlrun/config"
	"github.com/coder/etlrun/pipeline"
)

// FormatCobraError renders err for the terminal. Errors that are not about
// the parameter files or the pipeline get a pointer to the usage text.
func FormatCobraError(err error, cmd *cobra.Command) string {
	msg := color.New(color.FgRed).Sprint(err.Error())

	var (
		loadErr *config.LoadError
		runErr  *pipeline.RunError
	)
	if errors.As(err, &loadErr) || errors.As(err, &runErr) {
		return msg
	}
	return fmt.Sprintf("%s\nRun '%s --help' for usage.", msg, cmd.CommandPath())
}

// ExitCode returns the process exit code for err. A pipeline command that
// exited unsuccessfully passes its own code through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var runErr *pipeline.RunError
	if errors.As(err, &runErr) && runErr.ExitCode > 0 {
		return runErr.ExitCode
	}
	return 1
}
