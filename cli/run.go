package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/coder/etlrun/cli/clitiming"
	"github.com/coder/etlrun/dispatch"
	"github.com/coder/etlrun/pipeline"
)

func (r *RootCmd) run(cmd *cobra.Command, args []string) error {
	defer clitiming.Stage("run")()

	switch {
	case r.v.GetBool(flagShow):
		return r.showParams(cmd, args)
	case r.v.GetBool(flagList):
		return r.listTargets(cmd)
	}

	logger := r.logger(cmd.ErrOrStderr())
	dir, err := r.dir()
	if err != nil {
		return err
	}
	fsys, err := r.configFS()
	if err != nil {
		return err
	}

	var p pipeline.Pipeline
	if r.v.GetBool(flagDryRun) {
		p = pipeline.Print{W: cmd.OutOrStdout()}
	} else {
		line := r.v.GetString(flagPipeline)
		if line == "" {
			return xerrors.Errorf("no pipeline command: set --%s or $ETLRUN_PIPELINE", flagPipeline)
		}
		exe, err := pipeline.ParseCommand(line)
		if err != nil {
			return err
		}
		exe.Dir = dir
		exe.Stdout = cmd.OutOrStdout()
		exe.Stderr = cmd.ErrOrStderr()
		exe.Logger = logger.Named("pipeline")
		p = exe
	}

	d := dispatch.New(&dispatch.Options{
		FS:       fsys,
		Pipeline: p,
		Stdout:   cmd.OutOrStdout(),
		Logger:   logger.Named("dispatch"),
	})
	defer clitiming.Stage("dispatch")()
	return d.Run(cmd.Context(), args)
}
