package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/coder/flog"

	"github.com/coder/etlrun/config"
)

// listTargets prints every target with its parameter file and whether that
// file loads.
func (r *RootCmd) listTargets(cmd *cobra.Command) error {
	fsys, err := r.configFS()
	if err != nil {
		return err
	}
	var report config.Report
	err = report.Run(cmd.Context(), fsys)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"Target", "Path", "Parameters", "Status"})
	for _, tr := range report.Targets {
		status, params := "ok", any(tr.Keys)
		if tr.Err != nil {
			status, params = tr.Err.Error(), "-"
		}
		tw.AppendRow(table.Row{tr.Target, tr.Path, params, status})
	}
	tw.SetCaption("Missing or unrecognized targets use %s.", config.TargetDefault.Path())
	tw.Render()

	flog.New(cmd.ErrOrStderr()).Info("%d of %d targets have loadable parameters", report.Loadable(), len(report.Targets))
	return nil
}
