package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/coder/etlrun/config"
)

// showParams prints the parameters a run with args would use as YAML.
func (r *RootCmd) showParams(cmd *cobra.Command, args []string) error {
	path, record, err := r.loadSelected(args)
	if err != nil {
		return err
	}
	node, err := config.MarshalYAML(record)
	if err != nil {
		return xerrors.Errorf("render %s: %w", path, err)
	}
	node.HeadComment = path

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	err = enc.Encode(node)
	if err != nil {
		return xerrors.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
