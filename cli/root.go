// Package cli implements the etlrun command tree.
package cli

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"

	"github.com/coder/etlrun/cli/clitiming"
	"github.com/coder/etlrun/config"
)

const (
	envPrefix = "etlrun"

	flagDir      = "dir"
	flagVerbose  = "verbose"
	flagPipeline = "pipeline"
	flagDryRun   = "dry-run"
	flagShow     = "show"
	flagList     = "list-targets"
)

// RootCmd holds the state shared by every subcommand. Flag values are read
// through viper so each flag can also be set with an ETLRUN_ variable.
type RootCmd struct {
	v *viper.Viper
}

// Command builds the root command. It has no subcommands, so every first
// argument is a target name.
func (r *RootCmd) Command() *cobra.Command {
	defer clitiming.Stage("Command")()

	r.v = viper.New()
	r.v.SetEnvPrefix(envPrefix)
	r.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	r.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "etlrun [target]",
		Short: "Run the pipeline with the parameters of a named target",
		Long: `Run the pipeline with the parameters of a named target.

Targets are cora, twitch and test. A missing or unrecognized target uses the
cora parameters. Every field of the selected parameter file is passed to the
pipeline command as a --name=value flag.`,
		Example: `  etlrun twitch --pipeline "python -m src.etl"
  ETLRUN_PIPELINE="python -m src.etl" etlrun test
  etlrun --dry-run
  etlrun twitch --show
  etlrun --list-targets`,
		// Only the first argument is inspected, the rest are ignored.
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.loadDotEnv,
		RunE:              r.run,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.String(flagDir, ".", "Directory containing the config/ parameter files. The pipeline runs here.")
	persistent.BoolP(flagVerbose, "v", false, "Enable debug logging.")
	local := cmd.Flags()
	local.String(flagPipeline, "", "Pipeline command line. Parameters are appended as --name=value flags.")
	local.Bool(flagDryRun, false, "Print the parameter flags instead of running the pipeline.")
	local.Bool(flagShow, false, "Print the selected parameters as YAML instead of running the pipeline.")
	local.Bool(flagList, false, "List targets and whether their parameter files load.")
	cmd.MarkFlagsMutuallyExclusive(flagDryRun, flagShow, flagList)

	// Binding only fails for a nil flag.
	_ = r.v.BindPFlags(persistent)
	_ = r.v.BindPFlags(local)
	return cmd
}

// loadDotEnv loads a .env file from the run directory when one exists.
// Variables already set in the environment win.
func (r *RootCmd) loadDotEnv(_ *cobra.Command, _ []string) error {
	err := godotenv.Load(filepath.Join(r.v.GetString(flagDir), ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return xerrors.Errorf("load .env: %w", err)
	}
	return nil
}

// dir returns the absolute run directory.
func (r *RootCmd) dir() (string, error) {
	dir, err := filepath.Abs(r.v.GetString(flagDir))
	if err != nil {
		return "", xerrors.Errorf("resolve --%s: %w", flagDir, err)
	}
	return dir, nil
}

// configFS returns the filesystem parameter paths are resolved in.
func (r *RootCmd) configFS() (afero.Fs, error) {
	dir, err := r.dir()
	if err != nil {
		return nil, err
	}
	return afero.NewBasePathFs(afero.NewOsFs(), dir), nil
}

func (r *RootCmd) logger(w io.Writer) slog.Logger {
	logger := slog.Make(sloghuman.Sink(w)).Leveled(slog.LevelInfo)
	if r.v.GetBool(flagVerbose) {
		logger = logger.Leveled(slog.LevelDebug)
	}
	return logger
}

// loadSelected loads the parameter file selected by args without printing
// the test notice.
func (r *RootCmd) loadSelected(args []string) (string, config.Record, error) {
	fsys, err := r.configFS()
	if err != nil {
		return "", nil, err
	}
	path := config.SelectPath(args, nil)
	record, err := config.Load(fsys, path)
	return path, record, err
}
