package dispatch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/xerrors"

	"cdr.dev/slog/sloggers/slogtest"

	"github.com/coder/etlrun/config"
	"github.com/coder/etlrun/dispatch"
	"github.com/coder/etlrun/pipeline"
	"github.com/coder/etlrun/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder is a pipeline that remembers every call.
type recorder struct {
	calls  []config.Record
	runs   []pipeline.Run
	stdout *bytes.Buffer
	// noticeBeforeCall is the stdout content at the time of the call.
	noticeBeforeCall []string
	err              error
}

func (r *recorder) Complete(ctx context.Context, params config.Record) error {
	r.calls = append(r.calls, params)
	run, _ := pipeline.RunFromContext(ctx)
	r.runs = append(r.runs, run)
	r.noticeBeforeCall = append(r.noticeBeforeCall, r.stdout.String())
	return r.err
}

func setup(t *testing.T, files map[string]string) (*dispatch.Dispatcher, *recorder) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	stdout := &bytes.Buffer{}
	rec := &recorder{stdout: stdout}
	return dispatch.New(&dispatch.Options{
		FS:       fsys,
		Pipeline: rec,
		Stdout:   stdout,
		Logger:   slogtest.Make(t, nil),
	}), rec
}

var allFiles = map[string]string{
	"config/cora_params.json":   `{"epochs": 50}`,
	"config/twitch_params.json": `{"lr": 0.01, "epochs": 100}`,
	"config/test_params.json":   `{"epochs": 1, "sample": true}`,
}

func TestRun(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		args   []string
		want   config.Record
		target config.Target
		notice string
	}{
		{
			name:   "NoArgs",
			want:   config.Record{"epochs": json.Number("50")},
			target: config.TargetDefault,
		},
		{
			name:   "Cora",
			args:   []string{"cora"},
			want:   config.Record{"epochs": json.Number("50")},
			target: config.TargetCora,
		},
		{
			name:   "Twitch",
			args:   []string{"twitch"},
			want:   config.Record{"lr": json.Number("0.01"), "epochs": json.Number("100")},
			target: config.TargetTwitch,
		},
		{
			name:   "Test",
			args:   []string{"test"},
			want:   config.Record{"epochs": json.Number("1"), "sample": true},
			target: config.TargetTest,
			notice: config.TestNotice + "\n",
		},
		{
			name:   "Unknown",
			args:   []string{"citeseer"},
			want:   config.Record{"epochs": json.Number("50")},
			target: config.TargetDefault,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := testutil.Context(t)
			defer cancel()

			d, rec := setup(t, allFiles)
			require.NoError(t, d.Run(ctx, c.args))
			require.Len(t, rec.calls, 1)
			require.Equal(t, c.want, rec.calls[0])
			require.Equal(t, c.target, rec.runs[0].Target)
			require.Equal(t, c.notice, rec.noticeBeforeCall[0])
			require.Equal(t, c.notice, rec.stdout.String())
		})
	}
}

func TestRunOnlyTouchesSelectedFile(t *testing.T) {
	t.Parallel()

	// Only the twitch file exists, so any other read would fail the run.
	d, rec := setup(t, map[string]string{
		"config/twitch_params.json": `{"lr": 0.01, "epochs": 100}`,
	})
	require.NoError(t, d.Run(context.Background(), []string{"twitch"}))
	require.Len(t, rec.calls, 1)
}

func TestRunLoadError(t *testing.T) {
	t.Parallel()

	t.Run("Missing", func(t *testing.T) {
		t.Parallel()
		d, rec := setup(t, map[string]string{
			"config/twitch_params.json": `{"lr": 0.01}`,
		})
		err := d.Run(context.Background(), nil)
		var loadErr *config.LoadError
		require.ErrorAs(t, err, &loadErr)
		require.Equal(t, "config/cora_params.json", loadErr.Path)
		require.Empty(t, rec.calls)
	})

	t.Run("Malformed", func(t *testing.T) {
		t.Parallel()
		d, rec := setup(t, map[string]string{
			"config/test_params.json": `{"epochs": `,
		})
		err := d.Run(context.Background(), []string{"test"})
		var loadErr *config.LoadError
		require.ErrorAs(t, err, &loadErr)
		require.Empty(t, rec.calls)
	})
}

func TestRunPipelineErrorUnmodified(t *testing.T) {
	t.Parallel()

	errPipeline := xerrors.New("out of memory")
	d, rec := setup(t, allFiles)
	rec.err = errPipeline

	err := d.Run(context.Background(), []string{"twitch"})
	require.Same(t, errPipeline, err)
	require.Len(t, rec.calls, 1)
}

func TestRunUniqueRunIDs(t *testing.T) {
	t.Parallel()

	d, rec := setup(t, allFiles)
	require.NoError(t, d.Run(context.Background(), nil))
	require.NoError(t, d.Run(context.Background(), nil))
	require.Len(t, rec.runs, 2)
	require.NotEqual(t, rec.runs[0].ID, rec.runs[1].ID)
}
