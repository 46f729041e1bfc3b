package clitiming_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coder/etlrun/cli/clitiming"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	t.Run("Disabled", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		r := clitiming.New(&buf, false)
		r.Record("load %s", "cora")
		r.Stage("run")()
		require.Empty(t, buf.String())
	})

	t.Run("Enabled", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		r := clitiming.New(&buf, true)
		r.Record("load %s", "cora")
		r.Stage("run")()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		require.True(t, strings.HasPrefix(lines[0], "timing: "))
		require.True(t, strings.HasSuffix(lines[0], ": load cora"))
		require.True(t, strings.HasSuffix(lines[1], ": enter run"))
		require.True(t, strings.HasSuffix(lines[2], ": exit run"))
	})
}
