package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/etlrun/cli"
	"github.com/coder/etlrun/cli/clitiming"
)

func main() {
	var rootCmd cli.RootCmd
	clitiming.Record("enter main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd, err := rootCmd.Command().ExecuteContextC(ctx)
	stop()
	clitiming.Record("exit main")
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, cli.FormatCobraError(err, cmd))
		os.Exit(cli.ExitCode(err))
	}
}
