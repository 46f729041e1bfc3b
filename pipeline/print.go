package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/coder/etlrun/config"
)

// Print writes the flags an Exec pipeline would receive, one per line,
// instead of running anything.
type Print struct {
	W io.Writer
}

func (p Print) Complete(_ context.Context, params config.Record) error {
	flags, err := Flags(params)
	if err != nil {
		return err
	}
	for _, flag := range flags {
		_, err = fmt.Fprintln(p.W, flag)
		if err != nil {
			return err
		}
	}
	return nil
}
