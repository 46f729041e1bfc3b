// Package testutil contains helpers shared by tests.
package testutil

import (
	"context"
	"testing"
	"time"
)

// Constants for timing out operations, usable for creating contexts
// that timeout.
const (
	WaitShort  = 10 * time.Second
	WaitMedium = 15 * time.Second
	WaitLong   = 25 * time.Second
)

// Context returns a context that is canceled after WaitLong or when the
// test finishes.
func Context(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), WaitLong)
	t.Cleanup(cancel)
	return ctx, cancel
}
