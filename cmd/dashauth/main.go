// Command dashauth drives the dashboard login state machine from a terminal:
// log in with a service account token or an auth proxy cookie, inspect the
// resulting state, log out, and serve metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, cleanup := newRootCmd()
	err := errors.Join(root.ExecuteContext(ctx), cleanup())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
