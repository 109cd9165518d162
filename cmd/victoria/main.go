// Command victoria calibrates Likert survey responses, scores constructs and
// clusters respondents into archetypes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// Use stderr since the logger may not be initialized yet
		_, _ = os.Stderr.WriteString("victoria: " + err.Error() + "\n")
		if hint := errors.FlattenHints(err); hint != "" {
			_, _ = os.Stderr.WriteString("hint: " + hint + "\n")
		}
		stop()
		os.Exit(1)
	}
}
