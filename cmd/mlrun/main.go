// mlrun is a command line tool for moving objects in and out of the
// datastore backends: redis (single node or cluster), s3 and the local
// filesystem.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nethajinirmal13/mlrun/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
