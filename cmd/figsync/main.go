// Command figsync keeps a blob store of rendered design frames in sync.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/figsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/figsync/internal/bootstrap"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version, bootstrap.Load); err != nil {
		stop()
		os.Exit(1)
	}
}
