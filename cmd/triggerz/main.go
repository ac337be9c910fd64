// Command triggerz replays trigger scenarios and watches files for changes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zoobzio/triggerz/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := 0
	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		code = 1
	}
	stop()
	os.Exit(code)
}
