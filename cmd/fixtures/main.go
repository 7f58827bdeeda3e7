package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Create a context that is cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := newCLI()
	if err := cli.root.ExecuteContext(ctx); err != nil {
		log := cli.logger
		if log == nil {
			log = slog.Default()
		}
		log.Error("fixtures failed", slog.String("error", err.Error()))
		cancel()
		os.Exit(1)
	}
}
