package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/BrunoXDR/project-manager-v2/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewApp(), os.Args[1:])
	stop()
	os.Exit(code)
}
