// Command planeatctl is the planeat operator tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"planeat-api/internal/cli"
	"planeat-api/internal/logx"
)

func main() {
	_ = godotenv.Load()
	logx.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	defer func() { _ = logx.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
