// Command menuctl fetches the cafeteria menu from the command line and can
// deliver it through the configured channels.
package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ajou-menu/cmd/menuctl/commands"
	"ajou-menu/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx, logger)
}
