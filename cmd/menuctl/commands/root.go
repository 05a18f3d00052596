package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ajou-menu/internal/config"
	"ajou-menu/internal/infra/notifier"
	"ajou-menu/internal/infra/worker"
	"ajou-menu/internal/usecase/notify"
)

// DateParser turns a --date value into a calendar date; empty means today.
type DateParser interface {
	ParseDate(value string) (time.Time, error)
}

// Env is what the commands run against.
type Env struct {
	Builder notify.MenuBuilder
	Dates   DateParser

	// Notifier is called only by commands that deliver.
	Notifier func() (notify.Service, error)
}

// Loader builds the Env from configuration.
type Loader func(logger *slog.Logger) (*Env, error)

// NewRootCmd returns the menuctl command tree.
func NewRootCmd(logger *slog.Logger, load Loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "menuctl",
		Short:         "menuctl fetches the Ajou University cafeteria menu.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newShowCmd(logger, load), newSendCmd(logger, load))
	return root
}

// ExecuteContext runs menuctl with the environment-backed loader and exits
// non-zero on failure.
func ExecuteContext(ctx context.Context, logger *slog.Logger) {
	if err := NewRootCmd(logger, LoadEnv).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// LoadEnv wires the real menu pipeline and delivery channels.
func LoadEnv(logger *slog.Logger) (*Env, error) {
	menuCfg, err := config.LoadMenuConfig(logger, nil)
	if err != nil {
		return nil, err
	}
	menuSvc, err := menuCfg.NewMenuService()
	if err != nil {
		return nil, err
	}

	return &Env{
		Builder: menuSvc,
		Dates:   menuCfg,
		Notifier: func() (notify.Service, error) {
			notifyCfg, err := notifier.LoadConfig(logger)
			if err != nil {
				return nil, err
			}
			workerCfg := worker.LoadConfigFromEnv(logger, nil)
			return notify.NewService(notify.ChannelsFromConfig(notifyCfg), workerCfg.NotifyMaxConcurrent), nil
		},
	}, nil
}
