package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"ajou-menu/internal/handler/http/respond"
	"ajou-menu/internal/usecase/notify"
)

var errNoChannels = errors.New("no delivery channels are enabled")

func newSendCmd(logger *slog.Logger, load Loader) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "send [--date YYYY-MM-DD]",
		Short: "Delivers the menu of a day through every enabled channel.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(logger)
			if err != nil {
				return err
			}
			day, err := env.Dates.ParseDate(date)
			if err != nil {
				return err
			}
			svc, err := env.Notifier()
			if err != nil {
				return err
			}
			if notify.EnabledCount(svc.ChannelHealth()) == 0 {
				return errNoChannels
			}

			m, results, sendErr := notify.SendDailyMenu(cmd.Context(), env.Builder, svc, day)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s 메뉴 전송 결과\n", m.DateString())
			for _, r := range results {
				line := fmt.Sprintf("  %-8s %-8s %s", r.Channel, r.Status, r.Duration.Round(time.Millisecond))
				if r.Error != "" {
					line += "  " + respond.SanitizeMessage(r.Error)
				}
				fmt.Fprintln(out, line)
			}
			return sendErr
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Menu date as YYYY-MM-DD (default today).")
	return cmd
}
