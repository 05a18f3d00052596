package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ajou-menu/internal/handler/http/menu"
)

func newShowCmd(logger *slog.Logger, load Loader) *cobra.Command {
	var (
		date   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show [--date YYYY-MM-DD] [--json]",
		Short: "Prints the menu of a day (default today).",
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

			m := env.Builder.BuildDailyMenu(cmd.Context(), day)
			for _, src := range m.Unavailable() {
				logger.Warn("menu source unavailable",
					slog.String("source", string(src)),
					slog.String("status", string(m.Report(src).Status)))
			}

			out := cmd.OutOrStdout()
			if !asJSON {
				_, err = fmt.Fprintln(out, m.RenderedText())
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(menu.NewResponse(m))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Menu date as YYYY-MM-DD (default today).")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the menu and per-source reports as JSON.")
	return cmd
}
