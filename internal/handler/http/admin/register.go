package admin

import (
	"net/http"

	"ajou-menu/internal/usecase/notify"
)

// Deps are the collaborators of the admin routes.
type Deps struct {
	Builder   notify.MenuBuilder
	Notifier  notify.Service
	Dates     DateParser
	Scheduler Scheduler // nil when the process runs without a scheduler
}

// Register registers the admin routes on mux, each wrapped by guard
// (admin authentication, rate limiting).
func Register(mux *http.ServeMux, deps Deps, guard func(http.Handler) http.Handler) {
	mux.Handle("POST /send-menu", guard(SendMenuHandler{
		Builder:  deps.Builder,
		Notifier: deps.Notifier,
		Dates:    deps.Dates,
	}))
	mux.Handle("POST /schedule/start", guard(StartHandler{Scheduler: deps.Scheduler}))
	mux.Handle("POST /schedule/stop", guard(StopHandler{Scheduler: deps.Scheduler}))
}
