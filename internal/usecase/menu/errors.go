// Package menu provides the menu acquisition pipeline: per-source fetch,
// structural parsing, boilerplate filtering, and aggregation of every
// dining source into one DailyMenu.
package menu

import "errors"

// Sentinel errors for menu pipeline operations.
var (
	// ErrUnreachable indicates that a source page could not be retrieved.
	// This covers connection errors, timeouts, and non-success HTTP statuses.
	ErrUnreachable = errors.New("menu source unreachable")

	// ErrUnparseable indicates that a page was retrieved but the expected
	// menu structure was not found, usually because the site layout changed.
	ErrUnparseable = errors.New("menu page unparseable")

	// ErrInvalidRule indicates a boilerplate rule that cannot be used,
	// such as an empty pattern or a regular expression that does not compile.
	ErrInvalidRule = errors.New("invalid boilerplate rule")
)
