package entity

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the calendar date format used by the dining sites and the API.
const DateLayout = "2006-01-02"

// MenuSource identifies one dining site and the extraction rule that applies to it.
type MenuSource string

const (
	// DormitoryCafeteria is the dormitory dining hall (기숙사식당).
	DormitoryCafeteria MenuSource = "dormitory"

	// StaffCafeteria is the faculty and staff dining hall (교직원식당).
	StaffCafeteria MenuSource = "staff"
)

// AllSources returns every known source in presentation order.
func AllSources() []MenuSource {
	return []MenuSource{DormitoryCafeteria, StaffCafeteria}
}

// Label returns the human-readable name used in rendered menus.
func (s MenuSource) Label() string {
	switch s {
	case DormitoryCafeteria:
		return "기숙사식당"
	case StaffCafeteria:
		return "교직원식당"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known sources.
func (s MenuSource) Valid() bool {
	switch s {
	case DormitoryCafeteria, StaffCafeteria:
		return true
	}
	return false
}

// ParseMenuSource converts a wire value into a MenuSource.
func ParseMenuSource(v string) (MenuSource, error) {
	s := MenuSource(v)
	if !s.Valid() {
		return "", &ValidationError{Field: "source", Message: fmt.Sprintf("unknown source %q", v)}
	}
	return s, nil
}

// MealPeriod is the meal a dish is served at.
type MealPeriod string

const (
	Lunch  MealPeriod = "lunch"
	Dinner MealPeriod = "dinner"
)

// MealPeriods returns the extracted periods in presentation order.
func MealPeriods() []MealPeriod {
	return []MealPeriod{Lunch, Dinner}
}

// Label returns the Korean name of the period.
func (p MealPeriod) Label() string {
	switch p {
	case Lunch:
		return "점심"
	case Dinner:
		return "저녁"
	default:
		return string(p)
	}
}

// MenuEntry is one dish or line item of a published menu.
type MenuEntry struct {
	Text     string     `json:"text"`
	Category MealPeriod `json:"category,omitempty"`
	MealType string     `json:"meal_type,omitempty"` // e.g. "A코너", "한식"
}

// ReportStatus is the outcome of processing one source for one date.
type ReportStatus string

const (
	// StatusOK means at least one dish survived filtering.
	StatusOK ReportStatus = "ok"

	// StatusEmpty means the page was valid but listed no dishes (holiday, closed day).
	StatusEmpty ReportStatus = "empty"

	// StatusUnparseable means the page was fetched but its structure was not recognized.
	StatusUnparseable ReportStatus = "unparseable"

	// StatusUnreachable means the page could not be retrieved.
	StatusUnreachable ReportStatus = "unreachable"
)

// MenuReport is the result of processing a single source for a single date.
type MenuReport struct {
	Source  MenuSource   `json:"source"`
	Date    time.Time    `json:"-"`
	Entries []MenuEntry  `json:"entries"`
	Status  ReportStatus `json:"status"`

	// Detail carries the failure cause for non-ok statuses. It is meant for
	// logs and operators, not for end users.
	Detail string `json:"detail,omitempty"`
}

// EntriesFor returns the entries served at period, preserving order.
func (r *MenuReport) EntriesFor(period MealPeriod) []MenuEntry {
	var out []MenuEntry
	for _, e := range r.Entries {
		if e.Category == period {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a copy of r that shares no entries with it.
// Clone of a nil report is nil.
func (r *MenuReport) Clone() *MenuReport {
	if r == nil {
		return nil
	}
	c := *r
	c.Entries = slices.Clone(r.Entries)
	return &c
}

// NewReport builds a report from cleaned entries and derives its status.
func NewReport(source MenuSource, date time.Time, entries []MenuEntry) *MenuReport {
	status := StatusOK
	if len(entries) == 0 {
		status = StatusEmpty
	}
	return &MenuReport{
		Source:  source,
		Date:    date,
		Entries: entries,
		Status:  status,
	}
}

// FailedReport builds a report for a source that could not be processed.
func FailedReport(source MenuSource, date time.Time, status ReportStatus, cause error) *MenuReport {
	r := &MenuReport{
		Source:  source,
		Date:    date,
		Entries: []MenuEntry{},
		Status:  status,
	}
	if cause != nil {
		r.Detail = cause.Error()
	}
	return r
}

// DailyMenu is the merged view of every source for one date.
// It is immutable once built by NewDailyMenu: it keeps its own copies of the
// reports it was given and hands out copies from Report and Reports.
type DailyMenu struct {
	date     time.Time
	reports  map[MenuSource]*MenuReport
	rendered string
}

// NewDailyMenu merges per-source reports into a DailyMenu.
// A source missing from reports is recorded as unreachable so that the menu
// always carries exactly one report per known source.
func NewDailyMenu(date time.Time, reports map[MenuSource]*MenuReport) *DailyMenu {
	merged := make(map[MenuSource]*MenuReport, len(AllSources()))
	for _, src := range AllSources() {
		r, ok := reports[src]
		if !ok || r == nil {
			r = FailedReport(src, date, StatusUnreachable, ErrSourceMissing)
		}
		merged[src] = r.Clone()
	}

	m := &DailyMenu{date: date, reports: merged}
	m.rendered = Render(m)
	return m
}

// Date returns the calendar date of the menu.
func (m *DailyMenu) Date() time.Time { return m.date }

// DateString returns the date formatted with DateLayout.
func (m *DailyMenu) DateString() string { return m.date.Format(DateLayout) }

// Report returns a copy of the report for src, or nil for an unknown source.
func (m *DailyMenu) Report(src MenuSource) *MenuReport { return m.reports[src].Clone() }

// Reports returns copies of every report in presentation order.
func (m *DailyMenu) Reports() []*MenuReport {
	out := make([]*MenuReport, 0, len(m.reports))
	for _, src := range AllSources() {
		out = append(out, m.reports[src].Clone())
	}
	return out
}

// RenderedText returns the human-readable text used for API responses and chat delivery.
func (m *DailyMenu) RenderedText() string { return m.rendered }

// Unavailable returns the sources whose report is not usable (unreachable or unparseable).
func (m *DailyMenu) Unavailable() []MenuSource {
	var out []MenuSource
	for _, r := range m.Reports() {
		if r.Status == StatusUnreachable || r.Status == StatusUnparseable {
			out = append(out, r.Source)
		}
	}
	return out
}
