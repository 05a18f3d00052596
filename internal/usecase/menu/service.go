package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/observability/metrics"
	"ajou-menu/internal/observability/tracing"
)

// DefaultSourceTimeout bounds one source pipeline when no timeout is configured.
const DefaultSourceTimeout = 10 * time.Second

// Fetcher retrieves the raw HTML of one dining source for a date.
// Implementations make exactly one network attempt per call and return an
// error wrapping ErrUnreachable on failure.
type Fetcher interface {
	Fetch(ctx context.Context, source entity.MenuSource, date time.Time) (string, error)
}

// Parser extracts raw, unfiltered menu entries from a source's HTML.
// It returns an error wrapping ErrUnparseable when the page structure is not
// recognized, and an empty slice when the structure is valid but lists nothing.
type Parser interface {
	Parse(source entity.MenuSource, html string) ([]entity.MenuEntry, error)
}

// Service builds daily menus by running the fetch, parse, and normalize
// pipeline for every known source.
type Service struct {
	Fetcher       Fetcher
	Parser        Parser
	Normalizer    *Normalizer
	SourceTimeout time.Duration
}

// NewService creates a new menu Service with the provided dependencies.
//
// Parameters:
//   - fetcher: Retrieves raw HTML for a source and date
//   - parser: Extracts raw entries with the per-source rule
//   - normalizer: Cleans entries and drops boilerplate (nil uses DefaultRules)
//   - sourceTimeout: Upper bound for one source pipeline (0 uses DefaultSourceTimeout)
//
// Returns:
//   - *Service: Configured menu service ready to use
//
// Example:
//
//	svc := menu.NewService(scraper.NewFetcher(cfg), scraper.NewParser(), nil, 10*time.Second)
//	daily := svc.BuildDailyMenu(ctx, entity.Today(time.Now(), loc))
func NewService(fetcher Fetcher, parser Parser, normalizer *Normalizer, sourceTimeout time.Duration) *Service {
	if normalizer == nil {
		normalizer = NewDefaultNormalizer()
	}
	if sourceTimeout <= 0 {
		sourceTimeout = DefaultSourceTimeout
	}
	return &Service{
		Fetcher:       fetcher,
		Parser:        parser,
		Normalizer:    normalizer,
		SourceTimeout: sourceTimeout,
	}
}

// BuildDailyMenu fetches, parses, and normalizes every known source for date
// and merges the results.
//
// The source pipelines run concurrently and independently: each has its own
// timeout, a failing or slow source never cancels the other, and the merge
// happens only after every pipeline has finished. The method never fails;
// per-source failures are recorded in the report status. Nothing is cached.
func (s *Service) BuildDailyMenu(ctx context.Context, date time.Time) *entity.DailyMenu {
	start := time.Now()
	sources := entity.AllSources()
	reports := make([]*entity.MenuReport, len(sources))

	// errgroup.Group without a derived context: an error in one task must not
	// cancel the others, and tasks never return errors anyway.
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			reports[i] = s.buildReport(ctx, src, date)
			return nil
		})
	}
	_ = g.Wait()

	bySource := make(map[entity.MenuSource]*entity.MenuReport, len(reports))
	for _, r := range reports {
		bySource[r.Source] = r
	}
	daily := entity.NewDailyMenu(date, bySource)

	unavailable := daily.Unavailable()
	metrics.RecordDailyMenuBuild(len(sources), len(unavailable))
	slog.Info("daily menu built",
		slog.String("date", daily.DateString()),
		slog.Int("sources", len(sources)),
		slog.Int("unavailable", len(unavailable)),
		slog.Duration("duration", time.Since(start)),
	)
	return daily
}

// buildReport runs the pipeline for one source and always returns a report.
// A panic anywhere in the pipeline is converted into an unparseable report.
func (s *Service) buildReport(ctx context.Context, src entity.MenuSource, date time.Time) (report *entity.MenuReport) {
	start := time.Now()
	ctx, span := tracing.StartSourceSpan(ctx, string(src), date.Format(entity.DateLayout))

	var cause error
	defer func() {
		if r := recover(); r != nil {
			cause = fmt.Errorf("%w: panic while processing %s: %v", ErrUnparseable, src, r)
			report = entity.FailedReport(src, date, entity.StatusUnparseable, cause)
		}

		duration := time.Since(start)
		tracing.EndSourceSpan(span, string(report.Status), len(report.Entries), cause)
		metrics.RecordSourceFetch(string(src), string(report.Status), duration)
		metrics.RecordMenuEntries(string(src), len(report.Entries))

		attrs := []any{
			slog.String("source", string(src)),
			slog.String("date", date.Format(entity.DateLayout)),
			slog.String("status", string(report.Status)),
			slog.Int("entries", len(report.Entries)),
			slog.Duration("duration", duration),
		}
		if cause != nil {
			slog.Warn("menu source failed", append(attrs, slog.Any("error", cause))...)
			return
		}
		slog.Info("menu source processed", attrs...)
	}()

	report, cause = s.runPipeline(ctx, src, date)
	return report
}

func (s *Service) runPipeline(ctx context.Context, src entity.MenuSource, date time.Time) (*entity.MenuReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.SourceTimeout)
	defer cancel()

	html, err := s.Fetcher.Fetch(ctx, src, date)
	if err != nil {
		if !errors.Is(err, ErrUnreachable) {
			err = fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
		return entity.FailedReport(src, date, entity.StatusUnreachable, err), err
	}

	raw, err := s.Parser.Parse(src, html)
	if err != nil {
		if !errors.Is(err, ErrUnparseable) {
			err = fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		return entity.FailedReport(src, date, entity.StatusUnparseable, err), err
	}

	entries, stats := s.Normalizer.NormalizeWithStats(raw)
	for reason, n := range stats.Dropped {
		metrics.RecordBoilerplateFiltered(reason, n)
	}
	slog.Debug("menu entries normalized",
		slog.String("source", string(src)),
		slog.Int("raw", len(raw)),
		slog.Int("kept", len(entries)),
		slog.Int("blank", stats.Blank),
	)

	return entity.NewReport(src, date, entries), nil
}
