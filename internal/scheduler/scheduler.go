// Package scheduler drives the bot's timers: a fixed 30-second check cycle
// per station and a once-daily slug refresh at a configured wall-clock time.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
	"github.com/Teeee306/PM-alert-bot3/internal/tracker"
)

// Scheduler owns the polling and refresh loops.
type Scheduler struct {
	monitor      *tracker.Monitor
	pollInterval time.Duration
	refreshHour  int
	refreshMin   int
	loc          *time.Location
	logger       *slog.Logger
}

// New creates a Scheduler. The daily refresh fires at refreshHour:refreshMin
// wall-clock time in loc.
func New(monitor *tracker.Monitor, pollInterval time.Duration, refreshHour, refreshMin int, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		monitor:      monitor,
		pollInterval: pollInterval,
		refreshHour:  refreshHour,
		refreshMin:   refreshMin,
		loc:          loc,
		logger:       logger.With(slog.String("component", "scheduler")),
	}
}

// Run resolves slugs once at startup, then starts one poll loop per station
// and the daily refresh loop under a single errgroup. It blocks until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "scheduler starting",
		slog.Duration("poll_interval", s.pollInterval),
		slog.String("refresh_at", s.refreshAt()),
		slog.String("timezone", s.loc.String()),
	)

	// Initial resolution so /current and /alert work before the first
	// daily refresh. Failure degrades to "no slug"; the next refresh
	// retries.
	if err := s.monitor.RefreshSlugs(ctx, time.Now().In(s.loc)); err != nil {
		s.logger.ErrorContext(ctx, "initial slug refresh failed",
			slog.String("error", err.Error()),
		)
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, station := range domain.Stations() {
		station := station
		g.Go(func() error {
			return s.pollLoop(ctx, station)
		})
	}

	g.Go(func() error {
		return s.refreshLoop(ctx)
	})

	return g.Wait()
}

// pollLoop runs one check cycle for the station at every tick. Cycle errors
// are logged and swallowed; the next tick is the retry.
func (s *Scheduler) pollLoop(ctx context.Context, station domain.Station) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.monitor.Check(ctx, station); err != nil {
				s.logger.ErrorContext(ctx, "check cycle failed",
					slog.String("station", string(station)),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// refreshLoop re-arms a single-shot timer for the next refresh instant after
// every firing. Re-arming from the current wall clock rather than ticking at
// a fixed period keeps the schedule aligned across DST transitions.
func (s *Scheduler) refreshLoop(ctx context.Context) error {
	for {
		next := nextRefresh(time.Now().In(s.loc), s.refreshHour, s.refreshMin)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if err := s.monitor.RefreshSlugs(ctx, time.Now().In(s.loc)); err != nil {
				s.logger.ErrorContext(ctx, "daily slug refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (s *Scheduler) refreshAt() string {
	return time.Date(0, 1, 1, s.refreshHour, s.refreshMin, 0, 0, time.UTC).Format("15:04")
}

// nextRefresh returns the next wall-clock instant at hour:min strictly after
// now, in now's location.
func nextRefresh(now time.Time, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
