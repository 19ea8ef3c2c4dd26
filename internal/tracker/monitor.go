package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
	"github.com/Teeee306/PM-alert-bot3/internal/notify"
)

// MarketFetcher retrieves markets from the data provider.
type MarketFetcher interface {
	GetMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error)
	GetMarketBySlug(ctx context.Context, slug string) (domain.Market, error)
}

// Monitor composes one full check cycle per station: fetch the current
// market, diff prices, detect resolution, and push alerts through the
// notifier. It also refreshes each station's slug from the market list.
type Monitor struct {
	fetcher  MarketFetcher
	tracker  *Tracker
	notifier *notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewMonitor creates a Monitor.
func NewMonitor(fetcher MarketFetcher, tracker *Tracker, notifier *notify.Notifier, logger *slog.Logger) *Monitor {
	return &Monitor{
		fetcher:  fetcher,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "monitor")),
		now:      time.Now,
	}
}

// Check runs one check cycle for a station. It returns nil without fetching
// when tracking is disabled or no slug is known; both guards are evaluated
// once at entry, so a cycle already in flight when tracking is disabled still
// completes.
func (m *Monitor) Check(ctx context.Context, station domain.Station) error {
	if !m.tracker.IsTracking(station) {
		return nil
	}
	slug, ok := m.tracker.CurrentSlug(station)
	if !ok {
		return nil
	}

	market, err := m.fetcher.GetMarketBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("tracker: check %s: %w", station, err)
	}

	if changes := m.tracker.Diff(station, market); len(changes) > 0 {
		text := fmt.Sprintf("[%s] %s", station.Label(), strings.Join(changes, ", "))
		if err := m.notifier.Notify(ctx, notify.EventPriceChange, text); err != nil {
			m.logger.ErrorContext(ctx, "price change alert failed",
				slog.String("station", string(station)),
				slog.String("error", err.Error()),
			)
		}
	}

	if announcement, ok := m.tracker.DetectResolution(station, market, m.now()); ok {
		if err := m.notifier.Notify(ctx, notify.EventResolution, announcement); err != nil {
			m.logger.ErrorContext(ctx, "resolution alert failed",
				slog.String("station", string(station)),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// RefreshSlugs re-resolves every station's market slug from the full market
// list as of the given date. Stations with no matching market have their slug
// cleared; the next check cycles skip them until the following refresh.
func (m *Monitor) RefreshSlugs(ctx context.Context, asOf time.Time) error {
	markets, err := m.listAllMarkets(ctx)
	if err != nil {
		return fmt.Errorf("tracker: refresh slugs: %w", err)
	}

	for _, station := range domain.Stations() {
		slug, ok := ResolveSlug(station, markets, asOf)
		if !ok {
			m.logger.Info("no market found for station today",
				slog.String("station", string(station)),
			)
			m.tracker.SetSlug(station, "")
			continue
		}

		m.tracker.SetSlug(station, slug)
		m.logger.Info("updated station slug",
			slog.String("station", string(station)),
			slog.String("slug", slug),
		)
	}

	return nil
}

// Current fetches the station's current market and returns its top outcomes
// formatted for a snapshot reply. No tracking state is read or written beyond
// the slug lookup. Returns domain.ErrNoMarket when no slug is known.
func (m *Monitor) Current(ctx context.Context, station domain.Station) ([]string, error) {
	slug, ok := m.tracker.CurrentSlug(station)
	if !ok {
		return nil, fmt.Errorf("tracker: current %s: %w", station, domain.ErrNoMarket)
	}

	market, err := m.fetcher.GetMarketBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("tracker: current %s: %w", station, err)
	}

	lines := TopOutcomes(market)
	if len(lines) == 0 {
		return nil, fmt.Errorf("tracker: current %s: %w", station, domain.ErrNoMarket)
	}
	return lines, nil
}

// Resolution fetches the station's current market and reports its resolution
// state as a formatted line. Returns domain.ErrNoMarket when no slug is
// known.
func (m *Monitor) Resolution(ctx context.Context, station domain.Station) (string, error) {
	slug, ok := m.tracker.CurrentSlug(station)
	if !ok {
		return "", fmt.Errorf("tracker: resolution %s: %w", station, domain.ErrNoMarket)
	}

	market, err := m.fetcher.GetMarketBySlug(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("tracker: resolution %s: %w", station, err)
	}

	if !market.Resolved() {
		return fmt.Sprintf("[%s] Market not yet resolved", station.Label()), nil
	}
	return fmt.Sprintf("✅ [%s] %s: %s",
		station.Label(), market.EndDate.Format("2006-01-02"), market.ResolvedOutcome), nil
}

// listAllMarkets pages through the market list endpoint until a short page
// signals the end.
func (m *Monitor) listAllMarkets(ctx context.Context) ([]domain.Market, error) {
	const pageSize = 500

	var all []domain.Market
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := m.fetcher.GetMarkets(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("fetching markets at offset %d: %w", offset, err)
		}
		all = append(all, page...)

		if len(page) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}
