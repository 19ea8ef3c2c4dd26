package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
	"github.com/Teeee306/PM-alert-bot3/internal/notify"
)

// fakeFetcher serves canned markets and counts detail fetches.
type fakeFetcher struct {
	list        []domain.Market
	details     map[string]domain.Market
	detailCalls int
	err         error
}

func (f *fakeFetcher) GetMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error) {
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.list) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.list) {
		end = len(f.list)
	}
	return f.list[offset:end], nil
}

func (f *fakeFetcher) GetMarketBySlug(ctx context.Context, slug string) (domain.Market, error) {
	f.detailCalls++
	if f.err != nil {
		return domain.Market{}, f.err
	}
	m, ok := f.details[slug]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

// recordingSender captures every alert text it is asked to deliver.
type recordingSender struct {
	sent []string
}

func (r *recordingSender) Send(ctx context.Context, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func (r *recordingSender) Name() string { return "recording" }

func newTestMonitor(f *fakeFetcher) (*Monitor, *Tracker, *recordingSender) {
	trk := NewTracker(testLogger())
	sender := &recordingSender{}
	notifier := notify.NewNotifier([]notify.Sender{sender}, nil, testLogger())
	mon := NewMonitor(f, trk, notifier, testLogger())
	mon.now = func() time.Time { return time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC) }
	return mon, trk, sender
}

func TestCheckSkipsWhenTrackingDisabled(t *testing.T) {
	fetcher := &fakeFetcher{details: map[string]domain.Market{"slug-1": tempMarket(0.62, 0.30, 0.08)}}
	mon, trk, sender := newTestMonitor(fetcher)
	trk.SetSlug(domain.StationLondon, "slug-1")

	if err := mon.Check(context.Background(), domain.StationLondon); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if fetcher.detailCalls != 0 {
		t.Errorf("Check fetched %d times with tracking disabled, want 0", fetcher.detailCalls)
	}
	if len(sender.sent) != 0 {
		t.Errorf("Check sent alerts with tracking disabled: %v", sender.sent)
	}
}

func TestCheckSkipsWithoutSlug(t *testing.T) {
	fetcher := &fakeFetcher{}
	mon, trk, _ := newTestMonitor(fetcher)
	trk.SetTracking(domain.StationLondon, true)

	if err := mon.Check(context.Background(), domain.StationLondon); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if fetcher.detailCalls != 0 {
		t.Errorf("Check fetched %d times without a slug, want 0", fetcher.detailCalls)
	}
}

func TestCheckEmitsPriceChangeAlert(t *testing.T) {
	fetcher := &fakeFetcher{details: map[string]domain.Market{"slug-1": tempMarket(0.62, 0.30, 0.08)}}
	mon, trk, sender := newTestMonitor(fetcher)
	trk.SetTracking(domain.StationLondon, true)
	trk.SetSlug(domain.StationLondon, "slug-1")

	// First cycle records the baseline silently.
	if err := mon.Check(context.Background(), domain.StationLondon); err != nil {
		t.Fatalf("baseline check: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("baseline cycle sent alerts: %v", sender.sent)
	}

	fetcher.details["slug-1"] = tempMarket(0.70, 0.30, 0.08)
	if err := mon.Check(context.Background(), domain.StationLondon); err != nil {
		t.Fatalf("second check: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("got %d alerts, want 1: %v", len(sender.sent), sender.sent)
	}
	want := "[LONDON] Above 25°C ↑ 70% (0.70¢)"
	if sender.sent[0] != want {
		t.Errorf("alert = %q, want %q", sender.sent[0], want)
	}
}

func TestCheckAnnouncesResolutionOnce(t *testing.T) {
	resolved := tempMarket(0.97, 0.02, 0.01)
	resolved.ResolvedOutcome = "Above 25°C"
	fetcher := &fakeFetcher{details: map[string]domain.Market{"slug-1": resolved}}
	mon, trk, sender := newTestMonitor(fetcher)
	trk.SetTracking(domain.StationLondon, true)
	trk.SetSlug(domain.StationLondon, "slug-1")

	if err := mon.Check(context.Background(), domain.StationLondon); err != nil {
		t.Fatalf("first check: %v", err)
	}
	if err := mon.Check(context.Background(), domain.StationLondon); err != nil {
		t.Fatalf("second check: %v", err)
	}

	var announcements int
	for _, s := range sender.sent {
		if s == "✅ [LONDON] 2026-08-30: Above 25°C (highest temp recorded)" {
			announcements++
		}
	}
	if announcements != 1 {
		t.Errorf("got %d resolution announcements, want 1: %v", announcements, sender.sent)
	}

	records := trk.RecentWinners(domain.StationLondon)
	if len(records) != 1 {
		t.Errorf("winners history has %d entries, want 1", len(records))
	}
}

func TestCheckFetchErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	mon, trk, sender := newTestMonitor(fetcher)
	trk.SetTracking(domain.StationNYC, true)
	trk.SetSlug(domain.StationNYC, "slug-1")

	if err := mon.Check(context.Background(), domain.StationNYC); err == nil {
		t.Fatal("Check swallowed the fetch error")
	}
	if len(sender.sent) != 0 {
		t.Errorf("failed cycle sent alerts: %v", sender.sent)
	}
}

func TestRefreshSlugsSetsAndClears(t *testing.T) {
	fetcher := &fakeFetcher{list: []domain.Market{
		{Slug: "london-temp", Question: "Highest temperature in London on August 30?", EndDate: day(30)},
	}}
	mon, trk, _ := newTestMonitor(fetcher)

	if err := mon.RefreshSlugs(context.Background(), day(30)); err != nil {
		t.Fatalf("RefreshSlugs: %v", err)
	}

	if slug, ok := trk.CurrentSlug(domain.StationLondon); !ok || slug != "london-temp" {
		t.Errorf("london slug = %q, %v; want london-temp, true", slug, ok)
	}
	if _, ok := trk.CurrentSlug(domain.StationNYC); ok {
		t.Error("nyc has a slug despite no matching market")
	}

	// The next day's list no longer carries a London market.
	fetcher.list = nil
	if err := mon.RefreshSlugs(context.Background(), day(31)); err != nil {
		t.Fatalf("second RefreshSlugs: %v", err)
	}
	if _, ok := trk.CurrentSlug(domain.StationLondon); ok {
		t.Error("london slug survived a refresh with no matching market")
	}
}

func TestCurrentWithoutSlug(t *testing.T) {
	fetcher := &fakeFetcher{}
	mon, _, _ := newTestMonitor(fetcher)

	_, err := mon.Current(context.Background(), domain.StationNYC)
	if !errors.Is(err, domain.ErrNoMarket) {
		t.Errorf("Current without slug returned %v, want ErrNoMarket", err)
	}
	if fetcher.detailCalls != 0 {
		t.Errorf("Current fetched %d times without a slug, want 0", fetcher.detailCalls)
	}
}

func TestCurrentReturnsTopOutcomes(t *testing.T) {
	fetcher := &fakeFetcher{details: map[string]domain.Market{"slug-1": tempMarket(0.62, 0.30, 0.08)}}
	mon, trk, _ := newTestMonitor(fetcher)
	trk.SetSlug(domain.StationLondon, "slug-1")

	lines, err := mon.Current(context.Background(), domain.StationLondon)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(lines) != 3 || lines[0] != "Above 25°C • 62% (0.62¢)" {
		t.Errorf("Current lines = %v", lines)
	}
}

func TestResolutionReports(t *testing.T) {
	unresolved := tempMarket(0.62, 0.30, 0.08)
	resolved := tempMarket(0.97, 0.02, 0.01)
	resolved.ResolvedOutcome = "Above 25°C"

	fetcher := &fakeFetcher{details: map[string]domain.Market{
		"london-slug": resolved,
		"nyc-slug":    unresolved,
	}}
	mon, trk, _ := newTestMonitor(fetcher)
	trk.SetSlug(domain.StationLondon, "london-slug")
	trk.SetSlug(domain.StationNYC, "nyc-slug")

	line, err := mon.Resolution(context.Background(), domain.StationLondon)
	if err != nil {
		t.Fatalf("Resolution(london): %v", err)
	}
	if line != "✅ [LONDON] 2026-08-30: Above 25°C" {
		t.Errorf("Resolution(london) = %q", line)
	}

	line, err = mon.Resolution(context.Background(), domain.StationNYC)
	if err != nil {
		t.Fatalf("Resolution(nyc): %v", err)
	}
	if line != "[NYC] Market not yet resolved" {
		t.Errorf("Resolution(nyc) = %q", line)
	}
}
