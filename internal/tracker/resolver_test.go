package tracker

import (
	"testing"
	"time"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2026, time.August, d, 23, 59, 0, 0, time.UTC)
}

func TestResolveSlugKeywordMatch(t *testing.T) {
	markets := []domain.Market{
		{Slug: "btc-100k", Question: "Will Bitcoin reach $100k?", EndDate: day(31)},
		{Slug: "london-temp", Question: "Highest temperature in London on August 30?", EndDate: day(30)},
		{Slug: "nyc-temp", Question: "Highest temperature in NYC on August 30?", EndDate: day(30)},
	}

	slug, ok := ResolveSlug(domain.StationLondon, markets, day(30))
	if !ok || slug != "london-temp" {
		t.Errorf("ResolveSlug(london) = %q, %v; want london-temp, true", slug, ok)
	}

	slug, ok = ResolveSlug(domain.StationNYC, markets, day(30))
	if !ok || slug != "nyc-temp" {
		t.Errorf("ResolveSlug(nyc) = %q, %v; want nyc-temp, true", slug, ok)
	}
}

func TestResolveSlugDateHeuristic(t *testing.T) {
	// No metric keyword, but the question names the day and month.
	markets := []domain.Market{
		{Slug: "london-aug-30", Question: "Will London hit 30°C on August 30?", EndDate: day(30)},
	}

	slug, ok := ResolveSlug(domain.StationLondon, markets, day(30))
	if !ok || slug != "london-aug-30" {
		t.Errorf("ResolveSlug = %q, %v; want london-aug-30, true", slug, ok)
	}

	// Same list on another day: the date heuristic no longer matches. The
	// question does contain "30" (the temperature), but not day 29's
	// number, and "august" alone is not enough.
	if slug, ok := ResolveSlug(domain.StationLondon, markets, day(29)); ok {
		t.Errorf("ResolveSlug on the wrong day matched %q", slug)
	}
}

func TestResolveSlugPicksLatestEndDate(t *testing.T) {
	markets := []domain.Market{
		{Slug: "london-old", Question: "Highest temperature in London on August 29?", EndDate: day(29)},
		{Slug: "london-new", Question: "Highest temperature in London on August 30?", EndDate: day(30)},
	}

	slug, ok := ResolveSlug(domain.StationLondon, markets, day(30))
	if !ok || slug != "london-new" {
		t.Errorf("ResolveSlug = %q, %v; want london-new, true", slug, ok)
	}
}

func TestResolveSlugTieKeepsProviderOrder(t *testing.T) {
	markets := []domain.Market{
		{Slug: "london-first", Question: "Highest temperature in London (official)?", EndDate: day(30)},
		{Slug: "london-second", Question: "Highest temperature in London (airport)?", EndDate: day(30)},
	}

	slug, ok := ResolveSlug(domain.StationLondon, markets, day(30))
	if !ok || slug != "london-first" {
		t.Errorf("ResolveSlug = %q, %v; want london-first (stable order), true", slug, ok)
	}
}

func TestResolveSlugCaseInsensitive(t *testing.T) {
	markets := []domain.Market{
		{Slug: "shouty", Question: "HIGHEST TEMPERATURE IN LONDON TODAY?", EndDate: day(30)},
	}

	if slug, ok := ResolveSlug(domain.StationLondon, markets, day(30)); !ok || slug != "shouty" {
		t.Errorf("ResolveSlug = %q, %v; want shouty, true", slug, ok)
	}
}

func TestResolveSlugNoMatch(t *testing.T) {
	markets := []domain.Market{
		{Slug: "btc-100k", Question: "Will Bitcoin reach $100k?", EndDate: day(31)},
		{Slug: "paris-temp", Question: "Highest temperature in Paris?", EndDate: day(30)},
	}

	if slug, ok := ResolveSlug(domain.StationNYC, markets, day(30)); ok {
		t.Errorf("ResolveSlug matched %q, want no match", slug)
	}
}

func TestMentionsDateTokenBoundary(t *testing.T) {
	asOf := time.Date(2026, time.August, 3, 12, 0, 0, 0, time.UTC)

	if mentionsDate("will it rain in london on august 30?", asOf) {
		t.Error("day 3 matched inside the token 30")
	}
	if !mentionsDate("will it rain in london on august 3?", asOf) {
		t.Error("day 3 with trailing punctuation did not match")
	}
}
