// Package tracker implements the market-tracking core of the weather bot:
// slug resolution, per-outcome price diffing, resolution detection, and the
// recent-winners history. All per-station state is owned by a single Tracker
// so scheduled polls and command handlers serialize through one API.
package tracker

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
)

const (
	// maxRecentWinners caps each station's winners history; the oldest entry
	// is evicted when a new resolution pushes the list past the cap.
	maxRecentWinners = 14

	// maxChangeLines caps how many change lines a single diff emits.
	maxChangeLines = 3

	// topOutcomeCount is how many outcomes a snapshot shows.
	topOutcomeCount = 3
)

// stationState is the mutable tracking record for one station. It is only
// touched while holding Tracker.mu.
type stationState struct {
	tracking       bool
	slug           string
	lastPrices     map[string]float64
	resolved       bool
	resolvedWinner string
	recentWinners  []domain.WinnerRecord
}

// Tracker owns the tracking state for all stations.
type Tracker struct {
	mu       sync.Mutex
	stations map[domain.Station]*stationState
	logger   *slog.Logger
}

// NewTracker creates a Tracker with tracking disabled and no slug for every
// station.
func NewTracker(logger *slog.Logger) *Tracker {
	states := make(map[domain.Station]*stationState)
	for _, s := range domain.Stations() {
		states[s] = &stationState{lastPrices: make(map[string]float64)}
	}
	return &Tracker{
		stations: states,
		logger:   logger.With(slog.String("component", "tracker")),
	}
}

// SetTracking enables or disables price tracking for a station.
func (t *Tracker) SetTracking(station domain.Station, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.stations[station]; st != nil {
		st.tracking = on
	}
}

// IsTracking reports whether price tracking is enabled for a station.
func (t *Tracker) IsTracking(station domain.Station) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.stations[station]
	return st != nil && st.tracking
}

// SetSlug replaces a station's current market slug. Rotating to a new slug
// resets the recorded prices and the resolution flag so outcome names that
// repeat across days start a fresh baseline instead of producing spurious
// change lines. The winners history survives rotation. An empty slug marks
// the station as having no market today.
func (t *Tracker) SetSlug(station domain.Station, slug string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stations[station]
	if st == nil || st.slug == slug {
		return
	}

	st.slug = slug
	st.lastPrices = make(map[string]float64)
	st.resolved = false
	st.resolvedWinner = ""
}

// CurrentSlug returns a station's current market slug. The second return
// value is false when no market is known for the station today.
func (t *Tracker) CurrentSlug(station domain.Station) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stations[station]
	if st == nil || st.slug == "" {
		return "", false
	}
	return st.slug, true
}

// Diff compares a market's outcome prices against the last observed values
// for the station, records the new prices, and returns formatted change lines
// in price-descending order. Unchanged and first-seen outcomes emit nothing.
// At most maxChangeLines lines are returned.
func (t *Tracker) Diff(station domain.Station, m domain.Market) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stations[station]
	if st == nil {
		return nil
	}

	var changes []string
	for _, o := range sortByPrice(m.Outcomes) {
		last, seen := st.lastPrices[o.Name]
		if seen && last != o.Price {
			arrow := "↓"
			if o.Price > last {
				arrow = "↑"
			}
			changes = append(changes, fmt.Sprintf("%s %s %s", o.Name, arrow, formatPrice(o.Price)))
		}
		st.lastPrices[o.Name] = o.Price
	}

	if len(changes) > maxChangeLines {
		changes = changes[:maxChangeLines]
	}
	return changes
}

// DetectResolution checks whether the market carries a newly observed
// resolved outcome. On the first observation it flips the station's resolved
// flag, records the winner in the history (evicting the oldest entry past the
// cap), and returns a one-time announcement. Repeated observations return
// ok=false.
func (t *Tracker) DetectResolution(station domain.Station, m domain.Market, now time.Time) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stations[station]
	if st == nil || st.resolved || !m.Resolved() {
		return "", false
	}

	st.resolved = true
	st.resolvedWinner = m.ResolvedOutcome

	st.recentWinners = append(st.recentWinners, domain.WinnerRecord{
		Date:   now.Format("2006-01-02"),
		Winner: m.ResolvedOutcome,
	})
	if len(st.recentWinners) > maxRecentWinners {
		st.recentWinners = st.recentWinners[len(st.recentWinners)-maxRecentWinners:]
	}

	t.logger.Info("market resolved",
		slog.String("station", string(station)),
		slog.String("winner", m.ResolvedOutcome),
	)

	announcement := fmt.Sprintf("✅ [%s] %s: %s (highest temp recorded)",
		station.Label(), m.EndDate.Format("2006-01-02"), m.ResolvedOutcome)
	return announcement, true
}

// ResolvedWinner returns the winner recorded for the station's current slug.
// The second return value is false while the market is unresolved.
func (t *Tracker) ResolvedWinner(station domain.Station) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stations[station]
	if st == nil || !st.resolved {
		return "", false
	}
	return st.resolvedWinner, true
}

// RecentWinners returns a copy of the station's winners history, oldest first.
func (t *Tracker) RecentWinners(station domain.Station) []domain.WinnerRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stations[station]
	if st == nil || len(st.recentWinners) == 0 {
		return nil
	}
	out := make([]domain.WinnerRecord, len(st.recentWinners))
	copy(out, st.recentWinners)
	return out
}

// StationSnapshot is a read-only view of one station's tracking state, used
// by the status endpoint.
type StationSnapshot struct {
	Station       string `json:"station"`
	Tracking      bool   `json:"tracking"`
	Slug          string `json:"slug,omitempty"`
	Resolved      bool   `json:"resolved"`
	Winner        string `json:"winner,omitempty"`
	RecentWinners int    `json:"recent_winners"`
}

// Snapshot returns the current tracking state of every station.
func (t *Tracker) Snapshot() []StationSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]StationSnapshot, 0, len(t.stations))
	for _, station := range domain.Stations() {
		st := t.stations[station]
		out = append(out, StationSnapshot{
			Station:       string(station),
			Tracking:      st.tracking,
			Slug:          st.slug,
			Resolved:      st.resolved,
			Winner:        st.resolvedWinner,
			RecentWinners: len(st.recentWinners),
		})
	}
	return out
}

// TopOutcomes formats a market's highest-priced outcomes for a snapshot
// reply, e.g. "Above 25°C • 62% (0.62¢)".
func TopOutcomes(m domain.Market) []string {
	outcomes := sortByPrice(m.Outcomes)
	if len(outcomes) > topOutcomeCount {
		outcomes = outcomes[:topOutcomeCount]
	}

	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		lines = append(lines, fmt.Sprintf("%s • %s", o.Name, formatPrice(o.Price)))
	}
	return lines
}

// sortByPrice returns a price-descending copy of outcomes. The sort is stable
// so equal-priced outcomes keep the provider's ordering.
func sortByPrice(outcomes []domain.Outcome) []domain.Outcome {
	out := make([]domain.Outcome, len(outcomes))
	copy(out, outcomes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price > out[j].Price
	})
	return out
}

// formatPrice renders a probability as "62% (0.62¢)". The percentage rounds
// half away from zero.
func formatPrice(p float64) string {
	return fmt.Sprintf("%d%% (%.2f¢)", int(math.Round(p*100)), p)
}
