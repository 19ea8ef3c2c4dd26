// Package domain holds the core types shared across the weather alert bot:
// stations, markets, outcomes, and the sentinel errors used to classify
// failures from the market data provider.
package domain

import (
	"strings"
	"time"
)

// Station identifies a tracked city whose daily highest-temperature market is
// monitored.
type Station string

const (
	StationLondon Station = "london"
	StationNYC    Station = "nyc"
)

// Stations returns every tracked station in a stable order.
func Stations() []Station {
	return []Station{StationLondon, StationNYC}
}

// ParseStation maps user input such as "london" or "NYC" to a Station. The
// second return value is false when the input names no known station.
func ParseStation(s string) (Station, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "london":
		return StationLondon, true
	case "nyc":
		return StationNYC, true
	}
	return "", false
}

// Label returns the uppercase tag used in chat messages, e.g. "LONDON".
func (s Station) Label() string {
	return strings.ToUpper(string(s))
}

// Name returns the display name used in sentences, e.g. "London".
func (s Station) Name() string {
	switch s {
	case StationNYC:
		return "NYC"
	case StationLondon:
		return "London"
	default:
		return string(s)
	}
}

// Outcome is one possible answer within a market, with its implied-probability
// price in [0,1].
type Outcome struct {
	Name  string
	Price float64
}

// Market is a single prediction market as seen by the bot: either a summary
// row from the market list or a full detail fetched by slug.
type Market struct {
	ID              string
	Question        string
	Slug            string
	EndDate         time.Time
	Outcomes        []Outcome
	ResolvedOutcome string // winner name, empty until the market resolves
}

// Resolved reports whether the provider has recorded a winning outcome.
func (m Market) Resolved() bool {
	return m.ResolvedOutcome != ""
}

// WinnerRecord is one entry in a station's recent-winners history.
type WinnerRecord struct {
	Date   string // ISO date (YYYY-MM-DD) the resolution was observed
	Winner string
}
