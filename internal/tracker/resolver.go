package tracker

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
)

// metricKeyword marks the daily highest-temperature market in a question.
const metricKeyword = "highest temperature"

// ResolveSlug picks the market slug for a station's daily market. A market
// matches when its question mentions the station and either the metric
// keyword or asOf's day number and month name. Among matches the one with the
// latest end date wins; ties keep the provider's ordering (stable sort).
//
// ResolveSlug is a pure function over its inputs; the caller persists the
// result. The second return value is false when nothing matches.
func ResolveSlug(station domain.Station, markets []domain.Market, asOf time.Time) (string, bool) {
	var matches []domain.Market
	for _, m := range markets {
		q := strings.ToLower(m.Question)
		if !strings.Contains(q, string(station)) {
			continue
		}
		if !strings.Contains(q, metricKeyword) && !mentionsDate(q, asOf) {
			continue
		}
		matches = append(matches, m)
	}

	if len(matches) == 0 {
		return "", false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].EndDate.After(matches[j].EndDate)
	})

	return matches[0].Slug, true
}

// mentionsDate reports whether the lowercased question text contains asOf's
// month name and its day-of-month as a standalone token, e.g. "august 30".
func mentionsDate(q string, asOf time.Time) bool {
	if !strings.Contains(q, strings.ToLower(asOf.Month().String())) {
		return false
	}

	day := strconv.Itoa(asOf.Day())
	for _, field := range strings.Fields(q) {
		if strings.Trim(field, ".,:;?!()") == day {
			return true
		}
	}
	return false
}
