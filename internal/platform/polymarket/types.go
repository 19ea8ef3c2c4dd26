package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Teeee306/PM-alert-bot3/internal/domain"
)

// flexFloat unmarshals from a JSON number or a numeric string ("0.62") so
// Gamma API prices decode whichever way they are sent.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// APIOutcome is one outcome entry inside a Gamma API market response.
type APIOutcome struct {
	Name  string    `json:"name"`
	Price flexFloat `json:"price"`
}

// APIResolvedOutcome is the resolved-outcome object present once a market has
// settled.
type APIResolvedOutcome struct {
	Name string `json:"name"`
}

// APIMarket represents a market as returned by the Gamma API. The API has two
// ways of encoding outcomes: an object list ([{"name":...,"price":...}]) and a
// pair of JSON-encoded parallel string arrays ("outcomes"/"outcomePrices").
// Both are accepted.
type APIMarket struct {
	ID              string              `json:"id"`
	Question        string              `json:"question"`
	Slug            string              `json:"slug"`
	EndDate         string              `json:"endDate"`
	EndDateISO      string              `json:"end_date_iso"`
	Outcomes        json.RawMessage     `json:"outcomes"`
	OutcomePrices   json.RawMessage     `json:"outcomePrices"`
	ResolvedOutcome *APIResolvedOutcome `json:"resolvedOutcome"`
}

// ToDomainMarket converts a Gamma APIMarket to a domain.Market. Conversion is
// best-effort: unparseable outcome or date fields are dropped rather than
// failing the whole response.
func (m *APIMarket) ToDomainMarket() domain.Market {
	dm := domain.Market{
		ID:       m.ID,
		Question: m.Question,
		Slug:     m.Slug,
		Outcomes: m.parseOutcomes(),
	}

	if m.ResolvedOutcome != nil {
		dm.ResolvedOutcome = m.ResolvedOutcome.Name
	}

	for _, raw := range []string{m.EndDate, m.EndDateISO} {
		if raw == "" {
			continue
		}
		if t, ok := parseEndDate(raw); ok {
			dm.EndDate = t
			break
		}
	}

	return dm
}

// parseOutcomes decodes the outcomes field, preferring the object-list form
// and falling back to the parallel string-array form.
func (m *APIMarket) parseOutcomes() []domain.Outcome {
	if len(m.Outcomes) == 0 {
		return nil
	}

	var objs []APIOutcome
	if err := json.Unmarshal(m.Outcomes, &objs); err == nil && len(objs) > 0 && objs[0].Name != "" {
		out := make([]domain.Outcome, 0, len(objs))
		for _, o := range objs {
			out = append(out, domain.Outcome{Name: o.Name, Price: float64(o.Price)})
		}
		return out
	}

	names := decodeStringList(m.Outcomes)
	prices := decodeStringList(m.OutcomePrices)
	if len(names) == 0 {
		return nil
	}

	out := make([]domain.Outcome, 0, len(names))
	for i, name := range names {
		var price float64
		if i < len(prices) {
			price, _ = strconv.ParseFloat(prices[i], 64)
		}
		out = append(out, domain.Outcome{Name: name, Price: price})
	}
	return out
}

// decodeStringList decodes a JSON string array that may also arrive
// double-encoded, e.g. "[\"Yes\",\"No\"]".
func decodeStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil
	}
	return list
}

// parseEndDate accepts the timestamp formats the Gamma API is known to emit.
func parseEndDate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
