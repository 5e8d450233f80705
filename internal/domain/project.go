package domain

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Projections never modify their input; each returns a freshly allocated slice.

const (
	DefaultRiskThreshold       = 60
	DefaultConfidenceThreshold = 0.90
	DefaultSafeLimit           = 6
	DefaultAvoidLimit          = 5
	DefaultCongestedLimit      = 10
)

// FilterByScenario keeps records in the given scenario. ScenarioAll keeps all.
func FilterByScenario(records []LocationRecord, s Scenario) []LocationRecord {
	if s == ScenarioAll || s == "" {
		return slices.Clone(records)
	}
	return filter(records, func(r LocationRecord) bool { return r.Scenario == s })
}

// CountAtOrAbove counts records whose risk reaches the threshold.
func CountAtOrAbove(records []LocationRecord, threshold int) int {
	n := 0
	for i := range records {
		if records[i].RiskScore >= threshold {
			n++
		}
	}
	return n
}

// HighRisk returns the alert candidates, riskiest first.
func HighRisk(records []LocationRecord, threshold int) []LocationRecord {
	out := filter(records, func(r LocationRecord) bool { return r.RiskScore > threshold })
	slices.SortStableFunc(out, byRiskDesc)
	return out
}

// SafePlaces returns calm, uncongested locations on clear roads, calmest first.
func SafePlaces(records []LocationRecord, limit int) []LocationRecord {
	out := filter(records, func(r LocationRecord) bool {
		return r.RiskScore < 40 &&
			float64(r.CurrentCrowd) < float64(r.BaseCapacity)*0.8 &&
			r.RoadCondition == RoadGood
	})
	slices.SortStableFunc(out, func(a, b LocationRecord) int { return cmp.Compare(a.RiskScore, b.RiskScore) })
	return truncate(out, limit)
}

// AvoidPlaces returns risky or obstructed locations, riskiest first.
func AvoidPlaces(records []LocationRecord, limit int) []LocationRecord {
	out := filter(records, func(r LocationRecord) bool {
		return r.RiskScore > 60 || r.RoadCondition.Obstructed()
	})
	slices.SortStableFunc(out, byRiskDesc)
	return truncate(out, limit)
}

// NeedsReview returns records whose confidence is below the threshold
// (a fraction in [0,1]) for human review.
func NeedsReview(records []LocationRecord, threshold float64) []LocationRecord {
	return filter(records, func(r LocationRecord) bool { return r.Confidence < threshold })
}

// TopCongested returns the n most crowded locations.
func TopCongested(records []LocationRecord, n int) []LocationRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b LocationRecord) int { return cmp.Compare(b.CurrentCrowd, a.CurrentCrowd) })
	return truncate(out, n)
}

// Nearby pairs a record with its geodesic distance from a query point.
type Nearby struct {
	Record         LocationRecord `json:"record"`
	DistanceMeters float64        `json:"distanceMeters"`
}

// Nearest returns the n records closest to (lat, lon).
func Nearest(records []LocationRecord, lat, lon float64, n int) []Nearby {
	origin := orb.Point{lon, lat}
	out := make([]Nearby, len(records))
	for i, r := range records {
		out[i] = Nearby{Record: r, DistanceMeters: geo.Distance(origin, orb.Point{r.Lon, r.Lat})}
	}
	slices.SortStableFunc(out, func(a, b Nearby) int { return cmp.Compare(a.DistanceMeters, b.DistanceMeters) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary is the headline view of a snapshot.
type Summary struct {
	Total         int              `json:"total"`
	HighRiskCount int              `json:"highRiskCount"`
	Threshold     int              `json:"threshold"`
	ByScenario    map[Scenario]int `json:"byScenario"`
	Status        string           `json:"status"`
}

// Summarize counts records per scenario and at or above the risk threshold.
func Summarize(records []LocationRecord, threshold int) Summary {
	s := Summary{
		Total:      len(records),
		Threshold:  threshold,
		ByScenario: make(map[Scenario]int, len(Scenarios)),
		Status:     "normal",
	}
	for _, sc := range Scenarios {
		s.ByScenario[sc] = 0
	}
	for i := range records {
		s.ByScenario[records[i].Scenario]++
	}
	s.HighRiskCount = CountAtOrAbove(records, threshold)
	if s.HighRiskCount > 0 {
		s.Status = "critical"
	}
	return s
}

func filter(records []LocationRecord, keep func(LocationRecord) bool) []LocationRecord {
	out := make([]LocationRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func byRiskDesc(a, b LocationRecord) int {
	return cmp.Compare(b.RiskScore, a.RiskScore)
}

// truncate caps the slice at limit; a non-positive limit means no cap.
func truncate(records []LocationRecord, limit int) []LocationRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
