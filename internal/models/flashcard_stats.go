package models

import "math"

// Stats summarises grading progress over a whole deck.
type Stats struct {
	Known       int `json:"known"`
	Partial     int `json:"partial"`
	Unknown     int `json:"unknown"`
	Total       int `json:"total"`
	SuccessRate int `json:"success_rate"`
}

// ComputeStats counts statuses over cards. SuccessRate is the rounded
// percentage of known cards, or 0 for an empty deck.
func ComputeStats(cards []*Card) Stats {
	var st Stats
	for _, c := range cards {
		switch c.Status {
		case StatusKnown:
			st.Known++
		case StatusPartial:
			st.Partial++
		default:
			st.Unknown++
		}
	}
	st.Total = len(cards)
	if st.Total > 0 {
		st.SuccessRate = int(math.Floor(100*float64(st.Known)/float64(st.Total) + 0.5))
	}
	return st
}

// Band groups a success rate for progress displays.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// BandFor returns high from 80, medium from 60, low below.
func BandFor(successRate int) Band {
	switch {
	case successRate >= 80:
		return BandHigh
	case successRate >= 60:
		return BandMedium
	default:
		return BandLow
	}
}
