// Package metrics exposes prometheus counters for deck loads and study
// activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vytor/wordflash/internal/deck"
	"github.com/vytor/wordflash/internal/models"
)

const namespace = "wordflash"

// Load outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeFetchError = "fetch_error"
	OutcomeParseError = "parse_error"
	OutcomeError      = "error"
)

var (
	deckLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deck_loads_total",
			Help:      "Deck load attempts by dataset and outcome.",
		},
		[]string{"dataset", "outcome"},
	)

	deckLoadSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deck_load_duration_seconds",
			Help:      "Time spent fetching and parsing a deck.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"dataset"},
	)

	deckCards = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deck_cards",
			Help:      "Card count of the most recent successful load per dataset.",
		},
		[]string{"dataset"},
	)

	gradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grades_total",
			Help:      "Cards graded, by status.",
		},
		[]string{"status"},
	)

	navigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Navigation steps, by direction.",
		},
		[]string{"direction"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open study sessions.",
		},
	)
)

// Outcome classifies a load error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case deck.IsFetchError(err):
		return OutcomeFetchError
	case deck.IsParseError(err):
		return OutcomeParseError
	default:
		return OutcomeError
	}
}

// ObserveLoad records one finished deck load.
func ObserveLoad(dataset string, cards int, err error, elapsed time.Duration) {
	deckLoadsTotal.WithLabelValues(dataset, Outcome(err)).Inc()
	deckLoadSeconds.WithLabelValues(dataset).Observe(elapsed.Seconds())
	if err == nil {
		deckCards.WithLabelValues(dataset).Set(float64(cards))
	}
}

func ObserveGrade(status models.Status) {
	gradesTotal.WithLabelValues(status.String()).Inc()
}

func ObserveNavigation(dir models.Direction) {
	navigationsTotal.WithLabelValues(string(dir)).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
