// Package deck turns a word list source into a shuffled set of cards.
package deck

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

// Loader fetches, parses and randomises decks.
type Loader struct {
	fetcher           Fetcher
	randomOrientation bool

	mu  sync.Mutex // guards rng; loads run on several workers
	rng *rand.Rand
}

// Option configures a Loader.
type Option func(*Loader)

// WithRand sets the random source used for shuffling and orientation.
func WithRand(r *rand.Rand) Option {
	return func(l *Loader) {
		l.rng = r
	}
}

// WithRandomOrientation toggles the per-card coin flip that decides which
// field is shown first. When disabled the question is always side A.
func WithRandomOrientation(enabled bool) Option {
	return func(l *Loader) {
		l.randomOrientation = enabled
	}
}

func NewLoader(fetcher Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:           fetcher,
		randomOrientation: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		seed := uint64(time.Now().UnixNano())
		l.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return l
}

// Load retrieves the dataset's source and builds its cards. It fails with a
// *FetchError or *ParseError.
func (l *Loader) Load(ctx context.Context, ds models.Dataset) ([]*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("deck").WithFields(map[string]any{
		"dataset": ds.ID,
		"source":  ds.Source,
	})
	log.Debug("loading deck")
	start := time.Now()

	payload, err := l.fetcher.Fetch(ctx, ds.Source)
	if err != nil {
		if !IsFetchError(err) {
			err = &FetchError{Source: ds.Source, Err: err}
		}
		return nil, err
	}

	entries, err := ParseEntries(ds.Source, payload)
	if err != nil {
		log.Warn("deck payload rejected: %v", err)
		return nil, err
	}

	cards := l.Build(entries)
	log.Info("loaded %d cards in %v", len(cards), time.Since(start))
	return cards, nil
}

// Build shuffles entries, assigns ids in shuffled order and fixes each
// card's orientation. The input slice is not modified.
func (l *Loader) Build(entries []models.RawEntry) []*models.Card {
	shuffled := make([]models.RawEntry, len(entries))
	copy(shuffled, entries)

	l.mu.Lock()
	defer l.mu.Unlock()

	// Fisher-Yates.
	for i := len(shuffled) - 1; i > 0; i-- {
		j := l.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	cards := make([]*models.Card, len(shuffled))
	for i, e := range shuffled {
		questionFirst := true
		if l.randomOrientation {
			questionFirst = l.rng.IntN(2) == 0
		}
		c := &models.Card{ID: i, SideA: e.Question, SideB: e.Answer, Status: models.StatusUnknown}
		if !questionFirst {
			c.SideA, c.SideB = e.Answer, e.Question
		}
		cards[i] = c
	}
	return cards
}
