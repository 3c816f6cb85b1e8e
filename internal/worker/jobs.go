package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/metrics"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/session"
)

// DeckLoader builds the cards of a dataset.
type DeckLoader interface {
	Load(ctx context.Context, ds models.Dataset) ([]*models.Card, error)
}

// LoadDeckJob fetches a deck and hands the result to a session that is
// already in its loading state.
type LoadDeckJob struct {
	Loader  DeckLoader
	Session *session.Session
	Dataset models.Dataset
}

func (j *LoadDeckJob) Name() string { return "load_deck" }

// Run always ends the session's loading state, even when the loader panics.
func (j *LoadDeckJob) Run(ctx context.Context) (err error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"session_id": j.Session.ID(),
		"dataset":    j.Dataset.ID,
	})
	log.Debug("loading deck into session")
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("deck load panicked: %v", rec)
			log.WithError(err).Error("deck load aborted, previous deck kept")
			metrics.ObserveLoad(j.Dataset.ID, 0, err, time.Since(start))
			j.Session.FinishLoad(nil, err)
		}
	}()

	cards, err := j.Loader.Load(ctx, j.Dataset)
	metrics.ObserveLoad(j.Dataset.ID, len(cards), err, time.Since(start))
	j.Session.FinishLoad(cards, err)
	if err != nil {
		log.WithError(err).Warn("deck load failed, previous deck kept")
		return err
	}

	log.Info("session loaded with %d cards", len(cards))
	return nil
}
