package services

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/google/uuid"
	"github.com/vytor/wordflash/internal/catalog"
	"github.com/vytor/wordflash/internal/deck"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/metrics"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/session"
)

// StudyService handles study sessions: starting them, loading decks into
// them and driving them on behalf of the input layer
type StudyService interface {
	Datasets(ctx context.Context) (models.DatasetList, error)
	// StartSession creates a session and starts loading datasetID into it.
	// An empty id uses the stored selection or the catalog default.
	StartSession(ctx context.Context, datasetID string) (models.View, error)
	Reload(ctx context.Context, sessionID, datasetID string) (models.View, error)
	// Restore starts a session for the stored selection, if there is one.
	Restore(ctx context.Context) (models.View, bool, error)
	Current(ctx context.Context) (string, error)
	View(ctx context.Context, sessionID string) (models.View, error)
	// LoadStatus reports the outcome of the most recent load.
	LoadStatus(ctx context.Context, sessionID string) (models.View, error)
	Flip(ctx context.Context, sessionID string) (models.View, error)
	Advance(ctx context.Context, sessionID, direction string) (models.View, error)
	Grade(ctx context.Context, sessionID, status string) (models.View, error)
	SetFilter(ctx context.Context, sessionID, filter string) (models.View, error)
	Press(ctx context.Context, sessionID, key string) (models.View, error)
	Stats(ctx context.Context, sessionID string) (models.Stats, error)
	Cards(ctx context.Context, sessionID string) ([]models.Card, error)
	CloseSession(ctx context.Context, sessionID string) error
	// Shutdown closes every session.
	Shutdown()
}

type studyService struct {
	catalog catalog.Catalog
	prefs   repository.PreferenceRepository
	queue   jobs.JobQueue
	cfg     StudyConfig

	mu       sync.RWMutex
	sessions map[string]*session.Session
	current  string
}

// NewStudyService creates a new StudyService
func NewStudyService(cat catalog.Catalog, prefs repository.PreferenceRepository, queue jobs.JobQueue, cfg StudyConfig) StudyService {
	return &studyService{
		catalog:  cat,
		prefs:    prefs,
		queue:    queue,
		cfg:      cfg,
		sessions: make(map[string]*session.Session),
	}
}

func (s *studyService) Datasets(ctx context.Context) (models.DatasetList, error) {
	return models.DatasetList{
		Datasets: append([]models.Dataset(nil), s.catalog.Datasets...),
		Selected: s.selected(ctx).ID,
	}, nil
}

func (s *studyService) StartSession(ctx context.Context, datasetID string) (models.View, error) {
	log := logger.FromContext(ctx)

	ds, err := s.choose(ctx, datasetID)
	if err != nil {
		return models.View{}, err
	}

	id := uuid.NewString()
	opts := append([]session.Option{
		session.WithMode(s.cfg.Mode),
		session.WithGradeDelay(s.cfg.GradeDelay),
	}, s.cfg.SessionOptions...)
	sess := session.New(id, opts...)

	if err := s.load(ctx, sess, ds); err != nil {
		sess.Close()
		return models.View{}, err
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.current = id
	active := len(s.sessions)
	s.mu.Unlock()
	metrics.SetActiveSessions(active)

	log.WithFields(map[string]any{"session_id": id, "dataset": ds.ID}).Info("session started")
	return sess.View(), nil
}

func (s *studyService) Reload(ctx context.Context, sessionID, datasetID string) (models.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return models.View{}, err
	}

	if datasetID == "" {
		// Reload whatever the session shows now.
		datasetID = sess.Dataset().ID
	}
	ds, err := s.choose(ctx, datasetID)
	if err != nil {
		return models.View{}, err
	}
	if err := s.load(ctx, sess, ds); err != nil {
		return models.View{}, err
	}

	logger.FromContext(ctx).WithFields(map[string]any{"session_id": sessionID, "dataset": ds.ID}).Info("session reloading")
	return sess.View(), nil
}

func (s *studyService) Restore(ctx context.Context) (models.View, bool, error) {
	log := logger.FromContext(ctx)

	stored, ok := s.storedSelection(ctx)
	if !ok {
		log.Debug("no stored dataset selection, nothing to restore")
		return models.View{}, false, nil
	}
	if _, known := s.catalog.Find(stored); !known {
		log.Warn("stored dataset %q is not in the catalog, using default", stored)
	}

	view, err := s.StartSession(ctx, "")
	if err != nil {
		return models.View{}, false, err
	}
	return view, true, nil
}

func (s *studyService) Current(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return "", errors.NewNotFoundError("session", "current")
	}
	return s.current, nil
}

func (s *studyService) View(ctx context.Context, sessionID string) (models.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return models.View{}, err
	}
	return sess.View(), nil
}

func (s *studyService) LoadStatus(ctx context.Context, sessionID string) (models.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return models.View{}, err
	}
	if sess.Loading() {
		return models.View{}, mapSessionError(session.ErrLoading)
	}
	if err := sess.LastError(); err != nil {
		return models.View{}, mapLoadError(err)
	}
	return sess.View(), nil
}

func (s *studyService) Flip(ctx context.Context, sessionID string) (models.View, error) {
	return s.apply(sessionID, func(sess *session.Session) error {
		return sess.Flip()
	})
}

func (s *studyService) Advance(ctx context.Context, sessionID, direction string) (models.View, error) {
	dir, err := models.ParseDirection(direction)
	if err != nil {
		return models.View{}, errors.NewBadRequestError(err.Error())
	}
	view, err := s.apply(sessionID, func(sess *session.Session) error {
		return sess.Advance(dir)
	})
	if err == nil {
		metrics.ObserveNavigation(dir)
	}
	return view, err
}

func (s *studyService) Grade(ctx context.Context, sessionID, status string) (models.View, error) {
	st, err := models.ParseStatus(status)
	if err != nil {
		return models.View{}, errors.NewBadRequestError(err.Error())
	}
	view, err := s.apply(sessionID, func(sess *session.Session) error {
		return sess.Grade(st)
	})
	if err == nil {
		metrics.ObserveGrade(st)
		logger.FromContext(ctx).Debug("graded card in session %s as %s", sessionID, st)
	}
	return view, err
}

func (s *studyService) SetFilter(ctx context.Context, sessionID, filter string) (models.View, error) {
	f, err := models.ParseFilter(filter)
	if err != nil {
		return models.View{}, errors.NewBadRequestError(err.Error())
	}
	return s.apply(sessionID, func(sess *session.Session) error {
		return sess.SetFilter(f)
	})
}

func (s *studyService) Press(ctx context.Context, sessionID, key string) (models.View, error) {
	return s.apply(sessionID, func(sess *session.Session) error {
		handled, err := sess.Press(key)
		if err != nil {
			return err
		}
		if !handled {
			return errors.NewBadRequestError("unsupported key: " + key)
		}
		return nil
	})
}

func (s *studyService) Stats(ctx context.Context, sessionID string) (models.Stats, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return models.Stats{}, err
	}
	st, err := sess.Stats()
	if err != nil {
		return models.Stats{}, mapSessionError(err)
	}
	return st, nil
}

func (s *studyService) Cards(ctx context.Context, sessionID string) ([]models.Card, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	cards, err := sess.Cards()
	if err != nil {
		return nil, mapSessionError(err)
	}
	return cards, nil
}

func (s *studyService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
		if s.current == sessionID {
			s.current = ""
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return errors.NewNotFoundError("session", sessionID)
	}
	sess.Close()
	metrics.SetActiveSessions(active)
	logger.FromContext(ctx).Info("session %s closed", sessionID)
	return nil
}

func (s *studyService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
	s.current = ""
	metrics.SetActiveSessions(0)
}

// choose resolves the dataset for a request. An explicit id must exist and
// is remembered as the user's selection.
func (s *studyService) choose(ctx context.Context, datasetID string) (models.Dataset, error) {
	if datasetID == "" {
		return s.selected(ctx), nil
	}
	ds, ok := s.catalog.Find(datasetID)
	if !ok {
		return models.Dataset{}, errors.NewNotFoundError("dataset", datasetID)
	}
	if s.prefs != nil {
		if err := s.prefs.Set(ctx, repository.PrefSelectedDataset, ds.ID); err != nil {
			logger.FromContext(ctx).Warn("failed to remember dataset selection: %v", err)
		}
	}
	return ds, nil
}

// selected is the stored selection, or the catalog default.
func (s *studyService) selected(ctx context.Context) models.Dataset {
	stored, _ := s.storedSelection(ctx)
	return s.catalog.Resolve(stored)
}

func (s *studyService) storedSelection(ctx context.Context) (string, bool) {
	if s.prefs == nil {
		return "", false
	}
	v, ok, err := s.prefs.Get(ctx, repository.PrefSelectedDataset)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to read dataset selection: %v", err)
		return "", false
	}
	return v, ok && v != ""
}

func (s *studyService) load(ctx context.Context, sess *session.Session, ds models.Dataset) error {
	if err := sess.BeginLoad(ds); err != nil {
		return mapSessionError(err)
	}
	if err := s.queue.EnqueueLoad(sess, ds); err != nil {
		sess.CancelLoad()
		logger.FromContext(ctx).Error("failed to enqueue deck load for %s: %v", ds.ID, err)
		return errors.NewUnavailableError("deck loader is busy, try again", err)
	}
	return nil
}

func (s *studyService) session(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *studyService) apply(sessionID string, fn func(*session.Session) error) (models.View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return models.View{}, err
	}
	if err := fn(sess); err != nil {
		return models.View{}, mapSessionError(err)
	}
	return sess.View(), nil
}

func mapSessionError(err error) error {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, session.ErrLoading):
		return errors.NewConflictError("deck is loading")
	default:
		return errors.NewInternalError(err)
	}
}

func mapLoadError(err error) error {
	var fetchErr *deck.FetchError
	var parseErr *deck.ParseError
	switch {
	case stderrors.As(err, &fetchErr):
		return errors.NewFetchError(fetchErr.Source, err)
	case stderrors.As(err, &parseErr):
		return errors.NewParseError(parseErr.Source, err)
	default:
		return errors.NewInternalError(err)
	}
}
