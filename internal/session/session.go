package session

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// ErrLoading is returned by every operation while a deck load is in flight.
var ErrLoading = errors.New("deck is loading")

// Placeholder text shown instead of a card.
const (
	LoadingFront = "Loading cards…"
	LoadingBack  = "Please wait"
	FailureFront = "Failed to load cards"
	FailureBack  = "(check the deck source location)"
)

const (
	defaultGradeDelay = 400 * time.Millisecond
	feedbackDuration  = 250 * time.Millisecond
)

// Timer is a scheduled function that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Session guards a Controller for concurrent callers and adds the deck
// lifecycle: loads gate all operations, a failed load keeps the previous
// deck, and grades re-advance after a delay.
type Session struct {
	mu sync.Mutex

	id         string
	mode       models.Mode
	gradeDelay time.Duration
	schedule   Scheduler
	now        func() time.Time
	rng        *rand.Rand

	ctrl        *Controller
	dataset     models.Dataset
	loading     bool
	loadTarget  models.Dataset
	loadErr     error
	showFailure bool
	pending     Timer
	feedback    *models.Feedback
	onSettle    func()
}

// Option configures a Session.
type Option func(*Session)

// WithMode selects the navigation policy for every deck loaded into the session.
func WithMode(m models.Mode) Option {
	return func(s *Session) {
		s.mode = m
	}
}

// WithGradeDelay sets how long after a grade the session re-advances.
func WithGradeDelay(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.gradeDelay = d
		}
	}
}

// WithScheduler replaces time.AfterFunc, mainly for tests. f must run after
// the scheduler returns, never inline.
func WithScheduler(fn Scheduler) Option {
	return func(s *Session) {
		s.schedule = fn
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithRand sets the random source for random navigation.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// WithSettleHook registers a callback run after each deferred re-advance.
func WithSettleHook(fn func()) Option {
	return func(s *Session) {
		s.onSettle = fn
	}
}

// New creates a session with an empty deck.
func New(id string, opts ...Option) *Session {
	s := &Session{
		id:         id,
		mode:       models.ModeLinear,
		gradeDelay: defaultGradeDelay,
		schedule:   afterFunc,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed^uint64(len(id))))
	}
	s.ctrl = NewController(nil, s.mode, s.rng)
	return s
}

func (s *Session) ID() string { return s.id }

// Dataset returns the dataset of the deck currently in use.
func (s *Session) Dataset() models.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// Loading reports whether a load is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// BeginLoad disables the session until FinishLoad. It fails with ErrLoading
// if a load is already in flight.
func (s *Session) BeginLoad(ds models.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return ErrLoading
	}
	s.loading = true
	s.loadTarget = ds
	return nil
}

// FinishLoad ends a load. On success the deck is replaced wholesale; on
// failure the previous deck stays usable and the failure text is shown
// until the next operation.
func (s *Session) FinishLoad(cards []*models.Card, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if err != nil {
		s.loadErr = err
		s.showFailure = true
		return
	}
	s.stopPending()
	s.ctrl = NewController(cards, s.mode, s.rng)
	s.dataset = s.loadTarget
	s.loadErr = nil
	s.showFailure = false
	s.feedback = nil
}

// CancelLoad leaves the loading state without touching the deck. It is for
// loads that were never started.
func (s *Session) CancelLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// LastError returns the error of the most recent failed load, if the deck
// has not been replaced since.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

func (s *Session) Flip() error {
	return s.do(func(c *Controller) { c.Flip() })
}

func (s *Session) Advance(dir models.Direction) error {
	return s.do(func(c *Controller) { c.Advance(dir) })
}

func (s *Session) SetFilter(f models.Filter) error {
	return s.do(func(c *Controller) { c.SetFilter(f) })
}

// Grade records status for the displayed card and schedules the re-advance.
// A newer grade cancels a re-advance that has not fired yet.
func (s *Session) Grade(status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return ErrLoading
	}
	s.showFailure = false

	ctrl := s.ctrl
	p, ok := ctrl.Grade(status)
	if !ok {
		return nil
	}
	s.feedback = &models.Feedback{Status: status, ExpiresAt: s.now().Add(feedbackDuration)}

	s.stopPending()
	s.pending = s.schedule(s.gradeDelay, func() {
		s.mu.Lock()
		if s.ctrl != ctrl {
			s.mu.Unlock()
			return
		}
		settled := ctrl.Settle(p)
		hook := s.onSettle
		s.mu.Unlock()
		if settled && hook != nil {
			hook()
		}
	})
	return nil
}

// Stats returns progress over the whole deck.
func (s *Session) Stats() (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return models.Stats{}, ErrLoading
	}
	return s.ctrl.Stats(), nil
}

// Cards returns a copy of the deck in load order.
func (s *Session) Cards() ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, ErrLoading
	}
	return s.ctrl.Cards(), nil
}

// View renders the session for a front end.
func (s *Session) View() models.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctrl.View()
	v.SessionID = s.id
	v.DatasetID = s.dataset.ID

	if s.feedback != nil && s.now().Before(s.feedback.ExpiresAt) {
		fb := *s.feedback
		v.Feedback = &fb
	}

	switch {
	case s.loading:
		v.Loading = true
		v.Front, v.Back = LoadingFront, LoadingBack
		v.CanNavigate = false
	case s.showFailure:
		v.Front, v.Back = FailureFront, FailureBack
	}
	if s.loadErr != nil {
		v.Error = s.loadErr.Error()
	}
	return v
}

// Close cancels any pending re-advance.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPending()
}

func (s *Session) do(fn func(*Controller)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return ErrLoading
	}
	s.showFailure = false
	fn(s.ctrl)
	return nil
}

func (s *Session) stopPending() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
