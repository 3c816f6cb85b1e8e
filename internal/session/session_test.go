package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/session"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (f *fakeScheduler) schedule(d time.Duration, fn func()) session.Timer {
	t := &fakeTimer{delay: d, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// fire runs every timer that has not been stopped.
func (f *fakeScheduler) fire() {
	timers := f.timers
	f.timers = nil
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func loadedSession(t *testing.T, n int, opts ...session.Option) (*session.Session, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	opts = append([]session.Option{
		session.WithScheduler(sched.schedule),
		session.WithRand(newRand()),
	}, opts...)
	s := session.New("s1", opts...)
	require.NoError(t, s.BeginLoad(models.Dataset{ID: "unit1"}))
	s.FinishLoad(makeCards(n), nil)
	return s, sched
}

func TestSession_LoadingGatesOperations(t *testing.T) {
	s := session.New("s1")
	require.NoError(t, s.BeginLoad(models.Dataset{ID: "all"}))

	assert.True(t, s.Loading())
	assert.ErrorIs(t, s.Flip(), session.ErrLoading)
	assert.ErrorIs(t, s.Advance(models.Forward), session.ErrLoading)
	assert.ErrorIs(t, s.Grade(models.StatusKnown), session.ErrLoading)
	assert.ErrorIs(t, s.SetFilter(models.FilterAll), session.ErrLoading)
	_, err := s.Stats()
	assert.ErrorIs(t, err, session.ErrLoading)
	_, err = s.Press("Space")
	assert.ErrorIs(t, err, session.ErrLoading)
	assert.ErrorIs(t, s.BeginLoad(models.Dataset{ID: "all"}), session.ErrLoading)

	v := s.View()
	assert.True(t, v.Loading)
	assert.Equal(t, session.LoadingFront, v.Front)
	assert.Equal(t, session.LoadingBack, v.Back)
	assert.False(t, v.CanNavigate)

	s.FinishLoad(makeCards(2), nil)
	assert.False(t, s.Loading())
	assert.Equal(t, "all", s.Dataset().ID)
	assert.NoError(t, s.Flip())
}

func TestSession_FailedLoadKeepsPreviousDeck(t *testing.T) {
	s, _ := loadedSession(t, 3)
	require.NoError(t, s.Advance(models.Forward))

	require.NoError(t, s.BeginLoad(models.Dataset{ID: "unit2"}))
	s.FinishLoad(nil, errors.New("fetch unit2.json: status 404"))

	v := s.View()
	assert.Equal(t, session.FailureFront, v.Front)
	assert.Equal(t, session.FailureBack, v.Back)
	assert.Contains(t, v.Error, "404")
	assert.Equal(t, "unit1", s.Dataset().ID)
	require.Error(t, s.LastError())

	require.NoError(t, s.Advance(models.Forward))
	v = s.View()
	assert.Equal(t, "a2", v.Front, "previous deck is still usable")
	assert.Equal(t, "Card 3 of 3", v.Label)
}

func TestSession_FailedFirstLoadShowsFailurePair(t *testing.T) {
	s := session.New("s1")
	require.NoError(t, s.BeginLoad(models.Dataset{ID: "all"}))
	s.FinishLoad(nil, errors.New("boom"))

	v := s.View()
	assert.True(t, v.Empty)
	assert.Equal(t, session.FailureFront, v.Front)

	require.NoError(t, s.Advance(models.Forward))
	assert.Equal(t, "No cards to display", s.View().Label)
}

func TestSession_SuccessfulReloadReplacesDeck(t *testing.T) {
	s, _ := loadedSession(t, 3)
	require.NoError(t, s.Grade(models.StatusKnown))

	require.NoError(t, s.BeginLoad(models.Dataset{ID: "unit2"}))
	s.FinishLoad(makeCards(5), nil)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Unknown: 5, Total: 5}, st)
	assert.Equal(t, "unit2", s.Dataset().ID)
	assert.NoError(t, s.LastError())
}

func TestSession_GradeSchedulesReadvance(t *testing.T) {
	s, sched := loadedSession(t, 4, session.WithGradeDelay(400*time.Millisecond))

	require.NoError(t, s.Grade(models.StatusKnown))
	require.Len(t, sched.timers, 1)
	assert.Equal(t, 400*time.Millisecond, sched.timers[0].delay)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Known)
	assert.Equal(t, "Card 1 of 4", s.View().Label, "position holds until the re-advance fires")

	sched.fire()
	assert.Equal(t, "Card 2 of 4", s.View().Label)

	require.NoError(t, s.SetFilter(models.FilterUnknown))
	assert.Equal(t, 3, s.View().Total)
}

func TestSession_NewerGradeSupersedesPending(t *testing.T) {
	s, sched := loadedSession(t, 5)

	require.NoError(t, s.Grade(models.StatusKnown))
	require.NoError(t, s.Grade(models.StatusPartial))
	require.Len(t, sched.timers, 2)
	assert.True(t, sched.timers[0].stopped)

	sched.fire()
	assert.Equal(t, "Card 2 of 5", s.View().Label, "only one re-advance happens")

	st, _ := s.Stats()
	assert.Equal(t, 1, st.Partial)
	assert.Equal(t, 0, st.Known, "second grade overwrote the same card")
}

func TestSession_NavigationBeforeSettleWins(t *testing.T) {
	s, sched := loadedSession(t, 5)

	require.NoError(t, s.Grade(models.StatusKnown))
	require.NoError(t, s.Advance(models.Backward))
	sched.fire()

	assert.Equal(t, "Card 5 of 5", s.View().Label)
}

func TestSession_ReloadDropsPendingReadvance(t *testing.T) {
	s, sched := loadedSession(t, 3)
	require.NoError(t, s.Grade(models.StatusKnown))
	pending := sched.timers[0]

	require.NoError(t, s.BeginLoad(models.Dataset{ID: "unit2"}))
	s.FinishLoad(makeCards(3), nil)
	assert.True(t, pending.stopped)

	pending.fn()
	assert.Equal(t, "Card 1 of 3", s.View().Label)
}

func TestSession_FeedbackExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s, _ := loadedSession(t, 2, session.WithClock(func() time.Time { return now }))

	require.NoError(t, s.Grade(models.StatusPartial))
	v := s.View()
	require.NotNil(t, v.Feedback)
	assert.Equal(t, models.StatusPartial, v.Feedback.Status)

	now = now.Add(300 * time.Millisecond)
	assert.Nil(t, s.View().Feedback)
}

func TestSession_Press(t *testing.T) {
	s, sched := loadedSession(t, 3)

	handled, err := s.Press("ArrowRight")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "Card 2 of 3", s.View().Label)

	handled, _ = s.Press("ArrowLeft")
	assert.True(t, handled)
	assert.Equal(t, "Card 1 of 3", s.View().Label)

	handled, _ = s.Press("space")
	assert.True(t, handled)
	assert.True(t, s.View().Flipped)

	for key, want := range map[string]models.Status{
		"Digit1": models.StatusKnown,
		"Digit2": models.StatusPartial,
		"Digit3": models.StatusUnknown,
	} {
		s2, _ := loadedSession(t, 1)
		handled, err := s2.Press(key)
		require.NoError(t, err)
		assert.True(t, handled)
		cards, _ := s2.Cards()
		assert.Equal(t, want, cards[0].Status, key)
	}

	handled, err = s.Press("KeyQ")
	assert.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, sched.timers)
}

func TestSession_RealTimerSettles(t *testing.T) {
	settled := make(chan struct{}, 1)
	s := session.New("s1",
		session.WithGradeDelay(5*time.Millisecond),
		session.WithSettleHook(func() { settled <- struct{}{} }),
	)
	require.NoError(t, s.BeginLoad(models.Dataset{ID: "all"}))
	s.FinishLoad(makeCards(3), nil)

	require.NoError(t, s.Grade(models.StatusKnown))
	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("re-advance did not fire")
	}
	assert.Equal(t, "Card 2 of 3", s.View().Label)
	s.Close()
}

func TestSession_RandomModeWiring(t *testing.T) {
	s, sched := loadedSession(t, 6, session.WithMode(models.ModeRandom))
	assert.Equal(t, models.ModeRandom, s.View().Mode)

	for i := 0; i < 50; i++ {
		before := s.View().Position
		require.NoError(t, s.Grade(models.StatusPartial))
		sched.fire()
		assert.NotEqual(t, before, s.View().Position)
	}
}

func TestSession_CancelLoadKeepsDeck(t *testing.T) {
	s, _ := loadedSession(t, 2)
	require.NoError(t, s.BeginLoad(models.Dataset{ID: "unit2"}))
	s.CancelLoad()

	assert.False(t, s.Loading())
	assert.Equal(t, "unit1", s.Dataset().ID)
	assert.NoError(t, s.LastError())
	assert.Equal(t, "Card 1 of 2", s.View().Label)
}
