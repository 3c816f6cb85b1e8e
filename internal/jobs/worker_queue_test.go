package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/session"
	"github.com/vytor/wordflash/internal/testutil/mocks"
	"github.com/vytor/wordflash/internal/worker"
)

var unit1 = models.Dataset{ID: "unit1", Name: "Unit 1", Source: "unit1.json"}

func TestWorkerQueue_LoadsThroughPool(t *testing.T) {
	loader := new(mocks.MockDeckLoader)
	loader.On("Load", mock.Anything, unit1).Return([]*models.Card{{ID: 0, SideA: "a", SideB: "b"}}, nil)

	pool := worker.NewPool(1, 2)
	pool.Start(context.Background())
	defer pool.Stop()

	q := jobs.NewWorkerQueue(pool, loader)
	s := session.New("s1")
	require.NoError(t, s.BeginLoad(unit1))
	require.NoError(t, q.EnqueueLoad(s, unit1))

	assert.Eventually(t, func() bool { return !s.Loading() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "unit1", s.Dataset().ID)
}

func TestWorkerQueue_ReportsFullQueue(t *testing.T) {
	loader := new(mocks.MockDeckLoader)
	pool := worker.NewPool(1, 1)
	q := jobs.NewWorkerQueue(pool, loader)

	require.NoError(t, q.EnqueueLoad(session.New("a"), unit1))
	assert.ErrorIs(t, q.EnqueueLoad(session.New("b"), unit1), worker.ErrQueueFull)
}

func TestInlineQueue_FinishesBeforeReturning(t *testing.T) {
	loader := new(mocks.MockDeckLoader)
	loader.On("Load", mock.Anything, unit1).Return(nil, errors.New("unreachable"))

	q := &jobs.InlineQueue{Loader: loader}
	s := session.New("s1")
	require.NoError(t, s.BeginLoad(unit1))
	require.NoError(t, q.EnqueueLoad(s, unit1))

	assert.False(t, s.Loading())
	assert.EqualError(t, s.LastError(), "unreachable")
}
