package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockDeckLoader is a mock implementation of worker.DeckLoader
type MockDeckLoader struct {
	mock.Mock
}

func (m *MockDeckLoader) Load(ctx context.Context, ds models.Dataset) ([]*models.Card, error) {
	args := m.Called(ctx, ds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Card), args.Error(1)
}
