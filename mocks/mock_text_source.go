package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"registrum/internal/domain"
)

// MockTextSource is a mock implementation of port.TextSource.
type MockTextSource struct {
	mock.Mock
}

func (m *MockTextSource) FetchText(ctx context.Context, bucket, key string) (*domain.TextInput, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TextInput), args.Error(1)
}
