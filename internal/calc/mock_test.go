package calc

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockHandoverClient implements handover.Client for testing.
type mockHandoverClient struct {
	mock.Mock
}

func (m *mockHandoverClient) Handover(ctx context.Context, stationTypeID int) (float64, error) {
	args := m.Called(ctx, stationTypeID)
	return args.Get(0).(float64), args.Error(1)
}
