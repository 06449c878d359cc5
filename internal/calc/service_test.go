package calc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/basestation-calc/internal/metrics"
	"github.com/sells-group/basestation-calc/internal/resilience"
)

func TestService_Calculate(t *testing.T) {
	t.Parallel()

	svc := NewService(nil)
	assert.False(t, svc.ExternalResolution())

	resp, err := svc.Calculate(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, resp.DistrictResults, 2)
	assert.Equal(t, "d1", resp.DistrictResults[0].DistrictID)
}

func TestService_CalculateWithResolver(t *testing.T) {
	t.Parallel()

	client := new(mockHandoverClient)
	client.On("Handover", mock.Anything, 1).Return(14.0, nil)

	svc := NewService(NewResolver(client))
	assert.True(t, svc.ExternalResolution())

	resp, err := svc.Calculate(context.Background(), requestWithoutHandovers(1))

	require.NoError(t, err)
	assert.Len(t, resp.DistrictResults, 2)
}

func TestService_ValidationShortCircuits(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Districts[0].Stations = []int{1}

	resp, err := NewService(nil).Calculate(context.Background(), req)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsValidation(err))
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeOK},
		{validationf("", "pi", "bad"), metrics.OutcomeValidation},
		{resolutionf(&resilience.UpstreamError{Service: "handover", StatusCode: 503}, "lookup"), metrics.OutcomeResolution},
		{resolutionf(context.Canceled, "abandoned"), metrics.OutcomeCanceled},
		{computationf("", "degenerate"), metrics.OutcomeComputation},
		{errors.New("unexpected"), metrics.OutcomeComputation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outcomeOf(tt.err))
	}
}
