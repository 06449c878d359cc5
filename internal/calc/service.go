// Package calc computes the number of base stations each district needs.
//
// A calculation runs in two phases. Prepare validates the request and
// resolves missing handover values, producing an immutable Plan; Compute
// turns a Plan into a response without any I/O. Failures are *Error values
// tagged with a Kind so callers can tell bad input (KindValidation) from an
// unavailable handover source (KindResolution) and from degenerate
// arithmetic (KindComputation).
package calc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/basestation-calc/internal/metrics"
	"github.com/sells-group/basestation-calc/internal/model"
)

// Service runs calculations end to end.
type Service struct {
	resolver *Resolver
}

// NewService creates a Service. A nil resolver disables external handover
// resolution.
func NewService(resolver *Resolver) *Service {
	return &Service{resolver: resolver}
}

// ExternalResolution reports whether missing handovers are fetched from the
// external source.
func (s *Service) ExternalResolution() bool {
	return s.resolver != nil
}

// Calculate validates req, resolves missing handovers and computes the
// result. No partial result is returned on failure.
func (s *Service) Calculate(ctx context.Context, req model.CalculationRequest) (*model.CalculationResponse, error) {
	start := time.Now()

	plan, err := Prepare(ctx, req, s.resolver)
	if err != nil {
		s.record(err, start, 0)
		return nil, err
	}

	resp, err := Compute(plan)
	if err != nil {
		s.record(err, start, 0)
		return nil, err
	}

	s.record(nil, start, len(resp.DistrictResults))
	zap.L().Debug("calc: calculation complete",
		zap.Int("districts", len(resp.DistrictResults)),
		zap.Ints("external_handovers", plan.ExternalHandovers()),
		zap.Float64("total_n", resp.TotalN),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (s *Service) record(err error, start time.Time, districts int) {
	outcome := outcomeOf(err)
	metrics.RecordCalculation(outcome, time.Since(start), districts)

	if err == nil {
		return
	}

	fields := []zap.Field{zap.String("outcome", outcome), zap.Error(err)}
	var ce *Error
	if errors.As(err, &ce) {
		fields = append(fields, zap.String("entity", ce.Entity), zap.String("field", ce.Field))
	}

	switch outcome {
	case metrics.OutcomeValidation, metrics.OutcomeCanceled:
		zap.L().Info("calc: calculation rejected", fields...)
	default:
		zap.L().Error("calc: calculation failed", fields...)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	}
	switch KindOf(err) {
	case KindValidation:
		return metrics.OutcomeValidation
	case KindResolution:
		return metrics.OutcomeResolution
	default:
		return metrics.OutcomeComputation
	}
}
