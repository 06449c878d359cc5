package calc

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/basestation-calc/internal/metrics"
	"github.com/sells-group/basestation-calc/internal/resilience"
	"github.com/sells-group/basestation-calc/pkg/handover"
)

const defaultResolveConcurrency = 8

// Resolver fetches handover values missing from a request from the external
// handover source.
type Resolver struct {
	client      handover.Client
	breaker     *resilience.Breaker
	concurrency int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithBreaker sets the circuit breaker guarding the source.
func WithBreaker(b *resilience.Breaker) ResolverOption {
	return func(r *Resolver) {
		r.breaker = b
	}
}

// WithConcurrency bounds the number of lookups in flight per request.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewResolver creates a Resolver backed by client.
func NewResolver(client handover.Client, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:      client,
		concurrency: defaultResolveConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = resilience.NewBreaker(resilience.NewBreakerConfig("handover", 0, 0))
	}
	return r
}

// Resolve looks up every id once, in parallel, and returns the values only
// when all lookups succeeded. A "not found" answer is a validation *Error;
// any other failure, including cancellation of ctx, is a resolution *Error.
func (r *Resolver) Resolve(ctx context.Context, ids []int) (map[int]float64, error) {
	out := make(map[int]float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	var mu sync.Mutex
	for _, id := range ids {
		id := id
		g.Go(func() error {
			v, err := r.lookup(gCtx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, id int) (float64, error) {
	start := time.Now()
	v, err := resilience.Call(ctx, r.breaker, func(ctx context.Context) (float64, error) {
		return r.client.Handover(ctx, id)
	})
	metrics.RecordHandoverLookup(lookupOutcome(err), time.Since(start))

	switch {
	case err == nil:
		zap.L().Debug("calc: resolved handover from external source",
			zap.Int("station_type_id", id),
			zap.Float64("value", v),
		)
		return v, nil
	case errors.Is(err, handover.ErrNotFound):
		return 0, validationf(stationEntity(id), "handovers",
			"no handover data for station type %d (external source returned not found)", id)
	case errors.Is(err, context.Canceled):
		return 0, resolutionf(err, "handover lookup for station type %d abandoned", id)
	default:
		zap.L().Warn("calc: handover lookup failed",
			zap.Int("station_type_id", id),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		return 0, resolutionf(err, "handover lookup for station type %d failed", id)
	}
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.LookupOK
	case errors.Is(err, handover.ErrNotFound):
		return metrics.LookupNotFound
	case resilience.IsTransient(err) || errors.Is(err, resilience.ErrCircuitOpen):
		return metrics.LookupTransient
	default:
		return metrics.LookupError
	}
}
