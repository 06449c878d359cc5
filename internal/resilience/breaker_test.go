package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errUpstream = &UpstreamError{Service: "handover", StatusCode: 503}

func trip(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		_ = b.Execute(context.Background(), func(_ context.Context) error {
			return errUpstream
		})
	}
}

func TestBreaker_ClosedPassesThrough(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 0, 0))

	var calls int
	err := b.Execute(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if b.State() != Closed {
		t.Errorf("expected closed state, got %s", b.State())
	}
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 3, 60))
	trip(b, 3)

	if b.State() != Open {
		t.Fatalf("expected open state, got %s", b.State())
	}

	err := b.Execute(context.Background(), func(_ context.Context) error {
		t.Error("should not be called when circuit is open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreaker_NonTrippingErrorsDoNotCount(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 2, 60))

	for i := 0; i < 5; i++ {
		_ = b.Execute(context.Background(), func(_ context.Context) error {
			return errors.New("not found")
		})
	}

	if b.State() != Closed {
		t.Errorf("expected closed state, got %s", b.State())
	}
	if b.Failures() != 0 {
		t.Errorf("expected 0 failures, got %d", b.Failures())
	}
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 3, 60))
	trip(b, 2)

	if b.Failures() != 2 {
		t.Errorf("expected 2 consecutive failures, got %d", b.Failures())
	}

	_ = b.Execute(context.Background(), func(_ context.Context) error { return nil })

	if b.Failures() != 0 {
		t.Errorf("expected 0 consecutive failures after success, got %d", b.Failures())
	}
}

func TestBreaker_HalfOpenTrial(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{Name: "handover", FailureThreshold: 2, ResetTimeout: 100 * time.Millisecond})
	b.nowFunc = func() time.Time { return now }
	trip(b, 2)

	b.nowFunc = func() time.Time { return now.Add(200 * time.Millisecond) }
	if b.State() != HalfOpen {
		t.Fatalf("expected half-open state, got %s", b.State())
	}

	if err := b.Execute(context.Background(), func(_ context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State() != Closed {
		t.Errorf("expected closed state after successful trial, got %s", b.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{Name: "handover", FailureThreshold: 2, ResetTimeout: 100 * time.Millisecond})
	b.nowFunc = func() time.Time { return now }
	trip(b, 2)

	now = now.Add(200 * time.Millisecond)
	trip(b, 1)

	if b.State() != Open {
		t.Errorf("expected open state after failed trial, got %s", b.State())
	}
}

func TestBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	cfg := NewBreakerConfig("handover", 1, 60)
	cfg.OnStateChange = func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}
	b := NewBreaker(cfg)
	trip(b, 1)

	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("unexpected transitions: %v", transitions)
	}
}

func TestBreaker_ConcurrentAccess(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 1000, 60))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.Execute(context.Background(), func(_ context.Context) error {
				if i%2 == 0 {
					return errUpstream
				}
				return nil
			})
			_ = b.State()
		}(i)
	}
	wg.Wait()
}

func TestCall_ReturnsValue(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 0, 0))

	v, err := Call(context.Background(), b, func(_ context.Context) (float64, error) {
		return 14, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 14 {
		t.Errorf("expected 14, got %v", v)
	}
}

func TestCall_CircuitOpenReturnsZero(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 1, 60))
	trip(b, 1)

	v, err := Call(context.Background(), b, func(_ context.Context) (float64, error) {
		return 14, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if v != 0 {
		t.Errorf("expected zero value, got %v", v)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestCall_CallerDeadlineNotRecorded(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 1, 60))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Call(ctx, b, func(ctx context.Context) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if b.State() != Closed {
		t.Errorf("expected closed state, got %s", b.State())
	}
	if b.Failures() != 0 {
		t.Errorf("expected 0 failures, got %d", b.Failures())
	}

	v, err := Call(context.Background(), b, func(_ context.Context) (float64, error) {
		return 14, nil
	})
	if err != nil {
		t.Fatalf("unexpected error after caller deadline: %v", err)
	}
	if v != 14 {
		t.Errorf("expected 14, got %v", v)
	}
}

func TestCall_ClientTimeoutTrips(t *testing.T) {
	b := NewBreaker(NewBreakerConfig("handover", 1, 60))

	_, err := Call(context.Background(), b, func(_ context.Context) (float64, error) {
		return 0, timeoutError{}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if b.State() != Open {
		t.Errorf("expected open state after client timeout, got %s", b.State())
	}
}

func TestNewBreakerConfig_Defaults(t *testing.T) {
	cfg := NewBreakerConfig("handover", -1, 0)
	if cfg.FailureThreshold != 5 {
		t.Errorf("expected default threshold 5, got %d", cfg.FailureThreshold)
	}
	if cfg.ResetTimeout != 30*time.Second {
		t.Errorf("expected default reset timeout 30s, got %s", cfg.ResetTimeout)
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{Closed: "closed", Open: "open", HalfOpen: "half-open", State(9): "unknown"}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
