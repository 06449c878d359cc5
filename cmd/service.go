package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/basestation-calc/internal/calc"
	"github.com/sells-group/basestation-calc/internal/config"
	"github.com/sells-group/basestation-calc/internal/resilience"
	"github.com/sells-group/basestation-calc/pkg/handover"
)

// newService wires the calculation service. External handover resolution is
// enabled only when a base URL is configured.
func newService(c *config.Config) *calc.Service {
	if !c.Handover.Enabled() {
		zap.L().Info("external handover source disabled")
		return calc.NewService(nil)
	}

	client := handover.NewClient(c.Handover.BaseURL,
		handover.WithTimeout(time.Duration(c.Handover.TimeoutSecs)*time.Second),
		handover.WithRateLimit(c.Handover.RateLimit),
	)
	breaker := resilience.NewBreaker(resilience.NewBreakerConfig(
		"handover",
		c.Handover.CircuitFailureThreshold,
		c.Handover.CircuitResetSecs,
	))

	zap.L().Info("external handover source enabled",
		zap.String("base_url", c.Handover.BaseURL),
		zap.Int("max_concurrency", c.Handover.MaxConcurrency),
	)

	return calc.NewService(calc.NewResolver(client,
		calc.WithBreaker(breaker),
		calc.WithConcurrency(c.Handover.MaxConcurrency),
	))
}
