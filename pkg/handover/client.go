// Package handover provides a client for the external handover source that
// supplies per-station-type handover values.
package handover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/basestation-calc/internal/resilience"
)

// maxBodyBytes bounds how much of a lookup response is read.
const maxBodyBytes = 64 << 10

// ErrNotFound is matched (via errors.Is) by lookups for ids the source does
// not know.
var ErrNotFound = eris.New("handover: not found")

// NotFoundError is returned when the source answers 404 for a station type.
type NotFoundError struct {
	StationTypeID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("handover for station type %d not found (404)", e.StationTypeID)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Client defines the handover source operations.
type Client interface {
	// Handover returns the handover value for a station type id.
	Handover(ctx context.Context, stationTypeID int) (float64, error)
}

// Option configures the handover client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-lookup timeout of the default HTTP client.
// It has no effect on a client supplied with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outgoing lookups to rps requests per second.
// A non-positive rps disables the limiter.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NewClient creates a client for the source rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 5 * time.Second,
		limiter: rate.NewLimiter(20, 20),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return c
}

func (c *httpClient) Handover(ctx context.Context, stationTypeID int) (float64, error) {
	reqURL := fmt.Sprintf("%s/api/basestation/%d", c.baseURL, stationTypeID)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, eris.Wrap(err, "handover: rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, eris.Wrap(err, "handover: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "handover: request station type %d", stationTypeID)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, eris.Wrap(err, "handover: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, &NotFoundError{StationTypeID: stationTypeID}
	case resp.StatusCode != http.StatusOK:
		return 0, &resilience.UpstreamError{
			Service:    "handover",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return decodeValue(body, stationTypeID)
}

// decodeValue accepts a bare JSON number or an object with a "value" field.
func decodeValue(body []byte, stationTypeID int) (float64, error) {
	if s := strings.TrimSpace(string(body)); s == "" || s == "null" {
		return 0, eris.Errorf("handover: response for station type %d has no value", stationTypeID)
	}

	var v float64
	if err := json.Unmarshal(body, &v); err == nil {
		return v, nil
	}

	var obj struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return 0, eris.Wrapf(err, "handover: unmarshal response for station type %d", stationTypeID)
	}
	if obj.Value == nil {
		return 0, eris.Errorf("handover: response for station type %d has no value", stationTypeID)
	}
	return *obj.Value, nil
}
