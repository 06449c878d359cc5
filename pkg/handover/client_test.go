package handover

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandover_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/basestation/7", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`13`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/")
	got, err := client.Handover(context.Background(), 7)

	require.NoError(t, err)
	assert.InDelta(t, 13.0, got, 1e-12)
}

func TestHandover_ObjectBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": 11.5}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Handover(context.Background(), 1)

	require.NoError(t, err)
	assert.InDelta(t, 11.5, got, 1e-12)
}

func TestHandover_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Handover(context.Background(), 4)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 4, nf.StationTypeID)
	assert.Contains(t, err.Error(), "station type 4")
}

func TestHandover_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Handover(context.Background(), 2)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "500")
}

func TestHandover_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Handover(context.Background(), 2)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestHandover_ObjectWithoutValue(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"other": 1}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Handover(context.Background(), 2)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value")
}

func TestHandover_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).Handover(context.Background(), 2)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestHandover_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Handover(context.Background(), 2)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestHandover_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`1`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, WithRateLimit(0)).Handover(ctx, 1)

	require.Error(t, err)
}

func TestNewClient_TimeoutAppliesToDefaultClientOnly(t *testing.T) {
	t.Parallel()

	hc := &http.Client{Timeout: 2 * time.Second}
	c := NewClient("http://handover.local", WithHTTPClient(hc), WithTimeout(50*time.Millisecond))

	assert.Equal(t, 2*time.Second, hc.Timeout)
	assert.Same(t, hc, c.(*httpClient).http)

	def := NewClient("http://handover.local", WithTimeout(50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, def.(*httpClient).http.Timeout)
}
