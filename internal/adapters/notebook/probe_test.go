package notebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"env-access-broker/internal/ports/downstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_Healthy(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	p, err := NewProbe(Config{BaseURL: ts.URL, Timeout: time.Second})
	require.NoError(t, err)

	res := p.Check(context.Background())
	assert.Equal(t, downstream.StatusHealthy, res.Status)
	assert.True(t, res.Healthy())
	assert.Equal(t, "/lab", gotPath)
	assert.False(t, res.CheckedAt.IsZero())
}

func TestProbe_Non2xxIsUnhealthy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	p, err := NewProbe(Config{BaseURL: ts.URL, HealthPath: "/api/status", Timeout: time.Second})
	require.NoError(t, err)

	res := p.Check(context.Background())
	assert.Equal(t, downstream.StatusUnhealthy, res.Status)
	assert.Equal(t, "status=502", res.Detail)
}

func TestProbe_RedirectIsNotFollowed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	defer ts.Close()

	p, err := NewProbe(Config{BaseURL: ts.URL, Timeout: time.Second})
	require.NoError(t, err)

	res := p.Check(context.Background())
	assert.Equal(t, downstream.StatusUnhealthy, res.Status)
	assert.Equal(t, "status=302", res.Detail)
}

func TestProbe_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	p, err := NewProbe(Config{BaseURL: ts.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	res := p.Check(context.Background())
	assert.Equal(t, downstream.StatusTimeout, res.Status)
}

func TestProbe_UnreachableIsUnhealthy(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	p, err := NewProbe(Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	res := p.Check(context.Background())
	assert.Equal(t, downstream.StatusUnhealthy, res.Status)
	assert.Equal(t, "notebook service unreachable", res.Detail)
}

func TestNewProbe_RequiresBaseURL(t *testing.T) {
	_, err := NewProbe(Config{})
	require.Error(t, err)
}
