package notebook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"env-access-broker/internal/platform/httpclient"
	"env-access-broker/internal/ports/downstream"
)

const (
	DefaultHealthPath = "/lab"
	DefaultTimeout    = 5 * time.Second
)

type Config struct {
	BaseURL    string
	HealthPath string

	// Timeout del probe. Es independiente del TTL de los tokens.
	Timeout time.Duration
}

// Probe implementa downstream.Checker contra el servidor de notebooks.
type Probe struct {
	client     *httpclient.Client
	healthPath string
	timeout    time.Duration
	now        func() time.Time
}

func NewProbe(cfg Config) (*Probe, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, fmt.Errorf("notebook probe: %w", err)
	}
	if client.BaseURL == "" {
		return nil, errors.New("notebook probe: base url required")
	}
	return newProbe(client, cfg.HealthPath, timeout), nil
}

func newProbe(client *httpclient.Client, healthPath string, timeout time.Duration) *Probe {
	p := strings.TrimSpace(healthPath)
	if p == "" {
		p = DefaultHealthPath
	}
	return &Probe{
		client:     client,
		healthPath: p,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Check hace un GET al health path con timeout acotado y clasifica el resultado.
func (p *Probe) Check(ctx context.Context) downstream.Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()
	status, err := p.client.Get(ctx, p.healthPath)
	res := downstream.Result{
		CheckedAt: start,
		Latency:   p.now().Sub(start),
	}

	switch {
	case err == nil:
		res.Status = downstream.StatusHealthy
		res.Detail = fmt.Sprintf("status=%d", status)
	case isTimeout(ctx, err):
		res.Status = downstream.StatusTimeout
		res.Detail = "notebook service timeout"
	default:
		res.Status = downstream.StatusUnhealthy
		var he *httpclient.HTTPError
		if errors.As(err, &he) {
			res.Detail = fmt.Sprintf("status=%d", he.StatusCode)
		} else {
			res.Detail = "notebook service unreachable"
		}
	}
	return res
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
