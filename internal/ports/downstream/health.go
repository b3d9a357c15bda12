package downstream

import (
	"context"
	"time"
)

// Status es la clasificación de un health check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusTimeout   Status = "timeout"
)

// Result de un health check. Es solo orientativo: Healthy no garantiza
// que el recurso siga disponible cuando se redima el token.
type Result struct {
	Status    Status
	Detail    string
	CheckedAt time.Time
	Latency   time.Duration
}

func (r Result) Healthy() bool {
	return r.Status == StatusHealthy
}

// Checker nunca devuelve error: siempre clasifica el resultado.
type Checker interface {
	Check(ctx context.Context) Result
}
