package accessgrants

import (
	"context"
	"fmt"
	"strings"

	"env-access-broker/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper corre SweepExpired periódicamente. La expiración lazy en Redeem/List
// sigue aplicando; esto solo evita que se acumulen grants que nadie vuelve a tocar.
type Sweeper struct {
	cron *cron.Cron
	svc  *Service
	log  logger.Logger
}

// NewSweeper valida el schedule (formato cron estándar o "@every 1m").
func NewSweeper(svc *Service, schedule string, log logger.Logger) (*Sweeper, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil, fmt.Errorf("sweeper: empty schedule")
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &Sweeper{
		cron: cron.New(),
		svc:  svc,
		log:  log.With(map[string]any{"component": "grant_sweeper"}),
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("sweeper: invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	res := s.svc.SweepExpired(context.Background())
	s.log.Debug("sweep run", map[string]any{
		"removed":   res.RemovedCount,
		"remaining": res.RemainingCount,
	})
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("grant sweeper started", nil)
}

// Stop frena el scheduler y espera a que termine un sweep en curso (o ctx).
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("grant sweeper stopped", nil)
}
