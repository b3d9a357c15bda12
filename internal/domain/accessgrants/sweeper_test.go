package accessgrants_test

import (
	"context"
	"testing"
	"time"

	"env-access-broker/internal/domain/accessgrants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	f := newFixture(t)

	_, err := accessgrants.NewSweeper(f.svc, "", nil)
	require.Error(t, err)

	_, err = accessgrants.NewSweeper(f.svc, "every minute please", nil)
	require.Error(t, err)
}

func TestSweeper_RunRemovesExpired(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), accessgrants.IssueInput{ResourceRequestID: "req-1", TTLMinutes: 1})
	require.NoError(t, err)
	_, err = f.svc.Issue(context.Background(), accessgrants.IssueInput{ResourceRequestID: "req-1", TTLMinutes: 10})
	require.NoError(t, err)

	s, err := accessgrants.NewSweeper(f.svc, "@every 1m", nil)
	require.NoError(t, err)

	f.clock.Set(t0.Add(2 * time.Minute))
	s.RunOnce()

	l := f.svc.List(context.Background())
	assert.Equal(t, 1, l.ActiveCount)
	assert.Equal(t, 0, l.SweptCount)
}

func TestSweeper_StartStop(t *testing.T) {
	f := newFixture(t)

	s, err := accessgrants.NewSweeper(f.svc, "@every 1h", nil)
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
