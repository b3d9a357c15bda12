package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"env-access-broker/internal/domain/accessgrants"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var t0 = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func newGrant(token string, issuedAt time.Time, ttl time.Duration) accessgrants.Grant {
	return accessgrants.Grant{
		Token:             token,
		ResourceRequestID: "req-" + token,
		ResourceLabel:     "Sandbox " + token,
		IssuedBy:          "alice",
		IssuedAt:          issuedAt,
		ExpiresAt:         issuedAt.Add(ttl),
	}
}

func TestRegistry_Insert_Conflict(t *testing.T) {
	reg := NewAccessGrantsRegistry()

	require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))

	err := reg.Insert(newGrant("tok-1", t0, time.Hour))
	assert.ErrorIs(t, err, accessgrants.ErrConflict)

	// El grant guardado queda intacto.
	active, _ := reg.List(t0)
	require.Len(t, active, 1)
	assert.Equal(t, t0.Add(time.Minute), active[0].ExpiresAt)
}

func TestRegistry_Insert_RequiresToken(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	assert.Error(t, reg.Insert(newGrant("", t0, time.Minute)))
}

func TestRegistry_Redeem_IncrementsAndStampsAccess(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))

	for i := 1; i <= 3; i++ {
		at := t0.Add(time.Duration(i) * time.Second)
		g, err := reg.Redeem("tok-1", at)
		require.NoError(t, err)
		assert.Equal(t, i, g.UseCount)
		require.NotNil(t, g.LastAccessedAt)
		assert.Equal(t, at, *g.LastAccessedAt)
	}
}

func TestRegistry_Redeem_LastAccessedNeverMovesBack(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))

	_, err := reg.Redeem("tok-1", t0.Add(30*time.Second))
	require.NoError(t, err)

	g, err := reg.Redeem("tok-1", t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, g.UseCount)
	assert.Equal(t, t0.Add(30*time.Second), *g.LastAccessedAt)
}

func TestRegistry_Redeem_ExpiryBoundary(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))

	// now == ExpiresAt todavía es válido.
	_, err := reg.Redeem("tok-1", t0.Add(time.Minute))
	require.NoError(t, err)

	_, err = reg.Redeem("tok-1", t0.Add(time.Minute+time.Nanosecond))
	assert.ErrorIs(t, err, accessgrants.ErrTokenExpired)

	// Expirar en lectura lo elimina.
	_, err = reg.Redeem("tok-1", t0)
	assert.ErrorIs(t, err, accessgrants.ErrNotFound)
}

func TestRegistry_Redeem_Unknown(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	_, err := reg.Redeem("nonexistent-token", t0)
	assert.ErrorIs(t, err, accessgrants.ErrNotFound)
}

func TestRegistry_Revoke_ThenRedeemIsNotFound(t *testing.T) {
	for _, at := range []time.Time{t0, t0.Add(time.Hour)} {
		reg := NewAccessGrantsRegistry()
		require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))
		_, err := reg.Redeem("tok-1", t0)
		require.NoError(t, err)

		g, err := reg.Revoke("tok-1")
		require.NoError(t, err)
		assert.Equal(t, 1, g.UseCount)

		_, err = reg.Redeem("tok-1", at)
		assert.ErrorIs(t, err, accessgrants.ErrNotFound)

		_, err = reg.Revoke("tok-1")
		assert.ErrorIs(t, err, accessgrants.ErrNotFound)
	}
}

func TestRegistry_ReturnedGrantIsACopy(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))

	g, err := reg.Redeem("tok-1", t0.Add(time.Second))
	require.NoError(t, err)
	*g.LastAccessedAt = t0.Add(-time.Hour)
	g.UseCount = 100

	active, _ := reg.List(t0)
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].UseCount)
	assert.Equal(t, t0.Add(time.Second), *active[0].LastAccessedAt)
}

func TestRegistry_SweepExpired_RemovesExactlyExpired(t *testing.T) {
	reg := NewAccessGrantsRegistry()

	now := t0.Add(10 * time.Minute)
	expired := []accessgrants.Grant{
		newGrant("old-1", t0, time.Minute),
		newGrant("old-2", t0, 5*time.Minute),
	}
	live := []accessgrants.Grant{
		newGrant("live-1", t0, 10*time.Minute), // ExpiresAt == now: se queda
		newGrant("live-2", t0.Add(time.Minute), time.Hour),
	}
	for _, g := range append(append([]accessgrants.Grant{}, expired...), live...) {
		require.NoError(t, reg.Insert(g))
	}

	// Una redención previa: el grant vivo debe conservar sus campos mutados.
	redeemed, err := reg.Redeem("live-2", t0.Add(2*time.Minute))
	require.NoError(t, err)
	live[1] = redeemed

	removed, remaining := reg.SweepExpired(now)
	assert.Equal(t, 2, removed)
	if diff := cmp.Diff(live, remaining); diff != "" {
		t.Fatalf("remaining grants mismatch (-want +got):\n%s", diff)
	}

	removed, remaining = reg.SweepExpired(now)
	assert.Equal(t, 0, removed)
	assert.Len(t, remaining, 2)
}

func TestRegistry_List_SweepsAsSideEffect(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	require.NoError(t, reg.Insert(newGrant("a", t0, time.Minute)))
	require.NoError(t, reg.Insert(newGrant("b", t0.Add(time.Second), time.Hour)))

	active, removed := reg.List(t0.Add(2 * time.Minute))
	assert.Equal(t, 1, removed)
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].Token)

	_, err := reg.Redeem("a", t0)
	assert.ErrorIs(t, err, accessgrants.ErrNotFound)
}

func TestRegistry_ConcurrentRedeem_NoLostUpdates(t *testing.T) {
	reg := NewAccessGrantsRegistry()
	require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))

	const n = 200
	var g errgroup.Group
	for i := 0; i < n; i++ {
		at := t0.Add(time.Duration(i) * time.Millisecond)
		g.Go(func() error {
			_, err := reg.Redeem("tok-1", at)
			return err
		})
	}
	require.NoError(t, g.Wait())

	active, _ := reg.List(t0)
	require.Len(t, active, 1)
	assert.Equal(t, n, active[0].UseCount)
	assert.Equal(t, t0.Add((n-1)*time.Millisecond), *active[0].LastAccessedAt)
}

func TestRegistry_ConcurrentRevokeAndRedeem(t *testing.T) {
	// Revoke y Redeem compiten: después del revoke ningún redeem puede tener éxito,
	// y cada redeem exitoso quedó contado en el grant revocado.
	for round := 0; round < 20; round++ {
		reg := NewAccessGrantsRegistry()
		require.NoError(t, reg.Insert(newGrant("tok-1", t0, time.Minute)))

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			revoked   accessgrants.Grant
		)

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := reg.Redeem("tok-1", t0)
				switch {
				case err == nil:
					mu.Lock()
					succeeded++
					mu.Unlock()
				case errors.Is(err, accessgrants.ErrNotFound):
				default:
					panic(fmt.Sprintf("unexpected error: %v", err))
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := reg.Revoke("tok-1")
			if err != nil {
				panic(err)
			}
			revoked = g
		}()
		wg.Wait()

		assert.Equal(t, succeeded, revoked.UseCount, "round %d", round)

		_, err := reg.Redeem("tok-1", t0)
		assert.ErrorIs(t, err, accessgrants.ErrNotFound)
	}
}

func TestRegistry_ConcurrentMixedOperations(t *testing.T) {
	reg := NewAccessGrantsRegistry()

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		token := fmt.Sprintf("tok-%d", i)
		ttl := time.Duration(i%5+1) * time.Minute
		g.Go(func() error {
			if err := reg.Insert(newGrant(token, t0, ttl)); err != nil {
				return err
			}
			// Un sweep concurrente puede haberlo barrido ya (ttl corto).
			_, err := reg.Redeem(token, t0.Add(30*time.Second))
			if errors.Is(err, accessgrants.ErrNotFound) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			reg.SweepExpired(t0.Add(3 * time.Minute))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	active, _ := reg.List(t0.Add(3 * time.Minute))
	for _, gr := range active {
		assert.False(t, gr.ExpiresAt.Before(t0.Add(3*time.Minute)))
		assert.Equal(t, 1, gr.UseCount)
	}
}
