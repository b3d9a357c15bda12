package memory

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"env-access-broker/internal/domain/accessgrants"
)

// grantRegistry guarda los grants en un map protegido por un único mutex.
// Redeem, Revoke y los sweeps mutan, así que no hay camino de solo-lectura (sin RWMutex).
type grantRegistry struct {
	mu      sync.Mutex
	byToken map[string]accessgrants.Grant
}

func NewAccessGrantsRegistry() accessgrants.Registry {
	return &grantRegistry{
		byToken: make(map[string]accessgrants.Grant),
	}
}

func (r *grantRegistry) Insert(g accessgrants.Grant) error {
	if strings.TrimSpace(g.Token) == "" {
		return errors.New("grant token required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byToken[g.Token]; exists {
		return accessgrants.ErrConflict
	}
	r.byToken[g.Token] = copyGrant(g)
	return nil
}

func (r *grantRegistry) Redeem(token string, now time.Time) (accessgrants.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byToken[token]
	if !ok {
		return accessgrants.Grant{}, accessgrants.ErrNotFound
	}
	if g.ExpiredAt(now) {
		delete(r.byToken, token)
		return accessgrants.Grant{}, accessgrants.ErrTokenExpired
	}

	g.UseCount++
	// LastAccessedAt nunca retrocede, aunque llegue un now más viejo.
	if g.LastAccessedAt == nil || now.After(*g.LastAccessedAt) {
		t := now
		g.LastAccessedAt = &t
	}
	r.byToken[token] = g

	return copyGrant(g), nil
}

func (r *grantRegistry) Revoke(token string) (accessgrants.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byToken[token]
	if !ok {
		return accessgrants.Grant{}, accessgrants.ErrNotFound
	}
	delete(r.byToken, token)
	return copyGrant(g), nil
}

func (r *grantRegistry) SweepExpired(now time.Time) (int, []accessgrants.Grant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.sweepLocked(now)
	return removed, r.snapshotLocked()
}

func (r *grantRegistry) List(now time.Time) ([]accessgrants.Grant, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.sweepLocked(now)
	return r.snapshotLocked(), removed
}

func (r *grantRegistry) sweepLocked(now time.Time) int {
	removed := 0
	for token, g := range r.byToken {
		if g.ExpiresAt.Before(now) {
			delete(r.byToken, token)
			removed++
		}
	}
	return removed
}

// snapshotLocked copia los grants vigentes, ordenados por IssuedAt (estable para listados).
func (r *grantRegistry) snapshotLocked() []accessgrants.Grant {
	out := make([]accessgrants.Grant, 0, len(r.byToken))
	for _, g := range r.byToken {
		out = append(out, copyGrant(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].Token < out[j].Token
		}
		return out[i].IssuedAt.Before(out[j].IssuedAt)
	})
	return out
}

// copyGrant evita compartir el puntero LastAccessedAt con el caller.
func copyGrant(g accessgrants.Grant) accessgrants.Grant {
	if g.LastAccessedAt != nil {
		t := *g.LastAccessedAt
		g.LastAccessedAt = &t
	}
	return g
}
