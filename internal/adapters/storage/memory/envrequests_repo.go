package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"env-access-broker/internal/domain/envrequests"
)

type envRequestRepo struct {
	mu   sync.RWMutex
	byID map[string]envrequests.EnvRequest
}

func NewEnvRequestRepo() envrequests.Repository {
	return &envRequestRepo{
		byID: make(map[string]envrequests.EnvRequest),
	}
}

func (r *envRequestRepo) Create(_ context.Context, req envrequests.EnvRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("env request id required")
	}
	if _, exists := r.byID[req.ID]; exists {
		return errors.New("env request already exists")
	}
	r.byID[req.ID] = req
	return nil
}

func (r *envRequestRepo) GetByID(_ context.Context, id string) (envrequests.EnvRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return envrequests.EnvRequest{}, envrequests.ErrNotFound
	}
	return req, nil
}

func (r *envRequestRepo) List(_ context.Context) ([]envrequests.EnvRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]envrequests.EnvRequest, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}

	// created_at asc; id desempata para que el orden sea estable
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
