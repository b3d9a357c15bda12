package envrequests

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven todos los backends cuando el id no existe.
var ErrNotFound = errors.New("env request not found")

type Repository interface {
	Create(ctx context.Context, r EnvRequest) error
	GetByID(ctx context.Context, id string) (EnvRequest, error)
	List(ctx context.Context) ([]EnvRequest, error)
}
