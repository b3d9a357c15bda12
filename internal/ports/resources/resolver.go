package resources

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("resource request not found")

// Resource es la vista mínima de un request que necesita el broker.
type Resource struct {
	RequestID         string
	Label             string
	AccessMode        string
	RequesterIdentity string
}

// Resolver resuelve un resource-request ID contra el store externo.
// Devuelve ErrNotFound (o un error que lo envuelva) si no existe.
type Resolver interface {
	Resolve(ctx context.Context, requestID string) (Resource, error)
}
