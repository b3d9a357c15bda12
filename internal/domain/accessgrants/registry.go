package accessgrants

import (
	"errors"
	"time"
)

// Errores del registry. El service los traduce a los errores de la API.
var (
	ErrConflict     = errors.New("token already exists")
	ErrNotFound     = errors.New("grant not found")
	ErrTokenExpired = errors.New("token expired")
)

// Registry es el dueño exclusivo del mapa token -> Grant.
// Las implementaciones serializan internamente todas las operaciones;
// los callers no necesitan lock externo. No hace I/O.
type Registry interface {
	// Insert guarda un grant nuevo; ErrConflict si el token ya existe.
	Insert(g Grant) error

	// Redeem busca el token y, de forma atómica:
	// - ErrNotFound si no existe
	// - ErrTokenExpired (y lo elimina) si now > ExpiresAt
	// - si no, incrementa UseCount, actualiza LastAccessedAt y devuelve el grant ya mutado.
	Redeem(token string, now time.Time) (Grant, error)

	// Revoke elimina y devuelve el grant, o ErrNotFound.
	Revoke(token string) (Grant, error)

	// SweepExpired elimina todo grant con ExpiresAt < now.
	// Devuelve cuántos eliminó y los grants que quedan.
	SweepExpired(now time.Time) (removed int, remaining []Grant)

	// List barre los expirados (igual que SweepExpired) y devuelve los vigentes.
	List(now time.Time) (active []Grant, removed int)
}
