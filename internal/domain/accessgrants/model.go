package accessgrants

import "time"

const (
	DefaultIssuedBy = "anonymous"

	tokenPreviewLen = 8
)

// Grant autoriza, por tiempo acotado, el redirect a un recurso protegido.
// El registry es dueño exclusivo de los grants; afuera solo circulan copias.
type Grant struct {
	Token string

	ResourceRequestID string
	ResourceLabel     string // snapshot al momento de emitir
	IssuedBy          string

	IssuedAt  time.Time
	ExpiresAt time.Time

	UseCount       int
	LastAccessedAt *time.Time
}

// ExpiredAt indica si el grant ya no es válido en t (t > ExpiresAt).
func (g Grant) ExpiredAt(t time.Time) bool {
	return t.After(g.ExpiresAt)
}

// Summary es la vista pública de un grant: nunca incluye el token completo.
type Summary struct {
	TokenPreview      string
	ResourceRequestID string
	ResourceLabel     string
	IssuedBy          string
	IssuedAt          time.Time
	ExpiresAt         time.Time
	ExpiresInMinutes  int
	UseCount          int
	LastAccessedAt    *time.Time
}

func (s Summary) WasUsed() bool {
	return s.UseCount > 0
}

func Summarize(g Grant, now time.Time) Summary {
	remaining := g.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return Summary{
		TokenPreview:      TokenPreview(g.Token),
		ResourceRequestID: g.ResourceRequestID,
		ResourceLabel:     g.ResourceLabel,
		IssuedBy:          g.IssuedBy,
		IssuedAt:          g.IssuedAt,
		ExpiresAt:         g.ExpiresAt,
		ExpiresInMinutes:  int(remaining / time.Minute),
		UseCount:          g.UseCount,
		LastAccessedAt:    g.LastAccessedAt,
	}
}

// TokenPreview devuelve los primeros caracteres del token, apto para logs.
func TokenPreview(token string) string {
	if len(token) <= tokenPreviewLen {
		return "..."
	}
	return token[:tokenPreviewLen] + "..."
}
