package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const callerKey ctxKey = "caller"

// HeaderUserID lo setea el gateway (o el dev a mano) con la identidad del caller.
const HeaderUserID = "X-User-ID"

// Caller es la identidad declarada por quien llama. El broker no la verifica:
// solo se usa como "issued_by" en los grants y en los logs.
type Caller struct {
	UserID string
}

// Identity:
// - Si viene X-User-ID => setea el Caller en el contexto.
// - Si no, el request sigue igual; el handler decide el default.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), callerKey, Caller{UserID: uid})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetCaller(ctx context.Context) (Caller, bool) {
	v := ctx.Value(callerKey)
	if v == nil {
		return Caller{}, false
	}
	c, ok := v.(Caller)
	return c, ok
}
