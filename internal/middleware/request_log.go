package middleware

import (
	"net/http"
	"strings"
	"time"

	"env-access-broker/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger loguea una línea por request. Va después de chimw.RequestID.
// Los paths de /access/{token} se enmascaran para no dejar tokens en los logs.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        maskTokenPath(r.URL.Path),
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
			}
			if status >= 500 {
				log.Error("http request", fields)
				return
			}
			log.Info("http request", fields)
		})
	}
}

var tokenPathPrefixes = []string{"/access/", "/access-grants/"}

func maskTokenPath(p string) string {
	for _, prefix := range tokenPathPrefixes {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" || rest == "sweep" {
			return p
		}
		if len(rest) > 8 {
			rest = rest[:8] + "..."
		}
		return prefix + rest
	}
	return p
}
