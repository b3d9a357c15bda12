package accessgrants

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"env-access-broker/internal/middleware"
	"env-access-broker/internal/ports/downstream"

	"github.com/go-chi/chi/v5"
)

// Mismo mensaje para token inválido y expirado: no filtramos historia del token.
const msgInvalidOrExpired = "invalid or expired token"

// RegisterRoutes monta la API del broker. accessMW se aplica solo a la redención
// (rate limiting); puede ser nil.
func RegisterRoutes(r chi.Router, svc *Service, accessMW func(http.Handler) http.Handler) {
	r.Post("/env-requests/{requestID}/access-grants", issueGrantHandler(svc))

	r.Group(func(ar chi.Router) {
		if accessMW != nil {
			ar.Use(accessMW)
		}
		ar.Get("/access/{token}", accessHandler(svc))
	})

	r.Route("/access-grants", func(gr chi.Router) {
		gr.Get("/", listGrantsHandler(svc))
		gr.Post("/sweep", sweepGrantsHandler(svc))
		gr.Delete("/{token}", revokeGrantHandler(svc))
	})

	r.Get("/downstream/health", probeHealthHandler(svc))
	r.Get("/access-config", accessConfigHandler(svc))
}

type issueGrantResponse struct {
	Token            string    `json:"token"`
	AccessURL        string    `json:"access_url"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInMinutes int       `json:"expires_in_minutes"`
	RequestID        string    `json:"request_id"`
	EnvName          string    `json:"env_name"`
}

type grantSummaryResponse struct {
	TokenPreview     string     `json:"token_preview"`
	RequestID        string     `json:"request_id"`
	EnvName          string     `json:"env_name"`
	IssuedBy         string     `json:"issued_by"`
	IssuedAt         time.Time  `json:"issued_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	ExpiresInMinutes int        `json:"expires_in_minutes"`
	UseCount         int        `json:"use_count"`
	WasUsed          bool       `json:"was_used"`
	LastAccessedAt   *time.Time `json:"last_accessed_at"`
}

type listGrantsResponse struct {
	ActiveCount int                    `json:"active_count"`
	SweptCount  int                    `json:"swept_count"`
	Grants      []grantSummaryResponse `json:"grants"`
}

type sweepResponse struct {
	RemovedCount   int `json:"removed_count"`
	RemainingCount int `json:"remaining_count"`
}

type healthResponse struct {
	Status    downstream.Status `json:"status"`
	Detail    string            `json:"detail,omitempty"`
	CheckedAt time.Time         `json:"checked_at"`
	LatencyMS int64             `json:"latency_ms"`
}

type accessConfigResponse struct {
	AccessMode        string `json:"access_mode"`
	DefaultTTLMinutes int    `json:"default_ttl_minutes"`
	MaxTTLMinutes     int    `json:"max_ttl_minutes"`
}

// issueGrantHandler godoc
// @Summary  Issue a temporary access grant for an environment request
// @Tags     access-grants
// @Produce  json
// @Param    requestID       path   string  true   "Environment request ID"
// @Param    expiry_minutes  query  int     false  "Grant TTL in minutes"
// @Success  201  {object}  issueGrantResponse
// @Failure  400,404,503  {object}  errorResponse
// @Router   /env-requests/{requestID}/access-grants [post]
func issueGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ttl := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("expiry_minutes")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "expiry_minutes must be a positive integer")
				return
			}
			ttl = n
		}

		issuedBy := ""
		if c, ok := middleware.GetCaller(r.Context()); ok {
			issuedBy = c.UserID
		}

		out, err := svc.Issue(r.Context(), IssueInput{
			ResourceRequestID: chi.URLParam(r, "requestID"),
			TTLMinutes:        ttl,
			IssuedBy:          issuedBy,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, ErrDownstreamUnavailable):
				writeError(w, http.StatusServiceUnavailable, "notebook service unavailable")
			case errors.Is(err, ErrResourceNotFound):
				writeError(w, http.StatusNotFound, "environment request not found")
			case errors.Is(err, ErrUnsupportedResourceType):
				writeError(w, http.StatusBadRequest, "environment request does not support notebook access")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, issueGrantResponse{
			Token:            out.Grant.Token,
			AccessURL:        out.AccessURL,
			ExpiresAt:        out.Grant.ExpiresAt,
			ExpiresInMinutes: int(out.TTL / time.Minute),
			RequestID:        out.Grant.ResourceRequestID,
			EnvName:          out.Grant.ResourceLabel,
		})
	}
}

// accessHandler godoc
// @Summary  Redeem a token and redirect to the notebook
// @Tags     access-grants
// @Param    token  path  string  true  "Access token"
// @Success  302
// @Failure  401  {object}  errorResponse
// @Router   /access/{token} [get]
func accessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Access(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, msgInvalidOrExpired)
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		// Solo autorizamos y redirigimos; nunca proxyeamos tráfico del notebook.
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		http.Redirect(w, r, out.Target, http.StatusFound)
	}
}

// listGrantsHandler godoc
// @Summary  List active grants (expired ones are swept first)
// @Tags     access-grants
// @Produce  json
// @Success  200  {object}  listGrantsResponse
// @Router   /access-grants [get]
func listGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := svc.List(r.Context())

		out := make([]grantSummaryResponse, 0, len(l.Grants))
		for _, s := range l.Grants {
			out = append(out, toSummaryResponse(s))
		}
		writeJSON(w, http.StatusOK, listGrantsResponse{
			ActiveCount: l.ActiveCount,
			SweptCount:  l.SweptCount,
			Grants:      out,
		})
	}
}

// revokeGrantHandler godoc
// @Summary  Revoke a grant
// @Tags     access-grants
// @Produce  json
// @Param    token  path  string  true  "Access token"
// @Success  200  {object}  grantSummaryResponse
// @Failure  404  {object}  errorResponse
// @Router   /access-grants/{token} [delete]
func revokeGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Revoke(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				writeError(w, http.StatusNotFound, "grant not found")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, toSummaryResponse(s))
	}
}

// sweepGrantsHandler godoc
// @Summary  Remove every expired grant
// @Tags     access-grants
// @Produce  json
// @Success  200  {object}  sweepResponse
// @Router   /access-grants/sweep [post]
func sweepGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.SweepExpired(r.Context())
		writeJSON(w, http.StatusOK, sweepResponse{
			RemovedCount:   res.RemovedCount,
			RemainingCount: res.RemainingCount,
		})
	}
}

// probeHealthHandler godoc
// @Summary  Check notebook service health
// @Tags     downstream
// @Produce  json
// @Success  200  {object}  healthResponse
// @Router   /downstream/health [get]
func probeHealthHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.ProbeHealth(r.Context())
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    res.Status,
			Detail:    res.Detail,
			CheckedAt: res.CheckedAt,
			LatencyMS: res.Latency.Milliseconds(),
		})
	}
}

func accessConfigHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		c := svc.Config()
		writeJSON(w, http.StatusOK, accessConfigResponse{
			AccessMode:        c.AccessMode,
			DefaultTTLMinutes: c.DefaultTTLMinutes,
			MaxTTLMinutes:     c.MaxTTLMinutes,
		})
	}
}

func toSummaryResponse(s Summary) grantSummaryResponse {
	return grantSummaryResponse{
		TokenPreview:     s.TokenPreview,
		RequestID:        s.ResourceRequestID,
		EnvName:          s.ResourceLabel,
		IssuedBy:         s.IssuedBy,
		IssuedAt:         s.IssuedAt,
		ExpiresAt:        s.ExpiresAt,
		ExpiresInMinutes: s.ExpiresInMinutes,
		UseCount:         s.UseCount,
		WasUsed:          s.WasUsed(),
		LastAccessedAt:   s.LastAccessedAt,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
