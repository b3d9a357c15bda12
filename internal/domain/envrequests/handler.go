package envrequests

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"env-access-broker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra rutas planas: /env-requests/{id}/access-grants vive
// en accessgrants y un r.Route acá lo taparía.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/env-requests", createEnvRequestHandler(svc))
	r.Get("/env-requests", listEnvRequestsHandler(svc))
	r.Get("/env-requests/{requestID}", getEnvRequestHandler(svc))
}

type createEnvRequestRequest struct {
	EnvName         string `json:"env_name"`
	EnvPurpose      string `json:"env_purpose"`
	UseCase         string `json:"use_case"`
	DataDomain      string `json:"data_domain"`
	InstanceType    string `json:"instance_type"`
	IDEOption       string `json:"ide_option"`
	FrameworkOption string `json:"framework_option"`
	RequestedBy     string `json:"requested_by"`
}

type createEnvRequestResponse struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

type envRequestResponse struct {
	ID              string    `json:"id"`
	EnvName         string    `json:"env_name"`
	EnvPurpose      string    `json:"env_purpose"`
	UseCase         string    `json:"use_case"`
	DataDomain      string    `json:"data_domain"`
	InstanceType    string    `json:"instance_type"`
	IDEOption       string    `json:"ide_option"`
	FrameworkOption string    `json:"framework_option,omitempty"`
	RequestedBy     string    `json:"requested_by"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// createEnvRequestHandler godoc
// @Summary  Submit an environment request
// @Tags     env-requests
// @Accept   json
// @Produce  json
// @Param    body  body  createEnvRequestRequest  true  "Environment request"
// @Success  201  {object}  createEnvRequestResponse
// @Failure  400  {object}  errorResponse
// @Router   /env-requests [post]
func createEnvRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEnvRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		// El header de identidad gana sobre el body.
		if c, ok := middleware.GetCaller(r.Context()); ok {
			req.RequestedBy = c.UserID
		}

		created, err := svc.Create(r.Context(), CreateInput{
			EnvName:         req.EnvName,
			EnvPurpose:      req.EnvPurpose,
			UseCase:         req.UseCase,
			DataDomain:      req.DataDomain,
			InstanceType:    req.InstanceType,
			IDEOption:       req.IDEOption,
			FrameworkOption: req.FrameworkOption,
			RequestedBy:     req.RequestedBy,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		writeJSON(w, http.StatusCreated, createEnvRequestResponse{
			RequestID: created.ID,
			Message:   "Environment request submitted successfully",
		})
	}
}

// listEnvRequestsHandler godoc
// @Summary  List environment requests
// @Tags     env-requests
// @Produce  json
// @Success  200  {array}  envRequestResponse
// @Router   /env-requests [get]
func listEnvRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		out := make([]envRequestResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toEnvRequestResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getEnvRequestHandler godoc
// @Summary  Get an environment request
// @Tags     env-requests
// @Produce  json
// @Param    requestID  path  string  true  "Environment request ID"
// @Success  200  {object}  envRequestResponse
// @Failure  404  {object}  errorResponse
// @Router   /env-requests/{requestID} [get]
func getEnvRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.GetByID(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "environment request not found"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, toEnvRequestResponse(item))
	}
}

func toEnvRequestResponse(r EnvRequest) envRequestResponse {
	return envRequestResponse{
		ID:              r.ID,
		EnvName:         r.EnvName,
		EnvPurpose:      r.EnvPurpose,
		UseCase:         r.UseCase,
		DataDomain:      r.DataDomain,
		InstanceType:    r.InstanceType,
		IDEOption:       r.IDEOption,
		FrameworkOption: r.FrameworkOption,
		RequestedBy:     r.RequestedBy,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
