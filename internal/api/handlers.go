package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	storeStatus := "ok"
	if err := s.store.Ping(r.Context()); err != nil {
		storeStatus = err.Error()
	}

	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		SettingsStore: storeStatus,
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleProvision handles POST /tenants/{tenantID}/projects/provision.
// The provisioning result is the contract: hard failures come back as 200
// with success=false rather than a 5xx, because they describe the tenant's
// storage configuration, not this service.
func (s *Server) handleProvision(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		s.writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	result := s.engine.Provision(r.Context(), tenantID, req.ProjectID)
	respondJSON(w, http.StatusOK, result)
}

// handleDiagnostic handles GET /tenants/{tenantID}/diagnostic.
func (s *Server) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantIDParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := s.doctor.Run(r.Context(), tenantID)
	respondJSON(w, http.StatusOK, report)
}

func tenantIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "tenantID")
	tenantID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || tenantID < 0 {
		return 0, fmt.Errorf("invalid tenantID %q", raw)
	}
	return tenantID, nil
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
