package api

// ProvisionRequest is the JSON body for POST /tenants/{tenantID}/projects/provision.
type ProvisionRequest struct {
	ProjectID string `json:"project_id"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SettingsStore string `json:"settings_store"`
}
