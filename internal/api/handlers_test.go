package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/karstlabs/groundwork/internal/auth"
	"github.com/karstlabs/groundwork/internal/doctor"
	"github.com/karstlabs/groundwork/internal/provision"
)

// mockEngine implements Provisioner for testing
type mockEngine struct {
	provisionFunc func(ctx context.Context, tenantID int64, projectIdentifier string) provision.Result
}

func (m *mockEngine) Provision(ctx context.Context, tenantID int64, projectIdentifier string) provision.Result {
	return m.provisionFunc(ctx, tenantID, projectIdentifier)
}

// mockDoctor implements Diagnoser for testing
type mockDoctor struct {
	runFunc func(ctx context.Context, tenantID int64) *doctor.Report
}

func (m *mockDoctor) Run(ctx context.Context, tenantID int64) *doctor.Report {
	if m.runFunc != nil {
		return m.runFunc(ctx, tenantID)
	}
	return &doctor.Report{TenantID: tenantID, Healthy: true}
}

// mockStore implements StorePinger for testing
type mockStore struct {
	pingErr error
}

func (m *mockStore) Ping(ctx context.Context) error { return m.pingErr }

func okResult(path string) provision.Result {
	return provision.Result{
		Success:        true,
		Path:           path,
		Warnings:       []string{},
		Subdirectories: []provision.SubdirResult{{Name: "Reports", Created: true, Success: true}},
	}
}

func newTestServer(engine Provisioner) *Server {
	cfg := Config{
		Listen: ":0",
		APIKey: "admin-key",
		Tokens: []auth.TokenConfig{
			{Token: "provision-token", Scopes: []string{"provision:rw"}},
			{Token: "diag-token", Scopes: []string{"diagnostic:ro"}},
		},
	}
	return New(cfg, engine, &mockDoctor{}, &mockStore{}, slog.Default())
}

func doRequest(s *Server, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(w, req)
	return w
}

func TestHealthzNoAuth(t *testing.T) {
	s := newTestServer(&mockEngine{})

	w := doRequest(s, http.MethodGet, "/healthz", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp HealthzResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.SettingsStore != "ok" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestProvisionHappyPath(t *testing.T) {
	var gotTenant int64
	var gotProject string
	engine := &mockEngine{
		provisionFunc: func(ctx context.Context, tenantID int64, projectIdentifier string) provision.Result {
			gotTenant = tenantID
			gotProject = projectIdentifier
			return okResult("/srv/tenant7/02-2026-0019")
		},
	}
	s := newTestServer(engine)

	body := []byte(`{"project_id": "02-2026-0019"}`)
	w := doRequest(s, http.MethodPost, "/tenants/7/projects/provision", "provision-token", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotTenant != 7 || gotProject != "02-2026-0019" {
		t.Errorf("engine called with tenant=%d project=%q", gotTenant, gotProject)
	}

	var result provision.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || result.Path != "/srv/tenant7/02-2026-0019" {
		t.Errorf("result = %+v", result)
	}
}

func TestProvisionHardFailureStays200(t *testing.T) {
	engine := &mockEngine{
		provisionFunc: func(ctx context.Context, tenantID int64, projectIdentifier string) provision.Result {
			return provision.Result{
				Error:          `storage root "/does/not/exist" is not usable: path does not exist`,
				Warnings:       []string{},
				Subdirectories: []provision.SubdirResult{},
			}
		},
	}
	s := newTestServer(engine)

	w := doRequest(s, http.MethodPost, "/tenants/7/projects/provision", "provision-token",
		[]byte(`{"project_id": "x"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (result carries the failure)", w.Code)
	}
	var result provision.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Success || result.Error == "" {
		t.Errorf("result = %+v, want success=false with error", result)
	}
}

func TestProvisionBadRequests(t *testing.T) {
	s := newTestServer(&mockEngine{})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"non-numeric tenant", "/tenants/abc/projects/provision", `{"project_id": "x"}`},
		{"invalid json", "/tenants/7/projects/provision", `{`},
		{"missing project_id", "/tenants/7/projects/provision", `{}`},
		{"blank project_id", "/tenants/7/projects/provision", `{"project_id": "   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, http.MethodPost, tt.path, "provision-token", []byte(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestProvisionAuth(t *testing.T) {
	s := newTestServer(&mockEngine{
		provisionFunc: func(ctx context.Context, tenantID int64, projectIdentifier string) provision.Result {
			return okResult("/srv/x")
		},
	})
	body := []byte(`{"project_id": "x"}`)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"unknown token", "nope", http.StatusUnauthorized},
		{"diagnostic-only token", "diag-token", http.StatusForbidden},
		{"provision token", "provision-token", http.StatusOK},
		{"legacy admin key", "admin-key", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, http.MethodPost, "/tenants/7/projects/provision", tt.token, body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestDiagnosticEndpoint(t *testing.T) {
	s := newTestServer(&mockEngine{})

	// provision:rw implies diagnostic:ro.
	for _, token := range []string{"diag-token", "provision-token", "admin-key"} {
		w := doRequest(s, http.MethodGet, "/tenants/7/diagnostic", token, nil)
		if w.Code != http.StatusOK {
			t.Errorf("token %q: status = %d, want 200", token, w.Code)
			continue
		}
		var report doctor.Report
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if report.TenantID != 7 {
			t.Errorf("report tenant = %d, want 7", report.TenantID)
		}
	}
}
