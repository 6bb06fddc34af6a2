package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	"github.com/vaxsched/vaccine-scheduler/internal/booking"
	redisclient "github.com/vaxsched/vaccine-scheduler/internal/redis"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := account.NewMemStore()
	engine := booking.NewEngine(booking.NewMemDatastore(), store, redisclient.NewNopLocker())
	handler := NewHandler(engine, store, testSecret)
	srv := httptest.NewServer(NewRouter(RouterConfig{
		Handler:   handler,
		JWTSecret: testSecret,
		Env:       "test",
		Version:   "test",
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username, role string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/accounts", "", map[string]string{
		"username": username, "password": "Str0ng!pass", "role": role,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d: %v", username, resp.StatusCode, body)
	}
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]string{
		"username": username, "password": "Str0ng!pass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d: %v", username, resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", username, body)
	}
	return token
}

func TestReserveEndpoint(t *testing.T) {
	srv := newTestServer(t)
	caregiver := registerAndLogin(t, srv, "alice", "caregiver")
	patient := registerAndLogin(t, srv, "bob", "patient")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/availabilities", caregiver,
		map[string]string{"date": "2024-03-01"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("publish: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/vaccines/Pfizer/doses", caregiver,
		map[string]int{"count": 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add doses: status %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/appointments", patient,
		map[string]string{"date": "2024-03-01", "vaccine": "Pfizer"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reserve: status %d: %v", resp.StatusCode, body)
	}
	if body["caregiver"] != "alice" {
		t.Errorf("expected caregiver alice, got %v", body["caregiver"])
	}
	if body["id"] != float64(1) {
		t.Errorf("expected id 1, got %v", body["id"])
	}

	// Slot gone, dose taken.
	resp, sched := doJSON(t, http.MethodGet, srv.URL+"/schedule?date=2024-03-01", patient, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("schedule: status %d", resp.StatusCode)
	}
	if caregivers, _ := sched["caregivers"].([]any); len(caregivers) != 0 {
		t.Errorf("expected no caregivers left, got %v", caregivers)
	}
}

func TestReserveConflicts(t *testing.T) {
	srv := newTestServer(t)
	caregiver := registerAndLogin(t, srv, "alice", "caregiver")
	patient := registerAndLogin(t, srv, "bob", "patient")

	// No availability at all.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/appointments", patient,
		map[string]string{"date": "2024-03-01", "vaccine": "Pfizer"})
	if resp.StatusCode != http.StatusConflict || body["error"] != "no_availability" {
		t.Errorf("expected 409 no_availability, got %d %v", resp.StatusCode, body)
	}

	// Availability but no stock.
	doJSON(t, http.MethodPost, srv.URL+"/availabilities", caregiver,
		map[string]string{"date": "2024-03-01"})
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/appointments", patient,
		map[string]string{"date": "2024-03-01", "vaccine": "Pfizer"})
	if resp.StatusCode != http.StatusConflict || body["error"] != "insufficient_doses" {
		t.Errorf("expected 409 insufficient_doses, got %d %v", resp.StatusCode, body)
	}
}

func TestRoleAndAuthEnforcement(t *testing.T) {
	srv := newTestServer(t)
	caregiver := registerAndLogin(t, srv, "alice", "caregiver")
	patient := registerAndLogin(t, srv, "bob", "patient")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"no token", http.MethodPost, "/appointments", "", map[string]string{"date": "2024-03-01", "vaccine": "Pfizer"}, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/appointments", "garbage", nil, http.StatusUnauthorized},
		{"caregiver cannot reserve", http.MethodPost, "/appointments", caregiver, map[string]string{"date": "2024-03-01", "vaccine": "Pfizer"}, http.StatusForbidden},
		{"patient cannot publish", http.MethodPost, "/availabilities", patient, map[string]string{"date": "2024-03-01"}, http.StatusForbidden},
		{"patient cannot add doses", http.MethodPost, "/vaccines/Pfizer/doses", patient, map[string]int{"count": 5}, http.StatusForbidden},
		{"bad date", http.MethodPost, "/availabilities", caregiver, map[string]string{"date": "bogus"}, http.StatusBadRequest},
		{"bad appointment id", http.MethodDelete, "/appointments/abc", patient, nil, http.StatusBadRequest},
		{"cancel unknown appointment", http.MethodDelete, "/appointments/99", patient, nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, tt.method, srv.URL+tt.path, tt.token, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d: %v", tt.status, resp.StatusCode, body)
			}
		})
	}
}

func TestCancelEndpoint(t *testing.T) {
	srv := newTestServer(t)
	caregiver := registerAndLogin(t, srv, "alice", "caregiver")
	patient := registerAndLogin(t, srv, "bob", "patient")

	doJSON(t, http.MethodPost, srv.URL+"/availabilities", caregiver,
		map[string]string{"date": "2024-03-01"})
	doJSON(t, http.MethodPost, srv.URL+"/vaccines/Pfizer/doses", caregiver,
		map[string]int{"count": 1})
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/appointments", patient,
		map[string]string{"date": "2024-03-01", "vaccine": "Pfizer"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reserve: %d %v", resp.StatusCode, body)
	}
	id := int64(body["id"].(float64))

	// Only a participant may cancel.
	other := registerAndLogin(t, srv, "eve", "patient")
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/appointments/%d", srv.URL, id), other, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign cancel: expected 404, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/appointments/%d", srv.URL, id), patient, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("cancel: expected 204, got %d", resp.StatusCode)
	}

	// Slot is open again.
	resp, sched := doJSON(t, http.MethodGet, srv.URL+"/schedule?date=2024-03-01", patient, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("schedule: %d", resp.StatusCode)
	}
	caregivers, _ := sched["caregivers"].([]any)
	if len(caregivers) != 1 || caregivers[0] != "alice" {
		t.Errorf("expected alice open again, got %v", caregivers)
	}
}

func TestRegisterErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/accounts", "", map[string]string{
		"username": "alice", "password": "Str0ng!pass", "role": "admin",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad role: expected 400, got %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/accounts", "", map[string]string{
		"username": "alice", "password": "weak", "role": "patient",
	})
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "weak_password" {
		t.Errorf("weak password: expected 400 weak_password, got %d %v", resp.StatusCode, body)
	}

	registerAndLogin(t, srv, "alice", "patient")
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/accounts", "", map[string]string{
		"username": "alice", "password": "Str0ng!pass", "role": "patient",
	})
	if resp.StatusCode != http.StatusConflict || body["error"] != "username_taken" {
		t.Errorf("duplicate: expected 409 username_taken, got %d %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]string{
		"username": "alice", "password": "Wrong!pass1",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health/live", "", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("liveness: got %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/health/ready", "", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("readiness: got %d %v", resp.StatusCode, body)
	}
}
