package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/convene/internal/roster"
	"github.com/kingrea/convene/internal/solve"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, err := roster.New([]roster.Role{
		{Name: "RoleA", Members: []string{"Alice", "Bob"}},
		{Name: "RoleB", Members: []string{"Carol"}},
	})
	if err != nil {
		t.Fatalf("roster construction failed: %v", err)
	}
	return r
}

type stubSolver struct {
	verdict solve.Verdict
}

func (s stubSolver) Solve(ctx context.Context, p *solve.Problem) (solve.Result, error) {
	return solve.Result{Verdict: s.verdict}, nil
}

func TestSettingsFromEnvHonorsOverrides(t *testing.T) {
	t.Setenv("CONVENE_HOST", "0.0.0.0")
	t.Setenv("CONVENE_PORT", "9101")
	t.Setenv("CONVENE_ENABLED", "false")
	t.Setenv("CONVENE_ROSTER", "/etc/convene/roster.yaml")
	t.Setenv("CONVENE_MAX_BODY", "2048")
	t.Setenv("CONVENE_SOLVE_BUDGET", "250ms")

	settings := SettingsFromEnv()
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Port != 9101 {
		t.Fatalf("expected port 9101, got %d", settings.Port)
	}
	if settings.Enabled {
		t.Fatalf("expected enabled=false from env override")
	}
	if settings.RosterPath != "/etc/convene/roster.yaml" {
		t.Fatalf("unexpected roster path %q", settings.RosterPath)
	}
	if settings.MaxBodyBytes != 2048 {
		t.Fatalf("expected body limit 2048, got %d", settings.MaxBodyBytes)
	}
	if settings.SolveBudget != 250*time.Millisecond {
		t.Fatalf("expected 250ms budget, got %s", settings.SolveBudget)
	}
}

func TestSettingsFromEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("CONVENE_PORT", "nope")
	t.Setenv("CONVENE_MAX_BODY", "-1")
	t.Setenv("CONVENE_SOLVE_BUDGET", "-5s")

	settings := SettingsFromEnv()
	if settings.Port != DefaultPort {
		t.Fatalf("bad port should fall back to default, got %d", settings.Port)
	}
	if settings.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("bad limit should fall back to default, got %d", settings.MaxBodyBytes)
	}
	if settings.SolveBudget <= 0 {
		t.Fatalf("bad budget should fall back to default, got %s", settings.SolveBudget)
	}
}

func startTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	settings := Settings{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         0,
		MaxBodyBytes: 4096,
		ReadTimeout:  time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  time.Second,
		SolveBudget:  2 * time.Second,
	}
	srv := NewServer(settings, testRoster(t), opts...)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	return srv
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)

	resp, err := http.Get(srv.BaseURL() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", resp.StatusCode)
	}
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != string(StatusReady) {
		t.Fatalf("expected ready status, got %s", health.Status)
	}
	if health.Version != Version {
		t.Fatalf("unexpected version %q", health.Version)
	}
	if health.RosterRoles != 2 {
		t.Fatalf("expected 2 roster roles, got %d", health.RosterRoles)
	}
}

func TestServerSchedulesDay(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)

	resp, err := http.Post(srv.BaseURL()+"/schedule", "application/json",
		strings.NewReader(`{"blocks": 2}`))
	if err != nil {
		t.Fatalf("schedule request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out scheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}
	if out.Verdict != string(solve.VerdictOptimal) {
		t.Fatalf("expected optimal verdict, got %s", out.Verdict)
	}
	if out.Schedule == nil || len(out.Schedule.Blocks) != 2 {
		t.Fatalf("expected a 2-block schedule, got %+v", out.Schedule)
	}
	first := out.Schedule.Blocks[0]
	if len(first.Meetings) != 1 || first.Meetings[0].Role != "RoleA" {
		t.Fatalf("expected RoleA to meet in block 1, got %+v", first.Meetings)
	}
	if len(first.Left) != 1 || first.Left[0] != "Carol" {
		t.Fatalf("expected Carol left over, got %v", first.Left)
	}
}

func TestServerReportsInfeasible(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)

	body := `{"blocks": 1, "absent": ["Alice", "Bob"], "fixed": [["RoleA"]]}`
	resp, err := http.Post(srv.BaseURL()+"/schedule", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("schedule request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var out verdictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if out.Verdict != string(solve.VerdictInfeasible) {
		t.Fatalf("expected infeasible verdict, got %s", out.Verdict)
	}
	if out.Error == "" {
		t.Fatalf("expected a user-facing message")
	}
}

func TestServerBudgetExhaustionMapsToTimeout(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, WithSolver(stubSolver{verdict: solve.VerdictUnknown}))

	resp, err := http.Post(srv.BaseURL()+"/schedule", "application/json",
		strings.NewReader(`{"blocks": 1}`))
	if err != nil {
		t.Fatalf("schedule request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", resp.StatusCode)
	}
	var out verdictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if out.Verdict != string(solve.VerdictUnknown) {
		t.Fatalf("expected unknown verdict, got %s", out.Verdict)
	}
}

func TestServerRejectsMalformedBody(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)

	resp, err := http.Post(srv.BaseURL()+"/schedule", "application/json",
		strings.NewReader(`{"blocks": `))
	if err != nil {
		t.Fatalf("schedule request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServerRejectsInvalidRequest(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)

	resp, err := http.Post(srv.BaseURL()+"/schedule", "application/json",
		strings.NewReader(`{"blocks": 0}`))
	if err != nil {
		t.Fatalf("schedule request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero blocks, got %d", resp.StatusCode)
	}
}

func TestServerEnforcesPayloadLimit(t *testing.T) {
	t.Parallel()
	settings := Settings{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         0,
		MaxBodyBytes: 64,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
		SolveBudget:  time.Second,
	}
	srv := NewServer(settings, testRoster(t))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}

	padding := bytes.Repeat([]byte("x"), 512)
	body, err := json.Marshal(map[string]any{"blocks": 1, "absent": []string{string(padding)}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(srv.BaseURL()+"/schedule", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("schedule request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestServerMethodNotAllowed(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)

	resp, err := http.Get(srv.BaseURL() + "/schedule")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", allow)
	}
}

func TestServerDisabled(t *testing.T) {
	srv := NewServer(Settings{Enabled: false}, testRoster(t))
	if err := srv.Start(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
