package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayush/exercise-tracker/internal/config"
	"github.com/ayush/exercise-tracker/internal/middleware"
	"github.com/ayush/exercise-tracker/internal/static"
	"github.com/ayush/exercise-tracker/internal/store"
	"github.com/ayush/exercise-tracker/internal/tracker"
)

func newTestServer(t *testing.T, limiter middleware.Limiter, maxBody int64) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()
	h := NewRouter(RouterOptions{
		Tracker:        tracker.NewHandler(store.NewMemoryStore(), log),
		Site:           static.NewSite(nil, log),
		Limiter:        limiter,
		AllowedOrigins: []string{"https://app.example"},
		MaxBodyBytes:   maxBody,
		Log:            log,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newTestServer(t, nil, 0)

	resp, err := http.Post(srv.URL+"/api/users", "application/x-www-form-urlencoded", strings.NewReader("username=alice"))
	if err != nil {
		t.Fatal(err)
	}
	var user struct{ ID, Username string }
	json.NewDecoder(resp.Body).Decode(&user)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || user.ID == "" {
		t.Fatalf("create user: %d %+v", resp.StatusCode, user)
	}

	resp, err = http.Post(srv.URL+"/api/users/"+user.ID+"/exercises", "application/json",
		strings.NewReader(`{"description":"row","duration":"20","date":"2024-01-15"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add exercise: %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/users/" + user.ID + "/logs?from=2024-01-01&to=2024-12-31")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var logs struct {
		Count int
		Log   []struct{ Date string }
	}
	json.NewDecoder(resp.Body).Decode(&logs)
	if logs.Count != 1 || len(logs.Log) != 1 || logs.Log[0].Date != "Mon Jan 15 2024" {
		t.Errorf("unexpected logs: %+v", logs)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %q", ct)
	}
}

func TestRouter_LandingAndHealth(t *testing.T) {
	srv := newTestServer(t, nil, 0)
	for path, want := range map[string]string{
		"/":                 "Exercise tracker",
		"/public/style.css": "font-family",
		"/health":           `"status":"ok"`,
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), want) {
			t.Errorf("%s: %d %q", path, resp.StatusCode, body)
		}
	}
}

func TestRouter_CORS(t *testing.T) {
	srv := newTestServer(t, nil, 0)
	req, _ := http.NewRequest("GET", srv.URL+"/api/users", nil)
	req.Header.Set("Origin", "https://app.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("allow origin: %q", got)
	}
}

func TestRouter_RateLimitAndBodyCap(t *testing.T) {
	srv := newTestServer(t, middleware.NewMemoryLimiter(2), 32)

	big := `{"username":"` + strings.Repeat("a", 64) + `"}`
	resp, err := http.Post(srv.URL+"/api/users", "application/json", strings.NewReader(big))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: got %d, want 413", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/users")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("second request: got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/users")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("third request: got %d, want 429", resp.StatusCode)
	}
}

func TestOpenBackend(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverMemory}
	backend, closeFn, err := OpenBackend(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	defer closeFn(context.Background())
	if err := backend.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate: %v", err)
	}

	if _, _, err := OpenBackend(context.Background(), &config.Config{StoreDriver: "sqlite"}, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := &config.Config{
		Port:               "0",
		StoreDriver:        config.DriverMemory,
		RateLimitPerMinute: 60,
		CORSAllowedOrigins: []string{"*"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, zerolog.Nop()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
