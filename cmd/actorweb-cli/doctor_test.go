package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/persistorai/actorweb/client"
)

func TestDoctorCheckServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(client.HealthResponse{ //nolint:errcheck
			Status: "ok", Version: "0.3.0", Catalog: "postgres", Database: "connected", Sessions: 2,
		})
	})
	mux.HandleFunc("GET /api/v1/ready", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(client.ReadyResponse{ //nolint:errcheck
			Status: "ready",
			Pool:   &client.PoolStats{Total: 4, Idle: 3, Acquired: 1},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	results := doctorCheckServer(client.New(srv.URL))

	byName := make(map[string]checkResult, len(results))
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s failed: %s", r.Name, r.Hint)
		}
		byName[r.Name] = r
	}

	if got := byName["Database pool"].Detail; got != "4 connections (3 idle, 1 in use)" {
		t.Errorf("pool detail: got %q", got)
	}
	if got := byName["Sessions"].Detail; got != "2 live, 0 viewers" {
		t.Errorf("sessions detail: got %q", got)
	}
}

func TestDoctorCheckServer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	results := doctorCheckServer(client.New(srv.URL))
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("expected a single failed check, got %+v", results)
	}
}
