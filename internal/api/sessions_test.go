package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/persistorai/actorweb/internal/interaction"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/session"
)

type createdSession struct {
	ID    string             `json:"id"`
	Key   string             `json:"key"`
	Model *models.GraphModel `json:"model"`
	Frame *session.Frame     `json:"frame"`
}

func createSession(t *testing.T, router http.Handler) createdSession {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/v1/sessions", `{"key":"breaking bad","width":800,"height":600}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var s createdSession
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if s.ID == "" || s.Model == nil || s.Frame == nil {
		t.Fatalf("incomplete create response %+v", s)
	}

	return s
}

func otherNode(t *testing.T, g *models.GraphModel) string {
	t.Helper()

	for _, n := range g.Nodes {
		if !n.IsCenter {
			return n.ID
		}
	}

	t.Fatal("model has no connected titles")

	return ""
}

func TestSessionLifecycle(t *testing.T) {
	router, mgr := newTestServer(t)

	s := createSession(t, router)
	if mgr.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", mgr.Len())
	}

	w := doRequest(router, http.MethodGet, "/api/v1/sessions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}

	var list struct {
		Sessions []session.Summary `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(list.Sessions) != 1 || list.Sessions[0].ID != s.ID {
		t.Errorf("unexpected list %+v", list.Sessions)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/sessions/"+s.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}

	var f session.Frame
	if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if f.SessionID != s.ID || len(f.Snapshot.Nodes) != len(s.Model.Nodes) {
		t.Errorf("unexpected frame for %s: %d nodes", f.SessionID, len(f.Snapshot.Nodes))
	}

	w = doRequest(router, http.MethodDelete, "/api/v1/sessions/"+s.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/sessions/"+s.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestSessionCreate_Errors(t *testing.T) {
	router, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"malformed", `{`, http.StatusBadRequest},
		{"missing key", `{"width":800,"height":600}`, http.StatusBadRequest},
		{"negative viewport", `{"key":"breaking bad","width":-1,"height":600}`, http.StatusBadRequest},
		{"unknown title", `{"key":"nope","width":800,"height":600}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/sessions", tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestSessionEvent_HoverAndClick(t *testing.T) {
	router, _ := newTestServer(t)

	s := createSession(t, router)
	target := otherNode(t, s.Model)
	path := "/api/v1/sessions/" + s.ID + "/events"

	w := doRequest(router, http.MethodPost, path, `{"type":"hover","node_id":"`+target+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("hover: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res interaction.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if res.State.Hovered != target {
		t.Errorf("expected hovered %q, got %+v", target, res.State)
	}

	w = doRequest(router, http.MethodPost, path, `{"type":"click","node_id":"`+target+`","x":400,"y":300}`)
	if w.Code != http.StatusOK {
		t.Fatalf("click: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	res = interaction.Result{}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if res.Popup == nil || res.Popup.Empty || len(res.Popup.Entries) == 0 {
		t.Errorf("expected shared actor popup, got %+v", res.Popup)
	}
}

func TestSessionEvent_Errors(t *testing.T) {
	router, _ := newTestServer(t)

	s := createSession(t, router)
	path := "/api/v1/sessions/" + s.ID + "/events"

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"unknown type", path, `{"type":"wiggle"}`, http.StatusBadRequest},
		{"missing type", path, `{}`, http.StatusBadRequest},
		{"unknown node", path, `{"type":"focus","node_id":"nope"}`, http.StatusNotFound},
		{"unknown session", "/api/v1/sessions/nope/events", `{"type":"drag_end"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestSessionExport(t *testing.T) {
	router, _ := newTestServer(t)

	s := createSession(t, router)

	w := doRequest(router, http.MethodGet, "/api/v1/sessions/"+s.ID+"/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var export models.GraphExport
	if err := json.Unmarshal(w.Body.Bytes(), &export); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if export.Version != session.ExportVersion || export.SessionID != s.ID || export.Center != "81189" {
		t.Errorf("unexpected export header %+v", export)
	}

	if export.Stats.NodeCount != len(s.Model.Nodes) || export.Stats.EdgeCount != len(s.Model.Edges) {
		t.Errorf("unexpected stats %+v", export.Stats)
	}
}
