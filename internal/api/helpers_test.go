package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/api"
	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/service"
	"github.com/persistorai/actorweb/internal/session"
	"github.com/persistorai/actorweb/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// newTestServer wires the full router over the demo catalog.
func newTestServer(t *testing.T) (http.Handler, *session.Manager) {
	t.Helper()

	log := testLogger()
	ctx, cancel := context.WithCancel(context.Background())

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	cat := catalog.Demo()
	graphs := service.NewGraphService(cat, log)
	mgr := session.NewManager(session.DefaultConfig(), graphs, hub, log)

	t.Cleanup(func() {
		mgr.Shutdown()
		cancel()
	})

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:           log,
		Hub:           hub,
		Titles:        service.NewTitleService(cat, log),
		Graphs:        graphs,
		Sessions:      mgr,
		CORSOrigins:   []string{"http://localhost:5173"},
		Version:       "test-v1",
		CatalogSource: "demo",
		ServeMetrics:  true,
	})

	return router, mgr
}

// doRequest performs an HTTP request against the handler and returns the recorder.
func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}
