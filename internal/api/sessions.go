package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/interaction"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/session"
	"github.com/persistorai/actorweb/internal/ws"
)

// eventTimeout bounds how long a request waits for the session goroutine.
const eventTimeout = 5 * time.Second

// SessionHandler serves session lifecycle and interaction endpoints.
type SessionHandler struct {
	sessions SessionManager
	results  Broadcaster
	log      *logrus.Logger
}

// NewSessionHandler creates a SessionHandler. results may be nil.
func NewSessionHandler(sessions SessionManager, results Broadcaster, log *logrus.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, results: results, log: log}
}

type createSessionRequest struct {
	Key      string  `json:"key" binding:"required"`
	Width    float64 `json:"width" binding:"required"`
	Height   float64 `json:"height" binding:"required"`
	Replaces string  `json:"replaces"`
}

type createSessionResponse struct {
	ID    string             `json:"id"`
	Key   string             `json:"key"`
	Model *models.GraphModel `json:"model"`
	Frame *session.Frame     `json:"frame"`
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	s, err := h.sessions.Create(c.Request.Context(), session.CreateRequest{
		Key:      req.Key,
		Width:    req.Width,
		Height:   req.Height,
		Replaces: req.Replaces,
	})
	if err != nil {
		respondServiceError(c, h.log, "creating session", err)
		return
	}

	c.JSON(http.StatusCreated, createSessionResponse{
		ID:    s.ID(),
		Key:   s.Key(),
		Model: s.Model(),
		Frame: s.Latest(),
	})
}

// List handles GET /sessions.
func (h *SessionHandler) List(c *gin.Context) {
	sessions := h.sessions.List()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// lookup resolves the :id path parameter, writing the error response on failure.
func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	if err := validatePathID(id); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return nil, false
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		respondServiceError(c, h.log, "getting session", err)
		return nil, false
	}

	return s, true
}

// Get handles GET /sessions/:id and returns the latest frame.
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.Latest())
}

// Delete handles DELETE /sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := validatePathID(id); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	if err := h.sessions.Delete(id); err != nil {
		respondServiceError(c, h.log, "deleting session", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Event handles POST /sessions/:id/events. The result is also sent to the
// session's WebSocket viewers.
func (h *SessionHandler) Event(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var env interaction.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	ev, err := env.Event()
	if err != nil {
		respondServiceError(c, h.log, "decoding event", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), eventTimeout)
	defer cancel()

	res, err := s.Dispatch(ctx, ev)
	if err != nil {
		respondServiceError(c, h.log, "dispatching event", err)
		return
	}

	if h.results != nil {
		h.results.BroadcastEvent(ws.TypeResult, s.ID(), res)
	}

	c.JSON(http.StatusOK, res)
}

// Export handles GET /sessions/:id/export.
func (h *SessionHandler) Export(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), eventTimeout)
	defer cancel()

	export, err := s.Export(ctx)
	if err != nil {
		respondServiceError(c, h.log, "exporting session", err)
		return
	}

	c.JSON(http.StatusOK, export)
}

// sessionDispatcher routes WebSocket events to live sessions.
type sessionDispatcher struct {
	sessions SessionManager
}

func (d sessionDispatcher) Dispatch(ctx context.Context, sessionID string, ev interaction.Event) (interaction.Result, error) {
	s, err := d.sessions.Get(sessionID)
	if err != nil {
		return interaction.Result{}, err
	}

	return s.Dispatch(ctx, ev)
}
