package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/middleware"
	"github.com/persistorai/actorweb/internal/ws"
)

// originPatterns converts CORS origins (scheme://host[:port]) into the host
// patterns websocket.Accept matches against.
func originPatterns(corsOrigins []string) []string {
	patterns := make([]string, 0, len(corsOrigins))
	for _, o := range corsOrigins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		patterns = append(patterns, u.Host)
	}

	return patterns
}

func wsHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, sessions SessionManager, corsOrigins []string) gin.HandlerFunc {
	patterns := originPatterns(corsOrigins)
	dispatcher := sessionDispatcher{sessions: sessions}

	return func(c *gin.Context) {
		id := c.Param("id")
		if err := validatePathID(id); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}

		if _, err := sessions.Get(id); err != nil {
			respondServiceError(c, log, "opening session stream", err)
			return
		}

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       patterns,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).WithField("session_id", id).Error("websocket accept failed")
			return
		}

		client := ws.NewClient(hub, conn, id, dispatcher)
		hub.Register(client)

		// Derive a context that cancels when either the server shuts down or the request ends.
		wsCtx, wsCancel := context.WithCancel(appCtx)
		go func() {
			select {
			case <-c.Request.Context().Done():
				wsCancel()
			case <-wsCtx.Done():
			}
		}()

		go client.WritePump(wsCtx)
		client.ReadPump(wsCtx)
		wsCancel()
	}
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid := middleware.GetRequestID(c); rid != "" {
			fields["request_id"] = rid
		}
		if sid := c.Param("id"); sid != "" {
			fields["session_id"] = sid
		}
		log.WithFields(fields).Info("request")
	}
}

// maxPathIDLength caps keys and session ids taken from the URL.
const maxPathIDLength = 255

// validatePathID checks that a path parameter ID is non-empty and within length limits.
func validatePathID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(id) > maxPathIDLength {
		return fmt.Errorf("id exceeds maximum length of %d", maxPathIDLength)
	}
	return nil
}
