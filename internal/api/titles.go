package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/catalog"
)

// TitleHandler serves catalog lookups.
type TitleHandler struct {
	titles TitleService
	graphs GraphService
	log    *logrus.Logger
}

// NewTitleHandler creates a TitleHandler.
func NewTitleHandler(titles TitleService, graphs GraphService, log *logrus.Logger) *TitleHandler {
	return &TitleHandler{titles: titles, graphs: graphs, log: log}
}

// Search handles GET /titles/search?q=&limit=.
func (h *TitleHandler) Search(c *gin.Context) {
	limit := catalog.DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be an integer")
			return
		}
		limit = v
	}

	results, err := h.titles.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondServiceError(c, h.log, "searching titles", err)
		return
	}

	resp := gin.H{"results": results, "count": len(results)}

	if len(results) == 0 {
		if s, err := h.titles.Suggestions(c.Request.Context(), catalog.DefaultSuggestions); err != nil {
			h.log.WithError(err).Warn("search: suggestions unavailable")
		} else {
			resp["suggestions"] = s
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Suggestions handles GET /titles/suggestions?n=.
func (h *TitleHandler) Suggestions(c *gin.Context) {
	n := catalog.DefaultSuggestions
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "n must be an integer")
			return
		}
		n = v
	}

	results, err := h.titles.Suggestions(c.Request.Context(), n)
	if err != nil {
		respondServiceError(c, h.log, "suggesting titles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// Get handles GET /titles/:key.
func (h *TitleHandler) Get(c *gin.Context) {
	key := c.Param("key")
	if err := validatePathID(key); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	entity, err := h.titles.Get(c.Request.Context(), key)
	if err != nil {
		respondServiceError(c, h.log, "getting title", err)
		return
	}

	c.JSON(http.StatusOK, entity)
}

// Connections handles GET /titles/:key/connections. It builds the connection
// graph without starting a session.
func (h *TitleHandler) Connections(c *gin.Context) {
	key := c.Param("key")
	if err := validatePathID(key); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	model, err := h.graphs.BuildGraph(c.Request.Context(), key)
	if err != nil {
		respondServiceError(c, h.log, "building connections", err)
		return
	}

	c.JSON(http.StatusOK, model)
}
