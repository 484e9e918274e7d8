package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	storage string
}

// NewHealthHandler reports the active storage backend name on every check.
func NewHealthHandler(storage string) *HealthHandler {
	return &HealthHandler{storage: storage}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"storage": h.storage,
	})
}
