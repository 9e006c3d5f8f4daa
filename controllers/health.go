package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streeteye-be/config"
)

type HealthController struct {
	db *config.Database
}

func NewHealthController(db *config.Database) *HealthController {
	return &HealthController{db: db}
}

// Check never touches storage; it must answer even in degraded mode. The
// database field is the in-memory connection state.
func (h *HealthController) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "street-eye-backend",
		"database": h.db.State().String(),
	})
}
