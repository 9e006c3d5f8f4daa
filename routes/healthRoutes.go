package routes

import (
	"github.com/gin-gonic/gin"

	"streeteye-be/controllers"
)

// HealthRoutes sets up the liveness probe.
func HealthRoutes(r *gin.Engine, health *controllers.HealthController) {
	r.GET("/health", health.Check)
}
