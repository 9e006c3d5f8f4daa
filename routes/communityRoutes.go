package routes

import (
	"github.com/gin-gonic/gin"

	"streeteye-be/controllers"
)

// CommunityRoutes sets up the community feed routes.
func CommunityRoutes(r *gin.Engine, community *controllers.CommunityController, validate, limit gin.HandlerFunc) {
	g := r.Group("/community")
	{
		g.GET("", community.List)
		g.POST("", validate, limit, community.Create)
		g.POST("/:id/like", validate, community.ToggleLike)
		g.PATCH("/:id", validate, community.Update)
		g.DELETE("/:id", validate, community.Delete)
	}
}
