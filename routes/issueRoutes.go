package routes

import (
	"github.com/gin-gonic/gin"

	"streeteye-be/controllers"
)

// IssueRoutes sets up the issue routes. Mutations validate any Bearer
// token that is sent and are optionally rate limited per client.
func IssueRoutes(r *gin.Engine, issues *controllers.IssueController, validate, limit gin.HandlerFunc) {
	g := r.Group("/issues")
	{
		g.GET("", issues.List)
		g.GET("/my", issues.ListMine)
		g.POST("", validate, limit, issues.Create)
		g.PATCH("/:id/status", validate, issues.SetStatus)
		g.POST("/:id/upvote", validate, issues.ToggleUpvote)
		g.PATCH("/:id/done", validate, issues.MarkDone)
		g.DELETE("/:id", validate, issues.Delete)
	}
}
