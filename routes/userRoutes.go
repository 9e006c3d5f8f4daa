package routes

import (
	"github.com/gin-gonic/gin"

	"streeteye-be/controllers"
)

// UserRoutes sets up the profile routes
func UserRoutes(r *gin.Engine, users *controllers.UserController) {
	g := r.Group("/users")
	{
		g.POST("", users.Upsert)
		g.GET("", users.Get)
	}
}
