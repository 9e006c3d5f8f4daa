package routes

import (
	"github.com/gin-gonic/gin"

	"streeteye-be/controllers"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, auth *controllers.AuthController) {
	g := r.Group("/auth")
	{
		g.GET("/test", auth.Test)
		g.POST("/signup", auth.Signup)
		g.POST("/login", auth.Login)
	}
}
