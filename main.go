package main

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"streeteye-be/config"
	"streeteye-be/controllers"
	"streeteye-be/middlewares"
	"streeteye-be/routes"
	"streeteye-be/services"
)

const requestBudget = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found")
	}

	cfg := config.Load()

	db := config.NewDatabase(cfg.MongoURI, cfg.MongoDBName)

	// Startup connect happens in the background: the router comes up
	// immediately and serves storage-free routes while the store is still
	// unreachable; handlers retry on demand.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Connect(ctx); err != nil {
			log.WithError(err).Warn("mongodb unreachable at startup, continuing in degraded mode")
		}
	}()

	redisClient := config.ConnectRedis(cfg)

	identity := services.NewIdentity(db, cfg.JWTSecret)
	issues := services.NewIssues(db)
	community := services.NewCommunity(db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.RequestBudget(requestBudget))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
	}))

	validate := middlewares.ValidateBearer(cfg.JWTSecret)
	limit := middlewares.RateLimit(redisClient, "create", cfg.CreateDailyLimit)

	routes.HealthRoutes(r, controllers.NewHealthController(db))
	routes.AuthRoutes(r, controllers.NewAuthController(identity))
	routes.UserRoutes(r, controllers.NewUserController(identity))
	routes.IssueRoutes(r, controllers.NewIssueController(issues), validate, limit)
	routes.CommunityRoutes(r, controllers.NewCommunityController(community), validate, limit)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	})

	log.WithField("port", cfg.Port).Info("street-eye backend listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
