package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"baa_legal/internal/api/handlers"
	"baa_legal/internal/middleware"
	"baa_legal/internal/service"
	"baa_legal/internal/utils"
)

// SetupRoutes wires the REST surface and the chat WebSocket endpoint.
func SetupRoutes(r *gin.Engine, services *service.Services, tokens *utils.TokenManager, allowedOrigins []string) {
	authHandler := handlers.NewAuthHandler(services.User, tokens)
	threadHandler := handlers.NewThreadHandler(services.Chat, services.User, services.Gateway)
	wsHandler := handlers.NewWebSocketHandler(services.Gateway, services.User, tokens, allowedOrigins)

	if len(allowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AddAllowHeaders("Authorization")
		r.Use(cors.New(corsConfig))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	api := r.Group("/api")

	// Public routes
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authenticated routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(tokens))
	{
		threads := authorized.Group("/cabinet/threads")
		{
			threads.GET("", threadHandler.ListThreads)
			threads.POST("", threadHandler.CreateThread)
			threads.GET("/:id", threadHandler.GetThread)
			threads.GET("/:id/messages", threadHandler.GetThreadMessages)
			threads.POST("/:id/add_message", threadHandler.AddMessage)
		}
	}

	// The live chat channel authenticates inside the handler so
	// browser clients can pass the token as a query parameter.
	r.GET("/ws/chat", wsHandler.Handle)
}
