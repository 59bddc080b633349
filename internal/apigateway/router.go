// Package apigateway assembles the HTTP surface: public health and login
// routes plus the auth-guarded evaluation API.
package apigateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reading-fluency-platform/backend/internal/auth"
	"reading-fluency-platform/backend/internal/evaluationmanagement"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Auth        *auth.Service
	Evaluations *evaluationmanagement.EvaluationHandlers
	Batches     *evaluationmanagement.BatchHandlers
}

// SetupRouter builds the Gin router. All evaluation routes sit behind the
// admin session middleware; /healthz and /auth/login are public.
func SetupRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", h.Auth.LoginHandler)
		authRoutes.POST("/logout", h.Auth.LogoutHandler)
	}

	api := router.Group("/api")
	api.Use(h.Auth.Middleware())
	{
		evaluations := api.Group("/evaluations")
		{
			evaluations.POST("", h.Evaluations.CreateEvaluationHandler)
			evaluations.GET("/:id", h.Evaluations.GetEvaluationHandler)
		}

		batches := api.Group("/batches")
		{
			batches.POST("", h.Batches.RunBatchHandler)
			batches.GET("/:id", h.Batches.GetBatchRunHandler)
			batches.GET("/:id/records", h.Evaluations.ListBatchRecordsHandler)
		}
	}

	return router
}
