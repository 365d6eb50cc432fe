// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"time"

	"example/engine-api/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter() (*gin.Engine, error) {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil && !auth.Disabled() {
		return nil, err
	}

	protected := router.Group("/api")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{}))
	protected.GET("/analyze", AnalyzePosition)
	protected.GET("/probe", ProbePosition)
	protected.GET("/history", GetHistory)
	protected.POST("/analyze/batch", CreateBatchJob)
	protected.GET("/jobs/:jobid", GetJobStatus)

	return router, nil
}
