package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hirebridge/hirebridge-backend/internal/handlers"
)

type RouterConfig struct {
	UserHandler   *handlers.UserHandler
	ResumeHandler *handlers.ResumeHandler
	SearchHandler *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Users
		api.POST("/users", cfg.UserHandler.Create)
		api.GET("/users/:id", cfg.UserHandler.Get)
		// Resumes
		api.POST("/resumes", cfg.ResumeHandler.Ingest)
		api.GET("/resumes/:id", cfg.ResumeHandler.Get)
		api.GET("/resumes/:id/skills", cfg.ResumeHandler.GetSkills)
		api.DELETE("/resumes/:id", cfg.ResumeHandler.Delete)
		// Search
		api.POST("/search", cfg.SearchHandler.Search)
		api.GET("/search/sections", cfg.SearchHandler.SearchSections)
	}

	return router
}
