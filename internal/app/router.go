package app

import (
	"assessment_backend/docs"
	"assessment_backend/internal/config"
	"assessment_backend/internal/middleware"
	"assessment_backend/internal/model"
	"assessment_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.POST("/assignments/:id/attempts", c.attempt.StartAttempt)
		student.GET("/assignments/:id/history", c.attempt.GetHistory)
		student.GET("/attempts/:id", c.attempt.GetAttempt)
		student.PUT("/attempts/:id/answers/:questionId", c.attempt.SaveAnswer)
		student.POST("/attempts/:id/finish", c.attempt.FinishAttempt)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/assignments/:id/pending", c.grading.ListPending)
		teacher.PUT("/attempts/:id/final-score", c.grading.SetFinalScore)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/attempts/:id/regrade", c.grading.Regrade)
	}
}
