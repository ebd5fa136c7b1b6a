package app

import (
	"lessonos_backend/docs"
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/middleware"
	"lessonos_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		// 课程生成与管理
		authGroup.POST("/lessons", c.lesson.Create)
		authGroup.GET("/lessons", c.lesson.List)
		authGroup.GET("/lessons/:id", c.lesson.Get)
		authGroup.GET("/lessons/:id/status", c.lesson.Status)
		authGroup.POST("/lessons/:id/retry", c.lesson.Retry)
		authGroup.DELETE("/lessons/:id", c.lesson.Delete)
		authGroup.POST("/lessons/generate/stream", c.lesson.GenerateStream)

		// 小节 AI 改写
		authGroup.POST("/sections/:id/ai-edit", c.section.ApplyEdit)
		authGroup.GET("/sections/:id/edits", c.section.ListEdits)
	}
}
