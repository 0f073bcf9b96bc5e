package app

import (
	"lomba_backend/docs"
	"lomba_backend/internal/config"
	"lomba_backend/internal/middleware"
	"lomba_backend/internal/model"

	"lomba_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/auth/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		// 考试端：题目只读，作答与交卷
		exam := authGroup.Group("/exam")
		{
			exam.GET("/questions", c.question.List)
			exam.GET("/questions/:id", c.question.Get)
			exam.DELETE("/questions/:id/answer", c.userAnswer.UnsetForQuestion)

			exam.POST("/answers", c.userAnswer.Submit)
			exam.GET("/answers", c.userAnswer.ListMine)
			exam.DELETE("/answers/:id", c.userAnswer.Remove)
			exam.PUT("/answers/:id/doubt", c.userAnswer.ToggleDoubt)
			exam.DELETE("/answers/:id/doubt", c.userAnswer.UnsetDoubt)

			exam.POST("/submissions", c.exam.Submit)
			exam.GET("/submissions", c.exam.ListMine)
			exam.GET("/submissions/:id", c.exam.Get)

			exam.GET("/results/me", c.result.MySummary)
		}
	}

	// 3. 管理端：题库维护与成绩聚合
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/exam/questions", c.question.Create)
		admin.PUT("/exam/questions/:id", c.question.Update)
		admin.DELETE("/exam/questions/:id", c.question.Delete)
		admin.POST("/exam/questions/upload-image", c.question.UploadImage)

		admin.GET("/exam/submissions", c.exam.List)

		admin.GET("/results/participants", c.result.ListParticipants)
		admin.GET("/results/statistics", c.result.Statistics)
		admin.GET("/results/users/:id", c.result.UserSummary)
	}
}
