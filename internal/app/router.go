package app

import (
	"net/http"
	"study_portal_backend/docs"
	"study_portal_backend/internal/middleware"
	"study_portal_backend/internal/util"
	"study_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 门户页面由前端渲染，这里只需让访问计数中间件生效
	router.NoRoute(func(ctx *gin.Context) {
		util.Error(ctx, http.StatusNotFound, "Route not found")
	})

	api := router.Group("/api")

	// 1. 公共路由
	a.registerPublicRoutes(api, c)

	// 2. 学习计划与好友
	a.registerScheduleRoutes(api, c)
	a.registerFriendRoutes(api, c)

	// 3. 门户资源，写操作需要管理员
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(util.RoleAdmin))
	a.registerPortalRoutes(api, admin, c)
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.GET("/visitors", c.visitor.GetVisitors)
	api.POST("/auth/login", c.auth.Login)
	api.GET("/auth/me", middleware.AuthMiddleware(), c.auth.Me)
}

func (a *App) registerScheduleRoutes(api *gin.RouterGroup, c *controllers) {
	schedules := api.Group("/schedules/:userId")
	{
		schedules.GET("/sessions", c.schedule.GetSessions)
		schedules.POST("/sessions", c.schedule.CreateSession)
		schedules.PUT("/sessions/:id", c.schedule.UpdateSession)
		schedules.DELETE("/sessions/:id", c.schedule.DeleteSession)
		schedules.POST("/sessions/:id/lessons/:index/toggle", c.schedule.ToggleLesson)
		schedules.POST("/sessions/:id/postpone", c.schedule.PostponeSession)
		schedules.GET("/stats", c.schedule.GetStats)
		schedules.GET("/notifications", c.schedule.GetNotifications)
		schedules.GET("/share", c.schedule.Share)
		schedules.POST("/import", c.schedule.Import)
	}
}

func (a *App) registerFriendRoutes(api *gin.RouterGroup, c *controllers) {
	api.POST("/users", c.friendship.CreateUser)
	api.GET("/users/search", c.friendship.SearchUsers)

	api.POST("/friend-requests", c.friendship.SendFriendRequest)
	api.GET("/friend-requests/:userId", c.friendship.GetFriendRequests)
	api.PUT("/friend-requests/:id", c.friendship.RespondToRequest)

	api.GET("/friends/:userId", c.friendship.GetFriends)
	api.GET("/friends/:userId/schedule", c.schedule.GetFriendSchedule)
	api.DELETE("/friends/:userId/:friendId", c.friendship.RemoveFriend)
}

func (a *App) registerPortalRoutes(api, admin *gin.RouterGroup, c *controllers) {
	api.GET("/files", c.file.ListFiles)
	api.GET("/files/:id", c.file.GetFile)
	api.GET("/files/:id/download", c.file.DownloadFile)
	admin.POST("/files", c.file.UploadFile)
	admin.DELETE("/files/:id", c.file.DeleteFile)

	api.GET("/exam-weeks", c.exam.ListWeeks)
	admin.POST("/exam-weeks", c.exam.CreateWeek)
	admin.DELETE("/exam-weeks/:id", c.exam.DeleteWeek)
	api.GET("/exams", c.exam.ListExams)
	admin.POST("/exams", c.exam.CreateExam)
	admin.DELETE("/exams/:id", c.exam.DeleteExam)

	api.GET("/quizzes", c.quiz.ListQuizzes)
	api.POST("/quizzes", c.quiz.CreateQuiz)
	api.GET("/quizzes/code/:code", c.quiz.GetQuizByCode)
	api.GET("/quizzes/:id", c.quiz.GetQuiz)
	admin.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
	api.POST("/quizzes/:id/attempts", c.quiz.SubmitAttempt)
	api.GET("/quizzes/:id/attempts", c.quiz.ListAttempts)
}
