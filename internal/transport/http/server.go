package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"ragineer/internal/ai"
	appsvc "ragineer/internal/app"
	"ragineer/internal/bootstrap"
	"ragineer/internal/cache"
	"ragineer/internal/model"
	"ragineer/internal/platform/rabbitmq"
	"ragineer/internal/repository"
	"ragineer/internal/transport/http/handler"
	"ragineer/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	sessionRepo := repository.NewChatSessionRepository(app.MySQL)
	messageRepo := repository.NewChatMessageRepository(app.MySQL)
	usageEventRepo := repository.NewUsageEventRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	eventPublisher := rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.UsageEventQueue)
	chatClient := ai.NewChatClient(app.AI, ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireHour)*time.Hour,
	)
	userService := appsvc.NewUserService(userRepo)
	documentService := appsvc.NewDocumentService(
		documentRepo,
		app.Index,
		eventPublisher,
		app.Config.Storage.UploadsDir,
		app.Config.Retrieval.ChunkSize,
		app.Config.Retrieval.ChunkOverlap,
	)
	chatService := appsvc.NewChatService(
		sessionRepo,
		messageRepo,
		documentRepo,
		app.Index,
		chatClient,
		eventPublisher,
		historyCache,
		app.Config.Retrieval.TopK,
	)
	statsService := appsvc.NewStatsService(userRepo, documentRepo, sessionRepo, usageEventRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	documentHandler := handler.NewDocumentHandler(documentService)
	chatHandler := handler.NewChatHandler(chatService)
	statsHandler := handler.NewStatsHandler(statsService)

	authRequired := middleware.AuthJWT(app.Config.Auth.JWTSecret, userRepo)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authRequired, authHandler.Me)

	userGroup := v1.Group("/users")
	userGroup.Use(authRequired, middleware.RequirePermission(model.PermManageUsers))
	userGroup.GET("", userHandler.List)
	userGroup.PUT("/:id", userHandler.Update)
	userGroup.DELETE("/:id", userHandler.Delete)

	documentGroup := v1.Group("/documents")
	documentGroup.Use(authRequired)
	documentGroup.POST("/upload", middleware.RequirePermission(model.PermUploadDocs), documentHandler.Upload)
	documentGroup.GET("", documentHandler.List)
	documentGroup.DELETE("/:id", middleware.RequirePermission(model.PermDeleteDocs), documentHandler.Delete)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(authRequired)
	chatGroup.POST("", chatHandler.SendMessage)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.GET("/sessions/:id/messages", chatHandler.GetSessionMessages)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)

	v1.GET("/stats", authRequired, statsHandler.Get)

	return router
}
