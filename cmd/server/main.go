package main

import (
	"log"
	"net/http"

	"github.com/IDON3O/TeamLobby-sub000/internal/auth"
	"github.com/IDON3O/TeamLobby-sub000/internal/bot"
	"github.com/IDON3O/TeamLobby-sub000/internal/config"
	"github.com/IDON3O/TeamLobby-sub000/internal/handler"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           TeamLobby API
// @version         1.0
// @description     Party/lobby coordination: rooms, game queues, votes, chat.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	store := openStore()
	defer store.Close()

	roomService := service.NewRoomService(store)
	gameService := service.NewGameQueueService(store)
	sessionService := service.NewSessionService(store)
	moderationService := service.NewModerationService(store)
	userService := service.NewUserService(store)

	suggester := bot.New(gameService, sessionService, bot.DefaultReplyDelay)
	defer suggester.Close()

	authHandler := handler.NewAuthHandler(userService)
	roomHandler := handler.NewRoomHandler(roomService, userService)
	gameHandler := handler.NewGameHandler(gameService, userService)
	sessionHandler := handler.NewSessionHandler(sessionService, userService, suggester)
	adminHandler := handler.NewAdminHandler(moderationService, gameService)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/guest", authHandler.Guest)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", authHandler.Me)
			userRoutes.PUT("/me", authHandler.UpdateMe)
		}

		// Room routes (protected)
		roomRoutes := apiV1.Group("/rooms")
		roomRoutes.Use(auth.AuthMiddleware())
		{
			roomRoutes.POST("", roomHandler.CreateRoom)
			roomRoutes.GET("/history", roomHandler.History) // Must be before /:code
			roomRoutes.GET("/:code", roomHandler.GetRoom)
			roomRoutes.GET("/:code/events", roomHandler.StreamRoom)
			roomRoutes.POST("/:code/join", roomHandler.JoinRoom)
			roomRoutes.DELETE("/:code", roomHandler.DeleteRoom)

			// Session state
			roomRoutes.POST("/:code/ready", sessionHandler.ToggleReady)
			roomRoutes.POST("/:code/messages", sessionHandler.SendMessage)

			// Game queue
			roomRoutes.POST("/:code/games", gameHandler.AddGame)
			roomRoutes.PUT("/:code/games/:gameID", gameHandler.UpdateGame)
			roomRoutes.POST("/:code/games/:gameID/vote", gameHandler.VoteForGame)
			roomRoutes.POST("/:code/games/:gameID/comments", gameHandler.AddComment)
			roomRoutes.DELETE("/:code/games/:gameID", gameHandler.RemoveGame)
		}

		// Global library (protected)
		libraryRoutes := apiV1.Group("/library")
		libraryRoutes.Use(auth.AuthMiddleware())
		{
			libraryRoutes.GET("", gameHandler.Library)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware(userService))
		{
			adminRoutes.POST("/users/:id/ban", adminHandler.ToggleBan)
			adminRoutes.POST("/users/:id/mute", adminHandler.ToggleMute)
			adminRoutes.GET("/users/events", adminHandler.StreamUsers)
			adminRoutes.POST("/library", adminHandler.ApproveGame)
		}
	}

	logrus.WithField("addr", config.AppConfig.ListenAddr).Info("server is running")
	log.Fatal(router.Run(config.AppConfig.ListenAddr))
}

// openStore builds the tree-store backend selected by configuration.
func openStore() treestore.Store {
	switch config.AppConfig.StorageDriver {
	case "postgres":
		store, err := treestore.NewPostgresStore(config.AppConfig.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		logrus.Info("using postgres tree store")
		return store
	case "redis":
		store, err := treestore.NewRedisStore(config.AppConfig.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		logrus.Info("using redis tree store")
		return store
	case "memory", "":
		logrus.Warn("using in-memory tree store; data will not survive restarts")
		return treestore.NewMemoryStore()
	default:
		log.Fatalf("Unknown STORAGE_DRIVER %q", config.AppConfig.StorageDriver)
		return nil
	}
}
