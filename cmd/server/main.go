package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/unilinkhq/messaging-backend/internal/cache"
	"github.com/unilinkhq/messaging-backend/internal/handlers"
	"github.com/unilinkhq/messaging-backend/internal/middleware"
	"github.com/unilinkhq/messaging-backend/internal/repository"
	"github.com/unilinkhq/messaging-backend/internal/service"
	"github.com/unilinkhq/messaging-backend/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	app := fiber.New(fiber.Config{
		AppName: "UniLink Messaging",
		// Attachment uploads up to 10MB + multipart overhead.
		BodyLimit: 12 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Database
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Redis cache (optional; the service runs cache-less without it)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	conversationCache := cache.NewConversationCache(redisCache)
	presenceCache := cache.NewPresenceCache(redisCache)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	listRepo := repository.NewConversationListRepository(db)

	// Services
	conversationService := service.NewConversationService(conversationRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, conversationRepo)
	listService := service.NewConversationListService(listRepo, conversationRepo, conversationCache)
	userService := service.NewUserService(userRepo, presenceCache)

	// S3/MinIO storage (best-effort; upload endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	uploadService := service.NewUploadService(s3Store, os.Getenv("MEDIA_BASE_URL"))

	// Handlers
	wsHandler := handlers.NewWebSocketHandler(messageService, conversationService, listService, presenceCache)
	conversationHandler := handlers.NewConversationHandler(conversationService, listService)
	messageHandler := handlers.NewMessageHandler(messageService, conversationService, listService, wsHandler.GetHub())
	uploadHandler := handlers.NewUploadHandler(uploadService)
	mediaHandler := handlers.NewMediaHandler(s3Store)
	userHandler := handlers.NewUserHandler(userService)

	// Protected routes
	api := app.Group("/api", middleware.AuthRequired())
	api.Get("/conversations", conversationHandler.GetConversations)
	api.Post("/conversations/direct", conversationHandler.CreateDirect)
	api.Post("/conversations/group", conversationHandler.CreateGroup)
	api.Get("/conversations/:id", conversationHandler.GetConversation)
	api.Get("/conversations/:id/messages", messageHandler.GetMessages)
	api.Post("/conversations/:id/messages", messageHandler.SendMessage)
	api.Post("/conversations/:id/read", messageHandler.MarkRead)
	api.Get("/conversations/:id/sync", messageHandler.SyncMessages)
	api.Get("/users/search", userHandler.SearchUsers)
	api.Get("/users/online", userHandler.OnlineUsers)

	uploadLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: 10 * time.Minute,
	})
	api.Post("/uploads/attachments", uploadLimiter, uploadHandler.UploadAttachment)
	api.Post("/uploads/images", uploadLimiter, uploadHandler.UploadImage)
	api.Delete("/uploads/*", uploadHandler.DeleteUpload)
	api.Get("/media/*", mediaHandler.GetObject)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "UniLink messaging is running",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
