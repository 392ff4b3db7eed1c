package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/startuphub/backend/internal/config"
	"github.com/startuphub/backend/internal/handler"
	"github.com/startuphub/backend/internal/media"
	"github.com/startuphub/backend/internal/middleware"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/internal/repository"
	"github.com/startuphub/backend/internal/service"
	"github.com/startuphub/backend/migrations"
	"github.com/startuphub/backend/pkg/auth"
	"github.com/startuphub/backend/pkg/notification"
	"github.com/startuphub/backend/pkg/storage"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           StartupHub Communication API
// @version         1.0
// @description     Real-time chat, calls and WebRTC signaling backend with Go, Gin, WebSocket, Redis Pub/Sub.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@startuphub.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting StartupHub Communication API [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.User{},
			&model.AuthToken{},
			&model.Room{},
			&model.Participant{},
			&model.Message{},
			&model.MessageRead{},
			&model.IncomingCallNotification{},
			&model.CallInvitation{},
			&model.CallLog{},
			&model.MediaFile{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Fan-out Fabric (Redis Pub/Sub) ====================
	fabric := pubsub.NewRedisFabric(rdb)
	fabricCtx, fabricCancel := context.WithCancel(context.Background())
	defer fabricCancel()
	go fabric.Run(fabricCtx)

	// ==================== MinIO Storage ====================
	minioStore, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to MinIO: %v", err)
	}
	log.Println("✅ Connected to MinIO")

	// ==================== Push (Firebase Cloud Messaging) ====================
	pushSender, err := notification.NewFCMSender(cfg.Push.CredentialsFile)
	if err != nil {
		log.Printf("⚠️  FCM unavailable: %v (push notifications disabled)", err)
	}
	if pushSender != nil {
		log.Println("✅ FCM push sender ready")
	}

	// ==================== Initialize Layers ====================
	sessions := auth.NewSessionTokenManager(cfg.WebRTC.TokenSecret, cfg.WebRTC.TokenExpiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	callRepo := repository.NewCallRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	// Media gateway on top of the object store
	gateway := media.NewGateway(minioStore, cfg.Media)
	mediaService := media.NewService(gateway, mediaRepo)

	// Services
	userCache := service.NewUserCache(userRepo, rdb)
	authService := service.NewAuthService(userRepo, roomRepo, rdb)
	roomService := service.NewRoomService(roomRepo, userRepo, msgRepo, callRepo, fabric, sessions, cfg.WebRTC)
	messageService := service.NewMessageService(msgRepo, roomRepo, fabric, userCache)
	notificationService := service.NewNotificationService(callRepo, roomRepo, msgRepo, fabric, pushSender, userCache, cfg.Sweeper.Interval)

	// Expiry sweeper
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()
	go notificationService.Run(sweeperCtx)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	roomHandler := handler.NewRoomHandler(roomService)
	messageHandler := handler.NewMessageHandler(messageService)
	callHandler := handler.NewCallHandler(notificationService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	wsHandler := handler.NewWSHandler(fabric, authService, roomService, messageService, notificationService, gateway)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger configuration
	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "communication-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/communication")
	{
		// Public
		api.POST("/login/", authHandler.Login)

		// Protected
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(authService))
		{
			// Rooms
			protected.GET("/rooms/", roomHandler.List)
			protected.POST("/rooms/", roomHandler.Create)
			protected.GET("/rooms/my-rooms/", roomHandler.List)
			protected.GET("/rooms/find-direct", roomHandler.FindDirect)
			protected.POST("/rooms/find-direct", roomHandler.FindOrCreateDirect)
			protected.GET("/rooms/:id/", roomHandler.Get)
			protected.POST("/rooms/:id/add_participant", roomHandler.AddParticipant)
			protected.POST("/rooms/:id/start_call", roomHandler.StartCall)
			protected.GET("/rooms/:id/webrtc_config", roomHandler.WebRTCConfig)

			// Messages
			protected.GET("/messages/", messageHandler.List)
			protected.POST("/messages/", messageHandler.Create)

			// Incoming-call notifications
			protected.POST("/incoming-calls/", callHandler.Create)
			protected.GET("/incoming-calls/", callHandler.ListActive)
			protected.PUT("/incoming-calls/:id/", callHandler.Update)

			// Media
			protected.GET("/media/", mediaHandler.List)
			protected.POST("/media/", mediaHandler.Upload)
			protected.GET("/media/:id/", mediaHandler.Get)
			protected.PUT("/media/:id/", mediaHandler.Replace)
			protected.DELETE("/media/:id/", mediaHandler.Delete)
		}
	}

	// WebSocket endpoints (auth via query parameter or Authorization header)
	router.GET("/ws/room/:room_id", wsHandler.ChatRoom)
	router.GET("/ws/communication/:username", wsHandler.ChatPeer)
	router.GET("/ws/webrtc/:room_id", wsHandler.WebRTC)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 Communication API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 WebSocket: ws://0.0.0.0:%s/ws/room/<room_id>?token=<token>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	sweeperCancel()
	fabricCancel()
	log.Println("✅ Server exited gracefully")
}
