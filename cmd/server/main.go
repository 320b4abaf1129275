package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srisabarish06/Notoria/internal/admin"
	"github.com/srisabarish06/Notoria/internal/blog"
	"github.com/srisabarish06/Notoria/internal/collab"
	"github.com/srisabarish06/Notoria/internal/config"
	"github.com/srisabarish06/Notoria/internal/db"
	"github.com/srisabarish06/Notoria/internal/logger"
	"github.com/srisabarish06/Notoria/internal/middleware"
	"github.com/srisabarish06/Notoria/internal/note"
	"github.com/srisabarish06/Notoria/internal/notify"
	"github.com/srisabarish06/Notoria/internal/task"
	"github.com/srisabarish06/Notoria/internal/user"
	"github.com/srisabarish06/Notoria/internal/worker"
	appRedis "github.com/srisabarish06/Notoria/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// registerValidators installs custom binding rules. "tagset" accepts a
// list of short, non-empty tags.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("tagset", func(fl validator.FieldLevel) bool {
		tags, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		if len(tags) > 16 {
			return false
		}
		for _, tag := range tags {
			if tag == "" || len(tag) > 32 {
				return false
			}
		}
		return true
	})
}

// instanceID identifies this process on the Redis notification bus so
// it can skip events it published itself.
func instanceID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "notoria"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

func main() {
	// Load configuration
	config.LoadConfig()
	logger.Setup(config.AppConfig.Environment, config.AppConfig.LogLevel)

	// Connect to database
	if err := db.ConnectDb(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis
	appRedis.InitRedis()
	cache := appRedis.NewCache(appRedis.RedisClient)

	// Background workers for cache writes and notification fan-out
	pool := worker.NewPool(4)

	// Notification hub; bridged over Redis when available so events
	// reach subscribers on other instances
	hub := notify.NewHub()
	var notifier notify.Notifier = hub
	if appRedis.RedisClient != nil {
		notifier = notify.NewRedisBridge(hub, appRedis.RedisClient, instanceID())
	}

	// Initialize repositories
	userRepo := user.NewRepository(db.AppDb)
	noteRepo := note.NewRepository(db.AppDb)
	collabRepo := collab.NewRepository(db.AppDb)
	blogRepo := blog.NewRepository(db.AppDb)
	taskRepo := task.NewRepository(db.AppDb)
	adminRepo := admin.NewRepository(db.AppDb)

	// Initialize services
	userService := user.NewService(userRepo)
	noteService := note.NewService(noteRepo, notifier, cache, pool)
	collabService := collab.NewService(collabRepo, noteRepo, userService, notifier, noteService, pool)
	blogService := blog.NewService(blogRepo, pool)
	taskService := task.NewService(taskRepo)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	noteHandler := note.NewHandler(noteService)
	collabHandler := collab.NewHandler(collabService)
	blogHandler := blog.NewHandler(blogService)
	taskHandler := task.NewHandler(taskService)
	adminHandler := admin.NewHandler(adminRepo)
	wsHandler := notify.NewWSHandler(hub, notifier, noteService, noteService)

	authMw := &middleware.Auth{UserService: userService}
	authLimiter := middleware.NewRateLimiter(config.AppConfig.AuthRateRPS, config.AppConfig.AuthRateBurst)

	// Initialize Gin router
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// User routes
	users := api.Group("/users")
	users.POST("/register", authLimiter.Limit(), userHandler.Register)
	users.POST("/login", authLimiter.Limit(), userHandler.Login)
	users.POST("/refresh-token", userHandler.RefreshToken)
	users.DELETE("/logout", authMw.AuthMiddleWare(), userHandler.Logout)
	users.GET("/profile", authMw.AuthMiddleWare(), userHandler.GetProfile)

	// Note routes
	notes := api.Group("/notes", authMw.AuthMiddleWare())
	notes.POST("", noteHandler.Create)
	notes.GET("", noteHandler.List)
	notes.GET("/:id", noteHandler.Show)
	notes.PUT("/:id", noteHandler.Update)
	notes.DELETE("/:id", noteHandler.Delete)

	// Collaboration routes
	collabs := api.Group("/collab", authMw.AuthMiddleWare())
	collabs.POST("/share", collabHandler.Share)
	collabs.GET("/invites", collabHandler.ListInvites)
	collabs.PUT("/invites/:id/accept", collabHandler.Accept)
	collabs.PUT("/invites/:id/decline", collabHandler.Decline)
	collabs.GET("/note/:noteId", collabHandler.ListCollaborators)

	// Blog routes; public listing and reads work without a token
	blogs := api.Group("/blogs")
	blogs.GET("/public", blogHandler.ListPublic)
	blogs.GET("/:id", blogHandler.Show)
	blogs.POST("", authMw.AuthMiddleWare(), blogHandler.Create)
	blogs.GET("", authMw.AuthMiddleWare(), blogHandler.ListMine)
	blogs.PUT("/:id", authMw.AuthMiddleWare(), blogHandler.Update)
	blogs.DELETE("/:id", authMw.AuthMiddleWare(), blogHandler.Delete)
	blogs.POST("/:id/like", authMw.AuthMiddleWare(), blogHandler.ToggleLike)

	// Task routes
	tasks := api.Group("/tasks", authMw.AuthMiddleWare())
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Show)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// Admin routes
	adminGroup := api.Group("/admin", authMw.AuthMiddleWare(), authMw.RequireAdmin())
	adminGroup.GET("/users", adminHandler.ListUsers)
	adminGroup.PATCH("/users/:id/active", adminHandler.SetUserActive)
	adminGroup.GET("/notes", adminHandler.ListNotes)
	adminGroup.GET("/blogs", adminHandler.ListBlogs)
	adminGroup.GET("/analytics", adminHandler.Analytics)

	// Realtime note updates
	router.GET("/ws", authMw.AuthMiddleWare(), wsHandler.Serve)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Info().Str("port", serverPort).Msg("server listening")
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	pool.Shutdown()
	log.Info().Msg("server shutdown complete")
}
