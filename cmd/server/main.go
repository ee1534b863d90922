// Package main runs the event platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventora/backend/config"
	"github.com/eventora/backend/internal/access"
	"github.com/eventora/backend/internal/auth"
	"github.com/eventora/backend/internal/categories"
	"github.com/eventora/backend/internal/cities"
	"github.com/eventora/backend/internal/contact"
	"github.com/eventora/backend/internal/emaillogs"
	"github.com/eventora/backend/internal/events"
	"github.com/eventora/backend/internal/favorites"
	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/newsletter"
	"github.com/eventora/backend/internal/organizer"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/internal/users"
	"github.com/eventora/backend/pkg/database"
	"github.com/eventora/backend/pkg/queue"
	"github.com/eventora/backend/pkg/redis"
	"github.com/eventora/backend/pkg/response"
	"github.com/eventora/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	registry, err := roles.Load(ctx, pool)
	if err != nil {
		logger.Fatal("roles", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			EventImagesBucket:    cfg.AWS.EventImagesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	tokens := auth.NewTokenService(cfg.Session.Secret, cfg.Session.ExpireHours)
	userCache := auth.NewUserCache(rdb.Client, time.Duration(cfg.Session.CacheTTLSecs)*time.Second)
	guards := access.NewGuards(registry)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth and identity
	authRepo := auth.NewRepository(pool)
	resolver := auth.NewResolver(authRepo, tokens, userCache, logger)
	authHandler := auth.NewHandler(authRepo, tokens, registry, userCache, logger)

	// Organizer workflow
	organizerRepo := organizer.NewRepository(pool)
	organizerHandler := organizer.NewHandler(organizerRepo, registry, jobQueue, userCache, logger)

	// Admin user management
	usersRepo := users.NewRepository(pool)
	usersHandler := users.NewHandler(usersRepo, registry, userCache, logger)

	// Events catalog
	eventsRepo := events.NewRepository(pool)
	eventsHandler := events.NewHandler(eventsRepo, registry, s3Client, logger)

	categoriesRepo := categories.NewRepository(pool)
	categoriesHandler := categories.NewHandler(categoriesRepo)

	citiesRepo := cities.NewRepository(pool)
	citiesHandler := cities.NewHandler(citiesRepo)

	favoritesRepo := favorites.NewRepository(pool)
	favoritesHandler := favorites.NewHandler(favoritesRepo)

	// Public forms
	newsletterRepo := newsletter.NewRepository(pool)
	newsletterHandler := newsletter.NewHandler(newsletterRepo)

	contactRepo := contact.NewRepository(pool)
	contactHandler := contact.NewHandler(contactRepo, jobQueue, cfg.Email.ContactTo, logger)

	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Session(resolver))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
	}
	router.GET("/me", authHandler.Me)

	// Public catalog
	router.GET("/events/front", eventsHandler.ListFront)
	router.GET("/events/count", eventsHandler.CountAll)
	router.GET("/events/count/:organizerId", eventsHandler.CountByOrganizer)
	router.GET("/events/:id", eventsHandler.GetByID)
	router.POST("/events/:id/view", eventsHandler.View)
	router.GET("/categories", categoriesHandler.List)
	router.GET("/categories/:id", categoriesHandler.GetByID)
	router.GET("/cities", citiesHandler.List)
	router.POST("/newsletter", newsletterHandler.Subscribe)
	router.POST("/contact", contactHandler.Submit)

	// Signed-in users
	authed := router.Group("")
	authed.Use(middleware.RequireAuth(guards))
	{
		authed.POST("/organizer/request", organizerHandler.Submit)
		authed.GET("/organizer/profile", organizerHandler.Profile)
		authed.POST("/favorites", favoritesHandler.Toggle)
		authed.GET("/favorites", favoritesHandler.List)
		authed.DELETE("/favorites/:eventId", favoritesHandler.Delete)
		// Role dispatch lives in the handler: admin sees all, organizers
		// their own, everyone else an empty list.
		authed.GET("/events", eventsHandler.List)
	}

	// Organizers (admins pass the guard too)
	org := router.Group("")
	org.Use(middleware.RequireOrganizer(guards))
	{
		org.POST("/events", eventsHandler.Create)
		org.PATCH("/events/:id", events.RequireOwnership(eventsRepo, registry), eventsHandler.Update)
		org.DELETE("/events/:id", events.RequireOwnership(eventsRepo, registry), eventsHandler.Delete)
	}

	// Moderators (admins pass the guard too)
	mod := router.Group("")
	mod.Use(middleware.RequireModerator(guards))
	{
		mod.POST("/categories", categoriesHandler.Create)
		mod.PATCH("/categories/:id", categoriesHandler.Update)
		mod.DELETE("/categories/:id", categoriesHandler.Delete)
		mod.POST("/cities", citiesHandler.Create)
	}

	// Admin
	admin := router.Group("/admin")
	admin.Use(middleware.RequireAdmin(guards))
	{
		admin.GET("/users", usersHandler.List)
		admin.PATCH("/users/:id/role", usersHandler.SetRole)
		admin.PATCH("/users/:id/status", usersHandler.SetStatus)

		admin.POST("/organizer/validate", organizerHandler.Validate)
		admin.DELETE("/organizer/:id", organizerHandler.Revoke)
		admin.GET("/organizer/requests", organizerHandler.ListPending)
		admin.GET("/organizer/all-requests", organizerHandler.ListAll)
		admin.GET("/organizer/all", organizerHandler.ListOrganizers)

		admin.PATCH("/events/:id/feature", eventsHandler.Feature)

		admin.GET("/newsletter", newsletterHandler.List)
		admin.GET("/contact-messages", contactHandler.List)
		admin.GET("/email-logs", emailLogsHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Expired session sweep
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweepSessions(sweepCtx, authRepo, logger)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sweepCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func sweepSessions(ctx context.Context, repo *auth.Repository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
