//	@title			Trip Review API
//	@version		1.0
//	@description	Backend for trip reviews and review image uploads.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/djtrip/backend/internal/config"
	"github.com/djtrip/backend/internal/db"
	"github.com/djtrip/backend/internal/image"
	"github.com/djtrip/backend/internal/logger"
	"github.com/djtrip/backend/internal/member"
	appMiddleware "github.com/djtrip/backend/internal/middleware"
	"github.com/djtrip/backend/internal/review"
	"github.com/djtrip/backend/internal/storage"

	_ "github.com/djtrip/backend/docs/swagger"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, zl); err != nil {
		zl.Fatal("database migration failed", zap.Error(err))
	}

	store, err := storage.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("object storage init failed", zap.Error(err))
	}

	// Wire dependencies: repository → service → handler
	imageSvc := image.NewService(store, cfg.ImageConfig(), zl.Named("image"))
	imageHandler := image.NewHandler(imageSvc, cfg.UploadMaxBytes, zl.Named("image"))

	memberSvc := member.NewService(member.NewRepository(pool))
	memberHandler := member.NewHandler(memberSvc, zl.Named("member"))

	reviewSvc := review.NewService(review.NewRepository(pool), imageSvc, zl.Named("review"))
	reviewHandler := review.NewHandler(reviewSvc, memberSvc, zl.Named("review"))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(zl.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI, served at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	requireAuth := appMiddleware.RequireAuth(cfg.JWTSecret)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))

		r.Route("/images", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", imageHandler.Upload)
			r.Delete("/{key}", imageHandler.Delete)
		})

		r.Route("/members", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", memberHandler.GetMe)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.GetReviews)
			r.With(appMiddleware.OptionalAuth(cfg.JWTSecret)).Get("/{id}", reviewHandler.GetReview)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", reviewHandler.CreateReview)
				r.Patch("/{id}", reviewHandler.ModifyReview)
				r.Delete("/{id}", reviewHandler.DeleteReview)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Fatal("forced shutdown", zap.Error(err))
	}

	zl.Info("server stopped")
}
