package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/api"
	"github.com/staylytics/backend/internal/config"
	"github.com/staylytics/backend/internal/dataset"
	"github.com/staylytics/backend/internal/logger"
	"github.com/staylytics/backend/internal/middleware"
	"github.com/staylytics/backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env)

	db, err := store.NewDB(context.Background(), cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := store.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal("failed to ensure schema", zap.Error(err))
	}

	// Seed the basic-auth user from AUTH_USERNAME/AUTH_PASSWORD
	if err := config.CreateDefaultUser(&cfg, db); err != nil {
		log.Error("failed to create default user", zap.Error(err))
	}

	datasets, err := dataset.NewStore(cfg.DataDir, log)
	if err != nil {
		log.Fatal("failed to init dataset store", zap.Error(err))
	}
	// Cached uploads live only as long as the process.
	defer datasets.Cleanup()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	api.RegisterRoutes(r, log, cfg, db, datasets)

	// metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort),
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("server starting", zap.String("host", cfg.HTTPHost), zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server exited")
}
