package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyticsHandler "github.com/staylytics/backend/internal/api/analytics"
	bookingsHandler "github.com/staylytics/backend/internal/api/bookings"
	uploadHandler "github.com/staylytics/backend/internal/api/upload"
	usersHandler "github.com/staylytics/backend/internal/api/users"
	"github.com/staylytics/backend/internal/config"
	"github.com/staylytics/backend/internal/dataset"
	kafkax "github.com/staylytics/backend/internal/kafka"
	"github.com/staylytics/backend/internal/middleware"
	redisx "github.com/staylytics/backend/internal/redis"
	analyticsService "github.com/staylytics/backend/internal/service/analytics"
	bookingsService "github.com/staylytics/backend/internal/service/bookings"
	ingestService "github.com/staylytics/backend/internal/service/ingest"
	usersService "github.com/staylytics/backend/internal/service/users"
	"github.com/staylytics/backend/internal/store"
	storeBookings "github.com/staylytics/backend/internal/store/bookings"
	storeUsers "github.com/staylytics/backend/internal/store/users"
)

// credentialVerifier adapts the users service to the basic-auth middleware.
type credentialVerifier struct {
	users *usersService.UsersService
}

func (v credentialVerifier) Verify(c *gin.Context, username, password string) bool {
	_, err := v.users.VerifyCredentials(c.Request.Context(), username, password)
	return err == nil
}

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(r *gin.Engine, log *zap.Logger, cfg config.Config, db *store.DB, datasets *dataset.Store) {
	r.Use(middleware.MetricsMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Staylytics",
			"description": "Hotel-booking CSV ingestion with CRUD and aggregate analytics endpoints.",
			"version":     "1.0.0",
			"endpoints":   []string{"/v1/health", "/upload-and-process-csv", "/bookings", "/users"},
		})
	})
	r.GET("/v1/health", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Analytics results are memoized per dataset version; the TTL only bounds
	// memory for versions no longer current.
	cache := redisx.NewCache(cfg.RedisAddr, time.Hour, log)

	// global rate limit
	r.Use(middleware.HybridRateLimit(cache.GetClient(), 50, 100))

	// Create repositories
	bookingsRepo := storeBookings.NewBookingsRepository(db, log)
	usersRepo := storeUsers.NewUsersRepository(db, log)

	// Create services
	producer := kafkax.NewProducer([]string{cfg.KafkaBrokers}, cfg.KafkaTopic)
	ingestSvc := ingestService.NewIngestService(log, datasets, bookingsRepo, producer)
	bookingsSvc := bookingsService.NewBookingsService(log, bookingsRepo)
	usersSvc := usersService.NewUsersService(log, usersRepo)
	analyticsSvc := analyticsService.NewAnalyticsService(log, datasets, bookingsRepo, cache)

	verifier := credentialVerifier{users: usersSvc}

	// Register handlers
	uploadHandler.NewUploadHandler(log, ingestSvc).Register(r)
	bookingsHandler.NewBookingsHandler(log, bookingsSvc, ingestSvc.Ready).Register(r)
	analyticsHandler.NewAnalyticsHandler(log, analyticsSvc, ingestSvc.Ready, verifier).Register(r)
	usersHandler.NewUsersHandler(log, usersSvc, verifier).Register(r)
}
