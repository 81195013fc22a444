package analytics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/middleware"
	analyticsService "github.com/staylytics/backend/internal/service/analytics"
)

type AnalyticsHandler struct {
	log      *zap.Logger
	svc      *analyticsService.AnalyticsService
	ready    func() bool
	verifier middleware.CredentialVerifier
}

func NewAnalyticsHandler(log *zap.Logger, svc *analyticsService.AnalyticsService, ready func() bool, verifier middleware.CredentialVerifier) *AnalyticsHandler {
	return &AnalyticsHandler{log: log, svc: svc, ready: ready, verifier: verifier}
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	g := r.Group("/bookings")
	g.Use(middleware.RequireUpload(h.ready))
	{
		g.GET("/stats", h.stats)
		g.GET("/analysis", h.analysis)
		g.GET("/nationality", h.nationality)
		g.GET("/popular_meal_package", h.popularMealPackage)
		g.GET("/avg_length_of_stay", h.avgLengthOfStay)
		g.GET("/total_revenue", h.totalRevenue)
		g.GET("/top_countries", h.topCountries)
		g.GET("/repeated_guests_percentage", h.repeatedGuestsPercentage)
		g.GET("/total_guests_by_year", h.totalGuestsByYear)
	}

	protected := r.Group("/bookings")
	protected.Use(middleware.RequireUpload(h.ready))
	protected.Use(middleware.BasicAuth(h.verifier))
	{
		protected.GET("/avg_daily_rate_resort", h.avgDailyRateResort)
		protected.GET("/most_common_arrival_day_city", h.mostCommonArrivalDayCity)
		protected.GET("/count_by_hotel_meal", h.countByHotelMeal)
		protected.GET("/total_revenue_resort_by_country", h.totalRevenueResortByCountry)
		protected.GET("/count_by_hotel_repeated_guest", h.countByHotelRepeatedGuest)
	}
}

// respond maps the analytics sentinel errors onto HTTP statuses; every query
// endpoint shares the same taxonomy.
func (h *AnalyticsHandler) respond(c *gin.Context, result any, err error) {
	if err != nil {
		switch {
		case errors.Is(err, analyticsService.ErrNoDataset):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File not uploaded yet"})
		case errors.Is(err, analyticsService.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No bookings found"})
		case errors.Is(err, analyticsService.ErrEmptyDataset):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "dataset is empty"})
		default:
			h.log.Error("analytics query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) stats(c *gin.Context) {
	result, err := h.svc.Stats(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) analysis(c *gin.Context) {
	result, err := h.svc.Analysis(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) nationality(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing country query parameter"})
		return
	}
	result, err := h.svc.FilterByNationality(c.Request.Context(), country)
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) popularMealPackage(c *gin.Context) {
	result, err := h.svc.PopularMealPackage(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) avgLengthOfStay(c *gin.Context) {
	result, err := h.svc.AvgLengthOfStay(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) totalRevenue(c *gin.Context) {
	result, err := h.svc.TotalRevenue(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) topCountries(c *gin.Context) {
	result, err := h.svc.TopCountries(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) repeatedGuestsPercentage(c *gin.Context) {
	result, err := h.svc.RepeatedGuestsPercentage(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) totalGuestsByYear(c *gin.Context) {
	result, err := h.svc.TotalGuestsByYear(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) avgDailyRateResort(c *gin.Context) {
	result, err := h.svc.AvgDailyRateResort(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) mostCommonArrivalDayCity(c *gin.Context) {
	result, err := h.svc.MostCommonArrivalDayCity(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) countByHotelMeal(c *gin.Context) {
	result, err := h.svc.CountByHotelMeal(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) totalRevenueResortByCountry(c *gin.Context) {
	result, err := h.svc.TotalRevenueResortByCountry(c.Request.Context())
	h.respond(c, result, err)
}

func (h *AnalyticsHandler) countByHotelRepeatedGuest(c *gin.Context) {
	result, err := h.svc.CountByHotelRepeatedGuest(c.Request.Context())
	h.respond(c, result, err)
}
