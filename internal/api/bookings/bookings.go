package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/middleware"
	bookingsService "github.com/staylytics/backend/internal/service/bookings"
)

type BookingsHandler struct {
	log   *zap.Logger
	svc   *bookingsService.BookingsService
	ready func() bool
}

func NewBookingsHandler(log *zap.Logger, svc *bookingsService.BookingsService, ready func() bool) *BookingsHandler {
	return &BookingsHandler{log: log, svc: svc, ready: ready}
}

func (h *BookingsHandler) Register(r *gin.Engine) {
	g := r.Group("/bookings")
	g.Use(middleware.RequireUpload(h.ready))
	{
		g.GET("/", h.list)
		g.GET("/search", h.search)
		g.GET("/:id", h.getByID)
	}
}

func (h *BookingsHandler) list(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	items, err := h.svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.log.Error("list bookings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *BookingsHandler) search(c *gin.Context) {
	var filter bookingsService.SearchFilter
	if v, ok := c.GetQuery("guest_name"); ok {
		filter.GuestName = &v
	}
	if v, ok := c.GetQuery("book_date"); ok {
		filter.BookDate = &v
	}
	if v, ok := c.GetQuery("length_of_stay"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "length_of_stay must be a non-negative integer"})
			return
		}
		filter.LengthOfStay = &n
	}

	results, err := h.svc.Search(c.Request.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, bookingsService.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No bookings found"})
		case errors.Is(err, bookingsService.ErrBadBookDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("search bookings failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *BookingsHandler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a non-negative integer"})
		return
	}

	booking, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, bookingsService.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.log.Error("get booking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, booking)
}
