package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/middleware"
	usersService "github.com/staylytics/backend/internal/service/users"
)

type UsersHandler struct {
	log      *zap.Logger
	svc      *usersService.UsersService
	verifier middleware.CredentialVerifier
}

func NewUsersHandler(log *zap.Logger, svc *usersService.UsersService, verifier middleware.CredentialVerifier) *UsersHandler {
	return &UsersHandler{log: log, svc: svc, verifier: verifier}
}

func (h *UsersHandler) Register(r *gin.Engine) {
	g := r.Group("/users")
	{
		g.GET("/", h.list)
		g.POST("/", h.create)
	}

	protected := r.Group("/users")
	protected.Use(middleware.BasicAuth(h.verifier))
	{
		protected.DELETE("/", h.delete)
		protected.PUT("/:id", h.update)
	}
}

func (h *UsersHandler) list(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	users, err := h.svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UsersHandler) create(c *gin.Context) {
	var req usersService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, usersService.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		case errors.Is(err, usersService.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already registered"})
		default:
			h.log.Error("create user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) delete(c *gin.Context) {
	var req usersService.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.svc.Delete(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, usersService.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User does not exist"})
			return
		}
		h.log.Error("delete user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a non-negative integer"})
		return
	}

	var req usersService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, usersService.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User does not exist"})
			return
		}
		h.log.Error("update user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}
