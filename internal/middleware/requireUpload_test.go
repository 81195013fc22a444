package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequireUploadBlocksUntilReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ready := false
	r := gin.New()
	r.GET("/bookings", RequireUpload(func() bool { return ready }), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 before upload, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "File not uploaded yet") {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}

	ready = true
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 after upload, got %d", w.Code)
	}
}
