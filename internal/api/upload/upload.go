package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylytics/backend/internal/dataset"
	"github.com/staylytics/backend/internal/service/ingest"
)

type UploadHandler struct {
	log *zap.Logger
	svc *ingest.IngestService
}

func NewUploadHandler(log *zap.Logger, svc *ingest.IngestService) *UploadHandler {
	return &UploadHandler{log: log, svc: svc}
}

func (h *UploadHandler) Register(r *gin.Engine) {
	r.POST("/upload-and-process-csv", h.upload)
}

func (h *UploadHandler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("csv_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing csv_file form field"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	result, err := h.svc.Run(c.Request.Context(), f, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, dataset.ErrMalformed) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("ingest failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
