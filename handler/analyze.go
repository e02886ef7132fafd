package handler

import (
	"net/http"

	"github.com/elisa-rivadeneira/gestor-documentario/pkg/logger"
	"github.com/elisa-rivadeneira/gestor-documentario/service"
	"github.com/gin-gonic/gin"
)

type AnalyzeHandler struct {
	storage   *service.StorageService
	extractor *service.ExtractService
}

func NewAnalyzeHandler(storage *service.StorageService, extractor *service.ExtractService) *AnalyzeHandler {
	return &AnalyzeHandler{storage: storage, extractor: extractor}
}

// Analyze runs AI field extraction over a previously temp-uploaded PDF and
// returns the best-effort structured guess used to prefill the form. A failed
// analysis still answers 200 with success=false and a human-readable message;
// only transport problems toward the extraction API answer 502.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing upload name"})
		return
	}

	ctx := c.Request.Context()
	objectName := service.TempPrefix + name

	fileURL, err := h.storage.PresignedURL(ctx, objectName)
	if err != nil {
		logger.Error(ctx, "failed to presign temp upload", "error", err, "object", objectName)
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
		return
	}

	extraction, err := h.extractor.Analyze(ctx, fileURL, name)
	if err != nil {
		logger.Error(ctx, "extraction request failed", "error", err, "object", objectName)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Extraction service unavailable"})
		return
	}

	logger.Info(ctx, "extraction completed",
		"object", objectName,
		"success", extraction.Success,
		"office_number", extraction.OfficeNumber,
	)
	c.JSON(http.StatusOK, extraction)
}
