package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/elisa-rivadeneira/gestor-documentario/pkg/logger"
	"github.com/elisa-rivadeneira/gestor-documentario/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadHandler struct {
	store   *service.Store
	storage *service.StorageService
}

func NewUploadHandler(store *service.Store, storage *service.StorageService) *UploadHandler {
	return &UploadHandler{store: store, storage: storage}
}

// TempUpload stores a PDF under the temp prefix so it can be analyzed before
// the record it belongs to exists.
func (h *UploadHandler) TempUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	contentType, ok := checkPDF(c, file, header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		return
	}

	objectName := fmt.Sprintf("%s%s_%s", service.TempPrefix, uuid.New().String(), header.Filename)

	ctx := c.Request.Context()
	if err := h.storage.Upload(ctx, objectName, file, header.Size, contentType); err != nil {
		logger.Error(ctx, "failed to upload temp file", "error", err, "object", objectName)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	logger.Info(ctx, "temp file uploaded", "object", objectName)
	c.JSON(http.StatusOK, gin.H{
		"object":   objectName,
		"filename": header.Filename,
	})
}

// AttachDocumentFile sets a document's main file: either a direct multipart
// upload ("file") or the promotion of a previous temp upload ("temp_object").
func (h *UploadHandler) AttachDocumentFile(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	doc, err := h.store.GetDocument(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	objectName, ok := h.receiveFile(c, fmt.Sprintf("documents/%d", id))
	if !ok {
		return
	}

	previous := doc.LocalFile
	doc.LocalFile = objectName
	if err := h.store.UpdateDocument(ctx, doc); err != nil {
		logger.Error(ctx, "failed to record document file", "error", err, "document_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record file"})
		return
	}

	if previous != "" && previous != objectName {
		if err := h.storage.Delete(ctx, previous); err != nil {
			logger.Warn(ctx, "failed to delete replaced file", "error", err, "object", previous)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File stored",
		"object":  objectName,
	})
}

// AttachContractFile sets a contract's main file.
func (h *UploadHandler) AttachContractFile(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	contract, err := h.store.GetContract(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contract"})
		return
	}
	if contract == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	objectName, ok := h.receiveFile(c, fmt.Sprintf("contracts/%d", id))
	if !ok {
		return
	}

	previous := contract.LocalFile
	contract.LocalFile = objectName
	if err := h.store.UpdateContract(ctx, contract); err != nil {
		logger.Error(ctx, "failed to record contract file", "error", err, "contract_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record file"})
		return
	}

	if previous != "" && previous != objectName {
		if err := h.storage.Delete(ctx, previous); err != nil {
			logger.Warn(ctx, "failed to delete replaced file", "error", err, "object", previous)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File stored",
		"object":  objectName,
	})
}

// FileURL answers a presigned download URL for a stored object.
func (h *UploadHandler) FileURL(c *gin.Context) {
	object := c.Query("object")
	if object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing object parameter"})
		return
	}

	url, err := h.storage.PresignedURL(c.Request.Context(), object)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to presign object", "error", err, "object", object)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *UploadHandler) receiveFile(c *gin.Context, prefix string) (string, bool) {
	ctx := c.Request.Context()

	if temp := c.PostForm("temp_object"); temp != "" {
		finalName := prefix + "/" + strings.TrimPrefix(temp, service.TempPrefix)
		if err := h.storage.Promote(ctx, temp, finalName); err != nil {
			logger.Error(ctx, "failed to promote temp file", "error", err, "object", temp)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown temp upload"})
			return "", false
		}
		return finalName, true
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return "", false
	}
	defer file.Close()

	contentType, ok := checkPDF(c, file, header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		return "", false
	}

	objectName := fmt.Sprintf("%s/%s_%s", prefix, uuid.New().String(), header.Filename)
	if err := h.storage.Upload(ctx, objectName, file, header.Size, contentType); err != nil {
		logger.Error(ctx, "failed to upload file", "error", err, "object", objectName)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return "", false
	}
	return objectName, true
}

// checkPDF validates the upload is a PDF, sniffing the header when the
// declared content type is unhelpful.
func checkPDF(c *gin.Context, file io.ReadSeeker, filename, contentType string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return "", false
	}

	if contentType == "" || contentType == "application/octet-stream" {
		return "application/pdf", true
	}
	if strings.Contains(contentType, "pdf") {
		return "application/pdf", true
	}

	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", false
	}
	file.Seek(0, io.SeekStart)

	detectedType := http.DetectContentType(buffer)
	if !strings.Contains(detectedType, "pdf") && detectedType != "application/octet-stream" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return "", false
	}
	return "application/pdf", true
}
