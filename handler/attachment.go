package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elisa-rivadeneira/gestor-documentario/model"
	"github.com/elisa-rivadeneira/gestor-documentario/pkg/logger"
	"github.com/elisa-rivadeneira/gestor-documentario/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AttachmentHandler struct {
	store   *service.Store
	storage *service.StorageService
}

func NewAttachmentHandler(store *service.Store, storage *service.StorageService) *AttachmentHandler {
	return &AttachmentHandler{store: store, storage: storage}
}

// AddToDocument attaches a file or an external link to a document. The
// multipart form carries either a "file" part or an "external_link" field,
// never both; "name" is optional for files.
func (h *AttachmentHandler) AddToDocument(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	h.add(c, fmt.Sprintf("documents/%d", id), func(ctx context.Context, a *model.Attachment) error {
		return h.store.AddDocumentAttachment(ctx, id, a)
	})
}

// AddToContract attaches a file or an external link to a contract.
func (h *AttachmentHandler) AddToContract(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	contract, err := h.store.GetContract(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contract"})
		return
	}
	if contract == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	h.add(c, fmt.Sprintf("contracts/%d", id), func(ctx context.Context, a *model.Attachment) error {
		return h.store.AddContractAttachment(ctx, id, a)
	})
}

func (h *AttachmentHandler) add(c *gin.Context, ownerPrefix string, save func(context.Context, *model.Attachment) error) {
	ctx := c.Request.Context()

	att := model.Attachment{
		Name:         c.PostForm("name"),
		ExternalLink: c.PostForm("external_link"),
	}

	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()

		if att.ExternalLink != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provide a file or an external link, not both"})
			return
		}

		objectName := fmt.Sprintf("%s/attachments/%s_%s", ownerPrefix, uuid.New().String(), header.Filename)
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		if err := h.storage.Upload(ctx, objectName, file, header.Size, contentType); err != nil {
			logger.Error(ctx, "failed to upload attachment", "error", err, "object", objectName)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload attachment"})
			return
		}

		att.LocalFile = objectName
		if att.Name == "" {
			att.Name = header.Filename
		}
	} else if att.ExternalLink != "" {
		if att.Name == "" {
			att.Name = "External link"
		}
	}

	if !att.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An attachment requires exactly one of file or external link"})
		return
	}

	if err := save(ctx, &att); err != nil {
		logger.Error(ctx, "failed to save attachment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachment"})
		return
	}

	logger.Info(ctx, "attachment added", "attachment_id", att.ID, "name", att.Name)
	c.JSON(http.StatusCreated, att)
}

// Delete removes an attachment and its stored file.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	att, err := h.store.GetAttachment(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attachment"})
		return
	}
	if att == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	if err := h.store.DeleteAttachment(ctx, id); err != nil {
		logger.Error(ctx, "failed to delete attachment", "error", err, "attachment_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	if att.LocalFile != "" {
		if err := h.storage.Delete(ctx, att.LocalFile); err != nil {
			logger.Warn(ctx, "failed to delete attachment file", "error", err, "object", att.LocalFile)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted"})
}

func ownerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
