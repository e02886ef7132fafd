package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elisa-rivadeneira/gestor-documentario/middleware"
	"github.com/elisa-rivadeneira/gestor-documentario/model"
	"github.com/elisa-rivadeneira/gestor-documentario/pkg/logger"
	"github.com/elisa-rivadeneira/gestor-documentario/service"
	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	store   *service.Store
	storage *service.StorageService
}

func NewDocumentHandler(store *service.Store, storage *service.StorageService) *DocumentHandler {
	return &DocumentHandler{store: store, storage: storage}
}

// DocumentRequest is the create/update payload.
type DocumentRequest struct {
	Kind         string `json:"kind" binding:"required,oneof=oficio carta"`
	Direction    string `json:"direction" binding:"required,oneof=received sent"`
	Number       string `json:"number"`
	Date         string `json:"date"` // YYYY-MM-DD
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Title        string `json:"title"`
	Subject      string `json:"subject"`
	Summary      string `json:"summary"`
	ExternalLink string `json:"external_link"`
	ParentID     *int64 `json:"parent_id"`
}

func (r *DocumentRequest) apply(d *model.DocumentRecord) error {
	d.Kind = r.Kind
	d.Direction = r.Direction
	d.Number = r.Number
	d.Sender = r.Sender
	d.Recipient = r.Recipient
	d.Title = r.Title
	d.Subject = r.Subject
	d.Summary = r.Summary
	d.ExternalLink = r.ExternalLink
	d.ParentID = r.ParentID

	d.Date = nil
	if r.Date != "" {
		t, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return err
		}
		d.Date = &t
	}
	return nil
}

// List returns a page of documents with the unpaged total.
func (h *DocumentHandler) List(c *gin.Context) {
	filter := service.DocumentFilter{
		Kind:      c.Query("kind"),
		Direction: c.Query("direction"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	docs, total, err := h.store.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list documents", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}

	if docs == nil {
		docs = []model.DocumentRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     docs,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// Numbers returns the id-to-number lookup map used by the reference filter.
func (h *DocumentHandler) Numbers(c *gin.Context) {
	numbers, err := h.store.DocumentNumbers(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list document numbers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list document numbers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": numbers})
}

// Create registers a new document. A duplicate number answers 409 unless the
// caller confirms the override with ?replace=true, in which case the existing
// record is replaced in place.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var doc model.DocumentRecord
	if err := req.apply(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()

	if doc.ParentID != nil {
		parent, err := h.store.GetDocument(ctx, *doc.ParentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check parent document"})
			return
		}
		if parent == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent document not found"})
			return
		}
	}

	if doc.Number != "" {
		exists, err := h.store.DocumentNumberExists(ctx, doc.Number)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check document number"})
			return
		}
		if exists {
			if c.Query("replace") != "true" {
				c.JSON(http.StatusConflict, gin.H{
					"error":  "A document with number " + doc.Number + " already exists",
					"number": doc.Number,
				})
				return
			}
			if h.replaceByNumber(c, &req, doc.Number) {
				return
			}
			// replacement target vanished between check and update; create fresh
		}
	}

	if err := h.store.CreateDocument(ctx, &doc); err != nil {
		logger.Error(ctx, "failed to create document", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}

	logger.Info(ctx, "document created", "document_id", doc.ID, "number", doc.Number)
	c.JSON(http.StatusCreated, doc)
}

// replaceByNumber overwrites the existing document that carries the number.
// Reports whether it handled the response.
func (h *DocumentHandler) replaceByNumber(c *gin.Context, req *DocumentRequest, number string) bool {
	ctx := c.Request.Context()

	docs, _, err := h.store.ListDocuments(ctx, service.DocumentFilter{Search: number, PageSize: 100})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find document to replace"})
		return true
	}
	for i := range docs {
		if !strings.EqualFold(docs[i].Number, number) {
			continue
		}
		existing := docs[i]
		if err := req.apply(&existing); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return true
		}
		if err := h.store.UpdateDocument(ctx, &existing); err != nil {
			logger.Error(ctx, "failed to replace document", "error", err, "document_id", existing.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace document"})
			return true
		}
		logger.Info(ctx, "document replaced", "document_id", existing.ID, "number", number)
		c.JSON(http.StatusOK, existing)
		return true
	}
	return false
}

// Get returns a single document with its attachments.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, ok := h.findDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Update overwrites an existing document.
func (h *DocumentHandler) Update(c *gin.Context) {
	doc, ok := h.findDocument(c)
	if !ok {
		return
	}

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()

	if req.Number != "" && !strings.EqualFold(req.Number, doc.Number) {
		exists, err := h.store.DocumentNumberExists(ctx, req.Number)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check document number"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{
				"error":  "A document with number " + req.Number + " already exists",
				"number": req.Number,
			})
			return
		}
	}

	if req.ParentID != nil && *req.ParentID == doc.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A document cannot reference itself"})
		return
	}

	if err := req.apply(doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	if err := h.store.UpdateDocument(ctx, doc); err != nil {
		logger.Error(ctx, "failed to update document", "error", err, "document_id", doc.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Delete removes a document and its stored files. Admin only.
func (h *DocumentHandler) Delete(c *gin.Context) {
	if !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
		return
	}

	doc, ok := h.findDocument(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if err := h.store.DeleteDocument(ctx, doc.ID); err != nil {
		logger.Error(ctx, "failed to delete document", "error", err, "document_id", doc.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	// Stored objects are removed best-effort after the row is gone
	if doc.LocalFile != "" {
		if err := h.storage.Delete(ctx, doc.LocalFile); err != nil {
			logger.Warn(ctx, "failed to delete stored file", "error", err, "object", doc.LocalFile)
		}
	}
	for _, a := range doc.Attachments {
		if a.LocalFile == "" {
			continue
		}
		if err := h.storage.Delete(ctx, a.LocalFile); err != nil {
			logger.Warn(ctx, "failed to delete attachment file", "error", err, "object", a.LocalFile)
		}
	}

	logger.Info(ctx, "document deleted", "document_id", doc.ID, "number", doc.Number)
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// Replies lists the letters registered as replies to a document.
func (h *DocumentHandler) Replies(c *gin.Context) {
	doc, ok := h.findDocument(c)
	if !ok {
		return
	}

	replies, err := h.store.ListReplies(c.Request.Context(), doc.ID)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list replies", "error", err, "document_id", doc.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list replies"})
		return
	}

	if replies == nil {
		replies = []model.DocumentRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": replies})
}

func (h *DocumentHandler) findDocument(c *gin.Context) (*model.DocumentRecord, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document id"})
		return nil, false
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to fetch document", "error", err, "document_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return nil, false
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return nil, false
	}
	return doc, true
}

