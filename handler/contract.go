package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/elisa-rivadeneira/gestor-documentario/middleware"
	"github.com/elisa-rivadeneira/gestor-documentario/model"
	"github.com/elisa-rivadeneira/gestor-documentario/pkg/logger"
	"github.com/elisa-rivadeneira/gestor-documentario/service"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	store   *service.Store
	storage *service.StorageService
}

func NewContractHandler(store *service.Store, storage *service.StorageService) *ContractHandler {
	return &ContractHandler{store: store, storage: storage}
}

// ContractSiteRequest is one maintenance cost line.
type ContractSiteRequest struct {
	SiteName string  `json:"site_name" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// ContractRequest is the create/update payload.
type ContractRequest struct {
	Number            string                `json:"number"`
	Date              string                `json:"date"` // YYYY-MM-DD
	ContractType      string                `json:"contract_type" binding:"required,oneof=equipment maintenance"`
	ContractingParty  string                `json:"contracting_party"`
	CounterpartyTaxID string                `json:"counterparty_tax_id"`
	CounterpartyName  string                `json:"counterparty_name"`
	ContractedItem    string                `json:"contracted_item"`
	Quantity          int                   `json:"quantity"`
	UnitPrice         float64               `json:"unit_price"`
	Sites             []ContractSiteRequest `json:"sites"`
	TermDays          int                   `json:"term_days"`
	ExtraDays         int                   `json:"extra_days"`
	Summary           string                `json:"summary"`
	ExternalLink      string                `json:"external_link"`
}

func (r *ContractRequest) validate() string {
	switch r.ContractType {
	case model.ContractEquipment:
		if len(r.Sites) > 0 {
			return "Equipment contracts do not carry site lines"
		}
	case model.ContractMaintenance:
		if r.Quantity != 0 || r.UnitPrice != 0 {
			return "Maintenance contracts do not carry quantity or unit price"
		}
	}
	if r.TermDays < 0 || r.ExtraDays < 0 {
		return "Term and extension days cannot be negative"
	}
	return ""
}

func (r *ContractRequest) apply(c *model.ContractRecord) error {
	c.Number = r.Number
	c.ContractType = r.ContractType
	c.ContractingParty = r.ContractingParty
	c.CounterpartyTaxID = r.CounterpartyTaxID
	c.CounterpartyName = r.CounterpartyName
	c.ContractedItem = r.ContractedItem
	c.Quantity = r.Quantity
	c.UnitPrice = r.UnitPrice
	c.TermDays = r.TermDays
	c.ExtraDays = r.ExtraDays
	c.Summary = r.Summary
	c.ExternalLink = r.ExternalLink

	c.Sites = nil
	for _, s := range r.Sites {
		c.Sites = append(c.Sites, model.ContractSite{SiteName: s.SiteName, Amount: s.Amount})
	}

	c.Date = nil
	if r.Date != "" {
		t, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return err
		}
		c.Date = &t
	}
	return nil
}

// contractView decorates a contract with its computed total for responses.
type contractView struct {
	model.ContractRecord
	TotalAmount *float64 `json:"total_amount,omitempty"`
}

func viewOf(c model.ContractRecord) contractView {
	v := contractView{ContractRecord: c}
	if total, ok := c.TotalAmount(); ok {
		v.TotalAmount = &total
	}
	return v
}

// List returns a page of contracts with their sites and computed totals.
func (h *ContractHandler) List(c *gin.Context) {
	filter := service.ContractFilter{
		ContractType: c.Query("contract_type"),
		Search:       c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))

	contracts, total, err := h.store.ListContracts(c.Request.Context(), filter)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list contracts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contracts"})
		return
	}

	items := make([]contractView, 0, len(contracts))
	for _, contract := range contracts {
		items = append(items, viewOf(contract))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// Create registers a new contract.
func (h *ContractHandler) Create(c *gin.Context) {
	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var contract model.ContractRecord
	if err := req.apply(&contract); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.CreateContract(ctx, &contract); err != nil {
		logger.Error(ctx, "failed to create contract", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contract"})
		return
	}

	logger.Info(ctx, "contract created", "contract_id", contract.ID, "number", contract.Number)
	c.JSON(http.StatusCreated, viewOf(contract))
}

// Get returns one contract with sites and attachments.
func (h *ContractHandler) Get(c *gin.Context) {
	contract, ok := h.findContract(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(*contract))
}

// Update overwrites an existing contract.
func (h *ContractHandler) Update(c *gin.Context) {
	contract, ok := h.findContract(c)
	if !ok {
		return
	}

	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := req.apply(contract); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.UpdateContract(ctx, contract); err != nil {
		logger.Error(ctx, "failed to update contract", "error", err, "contract_id", contract.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contract"})
		return
	}

	c.JSON(http.StatusOK, viewOf(*contract))
}

// Delete removes a contract and its stored files. Admin only.
func (h *ContractHandler) Delete(c *gin.Context) {
	if !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
		return
	}

	contract, ok := h.findContract(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.store.DeleteContract(ctx, contract.ID); err != nil {
		logger.Error(ctx, "failed to delete contract", "error", err, "contract_id", contract.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contract"})
		return
	}

	if contract.LocalFile != "" {
		if err := h.storage.Delete(ctx, contract.LocalFile); err != nil {
			logger.Warn(ctx, "failed to delete stored file", "error", err, "object", contract.LocalFile)
		}
	}
	for _, a := range contract.Attachments {
		if a.LocalFile == "" {
			continue
		}
		if err := h.storage.Delete(ctx, a.LocalFile); err != nil {
			logger.Warn(ctx, "failed to delete attachment file", "error", err, "object", a.LocalFile)
		}
	}

	logger.Info(ctx, "contract deleted", "contract_id", contract.ID, "number", contract.Number)
	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}

func (h *ContractHandler) findContract(c *gin.Context) (*model.ContractRecord, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contract id"})
		return nil, false
	}

	contract, err := h.store.GetContract(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to fetch contract", "error", err, "contract_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contract"})
		return nil, false
	}
	if contract == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return nil, false
	}
	return contract, true
}
