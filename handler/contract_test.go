package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/elisa-rivadeneira/gestor-documentario/service"
)

func contractRouter(t *testing.T, auth gin.HandlerFunc) (*gin.Engine, *service.Store) {
	t.Helper()
	store := newTestStore(t)
	h := NewContractHandler(store, nil)

	router := gin.New()
	if auth != nil {
		router.Use(auth)
	}
	router.GET("/api/contracts", h.List)
	router.POST("/api/contracts", h.Create)
	router.GET("/api/contracts/:id", h.Get)
	router.PUT("/api/contracts/:id", h.Update)
	router.DELETE("/api/contracts/:id", h.Delete)
	return router, store
}

func TestCreateContractComputesTotal(t *testing.T) {
	router, _ := contractRouter(t, asStaff)

	w := postJSON(router, "/api/contracts", ContractRequest{
		Number:           "CONT-001-2024",
		Date:             "2024-01-10",
		ContractType:     "maintenance",
		CounterpartyName: "ACME SAC",
		TermDays:         30,
		Sites: []ContractSiteRequest{
			{SiteName: "Comisaría A", Amount: 100.00},
			{SiteName: "Comisaría B", Amount: 50.00},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		ID          int64    `json:"id"`
		TotalAmount *float64 `json:"total_amount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if created.TotalAmount == nil || *created.TotalAmount != 150.00 {
		t.Errorf("Expected total 150.00, got %v", created.TotalAmount)
	}
}

func TestCreateContractOmitsUnknownTotal(t *testing.T) {
	router, _ := contractRouter(t, asStaff)

	w := postJSON(router, "/api/contracts", ContractRequest{
		ContractType: "equipment",
		Quantity:     3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if _, present := created["total_amount"]; present {
		t.Error("Expected total_amount omitted when not derivable")
	}
}

func TestCreateContractValidation(t *testing.T) {
	router, _ := contractRouter(t, asStaff)

	tests := []struct {
		name    string
		payload ContractRequest
	}{
		{
			name: "equipment with sites",
			payload: ContractRequest{
				ContractType: "equipment",
				Sites:        []ContractSiteRequest{{SiteName: "A", Amount: 10}},
			},
		},
		{
			name: "maintenance with quantity",
			payload: ContractRequest{
				ContractType: "maintenance",
				Quantity:     5,
			},
		},
		{
			name: "negative term days",
			payload: ContractRequest{
				ContractType: "equipment",
				TermDays:     -1,
			},
		},
		{
			name:    "unknown type",
			payload: ContractRequest{ContractType: "leasing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/contracts", tt.payload)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateContractReplacesSites(t *testing.T) {
	router, _ := contractRouter(t, asStaff)

	if w := postJSON(router, "/api/contracts", ContractRequest{
		ContractType: "maintenance",
		Sites:        []ContractSiteRequest{{SiteName: "A", Amount: 100}},
	}); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}

	w := putJSON(router, "/api/contracts/1", ContractRequest{
		ContractType: "maintenance",
		Sites: []ContractSiteRequest{
			{SiteName: "B", Amount: 70},
			{SiteName: "C", Amount: 30},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated struct {
		Sites []struct {
			SiteName string `json:"site_name"`
		} `json:"sites"`
		TotalAmount *float64 `json:"total_amount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(updated.Sites) != 2 || updated.Sites[0].SiteName != "B" {
		t.Errorf("Expected replaced sites, got %+v", updated.Sites)
	}
	if updated.TotalAmount == nil || *updated.TotalAmount != 100.00 {
		t.Errorf("Expected recomputed total 100.00, got %v", updated.TotalAmount)
	}
}

func TestDeleteContractRequiresAdmin(t *testing.T) {
	router, _ := contractRouter(t, asStaff)

	if w := postJSON(router, "/api/contracts", ContractRequest{ContractType: "equipment"}); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}

	req := httptest.NewRequest("DELETE", "/api/contracts/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
}

func TestGetContractNotFound(t *testing.T) {
	router, _ := contractRouter(t, nil)

	if w := get(router, "/api/contracts/42"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if w := get(router, "/api/contracts/abc"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", w.Code)
	}
}
