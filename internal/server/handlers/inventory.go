package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartshelf/internal/database/models"
	"smartshelf/internal/service"
	"smartshelf/internal/store"
)

type InventoryHTTPHandler struct {
	service *service.InventoryService
}

func NewInventoryHTTPHandler(inventoryService *service.InventoryService) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{service: inventoryService}
}

// ListItems handles GET /api/inventory.
func (h *InventoryHTTPHandler) ListItems(c *gin.Context) {
	params := store.ItemListParams{
		ListParams: listParamsFrom(c),
		Category:   c.Query("category"),
		Status:     c.Query("status"),
	}

	items, total, err := h.service.ListItems(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	listResponse(c, "items", items, total, params.ListParams)
}

// GetItem handles GET /api/inventory/:id.
func (h *InventoryHTTPHandler) GetItem(c *gin.Context) {
	item, err := h.service.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, item)
}

// CreateItem handles POST /api/inventory.
func (h *InventoryHTTPHandler) CreateItem(c *gin.Context) {
	var item models.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.service.CreateItem(c.Request.Context(), &item, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, result)
}

// UpdateItem handles PUT /api/inventory/:id.
func (h *InventoryHTTPHandler) UpdateItem(c *gin.Context) {
	var update store.ItemUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), c.Param("id"), update, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, item)
}

// DeleteItem handles DELETE /api/inventory/:id.
func (h *InventoryHTTPHandler) DeleteItem(c *gin.Context) {
	if err := h.service.DeleteItem(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"message": "Item deleted successfully"})
}

type adjustQuantityRequest struct {
	Quantity  *int   `json:"quantity" binding:"required"`
	Operation string `json:"operation" binding:"required,oneof=add subtract set"`
}

// AdjustQuantity handles PATCH /api/inventory/:id/quantity.
func (h *InventoryHTTPHandler) AdjustQuantity(c *gin.Context) {
	var req adjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.service.AdjustQuantity(c.Request.Context(), c.Param("id"), *req.Quantity, req.Operation, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, item)
}

// Stats handles GET /api/inventory/stats/summary.
func (h *InventoryHTTPHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, stats)
}
