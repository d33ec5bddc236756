package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartshelf/internal/database/models"
	"smartshelf/internal/service"
	"smartshelf/internal/store"
)

type PalletHTTPHandler struct {
	service *service.PalletService
}

func NewPalletHTTPHandler(palletService *service.PalletService) *PalletHTTPHandler {
	return &PalletHTTPHandler{service: palletService}
}

// ListPallets handles GET /api/pallets.
func (h *PalletHTTPHandler) ListPallets(c *gin.Context) {
	params := store.PalletListParams{
		ListParams: listParamsFrom(c),
		Status:     c.Query("status"),
	}

	pallets, total, err := h.service.ListPallets(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	listResponse(c, "pallets", pallets, total, params.ListParams)
}

// GetPallet handles GET /api/pallets/:id.
func (h *PalletHTTPHandler) GetPallet(c *gin.Context) {
	pallet, err := h.service.GetPallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, pallet)
}

// CreatePallet handles POST /api/pallets.
func (h *PalletHTTPHandler) CreatePallet(c *gin.Context) {
	var pallet models.Pallet
	if err := c.ShouldBindJSON(&pallet); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.service.CreatePallet(c.Request.Context(), &pallet, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, result)
}

// UpdatePallet handles PUT /api/pallets/:id.
func (h *PalletHTTPHandler) UpdatePallet(c *gin.Context) {
	var update store.PalletUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	pallet, err := h.service.UpdatePallet(c.Request.Context(), c.Param("id"), update, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, pallet)
}

// DeletePallet handles DELETE /api/pallets/:id.
func (h *PalletHTTPHandler) DeletePallet(c *gin.Context) {
	if err := h.service.DeletePallet(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"message": "Pallet deleted successfully"})
}

// AssignItem handles POST /api/pallets/:id/items/:itemId.
func (h *PalletHTTPHandler) AssignItem(c *gin.Context) {
	pallet, item, err := h.service.AssignItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{
		"message": "Item assigned to pallet successfully",
		"pallet":  pallet,
		"item":    item,
	})
}

// RemoveItem handles DELETE /api/pallets/:id/items/:itemId.
func (h *PalletHTTPHandler) RemoveItem(c *gin.Context) {
	if _, err := h.service.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"message": "Item removed from pallet successfully"})
}
