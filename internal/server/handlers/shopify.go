package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartshelf/internal/shopify"
)

type ShopifyHTTPHandler struct {
	client *shopify.Client
	syncer *shopify.Syncer
}

// NewShopifyHTTPHandler builds the catalog bridge. client and syncer are nil
// when the shopify credentials are not configured.
func NewShopifyHTTPHandler(client *shopify.Client, syncer *shopify.Syncer) *ShopifyHTTPHandler {
	return &ShopifyHTTPHandler{client: client, syncer: syncer}
}

func (h *ShopifyHTTPHandler) configured(c *gin.Context) bool {
	if h.client == nil || h.syncer == nil {
		fail(c, http.StatusBadRequest, "Shopify credentials not configured")
		return false
	}
	return true
}

// ListProducts handles GET /api/shopify/products.
func (h *ShopifyHTTPHandler) ListProducts(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	products, err := h.client.ListProducts(c.Request.Context(), limit, page)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"products": products})
}

// Sync handles POST /api/shopify/sync.
func (h *ShopifyHTTPHandler) Sync(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	result, err := h.syncer.SyncProducts(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{
		"message": "Shopify sync completed",
		"results": result,
	})
}

type pushInventoryRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// PushInventory handles PUT /api/shopify/inventory/:id.
func (h *ShopifyHTTPHandler) PushInventory(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req pushInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.syncer.PushInventory(c.Request.Context(), c.Param("id"), *req.Quantity, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{
		"message": "Inventory updated in Shopify",
		"item":    item,
	})
}
