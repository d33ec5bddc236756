package shopify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"smartshelf/config"
	"smartshelf/internal/apperrors"
	"smartshelf/internal/audit"
	"smartshelf/internal/database/models"
	"smartshelf/internal/events"
	"smartshelf/internal/store"
)

const syncBatchLimit = 250

// defaultVariantTitle is Shopify's placeholder for single-variant products;
// it is omitted from derived item names.
const defaultVariantTitle = "Default Title"

type SyncError struct {
	ProductID int64  `json:"productId"`
	VariantID int64  `json:"variantId"`
	Error     string `json:"error"`
}

type SyncResult struct {
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Errors  []SyncError `json:"errors"`
}

// StatsCache invalidates cached inventory aggregates after item writes that
// bypass the inventory service.
type StatsCache interface {
	InvalidateStats(ctx context.Context)
}

// Syncer reconciles catalog variants into local items, keyed by the shopify
// variant id. Reconciliation is additive and update-only: local items absent
// from the feed are never deleted.
type Syncer struct {
	client    *Client
	items     *store.ItemStore
	recorder  *audit.Recorder
	publisher events.Publisher
	stats     StatsCache
	log       *logrus.Logger
}

// NewSyncer wires the reconciler. stats may be nil when no cache is in play.
func NewSyncer(client *Client, items *store.ItemStore, recorder *audit.Recorder, publisher events.Publisher, stats StatsCache, log *logrus.Logger) *Syncer {
	return &Syncer{
		client:    client,
		items:     items,
		recorder:  recorder,
		publisher: publisher,
		stats:     stats,
		log:       log,
	}
}

func (s *Syncer) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
}

func variantItemName(product Product, variant Variant) string {
	if variant.Title != "" && variant.Title != defaultVariantTitle {
		return product.Title + " - " + variant.Title
	}
	return product.Title
}

func variantSKU(variant Variant) string {
	if variant.SKU != "" {
		return variant.SKU
	}
	return fmt.Sprintf("SHOPIFY-%d", variant.ID)
}

// SyncProducts pulls the catalog and upserts every variant. Per-variant
// failures are collected and do not abort the batch; only a failed upstream
// list call fails the whole sync. One SHOPIFY_SYNC audit row and one
// shopify:synced event summarize the run.
func (s *Syncer) SyncProducts(ctx context.Context, actor audit.Actor) (*SyncResult, error) {
	products, err := s.client.ListProducts(ctx, syncBatchLimit, 0)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Errors: []SyncError{}}
	for _, product := range products {
		for _, variant := range product.Variants {
			if err := s.upsertVariant(ctx, product, variant, result); err != nil {
				result.Errors = append(result.Errors, SyncError{
					ProductID: product.ID,
					VariantID: variant.ID,
					Error:     err.Error(),
				})
			}
		}
	}

	if err := s.recorder.Record(ctx, models.ActionShopifySync, models.EntitySystem, "", actor, models.JSONMap{
		"created": result.Created,
		"updated": result.Updated,
		"errors":  result.Errors,
	}); err != nil {
		config.LogError(s.log, "shopify", "SyncProducts", "audit", nil, err)
	}
	s.publisher.Publish(events.EventShopifySynced, result)
	if result.Created > 0 || result.Updated > 0 {
		s.invalidateStats(ctx)
	}

	return result, nil
}

func (s *Syncer) upsertVariant(ctx context.Context, product Product, variant Variant, result *SyncResult) error {
	variantID := strconv.FormatInt(variant.ID, 10)

	price, err := decimal.NewFromString(variant.Price)
	if err != nil {
		return fmt.Errorf("malformed price %q: %w", variant.Price, err)
	}

	quantity := variant.InventoryQuantity

	imageURL := ""
	if len(product.Images) > 0 {
		imageURL = product.Images[0].Src
	}

	existing, err := s.items.GetByShopifyVariantID(ctx, variantID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return err
		}

		item := &models.Item{
			SKU:              variantSKU(variant),
			Name:             variantItemName(product, variant),
			Description:      product.BodyHTML,
			Price:            price,
			Quantity:         quantity,
			ShopifyProductID: strconv.FormatInt(product.ID, 10),
			ShopifyVariantID: variantID,
			ImageURL:         imageURL,
			Status:           models.ItemStatusActive,
		}
		if variant.Barcode != "" {
			barcode := variant.Barcode
			item.Barcode = &barcode
		}

		if err := s.items.Create(ctx, item); err != nil {
			return err
		}
		result.Created++
		return nil
	}

	// Update only the catalog-owned fields; sku, location and pallet link
	// stay local. The barcode mirrors the catalog, so an empty upstream value
	// clears the local one.
	name := variantItemName(product, variant)
	barcode := variant.Barcode
	update := store.ItemUpdate{
		Name:        &name,
		Description: &product.BodyHTML,
		Price:       &price,
		Quantity:    &quantity,
		ImageURL:    &imageURL,
		Barcode:     &barcode,
	}

	if _, err := s.items.Update(ctx, existing.ID, update); err != nil {
		return err
	}
	result.Updated++
	return nil
}

// PushInventory sets one local item's quantity in the external catalog, then
// mirrors it locally. Any upstream failure leaves the local record untouched.
func (s *Syncer) PushInventory(ctx context.Context, itemID string, quantity int, actor audit.Actor) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ShopifyVariantID == "" {
		return nil, apperrors.NewValidation("item is not linked to shopify", "shopifyVariantId")
	}
	if quantity < 0 {
		return nil, apperrors.NewValidation("quantity cannot be negative", "quantity")
	}

	variant, err := s.client.GetVariant(ctx, item.ShopifyVariantID)
	if err != nil {
		return nil, err
	}

	locations, err := s.client.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, apperrors.NewUpstream("shopify store has no locations", "")
	}

	if err := s.client.SetInventoryLevel(ctx, locations[0].ID, variant.InventoryItemID, quantity); err != nil {
		return nil, err
	}

	item, err = s.items.Update(ctx, itemID, store.ItemUpdate{Quantity: &quantity})
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)

	if err := s.recorder.Record(ctx, models.ActionShopifyInventoryUpdate, models.EntityItem, item.ID, actor, models.JSONMap{
		"itemId":   item.ID,
		"quantity": quantity,
	}); err != nil {
		config.LogError(s.log, "shopify", "PushInventory", "audit", item.ID, err)
	}

	return item, nil
}
