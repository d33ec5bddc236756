package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartshelf/internal/apperrors"
	"smartshelf/internal/database/models"
)

var itemSortColumns = map[string]string{
	"sku":         "sku",
	"name":        "name",
	"category":    "category",
	"quantity":    "quantity",
	"minQuantity": "min_quantity",
	"price":       "price",
	"cost":        "cost",
	"location":    "location",
	"status":      "status",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

type ItemStore struct {
	db *gorm.DB
}

func NewItemStore(db *gorm.DB) *ItemStore {
	return &ItemStore{db: db}
}

// ItemListParams filters the item list. Search matches name, sku and
// description as case-insensitive substrings.
type ItemListParams struct {
	ListParams
	Category string
	Status   string
}

// ItemUpdate carries a partial update; nil fields are left untouched.
type ItemUpdate struct {
	SKU              *string          `json:"sku"`
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	Category         *string          `json:"category"`
	Quantity         *int             `json:"quantity"`
	MinQuantity      *int             `json:"minQuantity"`
	MaxQuantity      *int             `json:"maxQuantity"`
	Price            *decimal.Decimal `json:"price"`
	Cost             *decimal.Decimal `json:"cost"`
	Location         *string          `json:"location"`
	Barcode          *string          `json:"barcode"`
	ShopifyProductID *string          `json:"shopifyProductId"`
	ShopifyVariantID *string          `json:"shopifyVariantId"`
	ImageURL         *string          `json:"imageUrl"`
	Status           *string          `json:"status"`
	Metadata         models.JSONMap   `json:"metadata"`
	PalletID         *string          `json:"palletId"`
}

func validateItem(item *models.Item) error {
	var fields []string
	if strings.TrimSpace(item.SKU) == "" {
		fields = append(fields, "sku")
	}
	if strings.TrimSpace(item.Name) == "" {
		fields = append(fields, "name")
	}
	if item.Quantity < 0 {
		fields = append(fields, "quantity")
	}
	if item.MinQuantity < 0 {
		fields = append(fields, "minQuantity")
	}
	if item.MaxQuantity != nil && *item.MaxQuantity < 0 {
		fields = append(fields, "maxQuantity")
	}
	if item.Price.IsNegative() {
		fields = append(fields, "price")
	}
	if item.Cost.IsNegative() {
		fields = append(fields, "cost")
	}
	if len(fields) > 0 {
		return apperrors.NewValidation("invalid item", fields...)
	}

	validStatus := false
	for _, s := range models.ItemStatuses() {
		if item.Status == s {
			validStatus = true
			break
		}
	}
	if !validStatus {
		return apperrors.NewValidation("invalid item status: "+item.Status, "status")
	}
	return nil
}

func (s *ItemStore) Create(ctx context.Context, item *models.Item) error {
	if item.Status == "" {
		item.Status = models.ItemStatusActive
	}
	if item.Metadata == nil {
		item.Metadata = models.JSONMap{}
	}
	if item.Barcode != nil && *item.Barcode == "" {
		item.Barcode = nil
	}

	if err := validateItem(item); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("sku = ?", item.SKU).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("item with sku " + item.SKU + " already exists")
	}
	if item.Barcode != nil {
		if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("barcode = ?", *item.Barcode).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewConflict("item with barcode " + *item.Barcode + " already exists")
		}
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return translateError(err, "item", "")
	}
	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).Preload("Pallet").First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "item", id)
	}
	return &item, nil
}

func (s *ItemStore) GetByShopifyVariantID(ctx context.Context, variantID string) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "shopify_variant_id = ?", variantID).Error; err != nil {
		return nil, translateError(err, "item", variantID)
	}
	return &item, nil
}

func (s *ItemStore) List(ctx context.Context, params ItemListParams) ([]models.Item, int64, error) {
	p := params.ListParams.normalized()

	query := s.db.WithContext(ctx).Model(&models.Item{})
	if params.Search != "" {
		pattern := searchPattern(params.Search)
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	err := query.Preload("Pallet").
		Order(orderClause(p.SortBy, p.SortOrder, itemSortColumns)).
		Offset(p.offset()).Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ItemStore) Update(ctx context.Context, id string, update ItemUpdate) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "item", id)
	}

	if update.SKU != nil && *update.SKU != item.SKU {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("sku = ? AND id <> ?", *update.SKU, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.NewConflict("item with sku " + *update.SKU + " already exists")
		}
		item.SKU = *update.SKU
	}
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Category != nil {
		item.Category = *update.Category
	}
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.MinQuantity != nil {
		item.MinQuantity = *update.MinQuantity
	}
	if update.MaxQuantity != nil {
		item.MaxQuantity = update.MaxQuantity
	}
	if update.Price != nil {
		item.Price = *update.Price
	}
	if update.Cost != nil {
		item.Cost = *update.Cost
	}
	if update.Location != nil {
		item.Location = *update.Location
	}
	if update.Barcode != nil {
		if *update.Barcode == "" {
			item.Barcode = nil
		} else {
			item.Barcode = update.Barcode
		}
	}
	if update.ShopifyProductID != nil {
		item.ShopifyProductID = *update.ShopifyProductID
	}
	if update.ShopifyVariantID != nil {
		item.ShopifyVariantID = *update.ShopifyVariantID
	}
	if update.ImageURL != nil {
		item.ImageURL = *update.ImageURL
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.Metadata != nil {
		item.Metadata = update.Metadata
	}
	if update.PalletID != nil {
		if *update.PalletID == "" {
			item.PalletID = nil
		} else {
			item.PalletID = update.PalletID
		}
	}

	if err := validateItem(&item); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, translateError(err, "item", id)
	}
	return &item, nil
}

// SetPallet assigns or clears the item's pallet link. A nil palletID clears it.
func (s *ItemStore) SetPallet(ctx context.Context, id string, palletID *string) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "item", id)
	}

	item.PalletID = palletID
	if err := s.db.WithContext(ctx).Model(&item).Update("pallet_id", palletID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("item", id)
	}
	return nil
}

// Stats aggregates for the dashboard summary.
type ItemStats struct {
	TotalItems    int64           `json:"totalItems"`
	ActiveItems   int64           `json:"activeItems"`
	LowStockItems int64           `json:"lowStockItems"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

func (s *ItemStore) Stats(ctx context.Context) (*ItemStats, error) {
	stats := &ItemStats{TotalValue: decimal.Zero}

	if err := s.db.WithContext(ctx).Model(&models.Item{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("status = ?", models.ItemStatusActive).Count(&stats.ActiveItems).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("quantity <= min_quantity").Count(&stats.LowStockItems).Error; err != nil {
		return nil, err
	}

	var totalValue *string
	err := s.db.WithContext(ctx).Model(&models.Item{}).
		Select("SUM(price)").
		Where("status = ?", models.ItemStatusActive).
		Scan(&totalValue).Error
	if err != nil {
		return nil, err
	}
	if totalValue != nil {
		value, err := decimal.NewFromString(*totalValue)
		if err != nil {
			return nil, err
		}
		stats.TotalValue = value
	}
	return stats, nil
}
