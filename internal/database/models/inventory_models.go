package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item statuses.
const (
	ItemStatusActive       = "active"
	ItemStatusInactive     = "inactive"
	ItemStatusDiscontinued = "discontinued"
)

// Pallet statuses.
const (
	PalletStatusAvailable   = "available"
	PalletStatusInUse       = "in_use"
	PalletStatusFull        = "full"
	PalletStatusMaintenance = "maintenance"
)

type Item struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	SKU              string          `gorm:"column:sku;size:255;uniqueIndex;not null" json:"sku"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Description      string          `gorm:"type:text" json:"description"`
	Category         string          `gorm:"size:255" json:"category"`
	Quantity         int             `gorm:"not null;default:0" json:"quantity"`
	MinQuantity      int             `gorm:"column:min_quantity;not null;default:0" json:"minQuantity"`
	MaxQuantity      *int            `gorm:"column:max_quantity" json:"maxQuantity"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Cost             decimal.Decimal `gorm:"type:decimal(10,2)" json:"cost"`
	Location         string          `gorm:"size:255" json:"location"`
	Barcode          *string         `gorm:"size:255;uniqueIndex" json:"barcode"`
	ShopifyProductID string          `gorm:"column:shopify_product_id;size:255" json:"shopifyProductId"`
	ShopifyVariantID string          `gorm:"column:shopify_variant_id;size:255" json:"shopifyVariantId"`
	ImageURL         string          `gorm:"column:image_url;size:255" json:"imageUrl"`
	Status           string          `gorm:"size:50;default:active" json:"status"`
	Metadata         JSONMap         `gorm:"type:text" json:"metadata"`
	PalletID         *string         `gorm:"column:pallet_id;size:36;index" json:"palletId"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`

	Pallet *Pallet `gorm:"foreignKey:PalletID" json:"pallet,omitempty"`
}

func (Item) TableName() string { return "items" }

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i *Item) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

type Pallet struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	PalletNumber string    `gorm:"column:pallet_number;size:255;uniqueIndex;not null" json:"palletNumber"`
	Location     string    `gorm:"size:255" json:"location"`
	Status       string    `gorm:"size:50;default:available" json:"status"`
	Capacity     *int      `gorm:"not null;default:100" json:"capacity"`
	CurrentLoad  int       `gorm:"column:current_load;not null;default:0" json:"currentLoad"`
	Notes        string    `gorm:"type:text" json:"notes"`
	Metadata     JSONMap   `gorm:"type:text" json:"metadata"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Items []Item `gorm:"foreignKey:PalletID" json:"items,omitempty"`
}

func (Pallet) TableName() string { return "pallets" }

func (p *Pallet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func ItemStatuses() []string {
	return []string{ItemStatusActive, ItemStatusInactive, ItemStatusDiscontinued}
}

func PalletStatuses() []string {
	return []string{PalletStatusAvailable, PalletStatusInUse, PalletStatusFull, PalletStatusMaintenance}
}
