package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions.
const (
	ActionCreate                 = "CREATE"
	ActionUpdate                 = "UPDATE"
	ActionDelete                 = "DELETE"
	ActionQuantityUpdate         = "QUANTITY_UPDATE"
	ActionAssignItem             = "ASSIGN_ITEM"
	ActionRemoveItem             = "REMOVE_ITEM"
	ActionShopifySync            = "SHOPIFY_SYNC"
	ActionShopifyInventoryUpdate = "SHOPIFY_INVENTORY_UPDATE"
	ActionLogCleanup             = "LOG_CLEANUP"
)

// Audit entity types.
const (
	EntityItem   = "Item"
	EntityPallet = "Pallet"
	EntitySystem = "System"
)

// Log is an append-only audit record of one mutating action. Rows are never
// updated; the only delete path is age-based retention cleanup.
type Log struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Action     string    `gorm:"size:100;not null;index" json:"action"`
	EntityType string    `gorm:"column:entity_type;size:100;not null;index" json:"entityType"`
	EntityID   *string   `gorm:"column:entity_id;size:255" json:"entityId"`
	UserEmail  string    `gorm:"column:user_email;size:255;not null" json:"userEmail"`
	Details    JSONMap   `gorm:"type:text" json:"details"`
	IPAddress  string    `gorm:"column:ip_address;size:255" json:"ipAddress"`
	UserAgent  string    `gorm:"column:user_agent;size:512" json:"userAgent"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Log) TableName() string { return "logs" }

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
