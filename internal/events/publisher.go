// Package events fans live change notifications out to connected dashboard
// clients. Delivery is best-effort: nothing is persisted, a disconnected
// client simply misses whatever was published while it was away.
package events

import "encoding/json"

// Publisher broadcasts a named event with a JSON payload to all subscribers.
// Services hold a Publisher injected at construction.
type Publisher interface {
	Publish(event string, payload any)
}

// Event names pushed to the dashboard.
const (
	EventInventoryCreated         = "inventory:created"
	EventInventoryUpdated         = "inventory:updated"
	EventInventoryDeleted         = "inventory:deleted"
	EventInventoryQuantityUpdated = "inventory:quantity_updated"
	EventPalletCreated            = "pallet:created"
	EventPalletUpdated            = "pallet:updated"
	EventPalletDeleted            = "pallet:deleted"
	EventPalletItemAssigned       = "pallet:item_assigned"
	EventPalletItemRemoved        = "pallet:item_removed"
	EventShopifySynced            = "shopify:synced"
)

type message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func encode(event string, payload any) ([]byte, error) {
	return json.Marshal(message{Event: event, Payload: payload})
}

// NopPublisher discards every event. Used when no hub is wired.
type NopPublisher struct{}

func (NopPublisher) Publish(string, any) {}
