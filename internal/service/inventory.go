// Package service orchestrates inventory and pallet mutations: store write
// first, then the audit row, then the live event, in that order. The store
// write is the commit point; a failed audit row or missed event is logged and
// never rolls the mutation back.
package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"smartshelf/config"
	"smartshelf/internal/apperrors"
	"smartshelf/internal/audit"
	"smartshelf/internal/database/models"
	"smartshelf/internal/events"
	"smartshelf/internal/store"
)

const (
	statsCacheKey = "inventory:stats"
	statsCacheTTL = 5 * time.Minute
)

// Quantity adjustment modes.
const (
	AdjustAdd      = "add"
	AdjustSubtract = "subtract"
	AdjustSet      = "set"
)

type InventoryService struct {
	items     *store.ItemStore
	recorder  *audit.Recorder
	publisher events.Publisher
	redis     *redis.Client
	locks     *keyedMutex
	log       *logrus.Logger
}

// NewInventoryService wires the store, recorder and publisher together.
// redisClient may be nil; caching is skipped without it.
func NewInventoryService(items *store.ItemStore, recorder *audit.Recorder, publisher events.Publisher, redisClient *redis.Client, log *logrus.Logger) *InventoryService {
	return &InventoryService{
		items:     items,
		recorder:  recorder,
		publisher: publisher,
		redis:     redisClient,
		locks:     newKeyedMutex(),
		log:       log,
	}
}

// recordAudit swallows audit failures: the mutation already committed.
func (s *InventoryService) recordAudit(ctx context.Context, action, entityID string, actor audit.Actor, details models.JSONMap) {
	if err := s.recorder.Record(ctx, action, models.EntityItem, entityID, actor, details); err != nil {
		config.LogError(s.log, "service", "recordAudit", action, entityID, err)
	}
}

func (s *InventoryService) invalidateStatsCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, statsCacheKey)
}

// InvalidateStats drops the cached stats summary. Exposed for components that
// write items outside this service, such as the catalog sync.
func (s *InventoryService) InvalidateStats(ctx context.Context) {
	s.invalidateStatsCache(ctx)
}

func (s *InventoryService) ListItems(ctx context.Context, params store.ItemListParams) ([]models.Item, int64, error) {
	return s.items.List(ctx, params)
}

func (s *InventoryService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *InventoryService) CreateItem(ctx context.Context, item *models.Item, actor audit.Actor) (*models.Item, error) {
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, models.ActionCreate, item.ID, actor, models.JSONMap{"item": item})
	s.publisher.Publish(events.EventInventoryCreated, item)
	s.invalidateStatsCache(ctx)
	return item, nil
}

func (s *InventoryService) UpdateItem(ctx context.Context, id string, update store.ItemUpdate, actor audit.Actor) (*models.Item, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	before, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := s.items.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, models.ActionUpdate, item.ID, actor, models.JSONMap{
		"before": before,
		"after":  item,
	})
	s.publisher.Publish(events.EventInventoryUpdated, item)
	s.invalidateStatsCache(ctx)
	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, id string, actor audit.Actor) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, models.ActionDelete, id, actor, models.JSONMap{"item": item})
	s.publisher.Publish(events.EventInventoryDeleted, map[string]string{"id": id})
	s.invalidateStatsCache(ctx)
	return nil
}

// AdjustQuantity applies an add/subtract/set adjustment. A result below zero
// rejects the whole operation; the quantity is never clamped.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id string, amount int, mode string, actor audit.Actor) (*models.Item, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldQuantity := item.Quantity
	var newQuantity int
	switch mode {
	case AdjustAdd:
		newQuantity = oldQuantity + amount
	case AdjustSubtract:
		newQuantity = oldQuantity - amount
	case AdjustSet:
		newQuantity = amount
	default:
		return nil, apperrors.NewValidation("invalid adjustment operation: "+mode, "operation")
	}

	if newQuantity < 0 {
		return nil, apperrors.NewValidation("quantity cannot be negative", "quantity")
	}

	item, err = s.items.Update(ctx, id, store.ItemUpdate{Quantity: &newQuantity})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, models.ActionQuantityUpdate, item.ID, actor, models.JSONMap{
		"oldQuantity": oldQuantity,
		"newQuantity": newQuantity,
		"operation":   mode,
	})
	s.publisher.Publish(events.EventInventoryQuantityUpdated, item)
	s.invalidateStatsCache(ctx)
	return item, nil
}

// GetStats serves the dashboard summary, read through the redis cache when
// one is wired. Read-only: no audit row, no event.
func (s *InventoryService) GetStats(ctx context.Context) (*store.ItemStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats store.ItemStats
			if err := unmarshalStats(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.items.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if encoded, err := marshalStats(stats); err == nil {
			_ = s.redis.Set(ctx, statsCacheKey, encoded, statsCacheTTL)
		}
	}
	return stats, nil
}
