package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"smartshelf/config"
	"smartshelf/internal/audit"
	"smartshelf/internal/database/models"
	"smartshelf/internal/events"
	"smartshelf/internal/store"
)

type PalletService struct {
	pallets   *store.PalletStore
	items     *store.ItemStore
	recorder  *audit.Recorder
	publisher events.Publisher
	locks     *keyedMutex
	log       *logrus.Logger
}

func NewPalletService(pallets *store.PalletStore, items *store.ItemStore, recorder *audit.Recorder, publisher events.Publisher, log *logrus.Logger) *PalletService {
	return &PalletService{
		pallets:   pallets,
		items:     items,
		recorder:  recorder,
		publisher: publisher,
		locks:     newKeyedMutex(),
		log:       log,
	}
}

func (s *PalletService) recordAudit(ctx context.Context, action, entityID string, actor audit.Actor, details models.JSONMap) {
	if err := s.recorder.Record(ctx, action, models.EntityPallet, entityID, actor, details); err != nil {
		config.LogError(s.log, "service", "recordAudit", action, entityID, err)
	}
}

func (s *PalletService) ListPallets(ctx context.Context, params store.PalletListParams) ([]models.Pallet, int64, error) {
	return s.pallets.List(ctx, params)
}

func (s *PalletService) GetPallet(ctx context.Context, id string) (*models.Pallet, error) {
	return s.pallets.GetByID(ctx, id)
}

func (s *PalletService) CreatePallet(ctx context.Context, pallet *models.Pallet, actor audit.Actor) (*models.Pallet, error) {
	if err := s.pallets.Create(ctx, pallet); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, models.ActionCreate, pallet.ID, actor, models.JSONMap{"pallet": pallet})
	s.publisher.Publish(events.EventPalletCreated, pallet)
	return pallet, nil
}

func (s *PalletService) UpdatePallet(ctx context.Context, id string, update store.PalletUpdate, actor audit.Actor) (*models.Pallet, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	before, err := s.pallets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pallet, err := s.pallets.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, models.ActionUpdate, pallet.ID, actor, models.JSONMap{
		"before": before,
		"after":  pallet,
	})
	s.publisher.Publish(events.EventPalletUpdated, pallet)
	return pallet, nil
}

// DeletePallet removes an empty pallet. A pallet with linked items is a
// conflict; nothing is deleted and nothing cascades.
func (s *PalletService) DeletePallet(ctx context.Context, id string, actor audit.Actor) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	pallet, err := s.pallets.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.pallets.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, models.ActionDelete, id, actor, models.JSONMap{"pallet": pallet})
	s.publisher.Publish(events.EventPalletDeleted, map[string]string{"id": id})
	return nil
}

// AssignItem links the item to the pallet. Capacity and current load are
// advisory and deliberately not checked here.
func (s *PalletService) AssignItem(ctx context.Context, palletID, itemID string, actor audit.Actor) (*models.Pallet, *models.Item, error) {
	s.locks.Lock(itemID)
	defer s.locks.Unlock(itemID)

	pallet, err := s.pallets.GetByID(ctx, palletID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, nil, err
	}

	item, err := s.items.SetPallet(ctx, itemID, &pallet.ID)
	if err != nil {
		return nil, nil, err
	}

	s.recordAudit(ctx, models.ActionAssignItem, pallet.ID, actor, models.JSONMap{
		"palletId": pallet.ID,
		"itemId":   item.ID,
	})
	s.publisher.Publish(events.EventPalletItemAssigned, map[string]any{
		"pallet": pallet,
		"item":   item,
	})
	return pallet, item, nil
}

// RemoveItem clears the item's pallet link. The pallet id is only used for
// the audit trail and the event payload, matching the route shape.
func (s *PalletService) RemoveItem(ctx context.Context, palletID, itemID string, actor audit.Actor) (*models.Item, error) {
	s.locks.Lock(itemID)
	defer s.locks.Unlock(itemID)

	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	item, err := s.items.SetPallet(ctx, itemID, nil)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, models.ActionRemoveItem, palletID, actor, models.JSONMap{
		"palletId": palletID,
		"itemId":   item.ID,
	})
	s.publisher.Publish(events.EventPalletItemRemoved, map[string]string{
		"palletId": palletID,
		"itemId":   item.ID,
	})
	return item, nil
}
