package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"smartshelf/internal/apperrors"
	"smartshelf/internal/database/models"
)

const defaultCapacity = 100

var palletSortColumns = map[string]string{
	"palletNumber": "pallet_number",
	"location":     "location",
	"status":       "status",
	"capacity":     "capacity",
	"currentLoad":  "current_load",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

type PalletStore struct {
	db *gorm.DB
}

func NewPalletStore(db *gorm.DB) *PalletStore {
	return &PalletStore{db: db}
}

// PalletListParams filters the pallet list. Search matches pallet number and
// location as case-insensitive substrings.
type PalletListParams struct {
	ListParams
	Status string
}

// PalletUpdate carries a partial update; nil fields are left untouched.
type PalletUpdate struct {
	PalletNumber *string        `json:"palletNumber"`
	Location     *string        `json:"location"`
	Status       *string        `json:"status"`
	Capacity     *int           `json:"capacity"`
	CurrentLoad  *int           `json:"currentLoad"`
	Notes        *string        `json:"notes"`
	Metadata     models.JSONMap `json:"metadata"`
}

func validatePallet(pallet *models.Pallet) error {
	var fields []string
	if strings.TrimSpace(pallet.PalletNumber) == "" {
		fields = append(fields, "palletNumber")
	}
	if pallet.Capacity != nil && *pallet.Capacity < 0 {
		fields = append(fields, "capacity")
	}
	if pallet.CurrentLoad < 0 {
		fields = append(fields, "currentLoad")
	}
	if len(fields) > 0 {
		return apperrors.NewValidation("invalid pallet", fields...)
	}

	for _, s := range models.PalletStatuses() {
		if pallet.Status == s {
			return nil
		}
	}
	return apperrors.NewValidation("invalid pallet status: "+pallet.Status, "status")
}

func (s *PalletStore) Create(ctx context.Context, pallet *models.Pallet) error {
	if pallet.Status == "" {
		pallet.Status = models.PalletStatusAvailable
	}
	// A nil capacity takes the default; an explicit zero is kept as-is.
	if pallet.Capacity == nil {
		capacity := defaultCapacity
		pallet.Capacity = &capacity
	}
	if pallet.Metadata == nil {
		pallet.Metadata = models.JSONMap{}
	}

	if err := validatePallet(pallet); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Pallet{}).Where("pallet_number = ?", pallet.PalletNumber).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("pallet with number " + pallet.PalletNumber + " already exists")
	}

	if err := s.db.WithContext(ctx).Create(pallet).Error; err != nil {
		return translateError(err, "pallet", "")
	}
	return nil
}

func (s *PalletStore) GetByID(ctx context.Context, id string) (*models.Pallet, error) {
	var pallet models.Pallet
	if err := s.db.WithContext(ctx).Preload("Items").First(&pallet, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "pallet", id)
	}
	return &pallet, nil
}

func (s *PalletStore) List(ctx context.Context, params PalletListParams) ([]models.Pallet, int64, error) {
	p := params.ListParams.normalized()

	query := s.db.WithContext(ctx).Model(&models.Pallet{})
	if params.Search != "" {
		pattern := searchPattern(params.Search)
		query = query.Where(
			"LOWER(pallet_number) LIKE ? OR LOWER(location) LIKE ?",
			pattern, pattern,
		)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pallets []models.Pallet
	err := query.Preload("Items").
		Order(orderClause(p.SortBy, p.SortOrder, palletSortColumns)).
		Offset(p.offset()).Limit(p.Limit).
		Find(&pallets).Error
	if err != nil {
		return nil, 0, err
	}
	return pallets, total, nil
}

func (s *PalletStore) Update(ctx context.Context, id string, update PalletUpdate) (*models.Pallet, error) {
	var pallet models.Pallet
	if err := s.db.WithContext(ctx).First(&pallet, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "pallet", id)
	}

	if update.PalletNumber != nil && *update.PalletNumber != pallet.PalletNumber {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Pallet{}).Where("pallet_number = ? AND id <> ?", *update.PalletNumber, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.NewConflict("pallet with number " + *update.PalletNumber + " already exists")
		}
		pallet.PalletNumber = *update.PalletNumber
	}
	if update.Location != nil {
		pallet.Location = *update.Location
	}
	if update.Status != nil {
		pallet.Status = *update.Status
	}
	if update.Capacity != nil {
		pallet.Capacity = update.Capacity
	}
	if update.CurrentLoad != nil {
		pallet.CurrentLoad = *update.CurrentLoad
	}
	if update.Notes != nil {
		pallet.Notes = *update.Notes
	}
	if update.Metadata != nil {
		pallet.Metadata = update.Metadata
	}

	if err := validatePallet(&pallet); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&pallet).Error; err != nil {
		return nil, translateError(err, "pallet", id)
	}
	return &pallet, nil
}

// Delete removes an empty pallet. Deleting a pallet that still has linked
// items is rejected, never cascaded.
func (s *PalletStore) Delete(ctx context.Context, id string) error {
	var pallet models.Pallet
	if err := s.db.WithContext(ctx).First(&pallet, "id = ?", id).Error; err != nil {
		return translateError(err, "pallet", id)
	}

	var itemCount int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Where("pallet_id = ?", id).Count(&itemCount).Error; err != nil {
		return err
	}
	if itemCount > 0 {
		return apperrors.NewConflict("cannot delete pallet with items, remove items first")
	}

	return s.db.WithContext(ctx).Delete(&models.Pallet{}, "id = ?", id).Error
}

func (s *PalletStore) Count(ctx context.Context, status string) (int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Pallet{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
