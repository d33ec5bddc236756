package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"smartshelf/internal/database/models"
)

var logSortColumns = map[string]string{
	"action":     "action",
	"entityType": "entity_type",
	"userEmail":  "user_email",
	"createdAt":  "created_at",
}

type LogStore struct {
	db *gorm.DB
}

func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

// LogListParams filters the audit log list.
type LogListParams struct {
	ListParams
	Action     string
	EntityType string
	UserEmail  string
	StartDate  *time.Time
	EndDate    *time.Time
}

func (s *LogStore) Create(ctx context.Context, entry *models.Log) error {
	if entry.Details == nil {
		entry.Details = models.JSONMap{}
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *LogStore) GetByID(ctx context.Context, id string) (*models.Log, error) {
	var entry models.Log
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "log", id)
	}
	return &entry, nil
}

func (s *LogStore) List(ctx context.Context, params LogListParams) ([]models.Log, int64, error) {
	p := params.ListParams.normalized()

	query := s.db.WithContext(ctx).Model(&models.Log{})
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if params.EntityType != "" {
		query = query.Where("entity_type = ?", params.EntityType)
	}
	if params.UserEmail != "" {
		query = query.Where("LOWER(user_email) LIKE ?", searchPattern(params.UserEmail))
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Log
	err := query.Order(orderClause(p.SortBy, p.SortOrder, logSortColumns)).
		Offset(p.offset()).Limit(p.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteOlderThan removes every entry created strictly before cutoff and
// returns the number of rows removed.
func (s *LogStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Log{})
	return result.RowsAffected, result.Error
}

type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type LogStats struct {
	TotalLogs      int64         `json:"totalLogs"`
	ActionCounts   []ActionCount `json:"actionCounts"`
	RecentActivity []models.Log  `json:"recentActivity"`
}

func (s *LogStore) Stats(ctx context.Context) (*LogStats, error) {
	stats := &LogStats{}

	if err := s.db.WithContext(ctx).Model(&models.Log{}).Count(&stats.TotalLogs).Error; err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&models.Log{}).
		Select("action, COUNT(action) AS count").
		Group("action").
		Order("count DESC").
		Limit(10).
		Scan(&stats.ActionCounts).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Log{}).
		Order("created_at DESC").
		Limit(10).
		Find(&stats.RecentActivity).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
