// Package audit appends one immutable log row per mutating operation.
// Recording must never fail the operation that triggered it; callers decide
// whether to swallow the returned error, and services do.
package audit

import (
	"context"
	"time"

	"smartshelf/internal/database/models"
	"smartshelf/internal/store"
)

// Actor identifies who performed an operation and where the request came from.
type Actor struct {
	Email     string
	IPAddress string
	UserAgent string
}

type Recorder struct {
	logs *store.LogStore
}

func NewRecorder(logs *store.LogStore) *Recorder {
	return &Recorder{logs: logs}
}

// Record writes one audit row. EntityID may be empty for system-level actions.
func (r *Recorder) Record(ctx context.Context, action, entityType, entityID string, actor Actor, details models.JSONMap) error {
	entry := &models.Log{
		Action:     action,
		EntityType: entityType,
		UserEmail:  actor.Email,
		Details:    details,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}
	return r.logs.Create(ctx, entry)
}

// PurgeResult summarizes a retention cleanup run.
type PurgeResult struct {
	DeletedCount int64     `json:"deletedCount"`
	Days         int       `json:"days"`
	CutoffDate   time.Time `json:"cutoffDate"`
}

// PurgeOlderThan deletes every row older than the given number of days, then
// writes the LOG_CLEANUP row documenting the purge. The cleanup row is written
// after the delete so it cannot purge itself.
func (r *Recorder) PurgeOlderThan(ctx context.Context, days int, actor Actor) (*PurgeResult, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := r.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	result := &PurgeResult{DeletedCount: deleted, Days: days, CutoffDate: cutoff}
	err = r.Record(ctx, models.ActionLogCleanup, models.EntitySystem, "", actor, models.JSONMap{
		"deletedCount": deleted,
		"days":         days,
		"cutoffDate":   cutoff,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
