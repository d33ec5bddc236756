package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartshelf/internal/apperrors"
	"smartshelf/internal/audit"
	"smartshelf/internal/database/models"
	"smartshelf/internal/store"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu       sync.Mutex
	events   []string
	payloads []any
}

func (p *recordingPublisher) Publish(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.payloads = append(p.payloads, payload)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type inventoryFixture struct {
	db        *gorm.DB
	service   *InventoryService
	publisher *recordingPublisher
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Item{}, &models.Pallet{}, &models.Log{}))

	publisher := &recordingPublisher{}
	items := store.NewItemStore(db)
	recorder := audit.NewRecorder(store.NewLogStore(db))
	logger := logrus.New()

	return &inventoryFixture{
		db:        db,
		service:   NewInventoryService(items, recorder, publisher, nil, logger),
		publisher: publisher,
	}
}

func testActor() audit.Actor {
	return audit.Actor{Email: "ops@example.com", IPAddress: "10.0.0.1", UserAgent: "test"}
}

func (f *inventoryFixture) auditRows(t *testing.T, action string) []models.Log {
	t.Helper()
	var rows []models.Log
	require.NoError(t, f.db.Where("action = ?", action).Find(&rows).Error)
	return rows
}

func TestCreateItemAuditsAndPublishes(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "Widget"}, testActor())
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	rows := f.auditRows(t, models.ActionCreate)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].EntityID)
	assert.Equal(t, item.ID, *rows[0].EntityID)
	assert.Equal(t, "ops@example.com", rows[0].UserEmail)

	assert.Equal(t, []string{"inventory:created"}, f.publisher.Events())
}

func TestCreateItemConflictNoAuditNoEvent(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "First"}, testActor())
	require.NoError(t, err)

	_, err = f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "Second"}, testActor())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	assert.Len(t, f.auditRows(t, models.ActionCreate), 1)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestUpdateItemRecordsBeforeAfter(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "Old Name"}, testActor())
	require.NoError(t, err)

	name := "New Name"
	updated, err := f.service.UpdateItem(ctx, item.ID, store.ItemUpdate{Name: &name}, testActor())
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	rows := f.auditRows(t, models.ActionUpdate)
	require.Len(t, rows, 1)
	before := rows[0].Details["before"].(map[string]interface{})
	after := rows[0].Details["after"].(map[string]interface{})
	assert.Equal(t, "Old Name", before["name"])
	assert.Equal(t, "New Name", after["name"])

	assert.Contains(t, f.publisher.Events(), "inventory:updated")
}

func TestUpdateItemNotFound(t *testing.T) {
	f := newInventoryFixture(t)

	name := "whatever"
	_, err := f.service.UpdateItem(context.Background(), "missing", store.ItemUpdate{Name: &name}, testActor())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, f.publisher.Events())
}

func TestDeleteItemPublishesID(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "Doomed"}, testActor())
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteItem(ctx, item.ID, testActor()))

	_, err = f.service.GetItem(ctx, item.ID)
	assert.True(t, apperrors.IsNotFound(err))

	rows := f.auditRows(t, models.ActionDelete)
	require.Len(t, rows, 1)
	assert.Equal(t, item.ID, *rows[0].EntityID)

	events := f.publisher.Events()
	assert.Equal(t, "inventory:deleted", events[len(events)-1])
}

func TestAdjustQuantityAdd(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "Stocked", Quantity: 3}, testActor())
	require.NoError(t, err)

	updated, err := f.service.AdjustQuantity(ctx, item.ID, 5, AdjustAdd, testActor())
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Quantity)

	rows := f.auditRows(t, models.ActionQuantityUpdate)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3, rows[0].Details["oldQuantity"])
	assert.EqualValues(t, 8, rows[0].Details["newQuantity"])
	assert.Equal(t, AdjustAdd, rows[0].Details["operation"])
}

func TestAdjustQuantitySubtractBelowZeroRejected(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "Scarce", Quantity: 3}, testActor())
	require.NoError(t, err)

	_, err = f.service.AdjustQuantity(ctx, item.ID, 5, AdjustSubtract, testActor())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// Quantity is never clamped; the stored value is untouched.
	got, err := f.service.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	assert.Empty(t, f.auditRows(t, models.ActionQuantityUpdate))
}

func TestAdjustQuantitySet(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "Counted", Quantity: 9}, testActor())
	require.NoError(t, err)

	updated, err := f.service.AdjustQuantity(ctx, item.ID, 4, AdjustSet, testActor())
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
}

func TestAdjustQuantityInvalidMode(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	item, err := f.service.CreateItem(ctx, &models.Item{SKU: "SKU-1", Name: "X"}, testActor())
	require.NoError(t, err)

	_, err = f.service.AdjustQuantity(ctx, item.ID, 1, "multiply", testActor())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestInvalidateStatsWithoutRedis(t *testing.T) {
	f := newInventoryFixture(t)

	assert.NotPanics(t, func() {
		f.service.InvalidateStats(context.Background())
	})
}

func TestGetStats(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateItem(ctx, &models.Item{
		SKU: "SKU-1", Name: "A", Quantity: 10, MinQuantity: 1,
		Price: decimal.NewFromFloat(3.50),
	}, testActor())
	require.NoError(t, err)

	stats, err := f.service.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalItems)
	assert.Equal(t, int64(1), stats.ActiveItems)
	assert.True(t, stats.TotalValue.Equal(decimal.NewFromFloat(3.50)))
}
