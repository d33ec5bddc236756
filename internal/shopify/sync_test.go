package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartshelf/internal/apperrors"
	"smartshelf/internal/audit"
	"smartshelf/internal/database/models"
	"smartshelf/internal/events"
	"smartshelf/internal/store"
)

// fakeShopify serves the handful of admin-API endpoints the syncer touches.
type fakeShopify struct {
	mu            sync.Mutex
	products      []Product
	variants      map[string]Variant
	locations     []Location
	inventorySets []inventoryLevelRequest
	failInventory bool
	failProducts  bool
	lastToken     string
}

func (f *fakeShopify) accessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastToken
}

func (f *fakeShopify) inventoryCalls() []inventoryLevelRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]inventoryLevelRequest(nil), f.inventorySets...)
}

func (f *fakeShopify) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/api/2024-01/products.json", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastToken = r.Header.Get("X-Shopify-Access-Token")
		f.mu.Unlock()
		if f.failProducts {
			http.Error(w, `{"errors":"boom"}`, http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(productsResponse{Products: f.products})
	})
	mux.HandleFunc("/admin/api/2024-01/variants/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/admin/api/2024-01/variants/") : len(r.URL.Path)-len(".json")]
		variant, ok := f.variants[id]
		if !ok {
			http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(variantResponse{Variant: variant})
	})
	mux.HandleFunc("/admin/api/2024-01/locations.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(locationsResponse{Locations: f.locations})
	})
	mux.HandleFunc("/admin/api/2024-01/inventory_levels/set.json", func(w http.ResponseWriter, r *http.Request) {
		if f.failInventory {
			http.Error(w, `{"errors":"Internal Server Error"}`, http.StatusInternalServerError)
			return
		}
		var req inventoryLevelRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.inventorySets = append(f.inventorySets, req)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"inventory_level": req})
	})
	return mux
}

// fakeStatsCache counts invalidations so tests can assert the cache is
// dropped after item writes.
type fakeStatsCache struct {
	mu            sync.Mutex
	invalidations int
}

func (f *fakeStatsCache) InvalidateStats(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
}

func (f *fakeStatsCache) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidations
}

type syncFixture struct {
	db     *gorm.DB
	fake   *fakeShopify
	syncer *Syncer
	items  *store.ItemStore
	stats  *fakeStatsCache
}

func newSyncFixture(t *testing.T, fake *fakeShopify) *syncFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Item{}, &models.Pallet{}, &models.Log{}))

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	items := store.NewItemStore(db)
	recorder := audit.NewRecorder(store.NewLogStore(db))
	client := NewClient(srv.URL, "shpat_test")
	stats := &fakeStatsCache{}

	return &syncFixture{
		db:     db,
		fake:   fake,
		syncer: NewSyncer(client, items, recorder, events.NopPublisher{}, stats, logrus.New()),
		items:  items,
		stats:  stats,
	}
}

func testActor() audit.Actor {
	return audit.Actor{Email: "ops@example.com", IPAddress: "10.0.0.1", UserAgent: "test"}
}

func catalogFixture() []Product {
	return []Product{
		{
			ID:       100,
			Title:    "T-Shirt",
			BodyHTML: "<p>Soft cotton</p>",
			Images:   []Image{{ID: 1, Src: "https://cdn.example.com/tshirt.png"}},
			Variants: []Variant{
				{ID: 1001, ProductID: 100, Title: "Small", SKU: "TS-S", Price: "19.99", Barcode: "111", InventoryQuantity: 5},
				{ID: 1002, ProductID: 100, Title: "Large", SKU: "TS-L", Price: "21.99", InventoryQuantity: 2},
			},
		},
		{
			ID:       200,
			Title:    "Mug",
			Variants: []Variant{
				{ID: 2001, ProductID: 200, Title: "Default Title", Price: "9.50", InventoryQuantity: 30},
			},
		},
	}
}

func TestSyncProductsCreates(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{products: catalogFixture()})

	result, err := f.syncer.SyncProducts(context.Background(), testActor())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "shpat_test", f.fake.accessToken())

	item, err := f.items.GetByShopifyVariantID(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "T-Shirt - Small", item.Name)
	assert.Equal(t, "TS-S", item.SKU)
	assert.Equal(t, "19.99", item.Price.StringFixed(2))
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, "https://cdn.example.com/tshirt.png", item.ImageURL)
	require.NotNil(t, item.Barcode)
	assert.Equal(t, "111", *item.Barcode)

	// Single-variant products keep the bare product title.
	mug, err := f.items.GetByShopifyVariantID(context.Background(), "2001")
	require.NoError(t, err)
	assert.Equal(t, "Mug", mug.Name)

	var logs []models.Log
	require.NoError(t, f.db.Where("action = ?", models.ActionShopifySync).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.EqualValues(t, 3, logs[0].Details["created"])
}

func TestSyncProductsIdempotentSecondRun(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{products: catalogFixture()})
	ctx := context.Background()

	_, err := f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)

	result, err := f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 3, result.Updated)

	var count int64
	require.NoError(t, f.db.Model(&models.Item{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestSyncProductsKeepsLocalFields(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{products: catalogFixture()})
	ctx := context.Background()

	_, err := f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)

	item, err := f.items.GetByShopifyVariantID(ctx, "1001")
	require.NoError(t, err)
	location := "Aisle 3"
	_, err = f.items.Update(ctx, item.ID, store.ItemUpdate{Location: &location})
	require.NoError(t, err)

	f.fake.products[0].Variants[0].Price = "24.99"
	_, err = f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)

	got, err := f.items.GetByShopifyVariantID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "24.99", got.Price.StringFixed(2))
	assert.Equal(t, "Aisle 3", got.Location)
	assert.Equal(t, "TS-S", got.SKU)
}

func TestSyncProductsClearsRemovedBarcode(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{products: catalogFixture()})
	ctx := context.Background()

	_, err := f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)

	item, err := f.items.GetByShopifyVariantID(ctx, "1001")
	require.NoError(t, err)
	require.NotNil(t, item.Barcode)

	f.fake.products[0].Variants[0].Barcode = ""
	_, err = f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)

	got, err := f.items.GetByShopifyVariantID(ctx, "1001")
	require.NoError(t, err)
	assert.Nil(t, got.Barcode)
}

func TestSyncProductsInvalidatesStatsCache(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{products: catalogFixture()})
	ctx := context.Background()

	_, err := f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)
	assert.Equal(t, 1, f.stats.count())

	// The second run only updates, but still drops the cache.
	_, err = f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)
	assert.Equal(t, 2, f.stats.count())
}

func TestSyncProductsEmptyCatalogKeepsStatsCache(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{})

	result, err := f.syncer.SyncProducts(context.Background(), testActor())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, f.stats.count())
}

func TestSyncProductsCollectsVariantErrors(t *testing.T) {
	products := catalogFixture()
	products[0].Variants[1].Price = "not-a-price"
	f := newSyncFixture(t, &fakeShopify{products: products})

	result, err := f.syncer.SyncProducts(context.Background(), testActor())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, int64(100), result.Errors[0].ProductID)
	assert.Equal(t, int64(1002), result.Errors[0].VariantID)
	assert.Contains(t, result.Errors[0].Error, "malformed price")
}

func TestSyncProductsUpstreamFailure(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{failProducts: true})

	_, err := f.syncer.SyncProducts(context.Background(), testActor())
	require.Error(t, err)

	var upstream *apperrors.UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestPushInventory(t *testing.T) {
	fake := &fakeShopify{
		products:  catalogFixture(),
		locations: []Location{{ID: 77, Name: "Main"}},
		variants: map[string]Variant{
			"1001": {ID: 1001, InventoryItemID: 555},
		},
	}
	f := newSyncFixture(t, fake)
	ctx := context.Background()

	_, err := f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)
	item, err := f.items.GetByShopifyVariantID(ctx, "1001")
	require.NoError(t, err)

	updated, err := f.syncer.PushInventory(ctx, item.ID, 42, testActor())
	require.NoError(t, err)
	assert.Equal(t, 42, updated.Quantity)

	calls := fake.inventoryCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(77), calls[0].LocationID)
	assert.Equal(t, int64(555), calls[0].InventoryItemID)
	assert.Equal(t, 42, calls[0].Available)

	var logs []models.Log
	require.NoError(t, f.db.Where("action = ?", models.ActionShopifyInventoryUpdate).Find(&logs).Error)
	require.Len(t, logs, 1)

	// One invalidation for the sync, one for the push.
	assert.Equal(t, 2, f.stats.count())
}

func TestPushInventoryUnlinkedItem(t *testing.T) {
	f := newSyncFixture(t, &fakeShopify{})
	ctx := context.Background()

	item := &models.Item{SKU: "LOCAL-1", Name: "Local Only"}
	require.NoError(t, f.items.Create(ctx, item))

	_, err := f.syncer.PushInventory(ctx, item.ID, 5, testActor())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPushInventoryUpstreamFailureLeavesLocalUntouched(t *testing.T) {
	fake := &fakeShopify{
		products:      catalogFixture(),
		locations:     []Location{{ID: 77, Name: "Main"}},
		variants:      map[string]Variant{"1001": {ID: 1001, InventoryItemID: 555}},
		failInventory: true,
	}
	f := newSyncFixture(t, fake)
	ctx := context.Background()

	_, err := f.syncer.SyncProducts(ctx, testActor())
	require.NoError(t, err)
	item, err := f.items.GetByShopifyVariantID(ctx, "1001")
	require.NoError(t, err)

	_, err = f.syncer.PushInventory(ctx, item.ID, 42, testActor())
	require.Error(t, err)

	got, err := f.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	// Only the initial sync invalidated; the failed push wrote nothing.
	assert.Equal(t, 1, f.stats.count())
}
