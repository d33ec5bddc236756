package store

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartshelf/internal/database/models"
)

// openTestDB opens a fresh in-memory database per test. Connections are
// capped at one so every query sees the same in-memory instance.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Item{}, &models.Pallet{}, &models.Log{}))
	return db
}

func TestOrderClause(t *testing.T) {
	columns := map[string]string{"name": "name", "createdAt": "created_at"}

	require.Equal(t, "name ASC", orderClause("name", "asc", columns))
	require.Equal(t, "name DESC", orderClause("name", "DESC", columns))
	require.Equal(t, "created_at DESC", orderClause("nonsense", "DESC", columns))
	require.Equal(t, "created_at DESC", orderClause("", "", columns))
}

func TestListParamsNormalized(t *testing.T) {
	p := ListParams{}.normalized()
	require.Equal(t, 1, p.Page)
	require.Equal(t, 50, p.Limit)

	p = ListParams{Page: 3, Limit: 10}.normalized()
	require.Equal(t, 20, p.offset())

	p = ListParams{Limit: 9999}.normalized()
	require.Equal(t, maxLimit, p.Limit)
}
