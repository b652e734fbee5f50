package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/internal/products"
	"github.com/omarhijazi/souqline-backend/pkg/db/models"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  cost_price NUMERIC NOT NULL DEFAULT 0,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  has_variants INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  external_id TEXT,
  unmatched INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  value TEXT NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedInventoryProduct(t *testing.T, db *gorm.DB, stock int, hasVariants bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		SupplierID:    uuid.New(),
		SKU:           "sku-" + uuid.NewString(),
		Name:          "widget",
		Price:         decimal.NewFromInt(25),
		CostPrice:     decimal.NewFromInt(15),
		StockQuantity: stock,
		HasVariants:   hasVariants,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRestoreStockRoundTrip(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := products.NewRepository(db)
	adjuster, err := NewAdjuster(repo, nil)
	require.NoError(t, err)

	product := seedInventoryProduct(t, db, 10, false)

	deltas := adjuster.Add(context.Background(), []Line{{ProductID: product.ID, Quantity: 4}})
	require.Len(t, deltas, 1)
	assert.Equal(t, 10, deltas[0].Before)
	assert.Equal(t, 14, deltas[0].After)

	deltas = adjuster.Reverse(context.Background(), []Line{{ProductID: product.ID, Quantity: 4}})
	require.Len(t, deltas, 1)
	assert.Equal(t, 10, deltas[0].After)

	refreshed, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, refreshed.StockQuantity)
}

func TestRestoreAdjustsVariantAndAggregate(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := products.NewRepository(db)
	adjuster, err := NewAdjuster(repo, nil)
	require.NoError(t, err)

	product := seedInventoryProduct(t, db, 10, true)
	variant := &models.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		VariantID:     "size",
		Value:         "large",
		StockQuantity: 3,
	}
	require.NoError(t, db.Create(variant).Error)

	variantID := "size"
	value := "large"
	deltas := adjuster.Restore(context.Background(), []Line{{
		ProductID:    product.ID,
		Quantity:     2,
		VariantID:    &variantID,
		VariantValue: &value,
	}})
	require.Len(t, deltas, 1)
	assert.False(t, deltas[0].VariantMissing)
	assert.False(t, deltas[0].Skipped)

	refreshed, err := repo.FindByIDWithVariants(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, refreshed.StockQuantity)
	require.Len(t, refreshed.Variants, 1)
	assert.Equal(t, 5, refreshed.Variants[0].StockQuantity)
}

func TestRestoreVariantFallbackToAggregate(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := products.NewRepository(db)
	adjuster, err := NewAdjuster(repo, nil)
	require.NoError(t, err)

	product := seedInventoryProduct(t, db, 10, true)

	variantID := "color"
	value := "teal"
	deltas := adjuster.Restore(context.Background(), []Line{{
		ProductID:    product.ID,
		Quantity:     3,
		VariantID:    &variantID,
		VariantValue: &value,
	}})
	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].VariantMissing, "stale variant must be reported")
	assert.False(t, deltas[0].Skipped)

	refreshed, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, refreshed.StockQuantity, "aggregate still moves on variant fallback")
}

func TestReverseClampsAtZero(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := products.NewRepository(db)
	adjuster, err := NewAdjuster(repo, nil)
	require.NoError(t, err)

	product := seedInventoryProduct(t, db, 2, false)

	deltas := adjuster.Reverse(context.Background(), []Line{{ProductID: product.ID, Quantity: 5}})
	require.Len(t, deltas, 1)
	assert.Equal(t, 0, deltas[0].After)

	refreshed, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed.StockQuantity)
}

func TestMissingProductIsSkippedNotFatal(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := products.NewRepository(db)
	adjuster, err := NewAdjuster(repo, nil)
	require.NoError(t, err)

	product := seedInventoryProduct(t, db, 10, false)

	deltas := adjuster.Restore(context.Background(), []Line{
		{ProductID: uuid.New(), Quantity: 3},
		{ProductID: product.ID, Quantity: 2},
	})
	require.Len(t, deltas, 2)
	assert.True(t, deltas[0].Skipped)
	assert.False(t, deltas[1].Skipped)

	refreshed, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, refreshed.StockQuantity, "other lines still apply")
}
