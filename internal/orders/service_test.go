package orders

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

	"github.com/omarhijazi/souqline-backend/internal/inventory"
	"github.com/omarhijazi/souqline-backend/internal/packages"
	"github.com/omarhijazi/souqline-backend/internal/products"
	"github.com/omarhijazi/souqline-backend/internal/wallet"
	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  supplier_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  package_id TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  shipping_cost NUMERIC NOT NULL DEFAULT 0,
  commission NUMERIC NOT NULL DEFAULT 0,
  marketer_profit NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  profits_distributed INTEGER NOT NULL DEFAULT 0,
  shipping_company TEXT,
  shipping_city TEXT,
  shipping_village TEXT,
  external_order_id TEXT,
  external_store_id TEXT,
  confirmed_at DATETIME,
  confirmed_by TEXT,
  processing_at DATETIME,
  processing_by TEXT,
  shipped_at DATETIME,
  shipped_by TEXT,
  delivered_at DATETIME,
  delivered_by TEXT,
  cancelled_at DATETIME,
  cancelled_by TEXT,
  cancel_reason TEXT,
  returned_at DATETIME,
  returned_by TEXT,
  return_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  variant_id TEXT,
  variant_value TEXT,
  created_at DATETIME
);`,
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
		`CREATE TABLE IF NOT EXISTS wallet_entries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reason TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS shipping_packages (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  tracking_number TEXT,
  api_success INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, db *gorm.DB, adminID uuid.UUID) (Service, Repository) {
	t.Helper()

	repo := NewRepository(db)

	adjuster, err := inventory.NewAdjuster(products.NewRepository(db), nil)
	require.NoError(t, err)

	walletSvc, err := wallet.NewService(wallet.NewRepository(db), testTxRunner{db: db}, adminID, nil)
	require.NoError(t, err)

	packagesSvc, err := packages.NewService(db, nil, nil)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Adjuster: adjuster,
		Wallet:   walletSvc,
		Packages: packagesSvc,
	})
	require.NoError(t, err)
	return svc, repo
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		SupplierID:    uuid.New(),
		SKU:           "sku-" + uuid.NewString(),
		Name:          "test product",
		Price:         decimal.NewFromInt(100),
		CostPrice:     decimal.NewFromInt(60),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, items []models.OrderItem) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    "SO-" + uuid.NewString()[:8],
		Status:         status,
		SupplierID:     uuid.New(),
		CustomerID:     uuid.New(),
		Subtotal:       decimal.NewFromInt(100),
		ShippingCost:   decimal.NewFromInt(10),
		Commission:     decimal.NewFromInt(10),
		MarketerProfit: decimal.NewFromInt(4),
		Total:          decimal.NewFromInt(110),
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
	}
	order.Items = items
	require.NoError(t, db.Create(order).Error)
	return order
}

func runAction(t *testing.T, svc Service, order *models.Order, action enums.OrderAction, reason string) OrderOutcome {
	t.Helper()
	result, err := svc.BulkAction(context.Background(), BulkActionInput{
		OrderIDs: []uuid.UUID{order.ID},
		Action:   action,
		ActorID:  uuid.New(),
		Reason:   reason,
	})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	return result.Outcomes[0]
}

func TestBulkActionFullLifecycle(t *testing.T) {
	db := setupOrdersTestDB(t)
	adminID := uuid.New()
	svc, repo := newTestService(t, db, adminID)

	product := seedProduct(t, db, 20)
	order := seedOrder(t, db, enums.OrderStatusPending, []models.OrderItem{
		{ProductID: product.ID, Name: product.Name, Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
	})

	outcome := runAction(t, svc, order, enums.OrderActionConfirm, "")
	require.Empty(t, outcome.Error)
	assert.Equal(t, enums.OrderStatusConfirmed, outcome.Status)

	outcome = runAction(t, svc, order, enums.OrderActionProcess, "")
	require.Empty(t, outcome.Error)

	outcome = runAction(t, svc, order, enums.OrderActionShip, "")
	require.Empty(t, outcome.Error)
	assert.Equal(t, enums.OrderStatusShipped, outcome.Status)

	shipped, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, shipped.PackageID, "ship must auto-create a package")
	require.NotNil(t, shipped.ShippedAt)

	var pkg models.ShippingPackage
	require.NoError(t, db.First(&pkg, "id = ?", *shipped.PackageID).Error)
	assert.Equal(t, order.ID, pkg.OrderID)

	outcome = runAction(t, svc, order, enums.OrderActionDeliver, "")
	require.Empty(t, outcome.Error)

	delivered, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.ProfitsDistributed)

	var entries []models.WalletEntry
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&entries).Error)
	assert.Len(t, entries, 2, "commission and marketer profit credits")

	// Delivered is terminal for cancel; only return remains.
	outcome = runAction(t, svc, order, enums.OrderActionCancel, "changed mind")
	assert.Contains(t, outcome.Error, "illegal transition")

	final, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, final.Status)
}

func TestBulkActionCancelRestoresStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, repo := newTestService(t, db, uuid.New())

	productA := seedProduct(t, db, 10)
	productB := seedProduct(t, db, 7)
	order := seedOrder(t, db, enums.OrderStatusConfirmed, []models.OrderItem{
		{ProductID: productA.ID, Name: productA.Name, Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
		{ProductID: productB.ID, Name: productB.Name, Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
	})

	outcome := runAction(t, svc, order, enums.OrderActionCancel, "customer request")
	require.Empty(t, outcome.Error)
	assert.Equal(t, enums.OrderStatusCancelled, outcome.Status)

	productsRepo := products.NewRepository(db)
	a, err := productsRepo.FindByID(context.Background(), productA.ID)
	require.NoError(t, err)
	b, err := productsRepo.FindByID(context.Background(), productB.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, a.StockQuantity)
	assert.Equal(t, 12, b.StockQuantity)

	cancelled, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "customer request", *cancelled.CancelReason)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestBulkActionCancelFromPendingSkipsRestore(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestService(t, db, uuid.New())

	product := seedProduct(t, db, 10)
	order := seedOrder(t, db, enums.OrderStatusPending, []models.OrderItem{
		{ProductID: product.ID, Name: product.Name, Quantity: 4, UnitPrice: decimal.NewFromInt(10)},
	})

	outcome := runAction(t, svc, order, enums.OrderActionCancel, "duplicate")
	require.Empty(t, outcome.Error)

	// Pending orders never held stock, so nothing comes back.
	refreshed, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, refreshed.StockQuantity)
}

func TestBulkActionReturnAfterDeliveryReversesProfit(t *testing.T) {
	db := setupOrdersTestDB(t)
	adminID := uuid.New()
	svc, repo := newTestService(t, db, adminID)

	product := seedProduct(t, db, 5)
	order := seedOrder(t, db, enums.OrderStatusShipped, []models.OrderItem{
		{ProductID: product.ID, Name: product.Name, Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
	})

	outcome := runAction(t, svc, order, enums.OrderActionDeliver, "")
	require.Empty(t, outcome.Error)

	outcome = runAction(t, svc, order, enums.OrderActionReturn, "damaged on arrival")
	require.Empty(t, outcome.Error)
	assert.Equal(t, enums.OrderStatusReturned, outcome.Status)

	returned, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, returned.ProfitsDistributed)

	walletRepo := wallet.NewRepository(db)
	adminEntries, err := walletRepo.ListByUser(context.Background(), adminID)
	require.NoError(t, err)
	require.Len(t, adminEntries, 2)

	balance := decimal.Zero
	for _, entry := range adminEntries {
		if entry.Type == enums.WalletEntryTypeCredit {
			balance = balance.Add(entry.Amount)
		} else {
			balance = balance.Sub(entry.Amount)
		}
	}
	assert.True(t, balance.IsZero(), "admin balance must net to zero, got %s", balance)

	// Return restores stock regardless of prior status.
	refreshed, err := products.NewRepository(db).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, refreshed.StockQuantity)
}

// staleReadRepository reports profits as undistributed even when the row says
// otherwise, the view a batch holds when a settlement lands after its lookup.
type staleReadRepository struct {
	Repository
}

func (r staleReadRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	loaded, err := r.Repository.FindByIDs(ctx, ids)
	for i := range loaded {
		loaded[i].ProfitsDistributed = false
	}
	return loaded, err
}

func TestBulkActionReturnReversesDespiteStaleRead(t *testing.T) {
	db := setupOrdersTestDB(t)
	adminID := uuid.New()
	svc, repo := newTestService(t, db, adminID)

	product := seedProduct(t, db, 5)
	order := seedOrder(t, db, enums.OrderStatusShipped, []models.OrderItem{
		{ProductID: product.ID, Name: product.Name, Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
	})

	outcome := runAction(t, svc, order, enums.OrderActionDeliver, "")
	require.Empty(t, outcome.Error)

	adjuster, err := inventory.NewAdjuster(products.NewRepository(db), nil)
	require.NoError(t, err)
	walletSvc, err := wallet.NewService(wallet.NewRepository(db), testTxRunner{db: db}, adminID, nil)
	require.NoError(t, err)
	packagesSvc, err := packages.NewService(db, nil, nil)
	require.NoError(t, err)
	staleSvc, err := NewService(ServiceParams{
		Repo:     staleReadRepository{repo},
		Adjuster: adjuster,
		Wallet:   walletSvc,
		Packages: packagesSvc,
	})
	require.NoError(t, err)

	outcome = runAction(t, staleSvc, order, enums.OrderActionReturn, "damaged on arrival")
	require.Empty(t, outcome.Error)

	returned, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, returned.ProfitsDistributed, "reversal must decide against the row, not the snapshot")

	adminEntries, err := wallet.NewRepository(db).ListByUser(context.Background(), adminID)
	require.NoError(t, err)
	require.Len(t, adminEntries, 2, "expected the credit and its reversing debit")

	balance, err := walletSvc.Balance(context.Background(), adminID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "admin balance must net to zero, got %s", balance)
}

func TestBulkActionBatchIndependence(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, repo := newTestService(t, db, uuid.New())

	valid := seedOrder(t, db, enums.OrderStatusPending, nil)
	illegal := seedOrder(t, db, enums.OrderStatusDelivered, nil)

	result, err := svc.BulkAction(context.Background(), BulkActionInput{
		OrderIDs: []uuid.UUID{valid.ID, illegal.ID},
		Action:   enums.OrderActionConfirm,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)

	assert.Empty(t, result.Outcomes[0].Error)
	assert.Equal(t, enums.OrderStatusConfirmed, result.Outcomes[0].Status)
	assert.Contains(t, result.Outcomes[1].Error, "illegal transition")

	confirmed, err := repo.FindByID(context.Background(), valid.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, confirmed.Status)

	untouched, err := repo.FindByID(context.Background(), illegal.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, untouched.Status)
}

func TestBulkActionUnknownOrderRejectsBatch(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, repo := newTestService(t, db, uuid.New())

	existing := seedOrder(t, db, enums.OrderStatusPending, nil)

	_, err := svc.BulkAction(context.Background(), BulkActionInput{
		OrderIDs: []uuid.UUID{existing.ID, uuid.New()},
		Action:   enums.OrderActionConfirm,
		ActorID:  uuid.New(),
	})
	require.Error(t, err)

	// Lookup is all-or-nothing: the existing order stays untouched too.
	untouched, err := repo.FindByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, untouched.Status)
}

func TestBulkActionReasonRequiredForCancel(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestService(t, db, uuid.New())

	order := seedOrder(t, db, enums.OrderStatusPending, nil)

	_, err := svc.BulkAction(context.Background(), BulkActionInput{
		OrderIDs: []uuid.UUID{order.ID},
		Action:   enums.OrderActionCancel,
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
}

func TestBulkActionUpdateShipping(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, repo := newTestService(t, db, uuid.New())

	order := seedOrder(t, db, enums.OrderStatusProcessing, nil)
	company := "aramex"
	city := "nablus"

	result, err := svc.BulkAction(context.Background(), BulkActionInput{
		OrderIDs:        []uuid.UUID{order.ID},
		Action:          enums.OrderActionUpdateShipping,
		ActorID:         uuid.New(),
		ShippingCompany: &company,
		ShippingCity:    &city,
	})
	require.NoError(t, err)
	require.Empty(t, result.Outcomes[0].Error)

	updated, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ShippingCompany)
	assert.Equal(t, "aramex", *updated.ShippingCompany)
	require.NotNil(t, updated.ShippingCity)
	assert.Equal(t, "nablus", *updated.ShippingCity)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status, "update-shipping must not touch status")
}
