package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mini-ecommerce/internal/model"
	"mini-ecommerce/internal/repository"
	"mini-ecommerce/pkg/rabbitmq"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// a named shared-cache DB keeps the schema alive across pooled conns
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	return openTestDB(t, dsn)
}

// newFileTestDB backs the store with a file so concurrent transactions
// contend like they would on a real server. _txlock=immediate makes every
// transaction take the write lock up front, which is how checkout's
// serialization is exercised on sqlite.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "shop.db") +
		"?_busy_timeout=5000&_txlock=immediate"
	return openTestDB(t, dsn)
}

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderLine{},
		&model.ProductSalesSummary{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

type checkoutFixture struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	checkout    CheckoutService
}

func newCheckoutFixture(t *testing.T, db *gorm.DB) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		productRepo: repository.NewProductRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
	}
	f.checkout = NewCheckoutService(db, f.userRepo, f.productRepo, f.orderRepo, rabbitmq.NopPublisher{})

	require.NoError(t, db.Create(&model.User{
		Name:         "Demo User",
		Email:        "buyer@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}).Error)

	require.NoError(t, db.Create(&model.Product{
		ID:        3,
		Name:      "SSD 1TB",
		UnitPrice: 350000,
		Stock:     3,
	}).Error)

	return f
}

func (f *checkoutFixture) stock(t *testing.T, productID uint) int64 {
	t.Helper()

	var product model.Product
	require.NoError(t, f.db.First(&product, productID).Error)
	return product.Stock
}

func (f *checkoutFixture) counts(t *testing.T) (orders, lines int64) {
	t.Helper()

	ctx := context.Background()
	orders, err := f.orderRepo.CountOrders(ctx)
	require.NoError(t, err)
	lines, err = f.orderRepo.CountLines(ctx)
	require.NoError(t, err)
	return orders, lines
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))
	ctx := context.Background()

	receipt, err := f.checkout.Checkout(ctx, "buyer@example.com", 3, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(700000), receipt.Total)
	assert.Equal(t, "SSD 1TB", receipt.ProductName)
	assert.Equal(t, int64(2), receipt.Quantity)
	assert.NotZero(t, receipt.OrderID)
	assert.NotEmpty(t, receipt.Reference)

	assert.Equal(t, int64(1), f.stock(t, 3))

	lines, err := f.orderRepo.GetLines(ctx, receipt.OrderID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, uint(3), lines[0].ProductID)
	assert.Equal(t, int64(2), lines[0].Quantity)
	assert.Equal(t, int64(350000), lines[0].UnitPrice)
}

func TestCheckoutSnapshotsUnitPrice(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))
	ctx := context.Background()

	receipt, err := f.checkout.Checkout(ctx, "buyer@example.com", 3, 1)
	require.NoError(t, err)

	// a later price change must not touch historical lines
	require.NoError(t, f.db.Model(&model.Product{}).
		Where("id = ?", 3).
		Update("unit_price", 999999).Error)

	lines, err := f.orderRepo.GetLines(ctx, receipt.OrderID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(350000), lines[0].UnitPrice)
}

func TestCheckoutInvalidQuantity(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))
	ctx := context.Background()

	for _, quantity := range []int64{0, -1} {
		_, err := f.checkout.Checkout(ctx, "buyer@example.com", 3, quantity)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}

	orders, lines := f.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Equal(t, int64(3), f.stock(t, 3))
}

func TestCheckoutUnknownAccount(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))

	_, err := f.checkout.Checkout(context.Background(), "nobody@example.com", 3, 1)
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.Equal(t, int64(3), f.stock(t, 3))
}

func TestCheckoutUnknownProduct(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))

	_, err := f.checkout.Checkout(context.Background(), "buyer@example.com", 42, 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	orders, _ := f.counts(t)
	assert.Zero(t, orders)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))

	_, err := f.checkout.Checkout(context.Background(), "buyer@example.com", 3, 5)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(3), insufficient.Available)
	assert.Equal(t, int64(5), insufficient.Requested)

	orders, lines := f.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Equal(t, int64(3), f.stock(t, 3))
}

func TestCheckoutStockAccounting(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))
	ctx := context.Background()

	var sold int64
	for _, quantity := range []int64{1, 2, 2, 1} {
		_, err := f.checkout.Checkout(ctx, "buyer@example.com", 3, quantity)
		if err == nil {
			sold += quantity
			continue
		}
		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
	}

	stock := f.stock(t, 3)
	assert.Equal(t, int64(3)-sold, stock)
	assert.GreaterOrEqual(t, stock, int64(0))
}

// failingProductRepo breaks the last step of the checkout sequence so the
// rollback path can be observed.
type failingProductRepo struct {
	repository.ProductRepository
}

func (f *failingProductRepo) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error {
	return errors.New("connection reset")
}

func TestCheckoutRollsBackWhenDecrementFails(t *testing.T) {
	f := newCheckoutFixture(t, newTestDB(t))

	broken := NewCheckoutService(
		f.db,
		f.userRepo,
		&failingProductRepo{ProductRepository: f.productRepo},
		f.orderRepo,
		rabbitmq.NopPublisher{},
	)

	_, err := broken.Checkout(context.Background(), "buyer@example.com", 3, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	// order and line written before the failure must not survive
	orders, lines := f.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Equal(t, int64(3), f.stock(t, 3))
}

func TestCheckoutConcurrentSerialization(t *testing.T) {
	f := newCheckoutFixture(t, newFileTestDB(t))
	ctx := context.Background()

	require.NoError(t, f.db.Model(&model.Product{}).
		Where("id = ?", 3).
		Update("stock", 5).Error)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.checkout.Checkout(ctx, "buyer@example.com", 3, 3)
		}(i)
	}
	wg.Wait()

	var successes, rejections int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient, "unexpected error: %v", err)
		rejections++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)
	assert.Equal(t, int64(2), f.stock(t, 3))

	orders, lines := f.counts(t)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(1), lines)
}
