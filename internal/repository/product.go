package repository

import (
	"context"
	"errors"
	"mini-ecommerce/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockExhausted is returned when a guarded stock decrement matches no
// row, i.e. the product no longer has the requested quantity.
var ErrStockExhausted = errors.New("stock exhausted")

type ProductRepository interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]*model.Product, error)
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: 1, Name: "Teclado Mecánico", UnitPrice: 220000, Stock: 10},
		{ID: 2, Name: "Mouse Gamer", UnitPrice: 120000, Stock: 8},
		{ID: 3, Name: "SSD 1TB", UnitPrice: 350000, Stock: 3},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) List(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

// FindByIDForUpdate reads the product under a row-level write lock so that
// concurrent checkouts against the same product serialize on the stock
// read-validate-decrement sequence. SQLite has no FOR UPDATE; there the
// database-level write lock of the enclosing transaction serializes writers.
func (r *productRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product model.Product
	err := q.Where("id = ?", productID).First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// DecrementStock applies the decrement guarded by the current stock level,
// so the stock column can never go negative even if a caller skipped the
// locked read.
func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockExhausted
	}

	return nil
}
