package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mini-ecommerce/internal/dto"
	"mini-ecommerce/internal/model"
	"mini-ecommerce/internal/repository"
	"mini-ecommerce/pkg/rabbitmq"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userEmail string, productID uint, quantity int64) (*dto.OrderReceipt, error)
}

type checkoutServiceImpl struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	events      rabbitmq.Publisher
}

func NewCheckoutService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	events rabbitmq.Publisher,
) CheckoutService {
	return &checkoutServiceImpl{
		db:          db,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		events:      events,
	}
}

// Checkout converts one (product, quantity) selection into a persisted order
// with a snapshotted line item and a matching stock decrement. The three
// writes run inside a single transaction with the product row locked, so a
// failure at any step leaves the store untouched and concurrent checkouts
// against the same product serialize on the stock check.
func (s *checkoutServiceImpl) Checkout(ctx context.Context, userEmail string, productID uint, quantity int64) (*dto.OrderReceipt, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	user, err := s.userRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("%w: find account: %w", ErrStoreUnavailable, err)
	}

	var receipt *dto.OrderReceipt
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDForUpdate(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownProduct
			}
			return fmt.Errorf("%w: find product: %w", ErrStoreUnavailable, err)
		}

		if product.Stock < quantity {
			return &InsufficientStockError{
				ProductID: product.ID,
				Requested: quantity,
				Available: product.Stock,
			}
		}

		order := &model.Order{
			Reference: uuid.NewString(),
			UserID:    user.ID,
			Total:     product.UnitPrice * quantity,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("%w: store order: %w", ErrStoreUnavailable, err)
		}

		lines := []*model.OrderLine{{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.UnitPrice,
		}}
		if err := s.orderRepo.CreateLines(ctx, tx, lines); err != nil {
			return fmt.Errorf("%w: store order line: %w", ErrStoreUnavailable, err)
		}

		if err := s.productRepo.DecrementStock(ctx, tx, product.ID, quantity); err != nil {
			if errors.Is(err, repository.ErrStockExhausted) {
				// lost the race despite the lock; reject, roll everything back
				return &InsufficientStockError{
					ProductID: product.ID,
					Requested: quantity,
					Available: product.Stock,
				}
			}
			return fmt.Errorf("%w: decrement stock: %w", ErrStoreUnavailable, err)
		}

		receipt = &dto.OrderReceipt{
			OrderID:     order.ID,
			Reference:   order.Reference,
			ProductName: product.Name,
			Quantity:    quantity,
			Total:       order.Total,
		}
		return nil
	})
	if err != nil {
		if IsCheckoutRejection(err) || errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	// best-effort: the order is already committed, a broker hiccup must not
	// fail the purchase
	if err := s.events.PublishOrderCreated(map[string]interface{}{
		"order_id":   receipt.OrderID,
		"reference":  receipt.Reference,
		"user_email": userEmail,
		"product_id": productID,
		"quantity":   quantity,
		"total":      receipt.Total,
	}); err != nil {
		log.Printf("publish order created event: %v", err)
	}

	return receipt, nil
}
