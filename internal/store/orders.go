package store

import (
	"context"
	"fmt"
	"strings"

	"order_system/internal/apperr"
	"order_system/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateOrderNumber is returned when the order number is already taken by any order.
	ErrDuplicateOrderNumber = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "order number already exists",
		Fields:  map[string]string{"order_number": "an order with this order number already exists"},
	}
	// ErrOrderNotFound covers both missing orders and orders owned by someone else.
	ErrOrderNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "order not found"}
)

// OrderInput carries the fields for a new order. There is no owner field: the owner is always the caller.
type OrderInput struct {
	OrderNumber string           `json:"order_number" validate:"required,max=20"`
	TotalAmount *decimal.Decimal `json:"total_amount" validate:"required"`
}

// OrderPatch carries a partial update. Nil fields are left untouched.
type OrderPatch struct {
	OrderNumber *string          `json:"order_number" validate:"omitnil,required,max=20"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

// OrderStore persists orders. Every per-account method filters on the owner,
// so an order owned by another account behaves exactly like a missing one.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// owned scopes a query to the orders of one account
func owned(accountID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("account_id = ?", accountID)
	}
}

// ListForOwner returns the account's orders in insertion order.
func (s *OrderStore) ListForOwner(ctx context.Context, accountID uint) ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := s.db.WithContext(ctx).Scopes(owned(accountID)).Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListForOwners returns the orders of several accounts with their owner loaded.
func (s *OrderStore) ListForOwners(ctx context.Context, accountIDs []uint) ([]domain.Order, error) {
	orders := []domain.Order{}
	if len(accountIDs) == 0 {
		return orders, nil
	}
	err := s.db.WithContext(ctx).
		Preload("Account").
		Where("account_id IN ?", accountIDs).
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for accounts: %w", err)
	}
	return orders, nil
}

// Create stores a new order owned by accountID.
func (s *OrderStore) Create(ctx context.Context, accountID uint, in OrderInput) (*domain.Order, error) {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkAmount(*in.TotalAmount); err != nil {
		return nil, err
	}
	order := &domain.Order{
		AccountID:   accountID,
		OrderNumber: in.OrderNumber,
		TotalAmount: in.TotalAmount.Round(amountMaxDecimals),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOrderNumberUnique(tx, 0, order.OrderNumber); err != nil {
			return err
		}
		return tx.Create(order).Error
	})
	if isDuplicateKey(err) {
		return nil, ErrDuplicateOrderNumber
	}
	if err != nil {
		return nil, wrapErr("create order", err)
	}
	return order, nil
}

func (s *OrderStore) Get(ctx context.Context, accountID, orderID uint) (*domain.Order, error) {
	var order domain.Order
	if err := s.db.WithContext(ctx).Scopes(owned(accountID)).First(&order, orderID).Error; err != nil {
		return nil, wrapErr("get order", notFoundOr(err, ErrOrderNotFound))
	}
	return &order, nil
}

// Update applies a partial update to one of the account's orders.
func (s *OrderStore) Update(ctx context.Context, accountID, orderID uint, patch OrderPatch) (*domain.Order, error) {
	if patch.OrderNumber != nil {
		trimmed := strings.TrimSpace(*patch.OrderNumber)
		patch.OrderNumber = &trimmed
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if patch.TotalAmount != nil {
		if err := checkAmount(*patch.TotalAmount); err != nil {
			return nil, err
		}
	}

	var order domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(owned(accountID)).First(&order, orderID).Error; err != nil {
			return notFoundOr(err, ErrOrderNotFound)
		}
		if patch.OrderNumber != nil {
			if err := checkOrderNumberUnique(tx, order.ID, *patch.OrderNumber); err != nil {
				return err
			}
			order.OrderNumber = *patch.OrderNumber
		}
		if patch.TotalAmount != nil {
			order.TotalAmount = patch.TotalAmount.Round(amountMaxDecimals)
		}
		return tx.Save(&order).Error
	})
	if isDuplicateKey(err) {
		return nil, ErrDuplicateOrderNumber
	}
	if err != nil {
		return nil, wrapErr("update order", err)
	}
	return &order, nil
}

func (s *OrderStore) Delete(ctx context.Context, accountID, orderID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Scopes(owned(accountID)).Delete(&domain.Order{}, orderID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
	return wrapErr("delete order", err)
}

func checkOrderNumberUnique(tx *gorm.DB, selfID uint, number string) error {
	var n int64
	q := tx.Model(&domain.Order{}).Where("order_number = ?", number)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateOrderNumber
	}
	return nil
}
