package stock

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
	"gorm.io/gorm"
)

// ErrProductNotFound reports a stock operation whose product reference did
// not resolve to any row.
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports a conditional decrement that affected zero
// rows: the current stock is below the requested quantity.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("insufficient stock for %q (product %d, requested %d)", e.Name, e.ProductID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %d (requested %d)", e.ProductID, e.Requested)
}

// Guard adjusts product stock levels. Every reduction goes through a single
// conditional UPDATE so that concurrent callers cannot push stock below zero;
// the read-check-write pattern is deliberately not offered.
type Guard struct {
	db *gorm.DB
}

func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// Increase adds delta to the product's stock. It cannot violate the stock
// invariant; zero rows affected means the product reference did not resolve.
func (g *Guard) Increase(ctx context.Context, productID int64, delta int) error {
	return Increase(g.db.WithContext(ctx), productID, delta)
}

// Decrease subtracts delta from the product's stock, guarded by
// "stock >= delta" at write time.
func (g *Guard) Decrease(ctx context.Context, productID int64, delta int) error {
	return Decrease(g.db.WithContext(ctx), productID, delta)
}

// SetExact overwrites the stock level for manual inventory corrections.
func (g *Guard) SetExact(ctx context.Context, productID int64, newStock int) error {
	return SetExact(g.db.WithContext(ctx), productID, newStock)
}

// Increase applies the unconditional increment on the given handle, which may
// be an open transaction.
func Increase(db *gorm.DB, productID int64, delta int) error {
	if delta <= 0 {
		return common.Validationf("stock increase delta must be positive, got %d", delta)
	}
	res := db.Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return common.WrapPersistence("stock.increase", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Decrease applies the conditional decrement on the given handle, which may
// be an open transaction. Zero rows affected means the guard condition failed
// at write time, regardless of what any earlier read returned.
func Decrease(db *gorm.DB, productID int64, delta int) error {
	if delta <= 0 {
		return common.Validationf("stock decrease delta must be positive, got %d", delta)
	}
	res := db.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", productID, delta).
		UpdateColumn("stock", gorm.Expr("stock - ?", delta))
	if res.Error != nil {
		return common.WrapPersistence("stock.decrease", res.Error)
	}
	if res.RowsAffected == 0 {
		return &InsufficientStockError{ProductID: productID, Requested: delta}
	}
	return nil
}

// SetExact applies the absolute set on the given handle. Negative targets are
// rejected before any statement is issued.
func SetExact(db *gorm.DB, productID int64, newStock int) error {
	if newStock < 0 {
		return common.Validationf("stock target must not be negative, got %d", newStock)
	}
	res := db.Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", newStock)
	if res.Error != nil {
		return common.WrapPersistence("stock.set", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
