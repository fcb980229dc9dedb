package checkout

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/internal/stock"
	"github.com/stockapp/stockpos/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductNotFoundError reports a cart barcode that no longer resolves to a
// product at commit time. It aborts the whole checkout transaction.
type ProductNotFoundError struct {
	Barcode string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found for barcode %s", e.Barcode)
}

// Engine turns a finalized cart into one committed sale: header, line items
// and guarded stock decrements in a single all-or-nothing transaction.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Commit executes the checkout and returns the new sale id. Any failure
// rolls back the header, the items and every stock decrement together.
//
// Unit prices are re-resolved by barcode against the latest committed state;
// the cart's snapshot price only feeds the provisional total.
func (e *Engine) Commit(ctx context.Context, lines []CartLine) (int64, error) {
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return 0, common.Validationf("line %s has non-positive quantity %d", ln.Barcode, ln.Quantity)
		}
	}

	provisional := decimal.Zero
	for _, ln := range lines {
		provisional = provisional.Add(ln.LineTotal())
	}

	saleID := common.UUIDint64()
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale := &domain.Sale{
			ID:          saleID,
			SaleDate:    time.Now(),
			TotalAmount: provisional,
		}
		if err := tx.Create(sale).Error; err != nil {
			return common.WrapPersistence("checkout.sale", err)
		}

		barcodes := make([]string, 0, len(lines))
		for _, ln := range lines {
			barcodes = append(barcodes, ln.Barcode)
		}

		// one batched lookup instead of a query per line
		var products []domain.Product
		if err := tx.Where("barcode IN ?", barcodes).Find(&products).Error; err != nil {
			return common.WrapPersistence("checkout.resolve", err)
		}
		byBarcode := make(map[string]domain.Product, len(products))
		for _, p := range products {
			byBarcode[p.Barcode] = p
		}

		committed := decimal.Zero
		for _, ln := range lines {
			p, ok := byBarcode[ln.Barcode]
			if !ok {
				return &ProductNotFoundError{Barcode: ln.Barcode}
			}

			if err := stock.Decrease(tx, p.ID, ln.Quantity); err != nil {
				var ise *stock.InsufficientStockError
				if stderrors.As(err, &ise) {
					ise.Name = p.Name
				}
				return err
			}

			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))).Round(2)
			item := &domain.SaleItem{
				ID:        common.UUIDint64(),
				SaleId:    saleID,
				ProductId: p.ID,
				Quantity:  ln.Quantity,
				UnitPrice: p.Price,
				LineTotal: lineTotal,
			}
			if err := tx.Create(item).Error; err != nil {
				return common.WrapPersistence("checkout.item", err)
			}
			committed = committed.Add(lineTotal)
		}

		// A price change between scan and commit makes the resolved sum
		// diverge from the provisional header total; the stored total must
		// equal the sum of the line totals.
		if !committed.Equal(provisional) {
			if err := tx.Model(&domain.Sale{}).
				Where("id = ?", saleID).
				UpdateColumn("total_amount", committed).Error; err != nil {
				return common.WrapPersistence("checkout.total", err)
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("checkout aborted",
			zap.Int64("sale_id", saleID),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return 0, err
	}

	zap.L().Info("checkout committed",
		zap.Int64("sale_id", saleID),
		zap.Int("lines", len(lines)))
	return saleID, nil
}
