package reports

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
	"gorm.io/gorm"
)

type TopProductRow struct {
	Name     string `json:"name"`
	Barcode  string `json:"barcode"`
	TotalQty int    `json:"total_qty"`
}

type CategorySummaryRow struct {
	Category string          `json:"category"`
	TotalQty int             `json:"total_qty"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DailyRevenueRow struct {
	Day     time.Time       `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SaleRow struct {
	SaleID      int64           `json:"sale_id,string" csv:"sale_id"`
	SaleDate    time.Time       `json:"sale_date" csv:"sale_date"`
	TotalAmount decimal.Decimal `json:"total_amount" csv:"total_amount"`
}

type ReceiptItem struct {
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Receipt struct {
	SaleID      int64           `json:"sale_id,string"`
	SaleDate    time.Time       `json:"sale_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []ReceiptItem   `json:"items"`
}

// RevenueStats summarizes the daily revenue series of a range.
type RevenueStats struct {
	Days   int     `json:"days"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Repository serves read-side sales reporting and retention maintenance.
// Aggregation happens in SQL; rows come back pre-summed.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Revenue sums sale totals in [from, toExclusive).
func (r *Repository) Revenue(ctx context.Context, from, toExclusive time.Time) (decimal.Decimal, error) {
	var row struct {
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total_amount), 0) AS revenue
		FROM sales
		WHERE sale_date >= ? AND sale_date < ?`, from, toExclusive).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, common.WrapPersistence("reports.revenue", err)
	}
	return row.Revenue, nil
}

func (r *Repository) TopProducts(ctx context.Context, from, toExclusive time.Time) ([]TopProductRow, error) {
	var rows []TopProductRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.name, p.barcode, SUM(si.quantity) AS total_qty
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.sale_date >= ? AND s.sale_date < ?
		GROUP BY p.name, p.barcode
		ORDER BY total_qty DESC`, from, toExclusive).
		Scan(&rows).Error
	if err != nil {
		return nil, common.WrapPersistence("reports.top_products", err)
	}
	return rows, nil
}

func (r *Repository) CategorySummary(ctx context.Context, from, toExclusive time.Time) ([]CategorySummaryRow, error) {
	var rows []CategorySummaryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(c.name, ?) AS category,
		       COALESCE(SUM(si.quantity), 0) AS total_qty,
		       COALESCE(SUM(si.line_total), 0) AS revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE s.sale_date >= ? AND s.sale_date < ?
		GROUP BY category
		ORDER BY revenue DESC`, domain.FallbackCategoryName, from, toExclusive).
		Scan(&rows).Error
	if err != nil {
		return nil, common.WrapPersistence("reports.category_summary", err)
	}
	return rows, nil
}

func (r *Repository) DailyRevenue(ctx context.Context, from, toExclusive time.Time) ([]DailyRevenueRow, error) {
	var rows []DailyRevenueRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(sale_date) AS day, COALESCE(SUM(total_amount), 0) AS revenue
		FROM sales
		WHERE sale_date >= ? AND sale_date < ?
		GROUP BY DATE(sale_date)
		ORDER BY day ASC`, from, toExclusive).
		Scan(&rows).Error
	if err != nil {
		return nil, common.WrapPersistence("reports.daily_revenue", err)
	}
	return rows, nil
}

func (r *Repository) Sales(ctx context.Context, from, toExclusive time.Time, limit int) ([]SaleRow, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []SaleRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id AS sale_id, sale_date, total_amount
		FROM sales
		WHERE sale_date >= ? AND sale_date < ?
		ORDER BY sale_date DESC
		LIMIT ?`, from, toExclusive, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, common.WrapPersistence("reports.sales", err)
	}
	return rows, nil
}

// GetReceipt loads a sale header with its line items for display.
func (r *Repository) GetReceipt(ctx context.Context, saleID int64) (*Receipt, error) {
	var sale domain.Sale
	if err := r.db.WithContext(ctx).First(&sale, saleID).Error; err != nil {
		return nil, err
	}

	var items []ReceiptItem
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.name, p.barcode, si.quantity, si.unit_price, si.line_total
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = ?
		ORDER BY si.id ASC`, saleID).
		Scan(&items).Error
	if err != nil {
		return nil, common.WrapPersistence("reports.receipt", err)
	}

	return &Receipt{
		SaleID:      sale.ID,
		SaleDate:    sale.SaleDate,
		TotalAmount: sale.TotalAmount,
		Items:       items,
	}, nil
}

// MonthlyItemCount counts items sold in the current calendar month.
func (r *Repository) MonthlyItemCount(ctx context.Context) (int, error) {
	var row struct {
		Total int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(si.quantity), 0) AS total
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE date_trunc('month', s.sale_date) = date_trunc('month', CURRENT_DATE)`).
		Scan(&row).Error
	if err != nil {
		return 0, common.WrapPersistence("reports.monthly_items", err)
	}
	return row.Total, nil
}

// PurgeSalesOlderThan deletes sale headers and their items past the retention
// horizon. Both deletes run in one transaction so a crash cannot leave
// orphaned items.
func (r *Repository) PurgeSalesOlderThan(ctx context.Context, years int) (int64, error) {
	if years <= 0 {
		return 0, common.Validationf("retention years must be positive, got %d", years)
	}
	cutoff := time.Now().AddDate(-years, 0, 0)

	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			DELETE FROM sale_items
			WHERE sale_id IN (SELECT id FROM sales WHERE sale_date < ?)`, cutoff).Error; err != nil {
			return err
		}
		res := tx.Where("sale_date < ?", cutoff).Delete(&domain.Sale{})
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, common.WrapPersistence("reports.purge", err)
	}
	return purged, nil
}

// Stats computes summary statistics over the daily revenue series.
func (r *Repository) Stats(ctx context.Context, from, toExclusive time.Time) (*RevenueStats, error) {
	daily, err := r.DailyRevenue(ctx, from, toExclusive)
	if err != nil {
		return nil, err
	}
	if len(daily) == 0 {
		return &RevenueStats{}, nil
	}

	series := make([]float64, 0, len(daily))
	for _, d := range daily {
		series = append(series, d.Revenue.InexactFloat64())
	}

	mean, _ := stats.Mean(series)
	median, _ := stats.Median(series)
	max, _ := stats.Max(series)
	return &RevenueStats{
		Days:   len(daily),
		Mean:   mean,
		Median: median,
		Max:    max,
	}, nil
}
