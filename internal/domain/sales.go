package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sales module related models

// Sale is the receipt header. Immutable after checkout commit, except for
// retention purges.
type Sale struct {
	ID          int64           `json:"id,string" form:"id"`
	SaleDate    time.Time       `gorm:"index" json:"sale_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a committed sale. Append-only: it records the unit
// price at the time of sale independent of later product price changes.
type SaleItem struct {
	ID        int64           `json:"id,string" form:"id"`
	SaleId    int64           `gorm:"index" json:"sale_id,string" form:"sale_id"`
	ProductId int64           `gorm:"index" json:"product_id,string" form:"product_id"`
	Quantity  int             `json:"quantity" form:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2)" json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName Specify table name
func (SaleItem) TableName() string {
	return "sale_items"
}
