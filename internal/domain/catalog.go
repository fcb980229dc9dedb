package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog module related models

// FallbackCategoryName is the always-present category that absorbs products
// when their own category is removed.
const FallbackCategoryName = "General"

type Category struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name" form:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}

// Product is a sellable catalog item. Stock is only ever reduced through the
// stock guard's conditional update; it must never go below zero.
type Product struct {
	ID         int64           `json:"id,string" form:"id"`
	Name       string          `gorm:"index" json:"name" form:"name"`
	Barcode    string          `gorm:"uniqueIndex;size:100" json:"barcode" form:"barcode"`
	CategoryId int64           `gorm:"index" json:"category_id,string" form:"category_id"`
	Stock      int             `gorm:"index" json:"stock" form:"stock"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2)" json:"price" form:"price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
