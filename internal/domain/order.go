package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order Model
type Order struct {
	ID          uint            `gorm:"primaryKey"`                   // Primary key
	AccountID   uint            `gorm:"not null;index"`               // Owning account, fixed at creation
	OrderNumber string          `gorm:"size:20;uniqueIndex;not null"` // Unique order number
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`  // Monetary total, two fractional digits
	CreatedAt   time.Time       `gorm:"autoCreateTime"`               // Set once on insert
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`               // Set on every save
	Account     *Account        `gorm:"foreignKey:AccountID"`         // Loaded only for aggregate queries
}
