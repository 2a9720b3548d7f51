package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShortageKey struct {
	Division     string `json:"division" validate:"required"`
	Material     string `json:"material" validate:"required"`
	MaterialCode string `json:"materialCode" validate:"required"`
}

// ShortageItem is a materials shortfall row, unique per key.
type ShortageItem struct {
	ID uuid.UUID `json:"id"`
	ShortageKey
	Supplier  string          `json:"supplier"`
	InQty     decimal.Decimal `json:"inQty"`
	StockQty  decimal.Decimal `json:"stockQty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ShortageUpsert writes the key's row; nil fields keep their stored value.
type ShortageUpsert struct {
	ShortageKey
	Supplier *string          `json:"supplier"`
	InQty    *decimal.Decimal `json:"inQty"`
	StockQty *decimal.Decimal `json:"stockQty"`
	At       time.Time        `json:"-"`
}

// Apply merges the upsert into s.
func (u *ShortageUpsert) Apply(s *ShortageItem) {
	s.ShortageKey = u.ShortageKey
	if u.Supplier != nil {
		s.Supplier = *u.Supplier
	}
	if u.InQty != nil {
		s.InQty = *u.InQty
	}
	if u.StockQty != nil {
		s.StockQty = *u.StockQty
	}
	s.UpdatedAt = u.At
}
