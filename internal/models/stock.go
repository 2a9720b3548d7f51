package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultUOM = "EA"

// StockKey is the natural key of a stock row. Unused parts are empty strings.
type StockKey struct {
	Customer     string `json:"customer"`
	CarType      string `json:"carType"`
	DeliveryTo   string `json:"deliveryTo"`
	Division     string `json:"division"`
	PartNumber   string `json:"partNumber"`
	MaterialCode string `json:"materialCode"`
}

// Stock is an inventory ledger row.
// CurrentQty is derived: OpeningQty + InboundQty - UsedQty. Call Recompute after changing any of them.
type Stock struct {
	ID uuid.UUID `json:"id"`
	StockKey
	MaterialName   string          `json:"materialName"`
	OpeningQty     decimal.Decimal `json:"openingQty"`
	InboundQty     decimal.Decimal `json:"inboundQty"`
	UsedQty        decimal.Decimal `json:"usedQty"`
	CurrentQty     decimal.Decimal `json:"currentQty"`
	BomQtyPer      decimal.Decimal `json:"bomQtyPer"`
	UOM            string          `json:"uom"`
	Remark         string          `json:"remark"`
	LastMovementAt *time.Time      `json:"lastMovementAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// NewStock returns an empty stock row for key.
func NewStock(key StockKey, now time.Time) *Stock {
	return &Stock{
		ID:        uuid.New(),
		StockKey:  key,
		UOM:       DefaultUOM,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Recompute derives CurrentQty from the three counters.
func (s *Stock) Recompute() {
	s.CurrentQty = s.OpeningQty.Add(s.InboundQty).Sub(s.UsedQty)
}

// Consistent reports whether CurrentQty matches the counters.
func (s *Stock) Consistent() bool {
	return s.CurrentQty.Equal(s.OpeningQty.Add(s.InboundQty).Sub(s.UsedQty))
}

// Touch marks a quantity movement.
func (s *Stock) Touch(now time.Time) {
	s.UpdatedAt = now
	s.LastMovementAt = &now
}

// StockRequest is the body for creating, editing or upserting a stock row.
// Nil quantities leave the stored counter unchanged on edit.
type StockRequest struct {
	StockKey
	MaterialName string           `json:"materialName"`
	OpeningQty   *decimal.Decimal `json:"openingQty"`
	InboundQty   *decimal.Decimal `json:"inboundQty"`
	UsedQty      *decimal.Decimal `json:"usedQty"`
	BomQtyPer    *decimal.Decimal `json:"bomQtyPer"`
	UOM          string           `json:"uom"`
	Remark       string           `json:"remark"`
}

// Apply merges the request into s and recomputes the current quantity.
func (req *StockRequest) Apply(s *Stock) {
	s.StockKey = req.StockKey
	if req.MaterialName != "" {
		s.MaterialName = req.MaterialName
	}
	if req.OpeningQty != nil {
		s.OpeningQty = *req.OpeningQty
	}
	if req.InboundQty != nil {
		s.InboundQty = *req.InboundQty
	}
	if req.UsedQty != nil {
		s.UsedQty = *req.UsedQty
	}
	if req.BomQtyPer != nil {
		s.BomQtyPer = *req.BomQtyPer
	}
	if req.UOM != "" {
		s.UOM = req.UOM
	}
	if s.UOM == "" {
		s.UOM = DefaultUOM
	}
	if req.Remark != "" {
		s.Remark = req.Remark
	}
	s.Recompute()
}

// StockMovement is the body for inbound and consumption bookings.
type StockMovement struct {
	StockKey
	MaterialName string          `json:"materialName"`
	Quantity     decimal.Decimal `json:"quantity"`
}
