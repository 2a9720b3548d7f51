package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductionMode string

const (
	ProductionReplace   ProductionMode = "REPLACE"
	ProductionIncrement ProductionMode = "INC"
)

type ProductionKey struct {
	MonthKey  string `json:"monthKey" validate:"required"`
	Customer  string `json:"customer"`
	CarType   string `json:"carType"`
	Division  string `json:"division"`
	ProductNo string `json:"productNo"`
	PartNo    string `json:"partNo" validate:"required"`
}

// ProductionInbound is one inbound-adjustment line of a production item.
type ProductionInbound struct {
	Quantity decimal.Decimal `json:"quantity"`
	Date     time.Time       `json:"date"`
	Defects  decimal.Decimal `json:"defects"`
	Loss     decimal.Decimal `json:"loss"`
	Increase decimal.Decimal `json:"increase"`
	Remark   string          `json:"remark,omitempty"`
}

type ProductionItem struct {
	ID uuid.UUID `json:"id"`
	ProductionKey
	RequiredQty decimal.Decimal     `json:"requiredQty"`
	Remark      string              `json:"remark"`
	Inbounds    []ProductionInbound `json:"inbounds"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func (p *ProductionItem) sum(pick func(ProductionInbound) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, in := range p.Inbounds {
		total = total.Add(pick(in))
	}
	return total
}

func (p *ProductionItem) InboundTotal() decimal.Decimal {
	return p.sum(func(in ProductionInbound) decimal.Decimal { return in.Quantity })
}

func (p *ProductionItem) DefectsTotal() decimal.Decimal {
	return p.sum(func(in ProductionInbound) decimal.Decimal { return in.Defects })
}

// StockTotal is inbound minus defects and losses plus increases.
func (p *ProductionItem) StockTotal() decimal.Decimal {
	return p.sum(func(in ProductionInbound) decimal.Decimal {
		return in.Quantity.Sub(in.Defects).Sub(in.Loss).Add(in.Increase)
	})
}

// Shortage is negative while stock lags the required quantity.
func (p *ProductionItem) Shortage() decimal.Decimal {
	return p.StockTotal().Sub(p.RequiredQty)
}

func (p ProductionItem) MarshalJSON() ([]byte, error) {
	type plain ProductionItem
	if p.Inbounds == nil {
		p.Inbounds = []ProductionInbound{}
	}
	return json.Marshal(struct {
		plain
		InboundTotal decimal.Decimal `json:"inboundTotal"`
		DefectsTotal decimal.Decimal `json:"defectsTotal"`
		StockTotal   decimal.Decimal `json:"stockTotal"`
		Shortage     decimal.Decimal `json:"shortage"`
	}{
		plain:        plain(p),
		InboundTotal: p.InboundTotal(),
		DefectsTotal: p.DefectsTotal(),
		StockTotal:   p.StockTotal(),
		Shortage:     p.Shortage(),
	})
}

// ProductionUpsert writes the required quantity of a key, replacing or adding to it.
type ProductionUpsert struct {
	ProductionKey
	RequiredQty decimal.Decimal
	Mode        ProductionMode
	Remark      string
	At          time.Time
}

// Apply merges the upsert into p.
func (u *ProductionUpsert) Apply(p *ProductionItem) {
	p.ProductionKey = u.ProductionKey
	if u.Mode == ProductionIncrement {
		p.RequiredQty = p.RequiredQty.Add(u.RequiredQty)
	} else {
		p.RequiredQty = u.RequiredQty
	}
	if u.Remark != "" {
		p.Remark = u.Remark
	}
	p.UpdatedAt = u.At
}

type ProductionRequest struct {
	ProductionKey
	RequiredQty decimal.Decimal `json:"requiredQty"`
	Remark      string          `json:"remark"`
}

// ProductionSummary aggregates one division of a month.
type ProductionSummary struct {
	Division    string          `json:"division"`
	Items       int             `json:"items"`
	RequiredQty decimal.Decimal `json:"requiredQty"`
	InboundQty  decimal.Decimal `json:"inboundQty"`
	DefectsQty  decimal.Decimal `json:"defectsQty"`
	StockTotal  decimal.Decimal `json:"stockTotal"`
	Shortage    decimal.Decimal `json:"shortage"`
}
