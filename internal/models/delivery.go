package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery is an inbound receipt. StockID records the stock row its quantity was booked into.
type Delivery struct {
	ID uuid.UUID `json:"id"`
	Item
	OrderID         *uuid.UUID `json:"orderId,omitempty"`
	StockID         *uuid.UUID `json:"stockId,omitempty"`
	DeliveryCompany string     `json:"deliveryCompany"`
	Quantity        int        `json:"quantity"`
	DeliveryDate    time.Time  `json:"deliveryDate"`
	Requester       string     `json:"requester"`
	Status          Status     `json:"status"`
	Remark          string     `json:"remark"`
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type DeliveryRequest struct {
	Item
	OrderID         *uuid.UUID `json:"orderId"`
	DeliveryCompany string     `json:"deliveryCompany" validate:"required"`
	Quantity        int        `json:"quantity" validate:"required,min=1"`
	DeliveryDate    time.Time  `json:"deliveryDate" validate:"required"`
	Requester       string     `json:"requester"`
	Status          Status     `json:"status" validate:"omitempty,oneof=WAIT COMPLETE"`
	Remark          string     `json:"remark"`
}

func (req *DeliveryRequest) Apply(d *Delivery) {
	d.Item = req.Item
	d.OrderID = req.OrderID
	d.DeliveryCompany = req.DeliveryCompany
	d.Quantity = req.Quantity
	d.DeliveryDate = req.DeliveryDate.UTC()
	d.Requester = req.Requester
	d.Status = req.Status
	if d.Status == "" {
		d.Status = StatusWaiting
	}
	d.Remark = req.Remark
}
