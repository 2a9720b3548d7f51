package models

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentAllocation is the part of a shipment booked against one order.
type ShipmentAllocation struct {
	OrderID  uuid.UUID `json:"orderId"`
	Quantity int       `json:"quantity"`
}

type Shipment struct {
	ID uuid.UUID `json:"id"`
	Item
	ShippingCompany string               `json:"shippingCompany"`
	Quantity        int                  `json:"quantity"`
	ShippingDate    time.Time            `json:"shippingDate"`
	Requester       string               `json:"requester"`
	Status          Status               `json:"status"`
	Remark          string               `json:"remark"`
	Allocations     []ShipmentAllocation `json:"allocations"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type ShipmentRequest struct {
	Item
	ShippingCompany string    `json:"shippingCompany" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,min=1"`
	ShippingDate    time.Time `json:"shippingDate" validate:"required"`
	Requester       string    `json:"requester"`
	Status          Status    `json:"status" validate:"omitempty,oneof=WAIT COMPLETE"`
	Remark          string    `json:"remark"`
}

func (req *ShipmentRequest) Apply(s *Shipment) {
	s.Item = req.Item
	s.ShippingCompany = req.ShippingCompany
	s.Quantity = req.Quantity
	s.ShippingDate = req.ShippingDate.UTC()
	s.Requester = req.Requester
	s.Status = req.Status
	if s.Status == "" {
		s.Status = StatusWaiting
	}
	s.Remark = req.Remark
}

// Allocated is the total quantity booked against orders.
func (s *Shipment) Allocated() int {
	total := 0
	for _, a := range s.Allocations {
		total += a.Quantity
	}
	return total
}
