package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a purchase order. Quantity is the remaining quantity; shipments allocated against the
// order reduce it.
type Order struct {
	ID uuid.UUID `json:"id"`
	Item
	OrderCompany string    `json:"orderCompany"`
	Quantity     int       `json:"quantity"`
	OrderDate    time.Time `json:"orderDate"`
	Requester    string    `json:"requester"`
	Status       Status    `json:"status"`
	Remark       string    `json:"remark"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// OrderRequest is the body for creating or editing an order
type OrderRequest struct {
	Item
	OrderCompany string    `json:"orderCompany" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,min=1"`
	OrderDate    time.Time `json:"orderDate" validate:"required"`
	Requester    string    `json:"requester"`
	Status       Status    `json:"status" validate:"omitempty,oneof=WAIT COMPLETE"`
	Remark       string    `json:"remark"`
}

// Apply copies the request onto o.
func (req *OrderRequest) Apply(o *Order) {
	o.Item = req.Item
	o.OrderCompany = req.OrderCompany
	o.Quantity = req.Quantity
	o.OrderDate = req.OrderDate.UTC()
	o.Requester = req.Requester
	o.Status = req.Status
	if o.Status == "" {
		o.Status = StatusWaiting
	}
	o.Remark = req.Remark
}
