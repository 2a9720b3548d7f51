package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/repositories/memory"
)

var orderDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, st *memory.Store, qty int) *models.Order {
	t.Helper()
	o, err := NewOrderService(st).Create(context.Background(), &models.OrderRequest{
		Item:         models.Item{ItemCode: "P1", Division: "A"},
		OrderCompany: "현대",
		Quantity:     qty,
		OrderDate:    orderDay,
	})
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func orderQty(t *testing.T, st *memory.Store, o *models.Order) int {
	t.Helper()
	got, err := st.Orders().Get(context.Background(), o.ID)
	if err != nil {
		t.Fatal(err)
	}
	return got.Quantity
}

func shipment(qty int) *models.ShipmentRequest {
	return &models.ShipmentRequest{
		Item:            models.Item{ItemCode: "P1", Division: "A"},
		ShippingCompany: "현대",
		Quantity:        qty,
		ShippingDate:    orderDay,
	}
}

func TestShipmentEditReappliesDelta(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log := quietLogger()
	svc := NewShipmentService(st, NewLedger(log), log)
	order := seedOrder(t, st, 50)

	s, err := svc.Create(ctx, shipment(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := orderQty(t, st, order); got != 40 {
		t.Fatalf("after create: order = %d, want 40", got)
	}
	if len(s.Allocations) != 1 || s.Allocations[0].OrderID != order.ID {
		t.Fatalf("unexpected allocations: %+v", s.Allocations)
	}

	if _, err := svc.Update(ctx, s.ID.String(), shipment(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := orderQty(t, st, order); got != 47 {
		t.Fatalf("after edit: order = %d, want 47", got)
	}

	if err := svc.Delete(ctx, s.ID.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := orderQty(t, st, order); got != 50 {
		t.Fatalf("after delete: order = %d, want 50", got)
	}
}

func TestShipmentOverShipGoesNegative(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log := quietLogger()
	order := seedOrder(t, st, 5)

	if _, err := NewShipmentService(st, NewLedger(log), log).Create(ctx, shipment(8)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := orderQty(t, st, order); got != -3 {
		t.Errorf("order = %d, want -3", got)
	}
}

func TestShipmentWithoutOrderIsNotAnError(t *testing.T) {
	st := memory.New()
	log := quietLogger()
	s, err := NewShipmentService(st, NewLedger(log), log).Create(context.Background(), shipment(8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Allocations) != 0 {
		t.Errorf("expected no allocations, got %+v", s.Allocations)
	}
}

func delivery(code string, qty int) *models.DeliveryRequest {
	return &models.DeliveryRequest{
		Item:            models.Item{ItemCode: code, ItemName: "강판", Division: "A"},
		DeliveryCompany: "세원",
		Quantity:        qty,
		DeliveryDate:    orderDay,
	}
}

func TestDeliveryCreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log := quietLogger()
	svc := NewDeliveryService(st, NewLedger(log), log)

	boom := errors.New("write failed")
	st.FailOn("stocks.Create", boom)
	if _, err := svc.Create(ctx, delivery("M1", 10), "kim"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if n := countDeliveries(t, st); n != 0 {
		t.Errorf("expected no deliveries, got %d", n)
	}
	if n := len(allStocks(t, st)); n != 0 {
		t.Errorf("expected no stock rows, got %d", n)
	}

	st.FailOn("stocks.Create", nil)
	st.FailOn("deliveries.Create", boom)
	if _, err := svc.Create(ctx, delivery("M1", 10), "kim"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if n := len(allStocks(t, st)); n != 0 {
		t.Errorf("stock booked although the delivery was not stored: %d rows", n)
	}
}

func TestDeliveryLifecycleMovesStock(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log := quietLogger()
	svc := NewDeliveryService(st, NewLedger(log), log)

	d, err := svc.Create(ctx, delivery("M1", 10), "kim")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.StockID == nil || d.CreatedBy != "kim" {
		t.Fatalf("unexpected delivery: %+v", d)
	}

	// Moving the delivery to another material takes the quantity off the first stock row.
	if _, err := svc.Update(ctx, d.ID.String(), delivery("M2", 4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byCode := map[string]decimal.Decimal{}
	for _, s := range allStocks(t, st) {
		byCode[s.MaterialCode] = s.CurrentQty
	}
	if !byCode["M1"].IsZero() || !byCode["M2"].Equal(decimal.NewFromInt(4)) {
		t.Fatalf("unexpected stock after edit: %v", byCode)
	}

	if err := svc.Delete(ctx, d.ID.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range allStocks(t, st) {
		if !s.CurrentQty.IsZero() {
			t.Errorf("stock %s = %s after delete, want 0", s.MaterialCode, s.CurrentQty)
		}
	}
}

func TestServiceErrorKinds(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	log := quietLogger()
	svc := NewDeliveryService(st, NewLedger(log), log)

	if _, err := svc.Get(ctx, "not-a-uuid"); KindOf(err) != KindInvalidID {
		t.Errorf("malformed id: kind = %s, want invalid_id", KindOf(err))
	}
	if _, err := svc.Get(ctx, "1b4e28ba-2fa1-11d2-883f-0016d3cca427"); KindOf(err) != KindNotFound {
		t.Errorf("unknown id: kind = %s, want not_found", KindOf(err))
	}
	bad := delivery("M1", 0)
	if _, err := svc.Create(ctx, bad, ""); KindOf(err) != KindValidation {
		t.Errorf("zero quantity: kind = %s, want validation", KindOf(err))
	}
}
