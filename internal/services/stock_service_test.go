package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/repositories/memory"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestStockCurrentQtyInvariant(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewStockService(st, quietLogger())
	key := models.StockKey{Customer: "현대", Division: "A", PartNumber: "P1", MaterialCode: "M1"}

	check := func(step string, s *models.Stock) {
		t.Helper()
		if !s.Consistent() {
			t.Fatalf("%s: current %s != %s + %s - %s", step, s.CurrentQty, s.OpeningQty, s.InboundQty, s.UsedQty)
		}
	}

	s, err := svc.Create(ctx, &models.StockRequest{StockKey: key, OpeningQty: dec("100")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	check("create", s)

	s, err = svc.AddInbound(ctx, &models.StockMovement{StockKey: key, Quantity: decimal.RequireFromString("25.5")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	check("inbound", s)
	if s.LastMovementAt == nil {
		t.Error("inbound should stamp lastMovementAt")
	}

	s, err = svc.ConsumeByProduction(ctx, &models.StockMovement{StockKey: key, Quantity: decimal.NewFromInt(30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	check("consume", s)
	if !s.CurrentQty.Equal(decimal.RequireFromString("95.5")) {
		t.Errorf("current = %s, want 95.5", s.CurrentQty)
	}

	s, err = svc.Update(ctx, s.ID.String(), &models.StockRequest{UsedQty: dec("0")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	check("edit", s)
	if !s.CurrentQty.Equal(decimal.RequireFromString("125.5")) || s.MaterialCode != "M1" {
		t.Errorf("unexpected stock after edit: current=%s key=%+v", s.CurrentQty, s.StockKey)
	}
}

func TestStockCreateConflict(t *testing.T) {
	ctx := context.Background()
	svc := NewStockService(memory.New(), quietLogger())
	req := &models.StockRequest{StockKey: models.StockKey{Division: "A", MaterialCode: "M1"}}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, req); KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestConsumeCreatesMissingRow(t *testing.T) {
	svc := NewStockService(memory.New(), quietLogger())
	s, err := svc.ConsumeByProduction(context.Background(), &models.StockMovement{
		StockKey: models.StockKey{Division: "A", MaterialCode: "M9"},
		Quantity: decimal.NewFromInt(3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.CurrentQty.Equal(decimal.NewFromInt(-3)) {
		t.Errorf("current = %s, want -3", s.CurrentQty)
	}
}

func TestAuditCurrentQtyRepairsDrift(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewStockService(st, quietLogger())

	drifted := models.NewStock(models.StockKey{Division: "A", MaterialCode: "M1"}, testNow)
	drifted.OpeningQty = decimal.NewFromInt(10)
	drifted.CurrentQty = decimal.NewFromInt(99)
	if err := st.Stocks().Create(ctx, drifted); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, &models.StockRequest{StockKey: models.StockKey{Division: "A", MaterialCode: "M2"}, OpeningQty: dec("1")}); err != nil {
		t.Fatal(err)
	}

	n, err := svc.AuditCurrentQty(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("repaired %d rows, want 1", n)
	}
	for _, s := range allStocks(t, st) {
		if !s.Consistent() {
			t.Errorf("stock %s still drifted", s.MaterialCode)
		}
	}
	if n, _ := svc.AuditCurrentQty(ctx); n != 0 {
		t.Errorf("second audit repaired %d rows, want 0", n)
	}
}
