package cache

import (
	"context"
	"testing"
	"time"
)

func TestLocalLockerExcludes(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "upload:orders")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "upload:orders"); err == nil {
		t.Fatal("expected second lock on the same key to time out")
	}

	other, err := l.Lock(context.Background(), "upload:stocks")
	if err != nil {
		t.Fatalf("other key should be free: %v", err)
	}
	other()

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "upload:orders")
	if err != nil {
		t.Fatalf("expected lock to be free after unlock: %v", err)
	}
	again()
}

func TestListKeyIsStable(t *testing.T) {
	a := ListKey("orders", "page=1&limit=50")
	if a != ListKey("orders", "page=1&limit=50") {
		t.Error("same query produced different keys")
	}
	if a == ListKey("orders", "page=2&limit=50") || a == ListKey("stocks", "page=1&limit=50") {
		t.Error("different queries share a key")
	}
}
