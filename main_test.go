package main

import (
	"context"
	"testing"

	"github.com/robalobadob/simon/internal/store"
)

func TestOpenLedgerMemory(t *testing.T) {
	ledger, closeLedger, err := openLedger("memory")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeLedger()
	if _, ok := ledger.(*store.SQLite); ok {
		t.Fatal("DB_DSN=memory should not open SQLite")
	}
	if _, err := ledger.SaveResult(context.Background(), store.Result{Score: 30}); err != nil {
		t.Fatalf("save: %v", err)
	}
	top, err := ledger.Top(context.Background(), 1)
	if err != nil || len(top) != 1 || top[0].Score != 30 {
		t.Fatalf("top = %v, %v", top, err)
	}
}

func TestOpenLedgerSQLite(t *testing.T) {
	ledger, closeLedger, err := openLedger(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeLedger()
	if _, ok := ledger.(*store.SQLite); !ok {
		t.Fatalf("expected SQLite ledger, got %T", ledger)
	}
	if _, err := ledger.SaveResult(context.Background(), store.Result{Score: 10}); err != nil {
		t.Fatalf("save: %v", err)
	}
}
