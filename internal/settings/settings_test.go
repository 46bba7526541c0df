package settings

import (
	"context"
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := []Settings{
		{PurchaseBonusRate: -1, LowStockThreshold: 10},
		{PurchaseBonusRate: 101, LowStockThreshold: 10},
		{ReferralCommissionRate: 200, LowStockThreshold: 10},
		{LowStockThreshold: -5},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, s)
		}
	}
}

func TestMemoryStoreRejectsInvalidSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Default())

	if err := store.Save(ctx, Settings{PurchaseBonusRate: -1}); err == nil {
		t.Fatal("expected invalid settings to be rejected")
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != Default() {
		t.Fatalf("settings = %+v, want untouched defaults", got)
	}
}
