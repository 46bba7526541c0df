package app_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/fulfillment/internal/inventory/app"
	"github.com/dwikikusuma/fulfillment/internal/inventory/domain"
	"github.com/dwikikusuma/fulfillment/internal/inventory/infra/memory"
)

func variantProduct() domain.Product {
	return domain.Product{
		ID:   "p1",
		Name: "T-Shirt",
		Variants: []domain.Variant{
			{Color: "Red", Size: "M", Stock: 5},
			{Color: "Red", Size: "L", Stock: 3},
			{Color: "Blue", Size: "M", Stock: 9},
		},
	}
}

func key(color, size string) *domain.VariantKey {
	k := domain.NewVariantKey(color, size)
	return &k
}

func TestDeductFlatStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(domain.Product{ID: "p1", Name: "Mug", Stock: 10})
	ledger := app.NewLedger(store)

	change, err := ledger.Deduct(ctx, "p1", nil, 4)
	if err != nil {
		t.Fatalf("Deduct failed: %v", err)
	}
	if change.Before != 10 || change.After != 6 {
		t.Fatalf("change = %d -> %d, want 10 -> 6", change.Before, change.After)
	}

	total, err := ledger.TotalStock(ctx, "p1")
	if err != nil {
		t.Fatalf("TotalStock failed: %v", err)
	}
	if total != 6 {
		t.Fatalf("TotalStock = %d, want 6", total)
	}
}

func TestDeductClampsAtZero(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(domain.Product{ID: "p1", Name: "Mug", Stock: 1})
	ledger := app.NewLedger(store)

	change, err := ledger.Deduct(ctx, "p1", nil, 2)
	if err != nil {
		t.Fatalf("Deduct failed: %v", err)
	}
	if change.After != 0 {
		t.Fatalf("stock after clamped deduct = %d, want 0", change.After)
	}
}

func TestDeductVariantTouchesOnlyTarget(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(variantProduct())
	ledger := app.NewLedger(store)

	before, _ := ledger.TotalStock(ctx, "p1")

	change, err := ledger.Deduct(ctx, "p1", key("red", "m"), 2)
	if err != nil {
		t.Fatalf("Deduct failed: %v", err)
	}
	if change.Before != 5 || change.After != 3 {
		t.Fatalf("change = %d -> %d, want 5 -> 3", change.Before, change.After)
	}

	p, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for _, v := range p.Variants {
		switch v.Label() {
		case "Red / M":
			if v.Stock != 3 {
				t.Fatalf("target variant stock = %d, want 3", v.Stock)
			}
		case "Red / L":
			if v.Stock != 3 {
				t.Fatalf("sibling Red/L stock = %d, want untouched 3", v.Stock)
			}
		case "Blue / M":
			if v.Stock != 9 {
				t.Fatalf("sibling Blue/M stock = %d, want untouched 9", v.Stock)
			}
		}
	}

	after, _ := ledger.TotalStock(ctx, "p1")
	if after != before-2 {
		t.Fatalf("total stock = %d, want %d", after, before-2)
	}
}

func TestDeductUnknownVariant(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(variantProduct())
	ledger := app.NewLedger(store)

	_, err := ledger.Deduct(ctx, "p1", key("green", "s"), 1)
	if !errors.Is(err, domain.ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}

	// No mutation on a failed lookup.
	total, _ := ledger.TotalStock(ctx, "p1")
	if total != 17 {
		t.Fatalf("total stock = %d, want unchanged 17", total)
	}
}

func TestDeductVariantProductWithoutSelector(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(variantProduct())
	ledger := app.NewLedger(store)

	if _, err := ledger.Deduct(ctx, "p1", nil, 1); !errors.Is(err, domain.ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
}

func TestDeductRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(variantProduct())
	ledger := app.NewLedger(store)

	t.Run("no clamp restores original", func(t *testing.T) {
		if _, err := ledger.Deduct(ctx, "p1", key("Red", "M"), 2); err != nil {
			t.Fatalf("Deduct failed: %v", err)
		}
		change, err := ledger.Restore(ctx, "p1", key("Red", "M"), 2)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if change.After != 5 {
			t.Fatalf("stock after round trip = %d, want 5", change.After)
		}
	})

	t.Run("clamped deduct does not round trip", func(t *testing.T) {
		// Red/L holds 3: deducting 5 clamps to 0, restoring 5 lands on 5,
		// not the original 3. The clamp-aware formula is clamped + q.
		if _, err := ledger.Deduct(ctx, "p1", key("Red", "L"), 5); err != nil {
			t.Fatalf("Deduct failed: %v", err)
		}
		change, err := ledger.Restore(ctx, "p1", key("Red", "L"), 5)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if change.After != 5 {
			t.Fatalf("stock after clamped round trip = %d, want 0+5=5", change.After)
		}
	})
}

func TestDeductRejectsNonPositiveQuantity(t *testing.T) {
	store := memory.NewProductStore()
	store.Put(domain.Product{ID: "p1", Stock: 10})
	ledger := app.NewLedger(store)

	if _, err := ledger.Deduct(context.Background(), "p1", nil, 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if _, err := ledger.Restore(context.Background(), "p1", nil, -1); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestConcurrentDeductsKeepEveryWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(domain.Product{ID: "p1", Name: "Mug", Stock: 1000})
	ledger := app.NewLedger(store)

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			_, err := ledger.Deduct(ctx, "p1", nil, 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent deduct failed: %v", err)
	}

	total, err := ledger.TotalStock(ctx, "p1")
	if err != nil {
		t.Fatalf("TotalStock failed: %v", err)
	}
	if total != 900 {
		t.Fatalf("stock after 100 deductions of 1 = %d, want 900", total)
	}
}

func TestConcurrentVariantDeductsKeepEveryWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	store.Put(domain.Product{
		ID:   "p1",
		Name: "T-Shirt",
		Variants: []domain.Variant{
			{Color: "Red", Size: "M", Stock: 200},
			{Color: "Blue", Size: "M", Stock: 50},
		},
	})
	ledger := app.NewLedger(store)

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			_, err := ledger.Deduct(ctx, "p1", key("red", "m"), 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent variant deduct failed: %v", err)
	}

	total, err := ledger.TotalStock(ctx, "p1")
	if err != nil {
		t.Fatalf("TotalStock failed: %v", err)
	}
	if total != 150 {
		t.Fatalf("total after 100 variant deductions = %d, want 150", total)
	}
}
