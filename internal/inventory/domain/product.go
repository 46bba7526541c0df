package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// Product tracks stock either as a single flat count or as a color×size
// variant matrix. The two representations are mutually exclusive: when
// Variants is non-empty, Stock is meaningless.
type Product struct {
	ID        string
	Name      string
	Stock     int64
	Variants  []Variant
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Variant struct {
	Color string
	Size  string
	Stock int64
}

// VariantKey is a normalized (color, size) pair. Variant lookups go through
// keys rather than repeated case-folded string comparisons.
type VariantKey struct {
	Color string
	Size  string
}

func NewVariantKey(color, size string) VariantKey {
	return VariantKey{
		Color: strings.ToLower(strings.TrimSpace(color)),
		Size:  strings.ToLower(strings.TrimSpace(size)),
	}
}

func (v Variant) Key() VariantKey {
	return NewVariantKey(v.Color, v.Size)
}

// Label is the human-readable form used in alerts and notifications.
func (v Variant) Label() string {
	return fmt.Sprintf("%s / %s", v.Color, v.Size)
}

func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

func (p Product) FindVariant(key VariantKey) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Key() == key {
			return v, true
		}
	}
	return Variant{}, false
}

// TotalStock is the flat count for simple products, or the sum over the
// variant matrix when one exists.
func (p Product) TotalStock() int64 {
	if !p.HasVariants() {
		return p.Stock
	}
	var total int64
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// StockChange records a single applied stock mutation. Variant is empty for
// flat-stock products.
type StockChange struct {
	ProductID string
	Product   string
	Variant   string
	Before    int64
	After     int64
}
