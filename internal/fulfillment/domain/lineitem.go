package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrMalformedLineItem = errors.New("malformed line item")

// NormalizeLineItem maps the field-name variants found in historical order
// payloads onto the canonical LineItem shape. Old checkout clients wrote
// "id"/"productId", "selectedColor"/"color" and friends interchangeably;
// everything past this boundary sees one shape only.
func NormalizeLineItem(raw map[string]any) (LineItem, error) {
	productID := firstString(raw, "product_id", "productId", "id")
	if productID == "" {
		return LineItem{}, fmt.Errorf("missing product id: %w", ErrMalformedLineItem)
	}

	qty, ok := firstInt(raw, "quantity", "qty")
	if !ok || qty <= 0 {
		return LineItem{}, fmt.Errorf("product %s: quantity must be a positive integer: %w", productID, ErrMalformedLineItem)
	}

	unit, _ := firstInt(raw, "unit_amount", "unitAmount", "unit_price", "unitPrice", "price")

	return LineItem{
		ProductID:  productID,
		Color:      firstString(raw, "color", "selected_color", "selectedColor"),
		Size:       firstString(raw, "size", "selected_size", "selectedSize"),
		Quantity:   qty,
		UnitAmount: unit,
	}, nil
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func firstInt(raw map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case int64:
			return v, true
		case int:
			return int64(v), true
		case float64:
			// JSON numbers decode as float64; reject fractional values.
			if v != math.Trunc(v) {
				return 0, false
			}
			return int64(v), true
		}
	}
	return 0, false
}
