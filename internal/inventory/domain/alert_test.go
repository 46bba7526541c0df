package domain

import "testing"

func TestClassifyStockChange(t *testing.T) {
	cases := []struct {
		name      string
		old, new  int64
		threshold int64
		want      Alert
	}{
		{"crossing into zero", 1, 0, 10, AlertOutOfStock},
		{"depleting to zero from high", 50, 0, 10, AlertOutOfStock},
		{"dropping into low range", 12, 8, 10, AlertLowStock},
		{"moving within low range", 8, 5, 10, AlertLowStock},
		{"restock above threshold", 0, 25, 10, AlertBackInStock},
		{"restock into low range counts as low", 0, 5, 10, AlertLowStock},
		{"high and stays high", 50, 48, 10, AlertNone},
		{"already zero stays zero", 0, 0, 10, AlertNone},
		{"static low value does not re-alert", 5, 5, 10, AlertNone},
		{"exactly at threshold", 11, 10, 10, AlertLowStock},
		{"just above threshold", 12, 11, 10, AlertNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyStockChange(tc.old, tc.new, tc.threshold); got != tc.want {
				t.Fatalf("ClassifyStockChange(%d, %d, %d) = %v, want %v", tc.old, tc.new, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestClassifyStockChangeDedupStable(t *testing.T) {
	// First mutation alerts; a second call with the now-unchanged value
	// must stay quiet.
	if got := ClassifyStockChange(12, 8, 10); got != AlertLowStock {
		t.Fatalf("first call = %v, want %v", got, AlertLowStock)
	}
	if got := ClassifyStockChange(8, 8, 10); got != AlertNone {
		t.Fatalf("repeat call = %v, want %v", got, AlertNone)
	}
}
