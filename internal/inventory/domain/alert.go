package domain

// Alert classifies a stock mutation for notification purposes.
type Alert int

const (
	AlertNone Alert = iota
	AlertOutOfStock
	AlertLowStock
	AlertBackInStock
)

func (a Alert) String() string {
	switch a {
	case AlertOutOfStock:
		return "out_of_stock"
	case AlertLowStock:
		return "low_stock"
	case AlertBackInStock:
		return "back_in_stock"
	default:
		return "none"
	}
}

// ClassifyStockChange decides whether an old/new stock pair warrants an
// alert. An unchanged value never re-alerts: a product sitting at a low
// count does not trigger again on every read.
func ClassifyStockChange(oldStock, newStock, threshold int64) Alert {
	switch {
	case newStock == 0 && oldStock > 0:
		return AlertOutOfStock
	case newStock > 0 && newStock <= threshold && newStock != oldStock:
		return AlertLowStock
	case oldStock == 0 && newStock > 0:
		return AlertBackInStock
	default:
		return AlertNone
	}
}
