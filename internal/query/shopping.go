package query

import (
	"github.com/nhle/twodo/internal/model"
)

// ItemsByList returns the items on a list.
func ItemsByList(items []model.ShoppingItem, listID string) []model.ShoppingItem {
	out := make([]model.ShoppingItem, 0)
	for _, it := range items {
		if it.ListID == listID {
			out = append(out, it)
		}
	}
	return out
}

// PurchasedItems returns the purchased items on a list.
func PurchasedItems(items []model.ShoppingItem, listID string) []model.ShoppingItem {
	out := make([]model.ShoppingItem, 0)
	for _, it := range ItemsByList(items, listID) {
		if it.Purchased {
			out = append(out, it)
		}
	}
	return out
}

// UnpurchasedItems returns the items on a list still to buy.
func UnpurchasedItems(items []model.ShoppingItem, listID string) []model.ShoppingItem {
	out := make([]model.ShoppingItem, 0)
	for _, it := range ItemsByList(items, listID) {
		if !it.Purchased {
			out = append(out, it)
		}
	}
	return out
}

// TotalPrice sums price times quantity over the items on a list. Items
// without a price count as zero.
func TotalPrice(items []model.ShoppingItem, listID string) float64 {
	var total float64
	for _, it := range ItemsByList(items, listID) {
		total += it.LineTotal()
	}
	return total
}

// ListTotals aggregates a single shopping list.
type ListTotals struct {
	Items     int
	Purchased int
	Total     float64
	Remaining float64 // price of the items not yet purchased
}

// TotalsByList computes ListTotals for every list id that appears in
// items. Lists without items are absent from the result.
func TotalsByList(items []model.ShoppingItem) map[string]ListTotals {
	out := make(map[string]ListTotals)
	for _, it := range items {
		t := out[it.ListID]
		t.Items++
		t.Total += it.LineTotal()
		if it.Purchased {
			t.Purchased++
		} else {
			t.Remaining += it.LineTotal()
		}
		out[it.ListID] = t
	}
	return out
}
