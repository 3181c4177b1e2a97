package model

import "time"

// ShoppingList groups shopping items. Deleting a list deletes its items.
type ShoppingList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShoppingItem is an entry on a shopping list.
type ShoppingItem struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	Purchased bool      `json:"purchased"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LineTotal is price times quantity; items without a price count as zero.
func (i ShoppingItem) LineTotal() float64 {
	if i.Price == nil {
		return 0
	}
	return *i.Price * i.Quantity
}
