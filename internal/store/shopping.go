package store

import (
	"fmt"
	"strings"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/tables"
	"github.com/nhle/twodo/internal/validate"
)

// AddShoppingList creates a new, empty shopping list.
func (s *Store) AddShoppingList(name string) (model.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if err := validate.ShoppingList(name); err != nil {
		return model.ShoppingList{}, err
	}

	id := s.newID()
	now := s.stamp()
	s.t.SetRow(TableShoppingLists, id, tables.Row{
		"name":      name,
		"createdAt": now,
		"updatedAt": now,
	})
	return s.GetShoppingList(id)
}

// RenameShoppingList changes the name of a list.
func (s *Store) RenameShoppingList(id, name string) error {
	name = strings.TrimSpace(name)
	if err := validate.ShoppingList(name); err != nil {
		return err
	}
	if !s.t.HasRow(TableShoppingLists, id) {
		return fmt.Errorf("shopping list %s: %w", id, ErrNotFound)
	}
	s.t.SetPartialRow(TableShoppingLists, id, tables.Row{
		"name":      name,
		"updatedAt": s.stamp(),
	})
	return nil
}

// DeleteShoppingList removes a list and every item on it. Listeners see
// a single change.
func (s *Store) DeleteShoppingList(id string) error {
	if !s.t.HasRow(TableShoppingLists, id) {
		return fmt.Errorf("shopping list %s: %w", id, ErrNotFound)
	}
	return s.t.Transaction(func() error {
		for itemID, row := range s.t.GetTable(TableShoppingItems) {
			if cellString(row, "listId") == id {
				s.t.DelRow(TableShoppingItems, itemID)
			}
		}
		s.t.DelRow(TableShoppingLists, id)
		return nil
	})
}

// GetShoppingList returns a single list.
func (s *Store) GetShoppingList(id string) (model.ShoppingList, error) {
	row, ok := s.t.GetRow(TableShoppingLists, id)
	if !ok {
		return model.ShoppingList{}, fmt.Errorf("shopping list %s: %w", id, ErrNotFound)
	}
	return listFromRow(id, row), nil
}

// ShoppingLists returns every list, oldest first.
func (s *Store) ShoppingLists() []model.ShoppingList {
	ids := s.t.SortedRowIDs(TableShoppingLists, "createdAt", false)
	lists := make([]model.ShoppingList, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.t.GetRow(TableShoppingLists, id); ok {
			lists = append(lists, listFromRow(id, row))
		}
	}
	return lists
}

// AddShoppingItem adds an item to an existing list. A zero quantity
// defaults to 1.
func (s *Store) AddShoppingItem(item model.ShoppingItem) (model.ShoppingItem, error) {
	if item.Quantity == 0 {
		item.Quantity = validate.DefaultQuantity
	}
	item.Name = strings.TrimSpace(item.Name)
	item.Unit = strings.TrimSpace(item.Unit)
	if err := validate.ShoppingItem(item); err != nil {
		return model.ShoppingItem{}, err
	}
	if !s.t.HasRow(TableShoppingLists, item.ListID) {
		return model.ShoppingItem{}, fmt.Errorf("adding item to list %q: %w", item.ListID, ErrInvalidList)
	}

	now := s.now()
	item.ID = s.newID()
	item.Purchased = false
	item.CreatedAt = now
	item.UpdatedAt = now

	s.t.SetRow(TableShoppingItems, item.ID, itemToRow(item))
	return s.GetShoppingItem(item.ID)
}

// UpdateShoppingItem replaces the editable fields of an item. The item
// stays on its list.
func (s *Store) UpdateShoppingItem(item model.ShoppingItem) (model.ShoppingItem, error) {
	existing, err := s.GetShoppingItem(item.ID)
	if err != nil {
		return model.ShoppingItem{}, err
	}
	if item.Quantity == 0 {
		item.Quantity = validate.DefaultQuantity
	}
	item.Name = strings.TrimSpace(item.Name)
	item.Unit = strings.TrimSpace(item.Unit)
	if err := validate.ShoppingItem(item); err != nil {
		return model.ShoppingItem{}, err
	}

	item.ListID = existing.ListID
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.now()

	s.t.SetRow(TableShoppingItems, item.ID, itemToRow(item))
	return s.GetShoppingItem(item.ID)
}

// DeleteShoppingItem removes an item.
func (s *Store) DeleteShoppingItem(id string) error {
	if !s.t.HasRow(TableShoppingItems, id) {
		return fmt.Errorf("shopping item %s: %w", id, ErrNotFound)
	}
	s.t.DelRow(TableShoppingItems, id)
	return nil
}

// ToggleItemPurchased flips the purchased flag of an item.
func (s *Store) ToggleItemPurchased(id string) (model.ShoppingItem, error) {
	item, err := s.GetShoppingItem(id)
	if err != nil {
		return model.ShoppingItem{}, err
	}
	s.t.SetPartialRow(TableShoppingItems, id, tables.Row{
		"purchased": !item.Purchased,
		"updatedAt": s.stamp(),
	})
	return s.GetShoppingItem(id)
}

// GetShoppingItem returns a single item.
func (s *Store) GetShoppingItem(id string) (model.ShoppingItem, error) {
	row, ok := s.t.GetRow(TableShoppingItems, id)
	if !ok {
		return model.ShoppingItem{}, fmt.Errorf("shopping item %s: %w", id, ErrNotFound)
	}
	return itemFromRow(id, row), nil
}

// ShoppingItems returns every item of every list, oldest first.
func (s *Store) ShoppingItems() []model.ShoppingItem {
	ids := s.t.SortedRowIDs(TableShoppingItems, "createdAt", false)
	items := make([]model.ShoppingItem, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.t.GetRow(TableShoppingItems, id); ok {
			items = append(items, itemFromRow(id, row))
		}
	}
	return items
}
