package store

import (
	"github.com/nhle/twodo/internal/tables"
)

// Seed writes the starter categories, todos and shopping lists. It does
// nothing unless the store is empty, and reports whether data was written.
func (s *Store) Seed() bool {
	if !s.t.IsEmpty() {
		return false
	}

	now := s.stamp()
	_ = s.t.Transaction(func() error {
		s.t.SetTable(TableCategories, tables.Table{
			"cat1": {"name": "Personal", "color": "#4CAF50"},
			"cat2": {"name": "Work", "color": "#2196F3"},
			"cat3": {"name": "Shopping", "color": "#FF9800"},
			"cat4": {"name": "Health", "color": "#E91E63"},
		})
		s.t.SetTable(TableTodos, tables.Table{
			"todo1": seedTodo("Buy groceries", "cat3", now),
			"todo2": seedTodo("Finish project", "cat2", now),
			"todo3": seedTodo("Go for a run", "cat4", now),
		})
		s.t.SetTable(TableShoppingLists, tables.Table{
			"list1": {"name": "Groceries", "createdAt": now, "updatedAt": now},
			"list2": {"name": "Hardware", "createdAt": now, "updatedAt": now},
		})
		return nil
	})
	return true
}

func seedTodo(title, categoryID string, now float64) tables.Row {
	return tables.Row{
		"title":      title,
		"categoryId": categoryID,
		"completed":  false,
		"priority":   "medium",
		"createdAt":  now,
		"updatedAt":  now,
	}
}
