package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/tables"
	"github.com/nhle/twodo/internal/validate"
)

// AddCategory inserts a new category. When c.ID is set it is used as the
// row id, which lets seed data use stable ids.
func (s *Store) AddCategory(c model.Category) (model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	if err := validate.Category(c); err != nil {
		return model.Category{}, err
	}
	if c.ID == "" {
		c.ID = s.newID()
	}

	s.t.SetRow(TableCategories, c.ID, tables.Row{
		"name":  c.Name,
		"color": c.Color,
	})
	return s.GetCategory(c.ID)
}

// UpdateCategory renames or recolors a category.
func (s *Store) UpdateCategory(c model.Category) (model.Category, error) {
	if !s.t.HasRow(TableCategories, c.ID) {
		return model.Category{}, fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	if err := validate.Category(c); err != nil {
		return model.Category{}, err
	}

	s.t.SetRow(TableCategories, c.ID, tables.Row{
		"name":  c.Name,
		"color": c.Color,
	})
	return s.GetCategory(c.ID)
}

// DeleteCategory removes a category and clears it from every todo and
// note that referenced it.
func (s *Store) DeleteCategory(id string) error {
	if !s.t.HasRow(TableCategories, id) {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return s.t.Transaction(func() error {
		stamp := s.stamp()
		for _, tableID := range []string{TableTodos, TableNotes} {
			for rowID, row := range s.t.GetTable(tableID) {
				if cellString(row, "categoryId") == id {
					s.t.DelCell(tableID, rowID, "categoryId")
					s.t.SetPartialRow(tableID, rowID, tables.Row{"updatedAt": stamp})
				}
			}
		}
		s.t.DelRow(TableCategories, id)
		return nil
	})
}

// GetCategory returns a single category.
func (s *Store) GetCategory(id string) (model.Category, error) {
	row, ok := s.t.GetRow(TableCategories, id)
	if !ok {
		return model.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return categoryFromRow(id, row), nil
}

// Categories returns every category ordered by name.
func (s *Store) Categories() []model.Category {
	table := s.t.GetTable(TableCategories)
	cats := make([]model.Category, 0, len(table))
	for id, row := range table {
		cats = append(cats, categoryFromRow(id, row))
	}
	sort.Slice(cats, func(i, j int) bool {
		a, b := strings.ToLower(cats[i].Name), strings.ToLower(cats[j].Name)
		if a == b {
			return cats[i].ID < cats[j].ID
		}
		return a < b
	})
	return cats
}
