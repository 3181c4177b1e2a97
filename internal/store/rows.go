package store

import (
	"encoding/json"
	"time"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/tables"
)

func toMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func fromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms))
}

func cellString(r tables.Row, name string) string {
	s, _ := r[name].(string)
	return s
}

func cellNumber(r tables.Row, name string) float64 {
	n, _ := r[name].(float64)
	return n
}

func cellBool(r tables.Row, name string) bool {
	b, _ := r[name].(bool)
	return b
}

func cellTime(r tables.Row, name string) time.Time {
	return fromMillis(cellNumber(r, name))
}

func cellOptionalTime(r tables.Row, name string) *time.Time {
	n, ok := r[name].(float64)
	if !ok {
		return nil
	}
	t := fromMillis(n)
	return &t
}

func cellOptionalNumber(r tables.Row, name string) *float64 {
	n, ok := r[name].(float64)
	if !ok {
		return nil
	}
	return &n
}

// cellList decodes a JSON string array cell. Malformed values read as
// empty.
func cellList(r tables.Row, name string) []string {
	raw := cellString(r, name)
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func todoFromRow(id string, r tables.Row) model.Todo {
	return model.Todo{
		ID:          id,
		Title:       cellString(r, "title"),
		Description: cellString(r, "description"),
		Completed:   cellBool(r, "completed"),
		Priority:    model.Priority(cellString(r, "priority")),
		DueDate:     cellOptionalTime(r, "dueDate"),
		CategoryID:  cellString(r, "categoryId"),
		CreatedAt:   cellTime(r, "createdAt"),
		UpdatedAt:   cellTime(r, "updatedAt"),
	}
}

func todoToRow(t model.Todo) tables.Row {
	r := tables.Row{
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"priority":    string(t.Priority),
		"createdAt":   toMillis(t.CreatedAt),
		"updatedAt":   toMillis(t.UpdatedAt),
	}
	if t.DueDate != nil {
		r["dueDate"] = toMillis(*t.DueDate)
	}
	if t.CategoryID != "" {
		r["categoryId"] = t.CategoryID
	}
	return r
}

func listFromRow(id string, r tables.Row) model.ShoppingList {
	return model.ShoppingList{
		ID:        id,
		Name:      cellString(r, "name"),
		CreatedAt: cellTime(r, "createdAt"),
		UpdatedAt: cellTime(r, "updatedAt"),
	}
}

func itemFromRow(id string, r tables.Row) model.ShoppingItem {
	return model.ShoppingItem{
		ID:        id,
		ListID:    cellString(r, "listId"),
		Name:      cellString(r, "name"),
		Quantity:  cellNumber(r, "quantity"),
		Unit:      cellString(r, "unit"),
		Price:     cellOptionalNumber(r, "price"),
		Purchased: cellBool(r, "purchased"),
		CreatedAt: cellTime(r, "createdAt"),
		UpdatedAt: cellTime(r, "updatedAt"),
	}
}

func itemToRow(i model.ShoppingItem) tables.Row {
	r := tables.Row{
		"listId":    i.ListID,
		"name":      i.Name,
		"quantity":  i.Quantity,
		"purchased": i.Purchased,
		"createdAt": toMillis(i.CreatedAt),
		"updatedAt": toMillis(i.UpdatedAt),
	}
	if i.Unit != "" {
		r["unit"] = i.Unit
	}
	if i.Price != nil {
		r["price"] = *i.Price
	}
	return r
}

func noteFromRow(id string, r tables.Row) model.Note {
	return model.Note{
		ID:         id,
		Title:      cellString(r, "title"),
		Content:    cellString(r, "content"),
		CategoryID: cellString(r, "categoryId"),
		Tags:       cellList(r, "tags"),
		Images:     cellList(r, "images"),
		Links:      cellList(r, "links"),
		CreatedAt:  cellTime(r, "createdAt"),
		UpdatedAt:  cellTime(r, "updatedAt"),
	}
}

func noteToRow(n model.Note) tables.Row {
	r := tables.Row{
		"title":     n.Title,
		"content":   n.Content,
		"tags":      encodeList(n.Tags),
		"images":    encodeList(n.Images),
		"links":     encodeList(n.Links),
		"createdAt": toMillis(n.CreatedAt),
		"updatedAt": toMillis(n.UpdatedAt),
	}
	if n.CategoryID != "" {
		r["categoryId"] = n.CategoryID
	}
	return r
}

func categoryFromRow(id string, r tables.Row) model.Category {
	return model.Category{
		ID:    id,
		Name:  cellString(r, "name"),
		Color: cellString(r, "color"),
	}
}
