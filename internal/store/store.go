// Package store exposes typed CRUD accessors for todos, shopping lists,
// shopping items, notes and categories on top of a reactive tables.Store.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/twodo/internal/tables"
)

// Table ids.
const (
	TableTodos         = "todos"
	TableShoppingLists = "shoppingLists"
	TableShoppingItems = "shoppingItems"
	TableNotes         = "notes"
	TableCategories    = "categories"
)

// AllTables lists every table the application uses.
var AllTables = []string{
	TableTodos,
	TableShoppingLists,
	TableShoppingItems,
	TableNotes,
	TableCategories,
}

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidList is returned when a shopping item references a list
	// that does not exist.
	ErrInvalidList = errors.New("shopping list does not exist")
)

// Schema returns the cell schema of every table.
func Schema() map[string]tables.TableSchema {
	str := func(def any) tables.CellSchema { return tables.CellSchema{Type: tables.TypeString, Default: def} }
	num := func(def any) tables.CellSchema { return tables.CellSchema{Type: tables.TypeNumber, Default: def} }
	boolean := tables.CellSchema{Type: tables.TypeBoolean, Default: false}

	return map[string]tables.TableSchema{
		TableTodos: {
			"title":       str(""),
			"description": str(""),
			"completed":   boolean,
			"priority":    str("medium"),
			"dueDate":     num(nil),
			"categoryId":  str(nil),
			"createdAt":   num(0),
			"updatedAt":   num(0),
		},
		TableShoppingLists: {
			"name":      str(""),
			"createdAt": num(0),
			"updatedAt": num(0),
		},
		TableShoppingItems: {
			"listId":    str(""),
			"name":      str(""),
			"quantity":  num(1),
			"unit":      str(nil),
			"price":     num(nil),
			"purchased": boolean,
			"createdAt": num(0),
			"updatedAt": num(0),
		},
		TableNotes: {
			"title":      str(""),
			"content":    str(""),
			"categoryId": str(nil),
			"tags":       str("[]"),
			"images":     str("[]"),
			"links":      str("[]"),
			"createdAt":  num(0),
			"updatedAt":  num(0),
		},
		TableCategories: {
			"name":  str(""),
			"color": str(""),
		},
	}
}

// Store is the application's data handle. It is safe for concurrent use.
type Store struct {
	t     *tables.Store
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how new row ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New declares the application schema on t and wraps it.
func New(t *tables.Store, opts ...Option) *Store {
	s := &Store{
		t:     t,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	t.SetTablesSchema(Schema())
	return s
}

// Tables returns the underlying reactive store.
func (s *Store) Tables() *tables.Store {
	return s.t
}

// IsEmpty reports whether no table holds any row.
func (s *Store) IsEmpty() bool {
	return s.t.IsEmpty()
}

// ClearAll deletes every row of every table.
func (s *Store) ClearAll() {
	s.t.DelTables()
}

// Subscribe returns a channel that receives a value after any change to
// the given tables (every table when none are given). Notifications are
// coalesced: a pending value is not duplicated. The returned func stops
// the subscription.
func (s *Store) Subscribe(tableIDs ...string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	signal := func(tables.Change) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	var ids []int
	if len(tableIDs) == 0 {
		ids = append(ids, s.t.AddTablesListener(signal))
	}
	for _, tableID := range tableIDs {
		ids = append(ids, s.t.AddTableListener(tableID, signal))
	}

	cancel := func() {
		for _, id := range ids {
			s.t.DelListener(id)
		}
	}
	return ch, cancel
}

func (s *Store) stamp() float64 {
	return toMillis(s.now())
}
