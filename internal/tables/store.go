// Package tables is a small in-memory reactive store of named tables.
//
// A store holds tables of rows keyed by id; each row is a set of named
// cells holding a string, number (float64) or bool. Tables may be given a
// schema that types cells and supplies defaults. Listeners registered on a
// table, row or cell are called after every mutation that touches them,
// and mutations made inside Transaction are reported once when the
// outermost transaction finishes.
package tables

import (
	"sort"
	"sync"
)

// Row is a single record: cell name to cell value.
type Row map[string]any

// Table maps row ids to rows.
type Table map[string]Row

// Tables maps table ids to tables; it is the full content of a store.
type Tables map[string]Table

// Listener is called with the change that triggered it. It runs on the
// goroutine that made the mutation, after the store lock is released.
type Listener func(c Change)

type listener struct {
	id      int
	tableID string
	rowID   string
	cellID  string
	fn      Listener
}

// Store is an in-memory reactive container of tables. The zero value is
// not usable; create one with New.
type Store struct {
	mu        sync.Mutex
	tables    Tables
	schemas   map[string]TableSchema
	listeners map[int]*listener
	nextID    int
	txDepth   int
	pending   *Change
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tables:    make(Tables),
		schemas:   make(map[string]TableSchema),
		listeners: make(map[int]*listener),
	}
}

// SetTablesSchema declares schemas for the given tables and re-validates
// any content already held in them.
func (s *Store) SetTablesSchema(schemas map[string]TableSchema) {
	s.mutate(func(ch *Change) {
		for tableID, ts := range schemas {
			clean := make(TableSchema, len(ts))
			for name, cs := range ts {
				if cs.Default != nil {
					if d, ok := coerce(cs.Default, cs.Type); ok {
						cs.Default = d
					} else {
						cs.Default = nil
					}
				}
				clean[name] = cs
			}
			s.schemas[tableID] = clean

			for rowID, row := range s.tables[tableID] {
				s.setRowLocked(ch, tableID, rowID, clean.applyRow(row))
			}
		}
	})
}

// TableSchema returns the schema declared for a table.
func (s *Store) TableSchema(tableID string) (TableSchema, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.schemas[tableID]
	if !ok {
		return nil, false
	}
	out := make(TableSchema, len(ts))
	for k, v := range ts {
		out[k] = v
	}
	return out, true
}

// SchemaTableIDs returns the ids of every table that has a schema.
func (s *Store) SchemaTableIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.schemas))
	for id := range s.schemas {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

// GetContent returns a deep copy of every table in the store.
func (s *Store) GetContent() Tables {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Tables, len(s.tables))
	for id, t := range s.tables {
		out[id] = copyTable(t)
	}
	return out
}

// SetContent replaces the whole content of the store.
func (s *Store) SetContent(content Tables) {
	s.mutate(func(ch *Change) {
		for tableID := range s.tables {
			if _, keep := content[tableID]; !keep {
				s.delTableLocked(ch, tableID)
			}
		}
		for tableID, t := range content {
			s.setTableLocked(ch, tableID, t)
		}
	})
}

// IsEmpty reports whether the store holds no rows at all.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tables {
		if len(t) > 0 {
			return false
		}
	}
	return true
}

// TableIDs returns the ids of all non-empty tables.
func (s *Store) TableIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.tables))
	for id, t := range s.tables {
		if len(t) > 0 {
			ids = append(ids, id)
		}
	}
	sortStrings(ids)
	return ids
}

// HasTable reports whether the table exists and has rows.
func (s *Store) HasTable(tableID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[tableID]) > 0
}

// GetTable returns a copy of the table, or an empty table.
func (s *Store) GetTable(tableID string) Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTable(s.tables[tableID])
}

// SetTable replaces the content of a table.
func (s *Store) SetTable(tableID string, t Table) {
	s.mutate(func(ch *Change) {
		s.setTableLocked(ch, tableID, t)
	})
}

// DelTable removes every row of a table.
func (s *Store) DelTable(tableID string) {
	s.mutate(func(ch *Change) {
		s.delTableLocked(ch, tableID)
	})
}

// DelTables removes every table.
func (s *Store) DelTables() {
	s.mutate(func(ch *Change) {
		for tableID := range s.tables {
			s.delTableLocked(ch, tableID)
		}
	})
}

// RowIDs returns the row ids of a table in sorted order.
func (s *Store) RowIDs(tableID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tables[tableID]
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

// SortedRowIDs returns the row ids of a table ordered by the value of a
// cell. Rows missing the cell sort first; ties are broken by row id.
func (s *Store) SortedRowIDs(tableID, cellID string, descending bool) []string {
	s.mu.Lock()
	t := copyTable(s.tables[tableID])
	s.mu.Unlock()

	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, aok := t[ids[i]][cellID]
		b, bok := t[ids[j]][cellID]
		c := compareCells(a, aok, b, bok)
		if c == 0 {
			return ids[i] < ids[j]
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
	return ids
}

// HasRow reports whether the row exists.
func (s *Store) HasRow(tableID, rowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[tableID][rowID]
	return ok
}

// GetRow returns a copy of a row.
func (s *Store) GetRow(tableID, rowID string) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tables[tableID][rowID]
	if !ok {
		return nil, false
	}
	return copyRow(row), true
}

// SetRow replaces a row. Setting a row that ends up with no valid cells
// deletes it.
func (s *Store) SetRow(tableID, rowID string, row Row) {
	s.mutate(func(ch *Change) {
		s.setRowLocked(ch, tableID, rowID, s.validRow(tableID, row))
	})
}

// SetPartialRow merges the given cells into a row, creating it when it
// does not exist.
func (s *Store) SetPartialRow(tableID, rowID string, cells Row) {
	s.mutate(func(ch *Change) {
		existing, ok := s.tables[tableID][rowID]
		merged := make(Row, len(existing)+len(cells))
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range cells {
			merged[k] = v
		}
		if !ok {
			s.setRowLocked(ch, tableID, rowID, s.validRow(tableID, merged))
			return
		}
		s.setRowLocked(ch, tableID, rowID, s.validCells(tableID, existing, merged))
	})
}

// DelRow removes a row.
func (s *Store) DelRow(tableID, rowID string) {
	s.mutate(func(ch *Change) {
		s.setRowLocked(ch, tableID, rowID, nil)
	})
}

// GetCell returns the value of a cell.
func (s *Store) GetCell(tableID, rowID, cellID string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.tables[tableID][rowID][cellID]
	return v, ok
}

// SetCell writes a single cell. Values that do not fit the schema are
// ignored.
func (s *Store) SetCell(tableID, rowID, cellID string, value any) {
	s.SetPartialRow(tableID, rowID, Row{cellID: value})
}

// DelCell removes a single cell. Cells with a schema default are reset
// to the default instead.
func (s *Store) DelCell(tableID, rowID, cellID string) {
	s.mutate(func(ch *Change) {
		existing, ok := s.tables[tableID][rowID]
		if !ok {
			return
		}
		next := copyRow(existing)
		delete(next, cellID)
		if ts, ok := s.schemas[tableID]; ok {
			if cs, ok := ts[cellID]; ok && cs.Default != nil {
				next[cellID] = cs.Default
			}
		}
		s.setRowLocked(ch, tableID, rowID, next)
	})
}

// Transaction runs fn and reports all mutations made inside it to
// listeners once, after fn returns. Transactions nest; only the
// outermost one notifies. Mutations are not rolled back on error, and
// listeners still hear about them when fn panics.
func (s *Store) Transaction(fn func() error) error {
	s.mu.Lock()
	s.txDepth++
	if s.txDepth == 1 {
		s.pending = newChange()
	}
	s.mu.Unlock()

	defer s.endTransaction()
	return fn()
}

func (s *Store) endTransaction() {
	s.mu.Lock()
	s.txDepth--
	if s.txDepth > 0 {
		s.mu.Unlock()
		return
	}
	ch := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.notify(ch)
}

// AddTablesListener registers a listener for any change in the store.
func (s *Store) AddTablesListener(fn Listener) int {
	return s.addListener("", "", "", fn)
}

// AddTableListener registers a listener for changes to a table. An
// empty tableID matches every table.
func (s *Store) AddTableListener(tableID string, fn Listener) int {
	return s.addListener(tableID, "", "", fn)
}

// AddRowListener registers a listener for changes to a row.
func (s *Store) AddRowListener(tableID, rowID string, fn Listener) int {
	return s.addListener(tableID, rowID, "", fn)
}

// AddCellListener registers a listener for changes to a cell.
func (s *Store) AddCellListener(tableID, rowID, cellID string, fn Listener) int {
	return s.addListener(tableID, rowID, cellID, fn)
}

// DelListener removes a listener by id.
func (s *Store) DelListener(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

func (s *Store) addListener(tableID, rowID, cellID string, fn Listener) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.listeners[s.nextID] = &listener{
		id:      s.nextID,
		tableID: tableID,
		rowID:   rowID,
		cellID:  cellID,
		fn:      fn,
	}
	return s.nextID
}

// mutate runs fn under the lock and notifies listeners unless a
// transaction is open.
func (s *Store) mutate(fn func(ch *Change)) {
	s.mu.Lock()
	if s.txDepth > 0 {
		fn(s.pending)
		s.mu.Unlock()
		return
	}
	ch := newChange()
	fn(ch)
	s.mu.Unlock()

	s.notify(ch)
}

func (s *Store) notify(ch *Change) {
	if ch == nil || ch.Empty() {
		return
	}

	s.mu.Lock()
	var matched []*listener
	for _, l := range s.listeners {
		if ch.Touches(l.tableID, l.rowID, l.cellID) {
			matched = append(matched, l)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	for _, l := range matched {
		l.fn(*ch)
	}
}

// validRow applies the table schema (or loose validation) to a full row.
func (s *Store) validRow(tableID string, row Row) Row {
	if ts, ok := s.schemas[tableID]; ok {
		return ts.applyRow(row)
	}
	return applyLoose(row)
}

// validCells validates merged cells while keeping existing values for
// cells whose new value is rejected.
func (s *Store) validCells(tableID string, existing, merged Row) Row {
	ts, hasSchema := s.schemas[tableID]
	out := make(Row, len(merged))
	for name, v := range merged {
		var (
			c  any
			ok bool
		)
		if hasSchema {
			if _, known := ts[name]; !known {
				continue
			}
			c, ok = coerce(v, ts[name].Type)
		} else {
			c, ok = normalize(v)
		}
		if ok {
			out[name] = c
			continue
		}
		if old, had := existing[name]; had {
			out[name] = old
		}
	}
	return out
}

func (s *Store) setTableLocked(ch *Change, tableID string, t Table) {
	for rowID := range s.tables[tableID] {
		if _, keep := t[rowID]; !keep {
			s.setRowLocked(ch, tableID, rowID, nil)
		}
	}
	for rowID, row := range t {
		s.setRowLocked(ch, tableID, rowID, s.validRow(tableID, row))
	}
}

func (s *Store) delTableLocked(ch *Change, tableID string) {
	for rowID := range s.tables[tableID] {
		s.setRowLocked(ch, tableID, rowID, nil)
	}
	delete(s.tables, tableID)
}

// setRowLocked stores next as the row (nil or empty deletes it) and
// records every cell that differs from the previous value.
func (s *Store) setRowLocked(ch *Change, tableID, rowID string, next Row) {
	t := s.tables[tableID]
	prev, existed := t[rowID]

	if len(next) == 0 {
		if !existed {
			return
		}
		delete(t, rowID)
		ch.touchDeleted(tableID, rowID, prev)
		return
	}

	if t == nil {
		t = make(Table)
		s.tables[tableID] = t
	}
	t[rowID] = next

	for name, v := range next {
		if old, ok := prev[name]; !ok || old != v {
			ch.touchCell(tableID, rowID, name)
		}
	}
	for name := range prev {
		if _, ok := next[name]; !ok {
			ch.touchCell(tableID, rowID, name)
		}
	}
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func copyTable(t Table) Table {
	out := make(Table, len(t))
	for id, r := range t {
		out[id] = copyRow(r)
	}
	return out
}

// compareCells orders missing < bool < number < string.
func compareCells(a any, aok bool, b any, bok bool) int {
	if !aok || !bok {
		switch {
		case aok == bok:
			return 0
		case !aok:
			return -1
		default:
			return 1
		}
	}

	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case bool:
		return 0
	case float64:
		return 1
	default:
		return 2
	}
}

func sortStrings(s []string) {
	sort.Strings(s)
}
