package tables

// RowChange records which cells of a row were touched by a mutation.
// Deleted is true when the row no longer exists after the mutation.
type RowChange struct {
	Cells   map[string]bool
	Deleted bool
}

// Change describes every table, row and cell touched by a mutation or
// by a whole transaction.
type Change struct {
	Tables map[string]map[string]*RowChange
}

func newChange() *Change {
	return &Change{Tables: make(map[string]map[string]*RowChange)}
}

func (c *Change) row(tableID, rowID string) *RowChange {
	rows, ok := c.Tables[tableID]
	if !ok {
		rows = make(map[string]*RowChange)
		c.Tables[tableID] = rows
	}
	rc, ok := rows[rowID]
	if !ok {
		rc = &RowChange{Cells: make(map[string]bool)}
		rows[rowID] = rc
	}
	return rc
}

func (c *Change) touchCell(tableID, rowID, cellID string) {
	rc := c.row(tableID, rowID)
	rc.Deleted = false
	rc.Cells[cellID] = true
}

func (c *Change) touchDeleted(tableID, rowID string, cells Row) {
	rc := c.row(tableID, rowID)
	rc.Deleted = true
	for name := range cells {
		rc.Cells[name] = true
	}
}

// Empty reports whether the change touched nothing.
func (c Change) Empty() bool {
	return len(c.Tables) == 0
}

// TableIDs returns the touched table ids in sorted order.
func (c Change) TableIDs() []string {
	ids := make([]string, 0, len(c.Tables))
	for id := range c.Tables {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

// RowIDs returns the touched row ids of a table in sorted order.
func (c Change) RowIDs(tableID string) []string {
	rows := c.Tables[tableID]
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

// Touches reports whether the change affects the given table, row and
// cell. Empty arguments act as wildcards.
func (c Change) Touches(tableID, rowID, cellID string) bool {
	for tid, rows := range c.Tables {
		if tableID != "" && tid != tableID {
			continue
		}
		for rid, rc := range rows {
			if rowID != "" && rid != rowID {
				continue
			}
			if cellID == "" || rc.Cells[cellID] {
				return true
			}
		}
	}
	return false
}

func (c *Change) merge(other *Change) {
	for tid, rows := range other.Tables {
		for rid, rc := range rows {
			dst := c.row(tid, rid)
			dst.Deleted = rc.Deleted
			for cell := range rc.Cells {
				dst.Cells[cell] = true
			}
		}
	}
}
