package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemSchema() map[string]TableSchema {
	return map[string]TableSchema{
		"items": {
			"name":      {Type: TypeString, Default: ""},
			"quantity":  {Type: TypeNumber, Default: 1},
			"price":     {Type: TypeNumber},
			"purchased": {Type: TypeBoolean, Default: false},
		},
	}
}

func TestSetRowAppliesSchema(t *testing.T) {
	s := New()
	s.SetTablesSchema(itemSchema())

	s.SetRow("items", "a", Row{
		"name":     "Milk",
		"quantity": "3",
		"price":    "not a number",
		"colour":   "white",
	})

	row, ok := s.GetRow("items", "a")
	require.True(t, ok)
	assert.Equal(t, "Milk", row["name"])
	assert.Equal(t, 3.0, row["quantity"])
	assert.Equal(t, false, row["purchased"])
	assert.NotContains(t, row, "price")
	assert.NotContains(t, row, "colour")
}

func TestSetRowWithoutSchemaNormalizesNumbers(t *testing.T) {
	s := New()
	s.SetRow("free", "x", Row{"n": 7, "ok": true, "bad": []string{"a"}})

	row, ok := s.GetRow("free", "x")
	require.True(t, ok)
	assert.Equal(t, 7.0, row["n"])
	assert.Equal(t, true, row["ok"])
	assert.NotContains(t, row, "bad")
}

func TestSetPartialRowKeepsValidCells(t *testing.T) {
	s := New()
	s.SetTablesSchema(itemSchema())
	s.SetRow("items", "a", Row{"name": "Bread", "quantity": 2})

	s.SetPartialRow("items", "a", Row{"quantity": "lots", "purchased": "true"})

	row, _ := s.GetRow("items", "a")
	assert.Equal(t, "Bread", row["name"])
	assert.Equal(t, 2.0, row["quantity"])
	assert.Equal(t, true, row["purchased"])
}

func TestDelCellResetsDefault(t *testing.T) {
	s := New()
	s.SetTablesSchema(itemSchema())
	s.SetRow("items", "a", Row{"name": "Eggs", "quantity": 12, "price": 3.5})

	s.DelCell("items", "a", "quantity")
	s.DelCell("items", "a", "price")

	row, _ := s.GetRow("items", "a")
	assert.Equal(t, 1.0, row["quantity"])
	assert.NotContains(t, row, "price")
}

func TestGetRowReturnsCopy(t *testing.T) {
	s := New()
	s.SetRow("t", "r", Row{"a": "b"})

	row, _ := s.GetRow("t", "r")
	row["a"] = "changed"

	v, _ := s.GetCell("t", "r", "a")
	assert.Equal(t, "b", v)
}

func TestSortedRowIDs(t *testing.T) {
	s := New()
	s.SetRow("t", "c", Row{"n": 3})
	s.SetRow("t", "a", Row{"n": 1})
	s.SetRow("t", "b", Row{"n": 2})
	s.SetRow("t", "z", Row{"other": "x"})

	assert.Equal(t, []string{"z", "a", "b", "c"}, s.SortedRowIDs("t", "n", false))
	assert.Equal(t, []string{"c", "b", "a", "z"}, s.SortedRowIDs("t", "n", true))
}

func TestListenersFireForMatchingChanges(t *testing.T) {
	s := New()

	var tableCalls, rowCalls, cellCalls, otherCalls int
	s.AddTableListener("todos", func(Change) { tableCalls++ })
	s.AddRowListener("todos", "1", func(Change) { rowCalls++ })
	s.AddCellListener("todos", "1", "done", func(Change) { cellCalls++ })
	s.AddTableListener("notes", func(Change) { otherCalls++ })

	s.SetRow("todos", "1", Row{"title": "a"})
	s.SetCell("todos", "1", "done", true)
	s.SetRow("todos", "2", Row{"title": "b"})

	assert.Equal(t, 3, tableCalls)
	assert.Equal(t, 2, rowCalls)
	assert.Equal(t, 1, cellCalls)
	assert.Equal(t, 0, otherCalls)
}

func TestUnchangedWriteDoesNotNotify(t *testing.T) {
	s := New()
	s.SetRow("t", "r", Row{"a": "b"})

	calls := 0
	s.AddTablesListener(func(Change) { calls++ })
	s.SetRow("t", "r", Row{"a": "b"})

	assert.Equal(t, 0, calls)
}

func TestDelListener(t *testing.T) {
	s := New()
	calls := 0
	id := s.AddTablesListener(func(Change) { calls++ })

	s.SetRow("t", "r", Row{"a": "b"})
	s.DelListener(id)
	s.SetRow("t", "r", Row{"a": "c"})

	assert.Equal(t, 1, calls)
}

func TestTransactionBatchesNotifications(t *testing.T) {
	s := New()
	var changes []Change
	s.AddTablesListener(func(c Change) { changes = append(changes, c) })

	err := s.Transaction(func() error {
		s.SetRow("lists", "l1", Row{"name": "Groceries"})
		s.SetRow("items", "i1", Row{"listId": "l1"})
		return s.Transaction(func() error {
			s.SetRow("items", "i2", Row{"listId": "l1"})
			return nil
		})
	})
	require.NoError(t, err)

	require.Len(t, changes, 1)
	assert.Equal(t, []string{"items", "lists"}, changes[0].TableIDs())
	assert.Equal(t, []string{"i1", "i2"}, changes[0].RowIDs("items"))
}

func TestTransactionRecoversAfterPanic(t *testing.T) {
	s := New()
	var changes []Change
	s.AddTablesListener(func(c Change) { changes = append(changes, c) })

	assert.Panics(t, func() {
		_ = s.Transaction(func() error {
			s.SetRow("lists", "l1", Row{"name": "Groceries"})
			panic("boom")
		})
	})
	require.Len(t, changes, 1)
	assert.Equal(t, []string{"l1"}, changes[0].RowIDs("lists"))

	s.SetRow("lists", "l2", Row{"name": "Hardware"})
	require.Len(t, changes, 2)
	assert.Equal(t, []string{"l2"}, changes[1].RowIDs("lists"))
}

func TestDeleteIsRecorded(t *testing.T) {
	s := New()
	s.SetRow("t", "r", Row{"a": "b"})

	var got Change
	s.AddTablesListener(func(c Change) { got = c })
	s.DelRow("t", "r")

	require.Contains(t, got.Tables, "t")
	assert.True(t, got.Tables["t"]["r"].Deleted)
	assert.False(t, s.HasRow("t", "r"))
}

func TestSetContentReplacesEverything(t *testing.T) {
	s := New()
	s.SetRow("old", "1", Row{"a": "b"})

	s.SetContent(Tables{"new": {"1": {"x": 1.0}}})

	assert.False(t, s.HasTable("old"))
	assert.Equal(t, []string{"new"}, s.TableIDs())
	assert.False(t, s.IsEmpty())

	s.DelTables()
	assert.True(t, s.IsEmpty())
}

func TestSchemaAppliedToExistingContent(t *testing.T) {
	s := New()
	s.SetRow("items", "a", Row{"name": "Tea", "junk": "x"})

	s.SetTablesSchema(itemSchema())

	row, _ := s.GetRow("items", "a")
	assert.Equal(t, Row{"name": "Tea", "quantity": 1.0, "purchased": false}, row)
}
