package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/model"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := now.AddDate(0, 0, days)
	return &t
}

func ptr[T any](v T) *T { return &v }

func ids(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func sampleTodos() []model.Todo {
	return []model.Todo{
		{ID: "a", Title: "Pay rent", Priority: model.PriorityHigh, DueDate: at(-2), CategoryID: "home", CreatedAt: now.Add(-5 * time.Hour)},
		{ID: "b", Title: "Call mum", Priority: model.PriorityLow, Completed: true, DueDate: at(-1), CreatedAt: now.Add(-4 * time.Hour)},
		{ID: "c", Title: "Buy paint", Description: "for the fence", Priority: model.PriorityMedium, DueDate: at(3), CategoryID: "home", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "d", Title: "Standup", Priority: model.PriorityHigh, DueDate: &now, CategoryID: "work", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "e", Title: "Read book", Priority: model.PriorityLow, CreatedAt: now.Add(-1 * time.Hour)},
	}
}

func TestTodosByPriority(t *testing.T) {
	todos := sampleTodos()

	for _, p := range model.Priorities {
		got := TodosByPriority(todos, p)
		for _, todo := range got {
			assert.Equal(t, p, todo.Priority)
		}
	}
	assert.Equal(t, []string{"a", "d"}, ids(TodosByPriority(todos, model.PriorityHigh)))
	assert.Equal(t, []string{"b", "e"}, ids(TodosByPriority(todos, model.PriorityLow)))
}

func TestSimpleFilters(t *testing.T) {
	todos := sampleTodos()

	assert.Equal(t, []string{"a", "c"}, ids(TodosByCategory(todos, "home")))
	assert.Equal(t, []string{"b"}, ids(CompletedTodos(todos)))
	assert.Equal(t, []string{"a", "c", "d", "e"}, ids(IncompleteTodos(todos)))
	assert.Equal(t, []string{"a"}, ids(OverdueTodos(todos, now)))
	assert.Equal(t, []string{"d"}, ids(DueOn(todos, now)))
}

func TestFilterTodos(t *testing.T) {
	todos := sampleTodos()

	tests := []struct {
		name   string
		filter TodoFilter
		want   []string
	}{
		{"no filter keeps creation order", TodoFilter{}, []string{"a", "b", "c", "d", "e"}},
		{"open only", TodoFilter{Completed: ptr(false)}, []string{"a", "c", "d", "e"}},
		{"priority", TodoFilter{Priority: ptr(model.PriorityHigh)}, []string{"a", "d"}},
		{"uncategorised", TodoFilter{CategoryID: ptr("")}, []string{"b", "e"}},
		{"query matches description", TodoFilter{Query: "FENCE"}, []string{"c"}},
		{"due today", TodoFilter{Due: DueToday}, []string{"d"}},
		{"upcoming", TodoFilter{Due: DueUpcoming}, []string{"c", "d"}},
		{"overdue", TodoFilter{Due: DueOverdue}, []string{"a"}},
		{"sort by due", TodoFilter{SortBy: SortDue}, []string{"a", "b", "d", "c", "e"}},
		{"sort by priority desc", TodoFilter{SortBy: SortPriority, SortDesc: true}, []string{"d", "a", "c", "e", "b"}},
		{"sort by title", TodoFilter{SortBy: SortTitle}, []string{"c", "b", "a", "e", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterTodos(todos, tt.filter, now)))
		})
	}
}

func TestFilterTodosDoesNotMutateInput(t *testing.T) {
	todos := sampleTodos()
	FilterTodos(todos, TodoFilter{SortBy: SortTitle}, now)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(todos))
}

func TestCountTodos(t *testing.T) {
	assert.Equal(t, TodoCounts{Total: 5, Completed: 1, Overdue: 1}, CountTodos(sampleTodos(), now))
}

func TestShoppingTotals(t *testing.T) {
	items := []model.ShoppingItem{
		{ID: "1", ListID: "l1", Name: "Milk", Quantity: 2, Price: ptr(1.25)},
		{ID: "2", ListID: "l1", Name: "Bread", Quantity: 1, Price: ptr(3.0), Purchased: true},
		{ID: "3", ListID: "l1", Name: "Salt", Quantity: 1},
		{ID: "4", ListID: "l2", Name: "Nails", Quantity: 100, Price: ptr(0.05)},
	}

	assert.Len(t, ItemsByList(items, "l1"), 3)
	assert.Len(t, PurchasedItems(items, "l1"), 1)
	assert.Len(t, UnpurchasedItems(items, "l1"), 2)
	assert.InDelta(t, 5.5, TotalPrice(items, "l1"), 1e-9)
	assert.InDelta(t, 5.0, TotalPrice(items, "l2"), 1e-9)
	assert.Zero(t, TotalPrice(items, "missing"))

	totals := TotalsByList(items)
	require.Contains(t, totals, "l1")
	assert.Equal(t, 3, totals["l1"].Items)
	assert.Equal(t, 1, totals["l1"].Purchased)
	assert.InDelta(t, 2.5, totals["l1"].Remaining, 1e-9)
}

func TestSearchNotes(t *testing.T) {
	notes := []model.Note{
		{ID: "1", Title: "Recipes", Content: "<p>Pancakes with <b>syrup</b></p>", Tags: []string{"food"}},
		{ID: "2", Title: "Work log", Content: "<p>bold moves</p>", CategoryID: "work"},
		{ID: "3", Title: "Links", Content: `<a href="https://syrup.example">site</a>`},
	}

	assert.Equal(t, []string{"1"}, noteIDs(SearchNotes(notes, "SYRUP")))
	assert.Equal(t, []string{"2"}, noteIDs(SearchNotes(notes, "bold")))
	assert.Equal(t, []string{"1"}, noteIDs(SearchNotes(notes, "food")))
	assert.Len(t, SearchNotes(notes, ""), 3)
	assert.Equal(t, []string{"2"}, noteIDs(NotesByCategory(notes, "work")))
	assert.Equal(t, []string{"1"}, noteIDs(NotesByTag(notes, "FOOD")))
}

func noteIDs(notes []model.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}
