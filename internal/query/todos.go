// Package query holds pure filter, sort and aggregate functions over
// snapshots of the store. None of them mutate their input.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/twodo/internal/model"
)

// Due buckets accepted by TodoFilter.Due.
const (
	DueToday    = "today"
	DueUpcoming = "upcoming"
	DueOverdue  = "overdue"
)

// Sort keys accepted by TodoFilter.SortBy.
const (
	SortCreated  = "created"
	SortUpdated  = "updated"
	SortDue      = "due"
	SortPriority = "priority"
	SortTitle    = "title"
)

// SortKeys lists the sort keys in the order the UI cycles through them.
var SortKeys = []string{SortCreated, SortDue, SortPriority, SortTitle, SortUpdated}

// TodoFilter controls filtering and sorting for FilterTodos. Nil or empty
// fields do not filter.
type TodoFilter struct {
	Completed  *bool
	Priority   *model.Priority
	CategoryID *string // "" matches todos without a category
	Query      string  // case-insensitive match on title and description
	Due        string  // DueToday, DueUpcoming (next 7 days) or DueOverdue
	SortBy     string
	SortDesc   bool
}

func filterTodos(todos []model.Todo, keep func(model.Todo) bool) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// TodosByCategory returns the todos in a category.
func TodosByCategory(todos []model.Todo, categoryID string) []model.Todo {
	return filterTodos(todos, func(t model.Todo) bool { return t.CategoryID == categoryID })
}

// TodosByPriority returns the todos with exactly the given priority.
func TodosByPriority(todos []model.Todo, p model.Priority) []model.Todo {
	return filterTodos(todos, func(t model.Todo) bool { return t.Priority == p })
}

// CompletedTodos returns the completed todos.
func CompletedTodos(todos []model.Todo) []model.Todo {
	return filterTodos(todos, func(t model.Todo) bool { return t.Completed })
}

// IncompleteTodos returns the todos still open.
func IncompleteTodos(todos []model.Todo) []model.Todo {
	return filterTodos(todos, func(t model.Todo) bool { return !t.Completed })
}

// OverdueTodos returns open todos whose due date lies before now.
func OverdueTodos(todos []model.Todo, now time.Time) []model.Todo {
	return filterTodos(todos, func(t model.Todo) bool { return t.IsOverdue(now) })
}

// DueOn returns todos due on the calendar day of now, in now's location.
func DueOn(todos []model.Todo, now time.Time) []model.Todo {
	start, end := dayBounds(now)
	return filterTodos(todos, func(t model.Todo) bool {
		return t.DueDate != nil && !t.DueDate.Before(start) && t.DueDate.Before(end)
	})
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// FilterTodos applies every filter in f and then sorts the result.
func FilterTodos(todos []model.Todo, f TodoFilter, now time.Time) []model.Todo {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	start, end := dayBounds(now)
	weekEnd := start.AddDate(0, 0, 7)

	out := filterTodos(todos, func(t model.Todo) bool {
		if f.Completed != nil && t.Completed != *f.Completed {
			return false
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			return false
		}
		if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
			return false
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
		switch f.Due {
		case DueToday:
			return t.DueDate != nil && !t.DueDate.Before(start) && t.DueDate.Before(end)
		case DueUpcoming:
			return t.DueDate != nil && !t.DueDate.Before(start) && t.DueDate.Before(weekEnd)
		case DueOverdue:
			return t.IsOverdue(now)
		}
		return true
	})

	SortTodos(out, f.SortBy, f.SortDesc)
	return out
}

// SortTodos sorts todos in place by the given key. Todos without a due
// date sort after those with one when sorting by due date. Ties fall
// back to creation time, then id.
func SortTodos(todos []model.Todo, by string, desc bool) {
	less := func(a, b model.Todo) int {
		switch by {
		case SortUpdated:
			return compareTime(a.UpdatedAt, b.UpdatedAt)
		case SortDue:
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return compareTime(*a.DueDate, *b.DueDate)
		case SortPriority:
			return a.Priority.Rank() - b.Priority.Rank()
		case SortTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
		return 0
	}

	sort.SliceStable(todos, func(i, j int) bool {
		c := less(todos[i], todos[j])
		if c == 0 {
			c = compareTime(todos[i].CreatedAt, todos[j].CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(todos[i].ID, todos[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// TodoCounts summarises a set of todos.
type TodoCounts struct {
	Total     int
	Completed int
	Overdue   int
}

// CountTodos returns totals for the status bar.
func CountTodos(todos []model.Todo, now time.Time) TodoCounts {
	var c TodoCounts
	for _, t := range todos {
		c.Total++
		if t.Completed {
			c.Completed++
		}
		if t.IsOverdue(now) {
			c.Overdue++
		}
	}
	return c
}
