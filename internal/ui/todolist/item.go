package todolist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/theme"
)

// todoItem wraps a model.Todo so it can be used in a bubbles/list.
type todoItem struct {
	todo model.Todo
}

// FilterValue returns the string used for fuzzy filtering.
func (i todoItem) FilterValue() string { return i.todo.Title }

// renderContext is shared by reference between the Model and its
// delegate so reloads are visible without rebuilding the list.
type renderContext struct {
	categories map[string]model.Category
	now        func() time.Time
}

// itemDelegate implements list.ItemDelegate for todo rows.
type itemDelegate struct {
	ctx *renderContext
}

// Height returns the number of lines each item takes.
func (d itemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d itemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single todo line.
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderTodo(it.todo, index == m.Index()))
}

func (d itemDelegate) renderTodo(todo model.Todo, isSelected bool) string {
	prefix := "○"
	if todo.Completed {
		prefix = "✓"
	}

	priBadge := theme.PriorityStyle(todo.Priority).Render(priorityLabel(todo.Priority))

	categoryBadge := ""
	if c, ok := d.ctx.categories[todo.CategoryID]; ok {
		categoryBadge = " " + theme.CategoryStyle(c.Color).Render("● "+c.Name)
	}

	now := d.ctx.now()
	dueDateStr := ""
	if todo.DueDate != nil {
		dueDateStr = theme.DueDateStyle.Render(" " + dueLabel(*todo.DueDate, now))
	}

	overdueStr := ""
	if todo.IsOverdue(now) {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	line := fmt.Sprintf(
		"%s %s %s%s%s%s",
		prefix, priBadge, todo.Title,
		categoryBadge, dueDateStr, overdueStr,
	)

	if todo.Completed {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// priorityLabel returns a fixed-width label for the priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "HIGH"
	case model.PriorityMedium:
		return "MED "
	case model.PriorityLow:
		return "LOW "
	default:
		return strings.ToUpper(string(p))
	}
}

// dueLabel describes a due date relative to now.
func dueLabel(due, now time.Time) string {
	due = due.In(now.Location())
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	days := int(time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).
		Sub(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)).Hours() / 24)

	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days == -1:
		return "due yesterday"
	case days > 1 && days < 7:
		return "due " + due.Format("Mon")
	case dy == ny:
		return "due " + due.Format("Jan 02")
	default:
		return "due " + due.Format("Jan 02 2006")
	}
}
