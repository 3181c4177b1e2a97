package todoform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/ui"
)

func TestStartEditPrefillsBindings(t *testing.T) {
	due := time.Date(2024, time.March, 5, 23, 59, 59, 0, time.Local)
	todo := model.Todo{
		ID:         "t1",
		Title:      "Pay rent",
		Priority:   model.PriorityHigh,
		DueDate:    &due,
		CategoryID: "cat1",
		Completed:  true,
	}

	m := New(80, 24)
	m.SetCategories([]model.Category{{ID: "cat1", Name: "Home", Color: "#4CAF50"}})
	m.StartEdit(todo)

	assert.True(t, m.Active())
	assert.Equal(t, "Pay rent", m.fb.title)
	assert.Equal(t, "2024-03-05", m.fb.dueDate)
	assert.Equal(t, "cat1", m.fb.categoryID)
	assert.Contains(t, m.View(), "Edit Todo")
}

func TestSubmitKeepsHiddenFields(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Todo{ID: "t1", Title: "Old", Priority: model.PriorityLow, Completed: true})

	m.fb.title = "New title"
	m.fb.priority = model.PriorityHigh
	m.fb.dueDate = "2024-04-01"

	msg := m.handleSubmit()()
	sub, ok := msg.(SubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, "t1", sub.Todo.ID)
	assert.True(t, sub.Todo.Completed)
	assert.Equal(t, "New title", sub.Todo.Title)
	assert.Equal(t, model.PriorityHigh, sub.Todo.Priority)
	require.NotNil(t, sub.Todo.DueDate)
	assert.Equal(t, 1, sub.Todo.DueDate.Day())
}

func TestSubmitRejectsBadDate(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.title = "x"
	m.fb.dueDate = "next week"

	_, ok := m.handleSubmit()().(ui.AlertMsg)
	assert.True(t, ok)
}

func TestStartCreateResets(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Todo{ID: "t1", Title: "Old"})
	m.StartCreate()

	assert.Empty(t, m.fb.title)
	assert.Equal(t, model.PriorityMedium, m.fb.priority)
	assert.Contains(t, m.View(), "New Todo")
}
