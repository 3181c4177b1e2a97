package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/tests/testutil"
)

func TestLoadCountsUsage(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	require.True(t, s.Seed())

	m := New(s, keys.DefaultKeyMap(), 100, 30)
	m, _ = m.Update(m.Load()())

	require.Len(t, m.categories, 4)
	assert.Equal(t, "Health", m.categories[0].Name)
	assert.Equal(t, usage{todos: 1}, m.usage["cat4"])
	assert.Contains(t, m.View(), "1 todos, 0 notes")
}

func TestSaveCategory(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	m := New(s, keys.DefaultKeyMap(), 100, 30)

	m.fb.name = "Errands"
	m.fb.color = "#123456"
	res := m.saveCategory()().(resultMsg)
	require.NoError(t, res.err)
	assert.Equal(t, `Created "Errands"`, res.notice)

	cats := s.Categories()
	require.Len(t, cats, 1)

	m.editingID = cats[0].ID
	m.fb.color = "teal"
	res = m.saveCategory()().(resultMsg)
	require.Error(t, res.err)

	_, cmd := m.Update(res)
	alert := cmd().(ui.AlertMsg)
	assert.Contains(t, ui.ErrorText(alert.Err), "#RRGGBB")
}

func TestDeleteCategoryClearsTodos(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	c, err := s.AddCategory(model.Category{Name: "Work"})
	require.NoError(t, err)
	todo, err := s.AddTodo(model.Todo{Title: "Report", CategoryID: c.ID})
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 100, 30)
	res := m.deleteCategory(c)().(resultMsg)
	require.NoError(t, res.err)

	got, err := s.GetTodo(todo.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}
