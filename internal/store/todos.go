package store

import (
	"fmt"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/tables"
	"github.com/nhle/twodo/internal/validate"
)

// AddTodo validates and inserts a new todo. An empty priority defaults to
// medium. The stored todo is returned.
func (s *Store) AddTodo(todo model.Todo) (model.Todo, error) {
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}
	if err := validate.Todo(todo); err != nil {
		return model.Todo{}, err
	}

	now := s.now()
	todo.ID = s.newID()
	todo.Completed = false
	todo.CreatedAt = now
	todo.UpdatedAt = now

	s.t.SetRow(TableTodos, todo.ID, todoToRow(todo))
	return s.GetTodo(todo.ID)
}

// UpdateTodo replaces the editable fields of an existing todo and bumps
// its updatedAt. CreatedAt is preserved.
func (s *Store) UpdateTodo(todo model.Todo) (model.Todo, error) {
	existing, err := s.GetTodo(todo.ID)
	if err != nil {
		return model.Todo{}, err
	}
	if todo.Priority == "" {
		todo.Priority = existing.Priority
	}
	if err := validate.Todo(todo); err != nil {
		return model.Todo{}, err
	}

	todo.CreatedAt = existing.CreatedAt
	todo.UpdatedAt = s.now()

	s.t.SetRow(TableTodos, todo.ID, todoToRow(todo))
	return s.GetTodo(todo.ID)
}

// DeleteTodo removes a todo.
func (s *Store) DeleteTodo(id string) error {
	if !s.t.HasRow(TableTodos, id) {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	s.t.DelRow(TableTodos, id)
	return nil
}

// ToggleTodo flips the completed flag of a todo.
func (s *Store) ToggleTodo(id string) (model.Todo, error) {
	todo, err := s.GetTodo(id)
	if err != nil {
		return model.Todo{}, err
	}
	if err := s.MarkTodoDone(id, !todo.Completed); err != nil {
		return model.Todo{}, err
	}
	return s.GetTodo(id)
}

// MarkTodoDone sets the completed flag of a todo.
func (s *Store) MarkTodoDone(id string, done bool) error {
	if !s.t.HasRow(TableTodos, id) {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	s.t.SetPartialRow(TableTodos, id, tables.Row{
		"completed": done,
		"updatedAt": s.stamp(),
	})
	return nil
}

// GetTodo returns a single todo.
func (s *Store) GetTodo(id string) (model.Todo, error) {
	row, ok := s.t.GetRow(TableTodos, id)
	if !ok {
		return model.Todo{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return todoFromRow(id, row), nil
}

// Todos returns every todo, newest first.
func (s *Store) Todos() []model.Todo {
	ids := s.t.SortedRowIDs(TableTodos, "createdAt", true)
	todos := make([]model.Todo, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.t.GetRow(TableTodos, id); ok {
			todos = append(todos, todoFromRow(id, row))
		}
	}
	return todos
}
