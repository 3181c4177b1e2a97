package persist_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/persist"
	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/tables"
	"github.com/nhle/twodo/tests/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSQLite(t *testing.T, path string, s *store.Store) *persist.SQLitePersister {
	t.Helper()
	p, err := persist.NewSQLitePersister(path, s.Tables(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func seedSample(t *testing.T, s *store.Store) (model.Todo, model.ShoppingItem) {
	t.Helper()
	due := time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)
	price := 2.5

	todo, err := s.AddTodo(model.Todo{Title: "File taxes", Priority: model.PriorityHigh, DueDate: &due})
	require.NoError(t, err)
	require.NoError(t, s.MarkTodoDone(todo.ID, true))

	list, err := s.AddShoppingList("Groceries")
	require.NoError(t, err)
	item, err := s.AddShoppingItem(model.ShoppingItem{ListID: list.ID, Name: "Coffee", Quantity: 2, Unit: "bag", Price: &price})
	require.NoError(t, err)
	_, err = s.AddShoppingItem(model.ShoppingItem{ListID: list.ID, Name: "Salt"})
	require.NoError(t, err)

	_, err = s.AddNote(model.Note{Title: "Ideas", Content: "<p>hi</p>", Links: []string{"https://example.com"}})
	require.NoError(t, err)
	_, err = s.AddCategory(model.Category{Name: "Home", Color: "#4CAF50"})
	require.NoError(t, err)

	todo, err = s.GetTodo(todo.ID)
	require.NoError(t, err)
	return todo, item
}

func TestSQLiteSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")

	src, _ := testutil.NewTestStore(t)
	todo, item := seedSample(t, src)
	require.NoError(t, newSQLite(t, path, src).Save(context.Background()))

	dst, _ := testutil.NewTestStore(t)
	require.NoError(t, newSQLite(t, path, dst).Load(context.Background()))

	assert.Equal(t, src.Tables().GetContent(), dst.Tables().GetContent())

	gotTodo, err := dst.GetTodo(todo.ID)
	require.NoError(t, err)
	assert.True(t, gotTodo.Completed)
	require.NotNil(t, gotTodo.DueDate)
	assert.True(t, todo.DueDate.Equal(*gotTodo.DueDate))

	gotItem, err := dst.GetShoppingItem(item.ID)
	require.NoError(t, err)
	require.NotNil(t, gotItem.Price)
	assert.Equal(t, 2.5, *gotItem.Price)
	assert.Equal(t, "bag", gotItem.Unit)
}

func TestSQLiteLoadEmptyKeepsContent(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	require.True(t, s.Seed())

	p := newSQLite(t, filepath.Join(t.TempDir(), "todos.db"), s)
	require.NoError(t, p.Load(context.Background()))

	assert.Len(t, s.Todos(), 3)
}

func TestSQLiteAutoSaveWritesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	ctx := context.Background()

	s, _ := testutil.NewTestStore(t)
	p := newSQLite(t, path, s)
	require.NoError(t, persist.LoadThenAutoSave(ctx, p))

	keep, err := s.AddTodo(model.Todo{Title: "Keep"})
	require.NoError(t, err)
	drop, err := s.AddTodo(model.Todo{Title: "Drop"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteTodo(drop.ID))
	_, err = s.ToggleTodo(keep.ID)
	require.NoError(t, err)

	p.StopAutoSave()

	reloaded, _ := testutil.NewTestStore(t)
	require.NoError(t, newSQLite(t, path, reloaded).Load(ctx))

	todos := reloaded.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, "Keep", todos[0].Title)
	assert.True(t, todos[0].Completed)
}

func TestSQLiteAutoSaveCascadeDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	ctx := context.Background()

	s, _ := testutil.NewTestStore(t)
	p := newSQLite(t, path, s)
	_, _ = seedSample(t, s)
	require.NoError(t, p.Save(ctx))
	require.NoError(t, p.StartAutoSave(ctx))

	lists := s.ShoppingLists()
	require.Len(t, lists, 1)
	require.NoError(t, s.DeleteShoppingList(lists[0].ID))
	p.StopAutoSave()

	reloaded, _ := testutil.NewTestStore(t)
	require.NoError(t, newSQLite(t, path, reloaded).Load(ctx))
	assert.Empty(t, reloaded.ShoppingLists())
	assert.Empty(t, reloaded.ShoppingItems())
	assert.Len(t, reloaded.Todos(), 1)
}

func TestStartAutoSaveTwiceFails(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	p := newSQLite(t, filepath.Join(t.TempDir(), "todos.db"), s)

	require.NoError(t, p.StartAutoSave(context.Background()))
	assert.Error(t, p.StartAutoSave(context.Background()))
	p.StopAutoSave()
	p.StopAutoSave()
}

func TestAutoSaveReportsErrors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	s, _ := testutil.NewTestStore(t)

	var errs []error
	p, err := persist.NewFilePersister(filepath.Join(dir, "todos.json"), s.Tables(), zap.NewNop(),
		persist.WithErrorHandler(func(err error) { errs = append(errs, err) }))
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	require.NoError(t, p.StartAutoSave(context.Background()))
	_, err = s.AddTodo(model.Todo{Title: "x"})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "temp file")
}

func TestFileSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "todos.json")
	ctx := context.Background()

	src, _ := testutil.NewTestStore(t)
	seedSample(t, src)
	p, err := persist.NewFilePersister(path, src.Tables(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, p.Save(ctx))
	require.NoError(t, p.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "tables")

	dst, _ := testutil.NewTestStore(t)
	q, err := persist.NewFilePersister(path, dst.Tables(), zap.NewNop())
	require.NoError(t, err)
	defer q.Close()
	require.NoError(t, q.Load(ctx))

	assert.Equal(t, src.Tables().GetContent(), dst.Tables().GetContent())
}

func TestFileLoadMissingKeepsContent(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	require.True(t, s.Seed())

	p, err := persist.NewFilePersister(filepath.Join(t.TempDir(), "todos.json"), s.Tables(), zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Load(context.Background()))
	assert.Len(t, s.Categories(), 4)
}

func TestFileAutoSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	ctx := context.Background()

	s, _ := testutil.NewTestStore(t)
	p, err := persist.NewFilePersister(path, s.Tables(), zap.NewNop())
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, persist.LoadThenAutoSave(ctx, p))

	_, err = s.AddShoppingList("Hardware")
	require.NoError(t, err)
	p.StopAutoSave()

	reloaded := store.New(tables.New())
	q, err := persist.NewFilePersister(path, reloaded.Tables(), zap.NewNop())
	require.NoError(t, err)
	defer q.Close()
	require.NoError(t, q.Load(ctx))

	lists := reloaded.ShoppingLists()
	require.Len(t, lists, 1)
	assert.Equal(t, "Hardware", lists[0].Name)
}

func TestFileAutoLoadPicksUpExternalChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todos.json")
	ctx := context.Background()

	s, _ := testutil.NewTestStore(t)
	p, err := persist.NewFilePersister(path, s.Tables(), zap.NewNop())
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.StartAutoLoad(ctx))

	other, _ := testutil.NewTestStore(t)
	_, err = other.AddTodo(model.Todo{Title: "From elsewhere"})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, persist.ExportJSON(&buf, other.Tables()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "incoming.tmp"), buf.Bytes(), 0o644))
	require.NoError(t, os.Rename(filepath.Join(dir, "incoming.tmp"), path))

	require.Eventually(t, func() bool {
		todos := s.Todos()
		return len(todos) == 1 && todos[0].Title == "From elsewhere"
	}, 5*time.Second, 20*time.Millisecond)

	// An external clear empties the store as well.
	empty, _ := testutil.NewTestStore(t)
	buf.Reset()
	require.NoError(t, persist.ExportJSON(&buf, empty.Tables()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "incoming.tmp"), buf.Bytes(), 0o644))
	require.NoError(t, os.Rename(filepath.Join(dir, "incoming.tmp"), path))

	require.Eventually(t, func() bool {
		return len(s.Todos()) == 0
	}, 5*time.Second, 20*time.Millisecond)

	p.StopAutoLoad()
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	s := tables.New()

	p, err := persist.Open(model.StorageConfig{Backend: model.BackendFile, Path: filepath.Join(dir, "a.json")}, s, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &persist.FilePersister{}, p)
	assert.Contains(t, p.Describe(), "a.json")
	require.NoError(t, p.Close())

	p, err = persist.Open(model.StorageConfig{Backend: model.BackendSQLite, Path: filepath.Join(dir, "a.db")}, s, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &persist.SQLitePersister{}, p)
	require.NoError(t, p.Close())

	_, err = persist.Open(model.StorageConfig{Backend: "cloud"}, s, zap.NewNop())
	assert.Error(t, err)
}
