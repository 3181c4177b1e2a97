package validate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/model"
)

func price(p float64) *float64 { return &p }

func TestTodoRequiresTitle(t *testing.T) {
	err := Todo(model.Todo{Title: "   "})
	require.Error(t, err)

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Title is required", fe["title"])

	assert.NoError(t, Todo(model.Todo{Title: "Buy milk"}))
}

func TestTodoRejectsUnknownPriority(t *testing.T) {
	err := Todo(model.Todo{Title: "x", Priority: "urgent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid priority level")
}

func TestShoppingItem(t *testing.T) {
	tests := []struct {
		name   string
		item   model.ShoppingItem
		fields []string
	}{
		{"valid", model.ShoppingItem{Name: "Milk", Quantity: 2, Price: price(1.5)}, nil},
		{"free item", model.ShoppingItem{Name: "Sample", Quantity: 1, Price: price(0)}, nil},
		{"empty name", model.ShoppingItem{Quantity: 1}, []string{"name"}},
		{"negative quantity", model.ShoppingItem{Name: "Milk", Quantity: -1}, []string{"quantity"}},
		{"zero quantity", model.ShoppingItem{Name: "Milk", Quantity: 0}, []string{"quantity"}},
		{"negative price", model.ShoppingItem{Name: "Milk", Quantity: 1, Price: price(-2)}, []string{"price"}},
		{"NaN quantity", model.ShoppingItem{Name: "Milk", Quantity: math.NaN()}, []string{"quantity"}},
		{"infinite quantity", model.ShoppingItem{Name: "Milk", Quantity: math.Inf(1)}, []string{"quantity"}},
		{"NaN price", model.ShoppingItem{Name: "Milk", Quantity: 1, Price: price(math.NaN())}, []string{"price"}},
		{"infinite price", model.ShoppingItem{Name: "Milk", Quantity: 1, Price: price(math.Inf(1))}, []string{"price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShoppingItem(tt.item)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			for _, f := range tt.fields {
				assert.Contains(t, fe, f)
			}
		})
	}
}

func TestShoppingListName(t *testing.T) {
	assert.Error(t, ShoppingList(""))
	assert.NoError(t, ShoppingList("Groceries"))
}

func TestNote(t *testing.T) {
	err := Note(model.Note{Title: "t", Content: "<p>c</p>", Links: []string{"not a url"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid URLs")

	err = Note(model.Note{Title: "", Content: ""})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 2)

	assert.NoError(t, Note(model.Note{
		Title:   "Trip",
		Content: "<p>pack</p>",
		Links:   []string{"https://example.com/list"},
		Images:  []string{"file:///tmp/a.png"},
	}))
}

func TestCategoryColor(t *testing.T) {
	assert.NoError(t, Category(model.Category{Name: "Work", Color: "#2196F3"}))
	assert.Error(t, Category(model.Category{Name: "Work", Color: "blue"}))
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("")
	require.NoError(t, err)
	assert.Equal(t, DefaultQuantity, q)

	q, err = ParseQuantity(" 2.5 ")
	require.NoError(t, err)
	assert.Equal(t, 2.5, q)

	_, err = ParseQuantity("-3")
	assert.Error(t, err)
	_, err = ParseQuantity("lots")
	assert.Error(t, err)

	for _, in := range []string{"NaN", "Inf", "-Inf", "infinity"} {
		_, err = ParseQuantity(in)
		assert.Error(t, err, in)
	}
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParsePrice("$3.20")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.InDelta(t, 3.20, *p, 1e-9)

	_, err = ParsePrice("-1")
	assert.Error(t, err)

	for _, in := range []string{"NaN", "$Inf", "+Inf", "infinity"} {
		_, err = ParsePrice(in)
		assert.Error(t, err, in)
	}
}

func TestParseDueDate(t *testing.T) {
	d, err := ParseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDueDate("2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 1, d.Day())
	assert.Equal(t, 23, d.Hour())

	assert.Error(t, OptionalDate("03/01/2024"))
	assert.NoError(t, OptionalDate("2024-03-01T10:00:00Z"))
}

func TestSplitHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitLines(" a \n\n b\n"))
	assert.Equal(t, []string{"home", "Work"}, SplitTags("home, Work, , HOME"))
	assert.Error(t, URLLines("https://ok.example\nnope"))
}
