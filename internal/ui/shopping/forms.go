package shopping

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/internal/validate"
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name     string
	quantity string
	unit     string
	price    string
	confirm  bool
}

func (fb *formBindings) reset() {
	*fb = formBindings{}
}

func (fb *formBindings) fromItem(it model.ShoppingItem) {
	*fb = formBindings{
		name:     it.Name,
		quantity: formatQuantity(it.Quantity),
		unit:     it.Unit,
	}
	if it.Price != nil {
		fb.price = strconv.FormatFloat(*it.Price, 'f', -1, 64)
	}
}

// toItem applies the bindings to base. Fields the form does not show,
// such as the list and the purchased flag, come from base.
func (fb *formBindings) toItem(base model.ShoppingItem) (model.ShoppingItem, error) {
	qty, err := validate.ParseQuantity(fb.quantity)
	if err != nil {
		return model.ShoppingItem{}, validate.FieldErrors{"quantity": err.Error()}
	}
	price, err := validate.ParsePrice(fb.price)
	if err != nil {
		return model.ShoppingItem{}, validate.FieldErrors{"price": err.Error()}
	}

	base.Name = fb.name
	base.Quantity = qty
	base.Unit = fb.unit
	base.Price = price
	return base, nil
}

func (m Model) buildListForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Groceries").
				Value(&m.fb.name).
				Validate(validate.Required("List name")),
		),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height))
}

func (m Model) buildItemForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Item").
				Placeholder("Milk").
				Value(&m.fb.name).
				Validate(validate.Required("Item name")),
			huh.NewInput().
				Title("Quantity").
				Placeholder("1").
				Value(&m.fb.quantity).
				Validate(validate.Quantity),
			huh.NewInput().
				Title("Unit").
				Placeholder("optional, e.g. kg").
				Value(&m.fb.unit),
			huh.NewInput().
				Title("Price").
				Placeholder("optional, per unit").
				Value(&m.fb.price).
				Validate(validate.Price),
		),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height))
}

func (m Model) buildConfirmForm(title, description string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width))
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
