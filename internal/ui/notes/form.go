package notes

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/internal/validate"
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title      string
	content    string
	categoryID string
	tags       string
	links      string
	images     string

	attachKind  string
	attachValue string

	confirm bool
}

func (fb *formBindings) reset() {
	*fb = formBindings{}
}

func (fb *formBindings) fromNote(n model.Note) {
	*fb = formBindings{
		title:      n.Title,
		content:    n.Content,
		categoryID: n.CategoryID,
		tags:       strings.Join(n.Tags, ", "),
		links:      strings.Join(n.Links, "\n"),
		images:     strings.Join(n.Images, "\n"),
	}
}

// toNote applies the bindings to base, keeping its id and timestamps.
func (fb *formBindings) toNote(base model.Note) model.Note {
	base.Title = strings.TrimSpace(fb.title)
	base.Content = strings.TrimSpace(fb.content)
	base.CategoryID = fb.categoryID
	base.Tags = validate.SplitTags(fb.tags)
	base.Links = validate.SplitLines(fb.links)
	base.Images = validate.SplitLines(fb.images)
	return base
}

func (m Model) buildNoteForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Value(&m.fb.title).
			Validate(validate.Required("Title")),
		huh.NewText().
			Title("Content").
			Description("HTML is allowed, e.g. <p>, <b>, <ul><li>").
			Lines(6).
			Value(&m.fb.content).
			Validate(validate.Required("Content")),
	}

	if len(m.catList) > 0 {
		opts := []huh.Option[string]{huh.NewOption("None", "")}
		for _, c := range m.catList {
			opts = append(opts, huh.NewOption(c.Name, c.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Category").
			Options(opts...).
			Value(&m.fb.categoryID))
	}

	fields = append(fields,
		huh.NewInput().
			Title("Tags").
			Placeholder("comma separated").
			Value(&m.fb.tags),
		huh.NewText().
			Title("Links").
			Description("One URL per line").
			Lines(3).
			Value(&m.fb.links).
			Validate(validate.URLLines),
		huh.NewText().
			Title("Images").
			Description("One image path or URL per line").
			Lines(3).
			Value(&m.fb.images),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height))
}

func (m Model) buildAttachForm(kind string) *huh.Form {
	input := huh.NewInput().Value(&m.fb.attachValue)
	if kind == kindImage {
		input = input.
			Title("Image").
			Placeholder("/path/to/photo.jpg or https://...").
			Validate(validate.Required("Image"))
	} else {
		input = input.
			Title("Link").
			Placeholder("https://...").
			Validate(validate.URLLines)
	}

	return huh.NewForm(huh.NewGroup(input)).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width))
}

func (m Model) buildConfirmForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width))
}
