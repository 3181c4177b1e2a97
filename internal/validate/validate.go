// Package validate checks form input for todos, shopping lists and items,
// notes and categories. Validators return FieldErrors keyed by field name,
// or nil when the input is acceptable.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/twodo/internal/model"
)

// DateLayout is the date format accepted by form inputs.
const DateLayout = "2006-01-02"

// DefaultQuantity is used when the quantity field is left blank.
const DefaultQuantity = 1.0

// FieldErrors maps a field name to a human-readable message.
type FieldErrors map[string]string

// Error joins all messages in field order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fe[f]
	}
	return strings.Join(parts, "; ")
}

// orNil lets validators return a nil error interface when there are no
// field errors.
func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Todo validates a todo before it is written.
func Todo(t model.Todo) error {
	errs := FieldErrors{}
	if strings.TrimSpace(t.Title) == "" {
		errs["title"] = "Title is required"
	}
	if t.Priority != "" && !t.Priority.Valid() {
		errs["priority"] = "Invalid priority level"
	}
	return errs.orNil()
}

// ShoppingList validates a list name.
func ShoppingList(name string) error {
	errs := FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = "List name is required"
	}
	return errs.orNil()
}

// ShoppingItem validates a shopping item before it is written.
func ShoppingItem(item model.ShoppingItem) error {
	errs := FieldErrors{}
	if strings.TrimSpace(item.Name) == "" {
		errs["name"] = "Item name is required"
	}
	if !finite(item.Quantity) || item.Quantity <= 0 {
		errs["quantity"] = "Quantity must be a positive number"
	}
	if item.Price != nil && (!finite(*item.Price) || *item.Price < 0) {
		errs["price"] = "Price must be a non-negative number"
	}
	return errs.orNil()
}

// finite rejects the NaN and Inf values strconv.ParseFloat accepts.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Note validates a note before it is written.
func Note(n model.Note) error {
	errs := FieldErrors{}
	if strings.TrimSpace(n.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(n.Content) == "" {
		errs["content"] = "Content is required"
	}
	for _, img := range n.Images {
		if strings.TrimSpace(img) == "" {
			errs["images"] = "All image URLs must be valid strings"
			break
		}
	}
	for _, link := range n.Links {
		if !IsValidURL(link) {
			errs["links"] = "All links must be valid URLs"
			break
		}
	}
	return errs.orNil()
}

// Category validates a category.
func Category(c model.Category) error {
	errs := FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "Name is required"
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		errs["color"] = "Color must look like #RRGGBB"
	}
	return errs.orNil()
}

// IsValidURL reports whether s is an absolute URL with a scheme and host.
func IsValidURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Required returns a form validator rejecting blank input.
func Required(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

// OptionalDate accepts blank input or a YYYY-MM-DD / RFC 3339 date.
func OptionalDate(s string) error {
	if _, err := ParseDueDate(s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

// ParseDueDate parses a due date from form input. Blank input yields nil.
// Plain dates are interpreted in the local time zone at the end of the day
// so that a todo due today is not overdue until tomorrow.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		end := t.Add(24*time.Hour - time.Millisecond)
		return &end, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("parsing due date %q: %w", s, err)
	}
	return &t, nil
}

// ParseQuantity converts form input to a quantity. Blank input yields
// DefaultQuantity.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultQuantity, nil
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("Quantity must be a positive number")
	}
	if !finite(q) || q <= 0 {
		return 0, fmt.Errorf("Quantity must be a positive number")
	}
	return q, nil
}

// ParsePrice converts form input to a price. Blank input yields nil.
func ParsePrice(s string) (*float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return nil, nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("Price must be a non-negative number")
	}
	if !finite(p) || p < 0 {
		return nil, fmt.Errorf("Price must be a non-negative number")
	}
	return &p, nil
}

// Quantity is a form validator wrapping ParseQuantity.
func Quantity(s string) error {
	_, err := ParseQuantity(s)
	return err
}

// Price is a form validator wrapping ParsePrice.
func Price(s string) error {
	_, err := ParsePrice(s)
	return err
}

// OptionalColor accepts blank input or a #RRGGBB color.
func OptionalColor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || colorPattern.MatchString(s) {
		return nil
	}
	return fmt.Errorf("color must look like #RRGGBB")
}

// URLLines accepts newline-separated URLs, ignoring blank lines.
func URLLines(s string) error {
	for _, line := range SplitLines(s) {
		if !IsValidURL(line) {
			return fmt.Errorf("%q is not a valid URL", line)
		}
	}
	return nil
}

// SplitLines splits multi-line form input into trimmed, non-blank lines.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// SplitTags splits comma-separated tags, dropping blanks and duplicates.
func SplitTags(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}
