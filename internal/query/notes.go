package query

import (
	"strings"

	"github.com/nhle/twodo/internal/htmltext"
	"github.com/nhle/twodo/internal/model"
)

// NotesByCategory returns the notes in a category.
func NotesByCategory(notes []model.Note, categoryID string) []model.Note {
	out := make([]model.Note, 0)
	for _, n := range notes {
		if n.CategoryID == categoryID {
			out = append(out, n)
		}
	}
	return out
}

// NotesByTag returns the notes carrying a tag, compared case-insensitively.
func NotesByTag(notes []model.Note, tag string) []model.Note {
	out := make([]model.Note, 0)
	for _, n := range notes {
		for _, t := range n.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// SearchNotes returns the notes whose title, text content or tags
// contain query, ignoring case. Markup in the content is not matched.
// An empty query matches every note.
func SearchNotes(notes []model.Note, query string) []model.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]model.Note(nil), notes...)
	}

	out := make([]model.Note, 0)
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(htmltext.ToText(n.Content)), q) ||
			containsFold(n.Tags, q) {
			out = append(out, n)
		}
	}
	return out
}

func containsFold(list []string, lowerQuery string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), lowerQuery) {
			return true
		}
	}
	return false
}
