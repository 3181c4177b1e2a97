package store

import (
	"fmt"
	"strings"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/tables"
	"github.com/nhle/twodo/internal/validate"
)

// AddNote validates and inserts a new note.
func (s *Store) AddNote(note model.Note) (model.Note, error) {
	if err := validate.Note(note); err != nil {
		return model.Note{}, err
	}

	now := s.now()
	note.ID = s.newID()
	note.CreatedAt = now
	note.UpdatedAt = now

	s.t.SetRow(TableNotes, note.ID, noteToRow(note))
	return s.GetNote(note.ID)
}

// UpdateNote replaces the editable fields of a note.
func (s *Store) UpdateNote(note model.Note) (model.Note, error) {
	existing, err := s.GetNote(note.ID)
	if err != nil {
		return model.Note{}, err
	}
	if err := validate.Note(note); err != nil {
		return model.Note{}, err
	}

	note.CreatedAt = existing.CreatedAt
	note.UpdatedAt = s.now()

	s.t.SetRow(TableNotes, note.ID, noteToRow(note))
	return s.GetNote(note.ID)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(id string) error {
	if !s.t.HasRow(TableNotes, id) {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	s.t.DelRow(TableNotes, id)
	return nil
}

// GetNote returns a single note.
func (s *Store) GetNote(id string) (model.Note, error) {
	row, ok := s.t.GetRow(TableNotes, id)
	if !ok {
		return model.Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return noteFromRow(id, row), nil
}

// Notes returns every note, most recently updated first.
func (s *Store) Notes() []model.Note {
	ids := s.t.SortedRowIDs(TableNotes, "updatedAt", true)
	notes := make([]model.Note, 0, len(ids))
	for _, id := range ids {
		if row, ok := s.t.GetRow(TableNotes, id); ok {
			notes = append(notes, noteFromRow(id, row))
		}
	}
	return notes
}

// AddImageToNote appends an image URI to a note.
func (s *Store) AddImageToNote(id, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return validate.FieldErrors{"images": "All image URLs must be valid strings"}
	}
	return s.editList(id, "images", func(list []string) []string {
		return append(list, uri)
	})
}

// RemoveImageFromNote removes every occurrence of an image URI.
func (s *Store) RemoveImageFromNote(id, uri string) error {
	return s.editList(id, "images", func(list []string) []string {
		return without(list, uri)
	})
}

// AddLinkToNote appends a link to a note. The link must be an absolute
// URL.
func (s *Store) AddLinkToNote(id, link string) error {
	link = strings.TrimSpace(link)
	if !validate.IsValidURL(link) {
		return validate.FieldErrors{"links": "All links must be valid URLs"}
	}
	return s.editList(id, "links", func(list []string) []string {
		return append(list, link)
	})
}

// RemoveLinkFromNote removes every occurrence of a link.
func (s *Store) RemoveLinkFromNote(id, link string) error {
	return s.editList(id, "links", func(list []string) []string {
		return without(list, link)
	})
}

func (s *Store) editList(id, cell string, edit func([]string) []string) error {
	row, ok := s.t.GetRow(TableNotes, id)
	if !ok {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	s.t.SetPartialRow(TableNotes, id, tables.Row{
		cell:        encodeList(edit(cellList(row, cell))),
		"updatedAt": s.stamp(),
	})
	return nil
}

func without(list []string, v string) []string {
	out := list[:0:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
