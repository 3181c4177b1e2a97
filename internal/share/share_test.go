package share

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/model"
)

func TestWriteNoteProducesReadableMessage(t *testing.T) {
	img := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG fake"), 0o644))

	note := model.Note{
		Title:   "Trip plan",
		Content: "<p>Pack <b>light</b></p><ul><li>passport</li></ul>",
		Tags:    []string{"travel", "2024"},
		Links:   []string{"https://example.com/hotel"},
		Images:  []string{"file://" + img, "https://example.com/remote.jpg"},
	}
	date := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteNote(&buf, note, Options{
		From: &mail.Address{Name: "Me", Address: "me@example.com"},
		Date: date,
	}))

	mr, err := mail.CreateReader(&buf)
	require.NoError(t, err)
	defer mr.Close()

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Trip plan", subject)

	gotDate, err := mr.Header.Date()
	require.NoError(t, err)
	assert.True(t, date.Equal(gotDate))

	var text, htmlPart string
	var attachments []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(p.Body)
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			if ct == "text/plain" {
				text = string(body)
			} else if ct == "text/html" {
				htmlPart = string(body)
			}
		case *mail.AttachmentHeader:
			name, _ := h.Filename()
			attachments = append(attachments, name)
		}
	}

	assert.Contains(t, text, "Pack light")
	assert.Contains(t, text, "• passport")
	assert.Contains(t, text, "Tags: travel, 2024")
	assert.Contains(t, text, "- https://example.com/hotel")
	assert.Contains(t, htmlPart, "<b>light</b>")
	assert.Contains(t, htmlPart, `href="https://example.com/hotel"`)
	assert.Equal(t, []string{"map.png"}, attachments)
}

func TestWriteNoteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shared")

	path, err := WriteNoteFile(dir, model.Note{Title: "Shopping: Week 12!", Content: "<p>x</p>"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "shopping-week-12.eml", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "Subject: Shopping: Week 12!"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "note", Slug("!!!"))
	assert.Equal(t, "hello-world", Slug("  Hello, World "))
}
