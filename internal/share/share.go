// Package share exports notes as RFC 5322 messages (.eml files) that any
// mail client can open or send.
package share

import (
	"fmt"
	"html"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/twodo/internal/htmltext"
	"github.com/nhle/twodo/internal/model"
)

// Options controls the envelope of a shared note.
type Options struct {
	From *mail.Address
	To   []*mail.Address
	Date time.Time
}

// WriteNote encodes note as a multipart message with a text/plain and a
// text/html alternative. Images that refer to readable local files are
// attached; other images are listed by URI.
func WriteNote(w io.Writer, note model.Note, opts Options) error {
	var h mail.Header
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(note.Title)
	if opts.From != nil {
		h.SetAddressList("From", []*mail.Address{opts.From})
	}
	if len(opts.To) > 0 {
		h.SetAddressList("To", opts.To)
	}
	if len(note.Tags) > 0 {
		h.Set("Keywords", strings.Join(note.Tags, ", "))
	}

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("creating inline part: %w", err)
	}
	if err := writePart(iw, "text/plain", plainBody(note)); err != nil {
		return err
	}
	if err := writePart(iw, "text/html", htmlBody(note)); err != nil {
		return err
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("closing inline part: %w", err)
	}

	for _, img := range note.Images {
		path, ok := localPath(img)
		if !ok {
			continue
		}
		if err := attachFile(mw, path); err != nil {
			return err
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}
	return nil
}

// WriteNoteFile writes the note as <dir>/<slug>.eml and returns the path.
func WriteNoteFile(dir string, note model.Note, opts Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating share directory: %w", err)
	}

	path := filepath.Join(dir, Slug(note.Title)+".eml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteNote(f, note, opts); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a note title into a file name stem.
func Slug(title string) string {
	s := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "note"
	}
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	return s
}

func writePart(iw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})

	pw, err := iw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("creating %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(pw, body); err != nil {
		pw.Close()
		return fmt.Errorf("writing %s part: %w", contentType, err)
	}
	return pw.Close()
}

func attachFile(mw *mail.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading attachment %s: %w", path, err)
	}

	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}

	var ah mail.AttachmentHeader
	ah.SetContentType(ctype, nil)
	ah.SetFilename(filepath.Base(path))

	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return fmt.Errorf("creating attachment %s: %w", path, err)
	}
	if _, err := aw.Write(data); err != nil {
		aw.Close()
		return fmt.Errorf("writing attachment %s: %w", path, err)
	}
	return aw.Close()
}

// localPath resolves an image reference to a readable local file.
func localPath(ref string) (string, bool) {
	path := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		if u.Scheme != "file" {
			return "", false
		}
		path = u.Path
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func plainBody(note model.Note) string {
	var b strings.Builder
	b.WriteString(note.Title)
	b.WriteString("\n\n")
	if text := htmltext.ToText(note.Content); text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}
	if len(note.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(note.Tags, ", "))
	}
	writeList(&b, "Links", note.Links)
	writeList(&b, "Images", note.Images)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func htmlBody(note model.Note) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(note.Title))
	b.WriteString(note.Content)
	b.WriteString("\n")
	if len(note.Links) > 0 {
		b.WriteString("<ul>\n")
		for _, l := range note.Links {
			esc := html.EscapeString(l)
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", esc, esc)
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}
