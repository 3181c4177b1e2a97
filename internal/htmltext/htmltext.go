// Package htmltext renders note HTML as plain text for the terminal.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements start on a new line.
var blockElements = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Li:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Tr:         true,
	atom.Hr:         true,
}

// ToText converts an HTML fragment to readable plain text. Block
// elements become separate lines, list items get a bullet and runs of
// whitespace collapse to single spaces.
func ToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))

	var (
		lines []string
		cur   strings.Builder
		skip  int
	)
	flush := func() {
		line := strings.Join(strings.Fields(cur.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return strings.Join(lines, "\n")

		case html.TextToken:
			if skip == 0 {
				cur.WriteString(html.UnescapeString(string(z.Text())))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				skip++
			case a == atom.Br:
				flush()
			case a == atom.Li:
				flush()
				cur.WriteString("• ")
			case blockElements[a]:
				flush()
			case a == atom.Td || a == atom.Th:
				cur.WriteString(" ")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				if skip > 0 {
					skip--
				}
			case blockElements[a]:
				flush()
			}
		}
	}
}

// Summary returns the first line of the rendered text, cut to at most
// limit runes.
func Summary(src string, limit int) string {
	text := ToText(src)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	r := []rune(text)
	if limit > 0 && len(r) > limit {
		if limit > 1 {
			return string(r[:limit-1]) + "…"
		}
		return string(r[:limit])
	}
	return text
}

// Links returns the href of every anchor in the fragment, in order.
func Links(src string) []string {
	z := html.NewTokenizer(strings.NewReader(src))
	var out []string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if atom.Lookup(name) != atom.A {
			continue
		}
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) == "href" && len(val) > 0 {
				out = append(out, string(val))
			}
		}
	}
}
