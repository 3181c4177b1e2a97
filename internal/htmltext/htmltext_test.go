package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"paragraphs", "<p>one</p><p>two  <b>bold</b></p>", "one\ntwo bold"},
		{"list", "<ul><li>milk</li><li>eggs</li></ul>", "• milk\n• eggs"},
		{"line break", "a<br>b", "a\nb"},
		{"entities", "<p>fish &amp; chips</p>", "fish & chips"},
		{"script dropped", "<p>x</p><script>alert(1)</script><p>y</p>", "x\ny"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToText(tt.in))
		})
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "first", Summary("<p>first</p><p>second</p>", 20))
	assert.Equal(t, "abcd…", Summary("<p>abcdefgh</p>", 5))
}

func TestLinks(t *testing.T) {
	got := Links(`<p>see <a href="https://a.example">a</a> and <a class="x" href="https://b.example/y">b</a></p>`)
	assert.Equal(t, []string{"https://a.example", "https://b.example/y"}, got)
}
