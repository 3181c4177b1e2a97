package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/twodo/internal/model"
)

func TestUseAndToggle(t *testing.T) {
	t.Cleanup(func() { Use(model.ThemeLight) })

	Use(model.ThemeDark)
	assert.Equal(t, model.ThemeDark, Current())
	assert.Equal(t, palettes[model.ThemeDark].Primary, ColorBlue)

	assert.Equal(t, model.ThemeLight, Toggle())
	assert.Equal(t, palettes[model.ThemeLight].Primary, ColorBlue)

	Use("solarized")
	assert.Equal(t, model.ThemeLight, Current())
}

func TestCategoryStyle(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#4CAF50"), CategoryStyle("#4CAF50").GetForeground())
	assert.Equal(t, ColorGray, CategoryStyle("green").GetForeground())
}
