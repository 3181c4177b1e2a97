package theme

import (
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/model"
)

// Palette is the set of colors a theme is built from.
type Palette struct {
	Primary lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Subtle  lipgloss.Color
	Border  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
	Accent  lipgloss.Color
}

var palettes = map[string]Palette{
	model.ThemeLight: {
		Primary: "#2B6CB0",
		Text:    "#1A202C",
		Muted:   "#718096",
		Subtle:  "#CBD5E0",
		Border:  "#E2E8F0",
		Success: "#2F855A",
		Warning: "#B7791F",
		Danger:  "#C53030",
		Accent:  "#805AD5",
	},
	model.ThemeDark: {
		Primary: "#5B9BD5",
		Text:    "#F8F9FA",
		Muted:   "#868E96",
		Subtle:  "#495057",
		Border:  "#495057",
		Success: "#6BCB77",
		Warning: "#FFD93D",
		Danger:  "#FF6B6B",
		Accent:  "#CC5DE8",
	},
}

// Colors of the active theme.
var (
	ColorBlue    lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
	ColorMagenta lipgloss.Color
	ColorGray    lipgloss.Color
	ColorWhite   lipgloss.Color
	ColorSubtle  lipgloss.Color
	ColorBorder  lipgloss.Color
)

// Styles of the active theme. They are rebuilt by Use.
var (
	// HeaderStyle is used for the top bar and the active tab.
	HeaderStyle lipgloss.Style

	// TabStyle renders an inactive tab in the header.
	TabStyle lipgloss.Style

	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style

	// AlertStyle renders error messages in the status bar.
	AlertStyle lipgloss.Style

	// DetailPanelStyle wraps overlays and detail views.
	DetailPanelStyle lipgloss.Style

	ListItemStyle     lipgloss.Style
	SelectedItemStyle lipgloss.Style

	// HelpStyle is used for keyboard hints inside screens.
	HelpStyle lipgloss.Style

	TitleStyle    lipgloss.Style
	DimmedStyle   lipgloss.Style
	OverdueStyle  lipgloss.Style
	DueDateStyle  lipgloss.Style
	EmptyStyle    lipgloss.Style
	NoticeStyle   lipgloss.Style
	PriceStyle    lipgloss.Style
	TagStyle      lipgloss.Style
	SubtitleStyle lipgloss.Style
)

var (
	mu      sync.Mutex
	current string
)

func init() {
	Use(model.ThemeLight)
}

// Use switches the active theme. Unknown names fall back to light.
func Use(name string) {
	mu.Lock()
	defer mu.Unlock()

	p, ok := palettes[name]
	if !ok {
		name = model.ThemeLight
		p = palettes[name]
	}
	current = name
	apply(p)
}

// Current returns the name of the active theme.
func Current() string {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Next returns the theme a toggle would switch to.
func Next() string {
	if Current() == model.ThemeDark {
		return model.ThemeLight
	}
	return model.ThemeDark
}

// Toggle switches between light and dark and returns the new name.
func Toggle() string {
	next := Next()
	Use(next)
	return next
}

func apply(p Palette) {
	ColorBlue = p.Primary
	ColorGreen = p.Success
	ColorYellow = p.Warning
	ColorRed = p.Danger
	ColorMagenta = p.Accent
	ColorGray = p.Muted
	ColorWhite = p.Text
	ColorSubtle = p.Subtle
	ColorBorder = p.Border

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.Primary).
		Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Subtle).
		Padding(0, 1)

	AlertStyle = StatusBarStyle.
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.Danger)

	DetailPanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	ListItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(p.Primary).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Primary)

	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Muted)

	DimmedStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Strikethrough(true)

	OverdueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Danger)

	DueDateStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	EmptyStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)

	NoticeStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Italic(true)

	PriceStyle = lipgloss.NewStyle().
		Foreground(p.Success)

	TagStyle = lipgloss.NewStyle().
		Foreground(p.Accent)
}

// PriorityStyle returns a color-coded style for a todo priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// CategoryStyle renders a category badge in its own color. Invalid or
// empty colors use the muted color.
func CategoryStyle(color string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if len(color) != 7 || color[0] != '#' {
		return base.Foreground(ColorGray)
	}
	return base.Foreground(lipgloss.Color(color))
}

// Form returns the huh theme matching the active theme.
func Form() *huh.Theme {
	if Current() == model.ThemeDark {
		return huh.ThemeDracula()
	}
	return huh.ThemeCharm()
}
