package tui

import "github.com/charmbracelet/lipgloss"

// Theme is one of the handheld's display palettes.
type Theme struct {
	Name       string
	Foreground lipgloss.TerminalColor
	Background lipgloss.TerminalColor
	Accent     lipgloss.TerminalColor
	StatusBg   lipgloss.TerminalColor
	StatusFg   lipgloss.TerminalColor
	Danger     lipgloss.TerminalColor
}

// Themes mirrors the palettes of the original device: classic green,
// retro amber, high contrast, light mode and cyan.
var Themes = []Theme{
	{
		Name:       "green-on-black",
		Foreground: lipgloss.Color("#33ff33"),
		Background: lipgloss.Color("#000000"),
		Accent:     lipgloss.Color("#99ff99"),
		StatusBg:   lipgloss.Color("#003300"),
		StatusFg:   lipgloss.Color("#33ff33"),
		Danger:     lipgloss.Color("#ff5555"),
	},
	{
		Name:       "amber-on-black",
		Foreground: lipgloss.Color("#ffb000"),
		Background: lipgloss.Color("#000000"),
		Accent:     lipgloss.Color("#ffd75f"),
		StatusBg:   lipgloss.Color("#332200"),
		StatusFg:   lipgloss.Color("#ffb000"),
		Danger:     lipgloss.Color("#ff5555"),
	},
	{
		Name:       "white-on-black",
		Foreground: lipgloss.Color("#eeeeee"),
		Background: lipgloss.Color("#000000"),
		Accent:     lipgloss.Color("#ffffff"),
		StatusBg:   lipgloss.Color("#333333"),
		StatusFg:   lipgloss.Color("#eeeeee"),
		Danger:     lipgloss.Color("#ff5555"),
	},
	{
		Name:       "black-on-white",
		Foreground: lipgloss.Color("#111111"),
		Background: lipgloss.Color("#ffffff"),
		Accent:     lipgloss.Color("#000088"),
		StatusBg:   lipgloss.Color("#dddddd"),
		StatusFg:   lipgloss.Color("#111111"),
		Danger:     lipgloss.Color("#aa0000"),
	},
	{
		Name:       "cyan-on-black",
		Foreground: lipgloss.Color("#00ffff"),
		Background: lipgloss.Color("#000000"),
		Accent:     lipgloss.Color("#99ffff"),
		StatusBg:   lipgloss.Color("#003333"),
		StatusFg:   lipgloss.Color("#00ffff"),
		Danger:     lipgloss.Color("#ff5555"),
	},
}

// ThemeByName returns the named theme, falling back to the first palette.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// Styles holds the lipgloss styles derived from one theme.
type Styles struct {
	Screen    lipgloss.Style
	Status    lipgloss.Style
	StatusKey lipgloss.Style
	Danger    lipgloss.Style
	MenuBox   lipgloss.Style
	MenuItem  lipgloss.Style
	MenuSel   lipgloss.Style
}

// NewStyles derives the style set from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Screen: lipgloss.NewStyle().
			Foreground(t.Foreground),
		Status: lipgloss.NewStyle().
			Background(t.StatusBg).
			Foreground(t.StatusFg).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Background(t.StatusBg).
			Foreground(t.Accent).
			Bold(true),
		Danger: lipgloss.NewStyle().
			Foreground(t.Danger).
			Bold(true),
		MenuBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 2),
		MenuItem: lipgloss.NewStyle().
			Foreground(t.Foreground),
		MenuSel: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Accent).
			Bold(true),
	}
}
