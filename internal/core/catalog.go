package core

import "strings"

// DefaultThemeID is the theme selected on first run and the fallback for
// unknown identifiers.
const DefaultThemeID = "ink-white"

// Theme is a selectable visual theme. Only identity is modelled here;
// rendering is the presentation layer's concern.
type Theme struct {
	ID   string
	Name string
}

var themes = []Theme{
	{"ink-white", "Paper"},
	{"ink-black", "Void"},
	{"terminal-green", "Matrix"},
	{"terminal-amber", "Amber"},
	{"blueprint", "Blueprint"},
	{"grayscale", "Newsprint"},
	{"high-contrast", "Hi-Con"},
	{"red-alert", "Panic"},
	{"solarized-light", "Solar"},
	{"solarized-dark", "Eclipse"},
	{"tokyo-night", "Neon"},
	{"gruvbox", "Gruv"},
	{"synthwave", "Synth"},
	{"monokai", "Code"},
	{"nord", "Arctic"},
	{"dracula", "Vamp"},
	{"slate", "Slate"},
	{"purple-rain", "Royal"},
	{"forest", "Ranger"},
	{"ghost", "Ghost"},
}

var defaultCategories = []string{
	"FOOD", "TRANSPORT", "HOUSING", "TECH", "UTILITIES", "HEALTH", "MISC",
}

// Themes returns the theme catalogue in display order.
func Themes() []Theme {
	return append([]Theme(nil), themes...)
}

// LookupTheme finds a theme by identifier.
func LookupTheme(id string) (Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeOrDefault resolves id, falling back to the default theme.
func ThemeOrDefault(id string) Theme {
	if t, ok := LookupTheme(id); ok {
		return t
	}
	return themes[0]
}

// DefaultCategories returns a fresh copy of the initial category set.
func DefaultCategories() []string {
	return append([]string(nil), defaultCategories...)
}

// NormalizeLabel is the canonical form of a category label.
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
