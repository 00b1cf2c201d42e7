package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the chain drawing and the panel header.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
}

var (
	ThemeRope    = Theme{Name: "rope", Primary: lipgloss.Color("#e0c080"), Accent: lipgloss.Color("#ffaa00")}
	ThemeNeon    = Theme{Name: "neon", Primary: lipgloss.Color("#00ffff"), Accent: lipgloss.Color("#ff00ff")}
	ThemeRetro   = Theme{Name: "retro", Primary: lipgloss.Color("#00ff00"), Accent: lipgloss.Color("#88ff88")}
	ThemeMinimal = Theme{Name: "minimal", Primary: lipgloss.Color("#ffffff"), Accent: lipgloss.Color("#0088ff")}

	Themes = []Theme{ThemeRope, ThemeNeon, ThemeRetro, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, candidate := range Themes {
		if candidate.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
