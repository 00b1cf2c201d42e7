package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/config"
	"github.com/san-kum/knotsim/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pink   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	title  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	keyCap = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var optionNames = []string{"mode", "ratio", "radius", "closed", "fixed"}

// app picks a preset and its options before handing over to the live
// viewer.
type app struct {
	state, cursor int
	presets       []string
	optCursor     int
	cfg           *config.Config
	err           error
	liveModel     Model
}

func NewInteractiveApp(base *config.Config) *app {
	if base == nil {
		base = config.DefaultConfig()
	}
	cfg := *base
	return &app{state: stateMenu, presets: config.ListPresets(), cfg: &cfg}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(key)
		case stateConfig:
			return m.configKey(key)
		}
	}
	if m.state == stateSim {
		live, cmd := m.liveModel.Update(msg)
		m.liveModel = live.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg.Preset = m.presets[m.cursor]
		m.state, m.optCursor = stateConfig, 0
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state, m.err = stateMenu, nil
	case "up", "k":
		if m.optCursor > 0 {
			m.optCursor--
		}
	case "down", "j":
		if m.optCursor < len(optionNames)-1 {
			m.optCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l", " ":
		m.adjust(1)
	case "enter", "s":
		return m.start()
	}
	return m, nil
}

func (m *app) adjust(dir float64) {
	c := m.cfg
	switch optionNames[m.optCursor] {
	case "mode":
		if c.Mode == "sticks" {
			c.Mode = "spheres"
		} else {
			c.Mode = "sticks"
		}
	case "ratio":
		c.Ratio = chain.ClampRatio(c.Ratio + dir*ratioStep)
	case "radius":
		c.StickRadius = chain.ClampStickRadius(c.StickRadius + dir*radiusStep)
	case "closed":
		c.Closed = !c.Closed
	case "fixed":
		c.FixedLengths = !c.FixedLengths
	}
}

func (m app) start() (app, tea.Cmd) {
	session, err := sim.FromConfig(m.cfg)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel = NewModel(session, time.Now().UnixNano())
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func header(heading, sub string) string {
	return "\n\n    " + title.Render(heading) + "\n    " + dim.Render(sub) + "\n    " + dim.Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyCap.Render(pairs[i]) + dim.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("KNOTSIM", "knot chain relaxation"))
	for i, name := range m.presets {
		desc := ""
		if p, err := config.GetPreset(name); err == nil {
			desc = p.Description
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cyan.Render("▸"), white.Render(fmt.Sprintf("%-20s", name)), pink.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dim.Render(fmt.Sprintf("  %-20s", name)), dimmer.Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m app) optionValue(name string) string {
	c := m.cfg
	switch name {
	case "mode":
		return c.Mode
	case "ratio":
		return fmt.Sprintf("%.2f", c.Ratio)
	case "radius":
		return fmt.Sprintf("%.2f", c.StickRadius)
	case "closed":
		return fmt.Sprintf("%t", c.Closed)
	case "fixed":
		return fmt.Sprintf("%t", c.FixedLengths)
	}
	return ""
}

func (m app) viewConfig() string {
	var b strings.Builder
	sub := ""
	if p, err := config.GetPreset(m.cfg.Preset); err == nil {
		sub = p.Description
	}
	b.WriteString(header(strings.ToUpper(m.cfg.Preset), sub))
	for i, name := range optionNames {
		val := fmt.Sprintf("%8s", m.optionValue(name))
		if i == m.optCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cyan.Render("▸"), white.Render(fmt.Sprintf("%-10s", name)), pink.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", dim.Render(fmt.Sprintf("  %-10s", name)), dimmer.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + findingStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive opens the preset picker, seeded with base.
func RunInteractive(base *config.Config) error {
	_, err := tea.NewProgram(NewInteractiveApp(base), tea.WithAltScreen()).Run()
	return err
}
