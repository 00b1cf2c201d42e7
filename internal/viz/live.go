package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/knotsim/internal/config"
	"github.com/san-kum/knotsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	maxFindings     = 6

	dragMagnitude = 1.5
	ratioStep     = 0.05
	radiusStep    = 0.01
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live viewer over one session. The session is advanced one
// frame per tick while running.
type Model struct {
	session       *sim.Session
	canvas        *Canvas
	camera        *Camera
	theme         Theme
	rng           *rand.Rand
	presets       []string
	presetIdx     int
	running       bool
	showHelp      bool
	width, height int
	violations    []float64
	lastErr       error
	recording     bool
	frames        []*image.Paletted
}

// NewModel wraps session. seed drives the random drags.
func NewModel(session *sim.Session, seed int64) Model {
	presets := config.ListPresets()
	idx := 0
	for i, name := range presets {
		if name == session.Preset() {
			idx = i
		}
	}
	cam := NewCamera()
	cam.Fit(session.Positions())
	return Model{
		session:    session,
		canvas:     NewCanvas(width, height),
		camera:     cam,
		theme:      Themes[0],
		rng:        rand.New(rand.NewSource(seed)),
		presets:    presets,
		presetIdx:  idx,
		running:    true,
		width:      width,
		height:     height,
		violations: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.saveGIF()
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.step()
		}
	case "r":
		m.loadPreset(m.presets[m.presetIdx])
	case "p":
		m.presetIdx = (m.presetIdx + 1) % len(m.presets)
		m.loadPreset(m.presets[m.presetIdx])
	case "c":
		m.lastErr = s.SetClosed(!s.Closed())
	case "m":
		next := "sticks"
		if s.Sticks() {
			next = "spheres"
		}
		m.lastErr = s.SetMode(next)
	case "f":
		s.SetFixedLengths(!s.FixedLengths())
	case "+", "=":
		s.SetCount(s.Count() + 1)
	case "-", "_":
		s.SetCount(s.Count() - 1)
	case "[":
		m.nudgeSize(-1)
	case "]":
		m.nudgeSize(1)
	case "d":
		_, m.lastErr = s.Perturb(m.rng, -1, dragMagnitude)
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case "i":
		m.camera.ZoomIn()
	case "o":
		m.camera.ZoomOut()
	case "a":
		m.camera.Fit(s.Positions())
	case "t":
		m.theme = NextTheme(m.theme)
	case "g":
		if m.recording {
			m.saveGIF()
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = make([]*image.Paletted, 0)
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	m.draw()
	return m, nil
}

// nudgeSize steps the ratio in sphere mode and the stick radius in stick
// mode.
func (m *Model) nudgeSize(dir float64) {
	if m.session.Sticks() {
		m.session.SetStickRadius(m.session.StickRadius() + dir*radiusStep)
		return
	}
	m.session.SetRatio(m.session.Ratio() + dir*ratioStep)
}

func (m *Model) loadPreset(name string) {
	if err := m.session.LoadPreset(name); err != nil {
		m.lastErr = err
		return
	}
	m.lastErr = nil
	m.violations = m.violations[:0]
	m.camera.Fit(m.session.Positions())
}

// step advances the session by one frame.
func (m *Model) step() {
	if err := m.session.Advance(); err != nil {
		m.lastErr = err
		m.running = false
		return
	}
	m.violations = append(m.violations, m.session.Violation())
	if len(m.violations) > historyCapacity {
		m.violations = m.violations[1:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	DrawChain(m.canvas, m.camera, m.session.Positions(), m.session.Params())
}

func (m Model) status() string {
	switch {
	case m.lastErr != nil:
		return findingStyle.Render("ERROR " + m.lastErr.Error())
	case !m.running:
		return StatusPaused.Render("PAUSED")
	case m.session.Scheduler().Active():
		return StatusSettling.Render(fmt.Sprintf("SETTLING (%d)", m.session.Scheduler().Remaining()))
	}
	return StatusRunning.Render("RUNNING")
}

// View renders the canvas next to the parameter and findings panel.
func (m Model) View() string {
	s := m.session
	canvasView := canvasStyle.Foreground(m.theme.Primary).Render(m.canvas.String())

	var b strings.Builder
	preset := s.Preset()
	if preset == "" {
		preset = "custom"
	}
	b.WriteString(headerStyle.Foreground(m.theme.Accent).Render(strings.ToUpper(preset)) + "\n")
	b.WriteString(m.status() + "\n\n")

	if len(m.violations) > 1 {
		chart := asciigraph.Plot(m.violations, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Violation"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}
	b.WriteString(SparklineChart(m.violations, 30) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Mode", s.Mode())
	row("Count", fmt.Sprintf("%d", s.Count()))
	row("Closed", fmt.Sprintf("%t", s.Closed()))
	if s.Sticks() {
		row("Radius", fmt.Sprintf("%.2f", s.StickRadius()))
		row("Fixed", fmt.Sprintf("%t", s.FixedLengths()))
	} else {
		row("Ratio", fmt.Sprintf("%.2f", s.Ratio()))
	}
	row("Frame", fmt.Sprintf("%d", s.Frame()))
	row("Iters", fmt.Sprintf("%d", s.Iterations()))
	row("Violation", fmt.Sprintf("%.3e", s.Violation()))
	sched := s.Scheduler()
	if sched.SettleFrames > 0 {
		b.WriteString(labelStyle.Render("Settle") + ProgressBar(float64(sched.Remaining())/float64(sched.SettleFrames), 20) + "\n")
	}

	b.WriteString("\n" + Separator(30) + "\n")
	findings := s.Findings()
	if len(findings) == 0 {
		b.WriteString(cleanStyle.Render("no constraint issues") + "\n")
	}
	for i, f := range findings {
		if i == maxFindings {
			b.WriteString(Subtle.Render(fmt.Sprintf("+%d more", len(findings)-maxFindings)) + "\n")
			break
		}
		b.WriteString(findingStyle.Render(f.String()) + "\n")
	}
	if m.recording {
		b.WriteString(findingStyle.Render(fmt.Sprintf("REC %d frames", len(m.frames))) + "\n")
	}

	b.WriteString(helpStyle.Render("SP:Pause R:Reload P:Preset Q:Quit\nC:Closed M:Mode F:Fixed D:Drag\n+/-:Count [ ]:Size ?:Help"))
	statsView := statsStyle.Render(b.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single frame (paused)    ║
║  R        - Reload current preset    ║
║  P        - Next preset              ║
║  C        - Toggle closed chain      ║
║  M        - Toggle spheres/sticks    ║
║  F        - Toggle fixed lengths     ║
║  + / -    - Add/remove element       ║
║  [ / ]    - Ratio or stick radius    ║
║  D        - Drag a random element    ║
║  x y z    - Rotate (shift reverses)  ║
║  I / O    - Zoom in/out              ║
║  A        - Refit camera             ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.canvas.Width*charW, m.canvas.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	pw, ph := m.canvas.Pixels()
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(fmt.Sprintf("knotsim_%d.gif", time.Now().Unix()))
	if err != nil {
		m.lastErr = err
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.lastErr = err
	}
}

// Run starts the live viewer on session and blocks until it quits.
func Run(session *sim.Session, seed int64) error {
	_, err := tea.NewProgram(NewModel(session, seed), tea.WithAltScreen()).Run()
	return err
}
