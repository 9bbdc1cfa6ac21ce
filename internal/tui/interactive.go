package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kmurari/springpend/internal/compile"
	"github.com/kmurari/springpend/internal/config"
	"github.com/kmurari/springpend/internal/dynamo"
	"github.com/kmurari/springpend/internal/integrators"
	springmodel "github.com/kmurari/springpend/internal/model"
	"github.com/kmurari/springpend/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var presetInfo = map[string]string{
	"chaos":   "large-angle release",
	"gentle":  "small-angle swing",
	"stiff":   "near-rigid links",
	"springy": "soft springs",
	"bounce":  "vertical oscillation",
}

var stateLabels = []string{"θ₁", "a₁", "θ₂", "a₂"}

type state int

const (
	stateMenu state = iota
	stateConfig
	stateSim
)

type model struct {
	state   state
	cursor  int
	presets []string

	cfg         *config.Config
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string
	errMsg      string

	symbolic *springmodel.Model

	running   bool
	paused    bool
	simState  dynamo.State
	simTime   float64
	system    *compile.System
	integ     *integrators.RK4
	e0        float64
	speed     float64
	trail     []viz.TrailPoint
	history   []float64
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func NewInteractiveApp() (*model, error) {
	sym, err := springmodel.BuildSpring()
	if err != nil {
		return nil, err
	}

	presets := []string{"chaos", "gentle", "stiff", "springy", "bounce"}

	return &model{
		state:      stateMenu,
		presets:    presets,
		cfg:        config.DefaultConfig(),
		paramNames: []string{"theta1", "theta2", "omega1", "omega2", "m1", "m2", "l1", "l2", "k1", "k2", "dt", "duration"},
		symbolic:   sym,
		speed:      1.0,
		trail:      make([]viz.TrailPoint, 0, 150),
		history:    make([]float64, 0, 60),
		width:      80,
		height:     24,
	}, nil
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if m.running && !m.paused && m.system != nil && m.simState != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				dt := now.Sub(m.lastFrame).Seconds()
				if dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			steps := int(m.speed * 16)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps; i++ {
				m.step()
			}
		}
		if m.running && m.state == stateSim {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
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
		if preset := config.GetPreset(m.presets[m.cursor]); preset != nil {
			copied := *preset
			m.cfg = &copied
		}
		m.state = stateConfig
		m.paramCursor = 0
	}
	return m, nil
}

func (m *model) getParam(name string) float64 {
	switch name {
	case "theta1":
		return m.cfg.InitState.Theta1
	case "theta2":
		return m.cfg.InitState.Theta2
	case "omega1":
		return m.cfg.InitState.Omega1
	case "omega2":
		return m.cfg.InitState.Omega2
	case "m1":
		return m.cfg.Params.M1
	case "m2":
		return m.cfg.Params.M2
	case "l1":
		return m.cfg.Params.L1
	case "l2":
		return m.cfg.Params.L2
	case "k1":
		return m.cfg.Params.K1
	case "k2":
		return m.cfg.Params.K2
	case "dt":
		return m.cfg.Dt
	case "duration":
		return m.cfg.Duration
	}
	return 0
}

func (m *model) setParam(name string, val float64) {
	switch name {
	case "theta1":
		m.cfg.InitState.Theta1 = val
	case "theta2":
		m.cfg.InitState.Theta2 = val
	case "omega1":
		m.cfg.InitState.Omega1 = val
	case "omega2":
		m.cfg.InitState.Omega2 = val
	case "m1":
		m.cfg.Params.M1 = val
	case "m2":
		m.cfg.Params.M2 = val
	case "l1":
		m.cfg.Params.L1 = val
	case "l2":
		m.cfg.Params.L2 = val
	case "k1":
		m.cfg.Params.K1 = val
	case "k2":
		m.cfg.Params.K2 = val
	case "dt":
		m.cfg.Dt = val
	case "duration":
		m.cfg.Duration = val
	}
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(m.editBuf, "%f", &val)
			m.setParam(m.paramNames[m.paramCursor], val)
			m.editing = false
			m.editBuf = ""
		case "escape":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "escape":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = fmt.Sprintf("%.3f", m.getParam(m.paramNames[m.paramCursor]))
	case "s":
		if err := m.start(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick())
	case "left", "h":
		name := m.paramNames[m.paramCursor]
		m.setParam(name, m.getParam(name)-0.1)
	case "right", "l":
		name := m.paramNames[m.paramCursor]
		m.setParam(name, m.getParam(name)+0.1)
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape":
		m.running = false
		m.state = stateMenu
		m.reset()
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.start(); err != nil {
			m.errMsg = err.Error()
		} else {
			m.errMsg = ""
		}
		return m, tea.ClearScreen
	case "c":
		m.running = false
		m.state = stateConfig
		m.reset()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = math.Min(m.speed*2, 16)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) start() error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}

	sys, err := compile.NewSystem(m.symbolic, m.cfg.Params)
	if err != nil {
		return err
	}

	m.system = sys
	m.integ = integrators.NewRK4()
	m.simState = m.cfg.GetInitState()
	m.e0 = sys.Energy(m.simState)
	m.simTime = 0
	m.speed = 1.0
	m.trail = make([]viz.TrailPoint, 0, 150)
	m.history = make([]float64, 0, 60)
	m.lastFrame = time.Time{}
	m.running = true
	m.paused = false
	return nil
}

func (m *model) reset() {
	m.trail = nil
	m.history = nil
	m.system = nil
	m.simState = nil
	m.simTime = 0
}

func (m *model) step() {
	if m.simTime >= m.cfg.Duration {
		m.paused = true
		return
	}
	m.simState = m.integ.Step(m.system, m.simState, m.simTime, m.cfg.Dt)
	m.simTime += m.cfg.Dt

	if !m.simState.IsValid() {
		m.paused = true
		return
	}

	_, _, x2, y2 := m.system.Positions(m.simState)
	m.trail = append(m.trail, viz.TrailPoint{X: x2, Y: y2})
	if len(m.trail) > 150 {
		m.trail = m.trail[1:]
	}

	m.history = append(m.history, m.simState[springmodel.IdxTh1])
	if len(m.history) > 60 {
		m.history = m.history[1:]
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("         " + cyan.Render("s p r i n g p e n d") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter configure   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.presets[m.cursor]) + "  " + dim.Render(presetInfo[m.presets[m.cursor]]) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	for i, name := range m.paramNames {
		val := fmt.Sprintf("%8.3f", m.getParam(name))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-10s", name)) + dim.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  s start  esc back") + "\n")

	if m.errMsg != "" {
		b.WriteString("\n      " + red.Render(m.errMsg) + "\n")
	}

	return b.String()
}

func (m model) viewSim() string {
	cw := m.width - 6
	ch := m.height - 12
	if cw < 50 {
		cw = 50
	}
	if ch < 12 {
		ch = 12
	}

	canvas := viz.NewCanvas(cw, ch)
	reach := m.cfg.Params.L1 + m.cfg.Params.L2 + 1.0
	proj := viz.NewProjection(canvas, reach)

	if m.system != nil && m.simState != nil {
		x1, y1, x2, y2 := m.system.Positions(m.simState)
		viz.DrawPendulum(canvas, proj, x1, y1, x2, y2, m.trail)
	}

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	if m.errMsg != "" {
		statusIcon = red.Render("✗")
		statusText = red.Render(m.errMsg)
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n",
		statusIcon, cyan.Render("spring double pendulum"), statusText))

	progress := m.simTime / m.cfg.Duration
	if progress > 1 {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.0fs", m.simTime, m.cfg.Duration)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(timeStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	for _, row := range strings.Split(strings.TrimRight(canvas.String(), "\n"), "\n") {
		b.WriteString("   " + row + "\n")
	}

	if m.system != nil && m.simState != nil && m.e0 != 0 {
		drift := math.Abs(m.system.Energy(m.simState)-m.e0) / math.Abs(m.e0)
		b.WriteString(fmt.Sprintf("\n   %s %s\n",
			dim.Render("energy drift"), white.Render(fmt.Sprintf("%.2e", drift))))
	}

	if len(m.simState) >= springmodel.StateDim {
		var stateStr strings.Builder
		stateStr.WriteString("   ")
		for i, label := range stateLabels {
			stateStr.WriteString(dim.Render(label + "="))
			stateStr.WriteString(white.Render(fmt.Sprintf("%.2f", m.simState[i])))
			stateStr.WriteString("  ")
		}
		b.WriteString(stateStr.String() + "\n")
	}

	if len(m.history) > 1 {
		spark := m.sparkline(m.history, 24)
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("θ₁"), cyan.Render(spark)))
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  r reset  c config  q quit") + "\n")

	return b.String()
}

func (m model) sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func RunInteractive() error {
	app, err := NewInteractiveApp()
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
