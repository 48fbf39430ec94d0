package viz

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/DannyLuna17/ElectroSim/internal/compute"
	"github.com/DannyLuna17/ElectroSim/internal/engine"
	"github.com/DannyLuna17/ElectroSim/internal/field"
	"github.com/DannyLuna17/ElectroSim/internal/storage"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

const (
	canvasWidth     = 96 // chars; 192x120 sub-pixels matches the 16:10 world
	canvasHeight    = 30
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model is the interactive terminal front end: it steps the engine once
// per tick and renders particles, trails and the field grid onto a
// braille canvas.
type Model struct {
	eng     *engine.Engine
	sampler *field.Sampler
	canvas  *Canvas

	runs *storage.Store // nil disables recording
	rec  *storage.Writer

	sceneNames []string
	sceneIdx   int

	showField  bool
	showTrails bool
	showHelp   bool

	energyHistory []float64
	status        string
	rng           *rand.Rand
}

func NewModel(eng *engine.Engine, runs *storage.Store, sceneNames []string) Model {
	return Model{
		eng:        eng,
		sampler:    field.NewSampler(field.ParamsFromConfig(eng.Config())),
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		runs:       runs,
		sceneNames: sceneNames,
		showField:  true,
		showTrails: true,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m Model) tick() tea.Cmd {
	interval := time.Second / time.Duration(m.eng.Config().FrameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.eng.StepFrame()
		if !m.eng.Paused() {
			m.energyHistory = append(m.energyHistory, m.eng.Energies().Total)
			if len(m.energyHistory) > historyCapacity {
				m.energyHistory = m.energyHistory[1:]
			}
			if m.rec != nil {
				en := m.eng.Energies()
				if err := m.rec.Append(m.eng.Time(), m.eng.Store().Snapshot(), en.Kinetic, en.Potential); err != nil {
					m.status = "record: " + err.Error()
					m.rec = nil
				}
			}
		}
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stopRecording()
		return m, tea.Quit
	case " ":
		m.eng.SetPaused(!m.eng.Paused())
	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		if err := m.eng.SetSpeedIndex(idx); err == nil {
			m.status = fmt.Sprintf("speed %gx", m.eng.SpeedMultiplier())
		}
	case "v":
		if err := m.eng.StartValidation(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "validation started"
		}
	case "V":
		m.eng.StopValidation()
	case "r":
		m.loadScene(m.sceneIdx)
	case "s":
		m.loadScene((m.sceneIdx + 1) % len(m.sceneNames))
	case "c":
		m.eng.Clear()
		m.energyHistory = m.energyHistory[:0]
	case "a", "n", "A", "N":
		m.place(msg.String())
	case "tab":
		m.cycleSelection()
	case "x":
		if id, ok := m.eng.Selected(); ok {
			if err := m.eng.RemoveParticle(id); err != nil {
				m.status = err.Error()
			}
		}
	case "[":
		m.nudgeSelected(engine.PropCharge, -1)
	case "]":
		m.nudgeSelected(engine.PropCharge, 1)
	case ";":
		m.nudgeSelected(engine.PropMass, -1)
	case "'":
		m.nudgeSelected(engine.PropMass, 1)
	case ",":
		m.nudgeSelected(engine.PropRadius, -1)
	case ".":
		m.nudgeSelected(engine.PropRadius, 1)
	case "f":
		m.showField = !m.showField
	case "t":
		m.showTrails = !m.showTrails
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) loadScene(idx int) {
	if len(m.sceneNames) == 0 {
		return
	}
	m.sceneIdx = idx
	name := m.sceneNames[m.sceneIdx]
	if err := m.eng.LoadScene(name); err != nil {
		m.status = err.Error()
		return
	}
	m.energyHistory = m.energyHistory[:0]
	m.status = "scene: " + name
}

func (m *Model) place(key string) {
	cfg := m.eng.Config()
	pos := world.Vec2{
		X: m.rng.Float64() * cfg.WorldWidth,
		Y: m.rng.Float64() * cfg.WorldHeight,
	}
	negative := key == "n" || key == "N"
	fixed := key == "A" || key == "N"
	if _, err := m.eng.AddDefault(pos, negative, fixed); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) cycleSelection() {
	n := m.eng.Store().Len()
	if n == 0 {
		m.eng.SetSelection(-1)
		return
	}
	next := 0
	if id, ok := m.eng.Selected(); ok {
		next = (id + 1) % n
	}
	if err := m.eng.SetSelection(next); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) nudgeSelected(prop engine.Property, steps int) {
	id, ok := m.eng.Selected()
	if !ok {
		m.status = "no selection (tab to select)"
		return
	}
	if err := m.eng.NudgeParticle(id, prop, steps); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) toggleRecording() {
	if m.runs == nil {
		m.status = "recording disabled (no run dir)"
		return
	}
	if m.rec != nil {
		m.stopRecording()
		return
	}
	scene := ""
	if len(m.sceneNames) > 0 {
		scene = m.sceneNames[m.sceneIdx]
	}
	w, err := m.runs.Begin("live session", scene, m.eng.Config())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.rec = w
	m.status = "recording " + w.ID()
}

func (m *Model) stopRecording() {
	if m.rec == nil {
		return
	}
	if err := m.rec.Close(); err != nil {
		m.status = "record: " + err.Error()
	} else {
		m.status = "saved run " + m.rec.ID()
	}
	m.rec = nil
}

// draw renders the world onto the canvas. One uniform scale maps meters
// to sub-pixels on both axes.
func (m *Model) draw() {
	m.canvas.Clear()
	cfg := m.eng.Config()
	cw := float64(canvasWidth * 2)
	ch := float64(canvasHeight * 4)
	scale := math.Min(cw/cfg.WorldWidth, ch/cfg.WorldHeight)

	toPx := func(p world.Vec2) (int, int) {
		return int(p.X * scale), int(p.Y * scale)
	}

	if m.showField {
		m.drawField(scale)
	}
	if m.showTrails {
		for _, p := range m.eng.Particles() {
			for _, s := range p.Trail.Samples() {
				x, y := toPx(s.Pos)
				m.canvas.Set(x, y)
			}
		}
	}

	selected, hasSel := m.eng.Selected()
	for _, p := range m.eng.Particles() {
		x, y := toPx(p.Pos)
		r := int(p.Radius * scale)
		if r < 1 {
			r = 1
		}
		if p.Fixed {
			m.canvas.FillCircle(x, y, r)
		} else {
			m.canvas.DrawCircle(x, y, r)
		}
		if hasSel && p.ID == selected {
			m.canvas.DrawCircle(x, y, r+2)
		}
	}
}

// drawField renders one short segment per sampler cell, pointing along
// the local field. In length mode the segment grows with log magnitude;
// in brightness mode strong cells get a dot at the tip instead.
func (m *Model) drawField(scale float64) {
	m.sampler.Reconfigure(field.ParamsFromConfig(m.eng.Config()))
	m.sampler.Recompute(m.eng.Env(), m.eng.Particles())

	lengthMode := m.eng.Config().FieldVisMode == "length"
	ppm := m.eng.Config().PixelsPerM
	for _, cell := range m.sampler.Samples() {
		mag := cell.E.Len()
		if mag < 1 {
			continue
		}
		dir := cell.E.Scale(1 / mag)
		segLen := 2.0
		if lengthMode {
			segLen = 1 + math.Min(3, math.Log10(mag))
		}
		x0 := int(cell.CenterPx.X / ppm * scale)
		y0 := int(cell.CenterPx.Y / ppm * scale)
		x1 := x0 + int(dir.X*segLen)
		y1 := y0 + int(dir.Y*segLen)
		m.canvas.DrawLine(x0, y0, x1, y1)
		if !lengthMode && mag > 1e4 {
			m.canvas.Set(x1+int(dir.X), y1+int(dir.Y))
		}
	}
}

// View renders the TUI.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("ELECTROSIM") + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy (J)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	en := m.eng.Energies()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.eng.Time())) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d / %d", m.eng.Store().Len(), m.eng.Config().MaxParticles)) + "\n")
	s.WriteString(labelStyle.Render("Kinetic") + valueStyle.Render(fmt.Sprintf("%.4g J", en.Kinetic)) + "\n")
	s.WriteString(labelStyle.Render("Potential") + valueStyle.Render(fmt.Sprintf("%.4g J", en.Potential)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%gx", m.eng.SpeedMultiplier())) + "\n")
	s.WriteString(labelStyle.Render("Backend") + valueStyle.Render(compute.GetBackend().Name()) + "\n")
	if len(m.sceneNames) > 0 {
		s.WriteString(labelStyle.Render("Scene") + valueStyle.Render(m.sceneNames[m.sceneIdx]) + "\n")
	}

	m.writeSelection(&s)
	m.writeValidation(&s)

	if m.status != "" {
		s.WriteString("\n" + valueStyle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause 1-4:Speed V:Validate R:Scene\nA/N:Place Tab:Select X:Del G:Rec ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine() string {
	state := strings.ToUpper(m.eng.State().String())
	if m.rec != nil {
		state += " ● REC"
	}
	return state
}

func (m Model) writeSelection(s *strings.Builder) {
	id, ok := m.eng.Selected()
	if !ok {
		return
	}
	p, ok := m.eng.Store().Get(id)
	if !ok {
		return
	}
	s.WriteString("\n" + selectStyle.Render(fmt.Sprintf("SELECTED #%d (%s)", p.ID, p.Polarity)) + "\n")
	s.WriteString(labelStyle.Render("Charge") + valueStyle.Render(fmt.Sprintf("%.1f µC", p.Charge*1e6)) + "\n")
	s.WriteString(labelStyle.Render("Mass") + valueStyle.Render(fmt.Sprintf("%.3f kg", p.Mass)) + "\n")
	s.WriteString(labelStyle.Render("Radius") + valueStyle.Render(fmt.Sprintf("%.3f m", p.Radius)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.2f m/s", p.Vel.Len())) + "\n")
	if forces := m.eng.Forces(); p.ID < len(forces) {
		s.WriteString(labelStyle.Render("Force") + valueStyle.Render(fmt.Sprintf("%.3g N", forces[p.ID].Len())) + "\n")
	}
	if p.Fixed {
		s.WriteString(labelStyle.Render("Fixed") + valueStyle.Render("yes") + "\n")
	}
	if len(p.MergeHistory) > 0 {
		s.WriteString(labelStyle.Render("Absorbed") + valueStyle.Render(fmt.Sprintf("%d", len(p.MergeHistory))) + "\n")
	}
}

func (m Model) writeValidation(s *strings.Builder) {
	v := m.eng.Validation()
	if v == nil {
		return
	}
	s.WriteString("\n" + headerStyle.Render("VALIDATION") + "\n")
	s.WriteString(labelStyle.Render("Elapsed") + valueStyle.Render(fmt.Sprintf("%.2f / %.0fs", v.Elapsed, v.Duration)) + "\n")
	s.WriteString(labelStyle.Render("Pos error") + valueStyle.Render(fmt.Sprintf("%.3g m", v.PosError.Len())) + "\n")
	s.WriteString(labelStyle.Render("Max error") + valueStyle.Render(fmt.Sprintf("%.3g m", v.MaxPosError)) + "\n")
	if v.Done {
		s.WriteString(labelStyle.Render("Analytic") + valueStyle.Render(fmt.Sprintf("(%.4f, %.4f)", v.FinalAnalytic.X, v.FinalAnalytic.Y)) + "\n")
		s.WriteString(labelStyle.Render("Simulated") + valueStyle.Render(fmt.Sprintf("(%.4f, %.4f)", v.FinalSimulated.X, v.FinalSimulated.Y)) + "\n")
	}
}

const helpOverlay = `
╔══════════════════════════════════════════╗
║            KEYBOARD SHORTCUTS            ║
╠══════════════════════════════════════════╣
║  Space    - Pause/Resume                 ║
║  1-4      - Speed multiplier             ║
║  V / Shift+V - Start / stop validation   ║
║  R        - Reload scene  S - Next scene ║
║  C        - Clear all particles          ║
║  A / N    - Place + / - particle         ║
║  Shift+A/N - Place fixed + / - particle  ║
║  Tab      - Cycle selection  X - Delete  ║
║  [ ]      - Charge down/up               ║
║  ; '      - Mass down/up                 ║
║  , .      - Radius down/up               ║
║  F        - Toggle field   T - Trails    ║
║  G        - Toggle run recording         ║
║  ?        - Toggle this help             ║
╚══════════════════════════════════════════╝`
