// Package tui runs the live terminal view: a minimization that steps on
// a timer while number keys toggle individual force groups on and off.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeff231li/openmm/internal/bonded"
	"github.com/jeff231li/openmm/internal/config"
	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/forcefield"
	"github.com/jeff231li/openmm/internal/sim"
	"github.com/jeff231li/openmm/internal/viz"
)

const historyLen = 240

type model struct {
	preset string
	cfg    *config.Config

	simulator  *sim.Simulator
	ctx        device.Context
	groupNames []string
	mask       int

	running  bool
	paused   bool
	step     int
	stepSize float64
	energy   float64
	maxForce float64
	history  []float64

	speed  int
	width  int
	height int
	err    error
}

func newModel(preset string) (model, error) {
	cfg := config.Preset(preset)
	if cfg == nil {
		return model{}, fmt.Errorf("unknown preset %q", preset)
	}

	m := model{
		preset:   preset,
		cfg:      cfg,
		stepSize: cfg.Run.StepSize,
		speed:    1,
		width:    80,
		height:   24,
		history:  make([]float64, 0, historyLen),
	}
	if err := m.rebuild(); err != nil {
		return model{}, err
	}
	return m, nil
}

// rebuild constructs a fresh context and registry from the preset. Used
// at startup and on reset, since a sealed registry cannot be reopened.
func (m *model) rebuild() error {
	sys, forces, err := forcefield.FromConfig(m.cfg)
	if err != nil {
		return err
	}

	ctx := device.NewEmulator(sys.NumAtoms())
	reg := bonded.NewRegistry(ctx)
	names := make([]string, 0, len(forces))
	mask := 0
	for i, f := range forces {
		if err := f.AddTo(ctx, reg); err != nil {
			return err
		}
		names = append(names, f.Name())
		mask |= 1 << i
	}
	if err := reg.Initialize(sys); err != nil {
		return err
	}

	m.ctx = ctx
	m.simulator = sim.New(ctx, reg, sys)
	m.groupNames = names
	m.mask = mask
	m.step = 0
	m.stepSize = m.cfg.Run.StepSize
	m.history = m.history[:0]
	m.energy, m.maxForce = 0, 0
	m.running = true
	m.paused = false
	return nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.running && !m.paused && m.err == nil {
			for i := 0; i < m.speed; i++ {
				m.advance()
			}
		}
		if m.running {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c", "escape":
		m.running = false
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.rebuild(); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	case "+", "=":
		if m.speed < 16 {
			m.speed *= 2
		}
	case "-", "_":
		if m.speed > 1 {
			m.speed /= 2
		}
	}

	// Number keys flip the matching force group's dispatch bit.
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		g := int(key[0] - '1')
		if g < len(m.groupNames) {
			m.mask ^= 1 << g
		}
	}
	return m, nil
}

// advance takes one steepest-descent step against the active groups,
// backtracking when the move goes uphill.
func (m *model) advance() {
	energy, forces, err := m.simulator.Evaluate(m.mask)
	if err != nil {
		m.err = err
		return
	}

	pos := m.ctx.Positions()
	prev := make([]device.Real4, len(pos))
	copy(prev, pos)
	for i, f := range forces {
		pos[i].X += m.stepSize * f.X
		pos[i].Y += m.stepSize * f.Y
		pos[i].Z += m.stepSize * f.Z
	}

	newEnergy, newForces, err := m.simulator.Evaluate(m.mask)
	if err != nil {
		m.err = err
		return
	}
	if newEnergy > energy {
		copy(pos, prev)
		m.stepSize /= 2
	} else {
		energy, forces = newEnergy, newForces
		m.stepSize *= 1.2
	}

	m.energy = energy
	m.maxForce = 0
	for _, f := range forces {
		if n := f.Norm(); n > m.maxForce {
			m.maxForce = n
		}
	}

	m.history = append(m.history, energy)
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
	m.step++
}

func (m model) View() string {
	if m.err != nil {
		return viz.Panel.Render(fmt.Sprintf("error: %v\n\npress q to quit", m.err))
	}

	var b strings.Builder

	b.WriteString(viz.Title.Render("openmm live · "+m.preset) + "\n\n")

	status := viz.StatusRunning.Render("● running")
	if m.paused {
		status = viz.StatusPaused.Render("● paused")
	}
	b.WriteString(status + "  " + viz.GroupBadges(m.groupNames, m.mask) + "\n\n")

	plotWidth := m.width - 12
	if plotWidth < 20 {
		plotWidth = 20
	}
	b.WriteString(viz.EnergyPlot(m.history, plotWidth, 8) + "\n\n")

	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		viz.MetricLabel.Render("step"), viz.MetricValue.Render(fmt.Sprintf("%d", m.step)),
		viz.MetricLabel.Render("energy"), viz.MetricValue.Render(fmt.Sprintf("%.6g", m.energy)),
		viz.MetricLabel.Render("max |F|"), viz.MetricValue.Render(fmt.Sprintf("%.4g", m.maxForce)),
		viz.MetricLabel.Render("speed"), viz.MetricValue.Render(fmt.Sprintf("%dx", m.speed)),
	))
	b.WriteString(viz.Subtle.Render(viz.Sparkline(m.history, plotWidth)) + "\n\n")

	b.WriteString(viz.KeyHint.Render("space pause · 1-9 toggle groups · +/- speed · r reset · q quit"))

	return b.String()
}

// Run starts the live view for the named preset and blocks until quit.
func Run(preset string) error {
	m, err := newModel(preset)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
