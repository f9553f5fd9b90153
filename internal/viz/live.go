// Package viz renders the solver interactively in the terminal: a live view
// of the Newton iteration and static energy-profile plots.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mvellank/surfkin/internal/numeric"
	"github.com/mvellank/surfkin/internal/steady"
)

const (
	graphWidth      = 70
	graphHeight     = 10
	barWidth        = 30
	historyCapacity = 600
)

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	graphStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	convergedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// WatchModel steps a Newton iteration one iterate per tick and renders the
// residual-norm trace plus the current coverage distribution.
type WatchModel struct {
	newton    *steady.Newton
	names     []string
	network   string
	tolerance float64

	norms     []float64
	cvgs      []float64
	iteration int
	running   bool
	done      bool
	converged bool
	err       error
}

// NewWatch wraps a fresh iterator for the given solver and starting point.
// names label the coverage bars in model adsorbate order.
func NewWatch(solver *steady.Solver, x0 numeric.Vector, names []string, network string) WatchModel {
	return WatchModel{
		newton:    solver.NewtonAt(x0),
		names:     names,
		network:   network,
		tolerance: solver.Options().Tolerance,
		norms:     make([]float64, 0, historyCapacity),
		cvgs:      x0.Float64s(),
		running:   true,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.done {
				m.step()
			}
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		return m, tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *WatchModel) step() {
	it, ok, err := m.newton.Next()
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	if !ok {
		m.done = true
		return
	}
	m.iteration = it.Iteration
	m.cvgs = it.Point.Float64s()
	norm := it.Norm.Float64()
	if len(m.norms) == historyCapacity {
		m.norms = m.norms[1:]
	}
	m.norms = append(m.norms, norm)
	if norm <= m.tolerance || it.Stationary {
		m.converged = true
		m.done = true
	}
}

func (m WatchModel) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("newton watch: %s", m.network)) + "\n")

	sb.WriteString(labelStyle.Render("iteration") + valueStyle.Render(fmt.Sprintf("%d", m.iteration)) + "\n")
	if n := len(m.norms); n > 0 {
		sb.WriteString(labelStyle.Render("residual") + valueStyle.Render(fmt.Sprintf("%.6e", m.norms[n-1])) + "\n")
	}

	if len(m.norms) > 1 {
		logNorms := make([]float64, len(m.norms))
		for i, v := range m.norms {
			if v <= 0 {
				v = m.tolerance
			}
			logNorms[i] = math.Log10(v)
		}
		graph := asciigraph.Plot(logNorms,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("log10 residual norm"),
		)
		sb.WriteString(graphStyle.Render(graph) + "\n")
	}

	sb.WriteString("\n")
	for i, name := range m.names {
		theta := 0.0
		if i < len(m.cvgs) {
			theta = m.cvgs[i]
		}
		filled := int(math.Round(math.Max(0, math.Min(1, theta)) * barWidth))
		bar := barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)
		sb.WriteString(labelStyle.Render(name) + bar + valueStyle.Render(fmt.Sprintf(" %.4f", theta)) + "\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString("\n" + failedStyle.Render(fmt.Sprintf("failed: %v", m.err)) + "\n")
	case m.converged:
		sb.WriteString("\n" + convergedStyle.Render("converged") + "\n")
	case m.done:
		sb.WriteString("\n" + failedStyle.Render("iteration ended without convergence") + "\n")
	}

	sb.WriteString(helpStyle.Render("space pause · s step · q quit"))
	return sb.String()
}

// RunWatch starts the interactive view and blocks until the user quits.
func RunWatch(m WatchModel) error {
	_, err := tea.NewProgram(m).Run()
	return err
}
