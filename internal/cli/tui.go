package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/search"
)

// Cell glyphs by role.
const (
	glyphUnvisited = "·"
	glyphOpen      = "○"
	glyphClosed    = "●"
	glyphCurrent   = "◉"
	glyphPath      = "█"
	glyphEmpty     = " "
)

// Delay bounds for the speed keys.
const (
	minAnimDelay = time.Millisecond
	maxAnimDelay = 2 * time.Second
)

var (
	cellUnvisitedStyle = lipgloss.NewStyle().Foreground(colorDim)
	cellOpenStyle      = lipgloss.NewStyle().Foreground(colorBlue)
	cellClosedStyle    = lipgloss.NewStyle().Foreground(colorGray)
	cellCurrentStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	cellPathStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	cellEndpointStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// =============================================================================
// gridModel - Animated search over a grid graph
// =============================================================================

// tickMsg advances the animation by one checkpoint.
type tickMsg struct{}

// gridModel is the bubbletea model that steps a run and draws every node at
// its grid cell.
type gridModel struct {
	run   *search.Run
	graph *graph.Graph
	cols  int
	rows  int
	// cells maps [col][row] to the node drawn there, or "".
	cells  [][]graph.Node
	delay  time.Duration
	paused bool
	quit   bool
	onPath map[graph.Node]bool
}

// newGridModel lays out the nodes of g by their cells. It fails when a node
// has no cell, since there would be nowhere to draw it.
func newGridModel(run *search.Run, g *graph.Graph) (gridModel, error) {
	cols, rows := 0, 0
	for _, n := range g.Nodes() {
		c, ok := g.Cell(n)
		if !ok {
			return gridModel{}, errors.New(errors.ErrCodeUnsupported,
				"node %s has no grid cell; animation needs a generated grid", n)
		}
		if c.Col < 0 || c.Row < 0 {
			return gridModel{}, errors.New(errors.ErrCodeInvalidGraph, "node %s has negative cell %d,%d", n, c.Col, c.Row)
		}
		cols, rows = max(cols, c.Col+1), max(rows, c.Row+1)
	}

	cells := make([][]graph.Node, cols)
	for i := range cells {
		cells[i] = make([]graph.Node, rows)
	}
	for _, n := range g.Nodes() {
		c, _ := g.Cell(n)
		cells[c.Col][c.Row] = n
	}

	return gridModel{
		run:    run,
		graph:  g,
		cols:   cols,
		rows:   rows,
		cells:  cells,
		delay:  max(run.StepDelay(), minAnimDelay),
		onPath: map[graph.Node]bool{},
	}, nil
}

func (m gridModel) tick() tea.Cmd {
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m gridModel) Init() tea.Cmd {
	return m.tick()
}

func (m gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
			if !m.paused && !m.run.Done() {
				return m, m.tick()
			}
		case "n", "right":
			if m.paused {
				m.step()
			}
		case "+", "=":
			m.delay = max(m.delay/2, minAnimDelay)
		case "-":
			m.delay = min(m.delay*2, maxAnimDelay)
		}
	case tickMsg:
		if m.paused || m.run.Done() {
			return m, nil
		}
		m.step()
		if m.run.Done() {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the run and records the path once it is found.
func (m *gridModel) step() {
	if m.run.Step() == search.Found {
		for _, n := range search.ResultOf(m.run).Nodes() {
			m.onPath[n] = true
		}
	}
}

func (m gridModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s  %s → %s", m.run.Algorithm(), m.run.Start(), m.run.Goal())))
	b.WriteString("\n\n")

	current, hasCurrent := m.run.Current()
	for row := m.rows - 1; row >= 0; row-- {
		for col := 0; col < m.cols; col++ {
			n := m.cells[col][row]
			b.WriteString(m.cell(n, hasCurrent && n == current))
			if col < m.cols-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(strings.Join([]string{
		cellOpenStyle.Render(glyphOpen) + " open",
		cellClosedStyle.Render(glyphClosed) + " closed",
		cellCurrentStyle.Render(glyphCurrent) + " current",
		cellPathStyle.Render(glyphPath) + " path",
	}, "  ")))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  n step  +/- speed  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m gridModel) cell(n graph.Node, isCurrent bool) string {
	switch {
	case n == "":
		return glyphEmpty
	case m.onPath[n]:
		return cellPathStyle.Render(glyphPath)
	case isCurrent:
		return cellCurrentStyle.Render(glyphCurrent)
	}
	switch m.run.Category(n) {
	case search.Open:
		return cellOpenStyle.Render(glyphOpen)
	case search.Closed:
		return cellClosedStyle.Render(glyphClosed)
	}
	if n == m.run.Start() || n == m.run.Goal() {
		return cellEndpointStyle.Render(glyphOpen)
	}
	return cellUnvisitedStyle.Render(glyphUnvisited)
}

func (m gridModel) status() string {
	stats := m.run.Stats()
	parts := []string{
		m.run.Outcome().String(),
		fmt.Sprintf("step %d", stats.Steps),
		fmt.Sprintf("%d expanded", stats.Expanded),
		fmt.Sprintf("%d open", m.run.OpenCount()),
		fmt.Sprintf("delay %s", m.delay),
	}
	if m.run.Outcome() == search.Found {
		parts = append(parts, fmt.Sprintf("cost %.3f", m.run.Cost()))
	}
	if m.paused {
		parts = append(parts, StyleWarning.Render("paused"))
	}
	return StyleValue.Render(strings.Join(parts, StyleDim.Render(" · ")))
}

// animate runs the search in a full-screen view until it terminates and the
// user quits. Quitting early leaves the run where it stopped.
func animate(ctx context.Context, run *search.Run, g *graph.Graph) (search.Result, error) {
	m, err := newGridModel(run, g)
	if err != nil {
		return search.Result{}, err
	}
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return search.ResultOf(run), err
	}
	if fm, ok := final.(gridModel); ok && fm.quit && !run.Done() {
		return search.ResultOf(run), context.Canceled
	}
	return search.ResultOf(run), nil
}
