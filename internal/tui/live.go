// Package tui is the live terminal view of an optimization run.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/fwdiff/internal/optim"
	"github.com/san-kum/fwdiff/internal/problem"
	"github.com/san-kum/fwdiff/internal/viz"
)

const historyLen = 60

type stepMsg optim.Step

type doneMsg struct{}

// run is written once by the optimizer goroutine before finished is closed.
type run struct {
	result   *optim.Result
	err      error
	finished chan struct{}
}

// Model shows the loss, gradient norm and current point while a gradient
// descent run proceeds in the background.
type Model struct {
	objective string
	labels    []string
	maxIter   int

	steps  <-chan optim.Step
	run    *run
	cancel context.CancelFunc

	last    optim.Step
	history []float64
	done    bool
	width   int
}

// NewModel starts gd on p. The run stops when the view quits.
func NewModel(ctx context.Context, gd *optim.GradientDescent, p *problem.Problem) Model {
	m := Model{
		objective: p.Objective().Name(),
		labels:    p.Labels(),
		maxIter:   gd.MaxIter,
		width:     80,
	}

	ctx, cancel := context.WithCancel(ctx)
	steps := make(chan optim.Step, 64)
	r := &run{finished: make(chan struct{})}

	go func() {
		defer close(steps)
		defer close(r.finished)
		r.result, r.err = gd.Run(ctx, p, func(s optim.Step) bool {
			select {
			case steps <- s:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()

	m.steps, m.run, m.cancel = steps, r, cancel
	return m
}

func (m Model) wait() tea.Cmd {
	return func() tea.Msg {
		if s, ok := <-m.steps; ok {
			return stepMsg(s)
		}
		<-m.run.finished
		return doneMsg{}
	}
}

func (m Model) Init() tea.Cmd { return m.wait() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case stepMsg:
		m.last = optim.Step(msg)
		m.history = append(m.history, m.last.Loss)
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
		return m, m.wait()
	case doneMsg:
		m.done = true
		m.cancel()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	status := viz.StatusRunning.Render("RUNNING")
	if m.done {
		switch {
		case m.run.err != nil:
			status = viz.StatusFail.Render("ERROR")
		case m.run.result.Converged:
			status = viz.StatusOK.Render("CONVERGED")
		case m.run.result.Stalled:
			status = viz.StatusRunning.Render("STALLED")
		default:
			status = viz.Subtle.Render("STOPPED")
		}
	}

	b.WriteString(viz.Title.Render("fwdiff · "+m.objective) + "  " + status + "\n\n")
	b.WriteString(metric("iter", fmt.Sprintf("%d / %d", m.last.Iter+1, m.maxIter)))
	b.WriteString(metric("loss", fmt.Sprintf("%.8g", m.last.Loss)))
	b.WriteString(metric("|∇|", fmt.Sprintf("%.3e", m.last.GradNorm)))
	b.WriteString(metric("step", fmt.Sprintf("%.3e", m.last.StepSize)))
	b.WriteString("\n" + viz.ProgressBar(float64(m.last.Iter+1)/float64(m.maxIter), 40) + "\n")
	b.WriteString(viz.SparklineChart(m.history, min(historyLen, max(m.width-8, 10))) + "\n\n")

	for i, label := range m.labels {
		if i >= len(m.last.Point) {
			break
		}
		b.WriteString(metric(label, fmt.Sprintf("%.6g", m.last.Point[i])))
	}

	if m.done && m.run.err != nil {
		b.WriteString("\n" + viz.StatusFail.Render(m.run.err.Error()) + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("q quit"))

	return viz.Panel.Render(b.String())
}

func metric(label, value string) string {
	return viz.MetricLabel.Render(fmt.Sprintf("%-10s", label)) + viz.MetricValue.Render(value) + "\n"
}

// Run shows the live view until the user quits and returns the run's result.
// Quitting early cancels the run and returns its partial result.
func Run(ctx context.Context, gd *optim.GradientDescent, p *problem.Problem) (*optim.Result, error) {
	final, err := tea.NewProgram(NewModel(ctx, gd, p), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	r := final.(Model).run
	<-r.finished
	if errors.Is(r.err, context.Canceled) && ctx.Err() == nil {
		return r.result, nil
	}
	return r.result, r.err
}
