package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/chainburst/internal/bench"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// benchResultMsg carries one finished size.
type benchResultMsg bench.Result

// benchDoneMsg signals the end of the run.
type benchDoneMsg struct {
	err error
}

// benchModel is the bubbletea model for benchmark progress.
type benchModel struct {
	sizes    []int
	done     int
	last     *bench.Result
	progress progress.Model
	theme    Theme
	cancel   context.CancelFunc
	finished bool
	quitting bool
	err      error
}

func newBenchModel(sizes []int, cancel context.CancelFunc) benchModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return benchModel{
		sizes:    sizes,
		progress: prog,
		theme:    defaultTheme,
		cancel:   cancel,
	}
}

// Init returns the initial command.
func (m benchModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m benchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case benchResultMsg:
		r := bench.Result(msg)
		m.last = &r
		m.done++
		return m, nil

	case benchDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m benchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m benchModel) renderContent() string {
	if m.finished || m.quitting {
		return m.finalView()
	}

	var pct float64
	if len(m.sizes) > 0 {
		pct = float64(m.done) / float64(len(m.sizes))
	}

	current := "done"
	if m.done < len(m.sizes) {
		current = fmt.Sprintf("n=%d", m.sizes[m.done])
	}
	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", current))
	counts := fmt.Sprintf("%d/%d sizes", m.done, len(m.sizes))

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", status, m.progress.ViewAs(pct), counts)
	if m.last != nil {
		fmt.Fprintf(&b, "last: n=%d mean=%.4fs stddev=%.6fs\n", m.last.N, m.last.Mean.Seconds(), m.last.StdDev.Seconds())
	}
	b.WriteString(m.theme.hintStyle().Render("Press q to stop early"))
	b.WriteString("\n")
	return b.String()
}

func (m benchModel) finalView() string {
	switch {
	case m.quitting:
		return m.theme.hintStyle().Render(fmt.Sprintf("Stopped after %d of %d sizes.\n", m.done, len(m.sizes)))
	case m.err != nil:
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ Benchmark failed: %s\n", m.err))
	default:
		return m.theme.completedStyle().Render(fmt.Sprintf("✓ Benchmarked %d sizes\n", m.done))
	}
}

// RunBenchProgress runs the benchmark behind an interactive progress bar.
// Stopping early returns the sizes completed so far.
func RunBenchProgress(ctx context.Context, cfg bench.Config) ([]bench.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newBenchModel(cfg.Sizes, cancel))

	var (
		results []bench.Result
		runErr  error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		results, runErr = bench.Run(ctx, cfg, func(r bench.Result) {
			p.Send(benchResultMsg(r))
		})
		p.Send(benchDoneMsg{err: runErr})
	}()

	finalModel, err := p.Run()
	cancel()
	<-finished
	if err != nil {
		return results, fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(benchModel); ok && m.quitting {
		return results, nil
	}
	return results, runErr
}
