// Package tui provides the terminal view that follows a Jenkins build's
// console output until the build finishes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jenkins-mcp/src/buildops"
)

// DefaultWatchInterval is the delay between console polls.
const DefaultWatchInterval = 2 * time.Second

const (
	maxWatchLines = 10000
	// header, help line and the viewport border
	chromeHeight = 4
)

// Monitor fetches the console lines of a build from a cursor onwards.
type Monitor interface {
	Monitor(ctx context.Context, job string, build *int, fromLine int) (*buildops.MonitorResult, error)
}

type monitorMsg struct {
	result *buildops.MonitorResult
	err    error
}

type pollMsg struct{}

// WatchModel is the Bubble Tea model that tails one build.
// The build number is pinned after the first successful poll so a build
// started meanwhile does not replace the one being watched.
type WatchModel struct {
	ctx      context.Context
	monitor  Monitor
	job      string
	build    *int
	interval time.Duration

	cursor  int
	lines   []string
	dropped int
	result  *buildops.MonitorResult
	err     error
	done    bool
	follow  bool

	viewport viewport.Model
	spinner  spinner.Model
	styles   *StyleConfig
	width    int
}

// NewWatchModel creates a model that polls monitor every interval.
// A nil build follows the latest build of job.
func NewWatchModel(ctx context.Context, monitor Monitor, job string, build *int, interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return WatchModel{
		ctx:      ctx,
		monitor:  monitor,
		job:      job,
		build:    build,
		interval: interval,
		follow:   true,
		viewport: viewport.New(80, 20),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))),
		),
		styles: DefaultStyles(),
		width:  80,
	}
}

// Init starts the first poll and the spinner.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

// Result returns the most recent poll result, or nil before the first one.
func (m WatchModel) Result() *buildops.MonitorResult {
	return m.result
}

// Err returns the error of the most recent poll.
func (m WatchModel) Err() error {
	return m.err
}

func (m WatchModel) fetch() tea.Cmd {
	ctx, monitor, job, build, cursor := m.ctx, m.monitor, m.job, m.build, m.cursor
	return func() tea.Msg {
		res, err := monitor.Monitor(ctx, job, build, cursor)
		return monitorMsg{result: res, err: err}
	}
}

func (m WatchModel) poll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Update handles messages and updates the model state.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = max(msg.Width-2, 1)
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "g", "home":
			m.follow = false
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.follow = true
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()
		return m, cmd

	case monitorMsg:
		return m.apply(msg)

	case pollMsg:
		if m.done {
			return m, nil
		}
		return m, m.fetch()

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m WatchModel) apply(msg monitorMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		if stopsWatch(msg.err) {
			m.done = true
			return m, nil
		}
		return m, m.poll()
	}

	res := msg.result
	m.err = nil
	if m.build == nil {
		n := res.BuildNumber
		m.build = &n
	}

	if res.NextLine < m.cursor {
		// Console shrank below the cursor: reload it from the start.
		m.lines, m.dropped, m.cursor = nil, 0, 0
		return m, m.fetch()
	}

	if res.NextLine > res.FromLine {
		m.appendLines(strings.Split(res.Output, "\n"))
	}
	m.cursor = res.NextLine
	m.result = res
	m.refresh()

	if !res.Building && res.Result != "" {
		m.done = true
		return m, nil
	}
	return m, m.poll()
}

// stopsWatch reports whether retrying cannot succeed.
func stopsWatch(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch buildops.KindOf(err) {
	case buildops.KindJobNotFound, buildops.KindBuildNotFound, buildops.KindInvalidArgument:
		return true
	}
	return false
}

func (m *WatchModel) appendLines(lines []string) {
	m.lines = append(m.lines, lines...)
	if over := len(m.lines) - maxWatchLines; over > 0 {
		m.lines = append([]string(nil), m.lines[over:]...)
		m.dropped += over
	}
}

func (m *WatchModel) refresh() {
	var b strings.Builder
	for i, line := range m.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ClipLine(line, m.viewport.Width))
	}
	m.viewport.SetContent(b.String())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View renders the header, the console viewport and the help line.
func (m WatchModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.styles.ViewportStyle(!m.done).Render(m.viewport.View()),
		m.help(),
	)
}

func (m WatchModel) header() string {
	title := m.job
	if m.build != nil {
		title = fmt.Sprintf("%s #%d", m.job, *m.build)
	}
	title = m.styles.TitleStyle().Render(Truncate(title, max(m.width/2, 10), true))

	var status string
	switch {
	case m.err != nil:
		status = m.styles.ResultStyle("FAILURE").Render(Truncate(renderErr(m.err), max(m.width/2, 10), true))
	case m.result == nil:
		status = m.spinner.View() + " connecting"
	case m.result.Building || m.result.Result == "":
		status = m.spinner.View() + " building"
	default:
		status = m.styles.ResultStyle(m.result.Result).Render(m.result.Result)
	}

	count := fmt.Sprintf("%d lines", m.cursor)
	if m.dropped > 0 {
		count = fmt.Sprintf("%d lines, first %d hidden", m.cursor, m.dropped)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", status, m.styles.HelpStyle().Render(count))
}

func (m WatchModel) help() string {
	help := "↑/↓ scroll • g/G top/bottom • q quit"
	if m.follow {
		help += " • following"
	}
	return m.styles.HelpStyle().Render(help)
}

func renderErr(err error) string {
	var e *buildops.Error
	if errors.As(err, &e) {
		return e.Kind.String() + ": " + e.Detail()
	}
	return err.Error()
}
