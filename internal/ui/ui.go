package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lrcx/internal/formatter"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunView ViewState = iota
	ResultView
)

// recentLimit is how many finished entries the run view keeps on screen.
const recentLimit = 5

// RunFunc runs a batch, reporting progress to observer.
type RunFunc func(ctx context.Context, observer tasks.Observer) (*models.Report, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	run          RunFunc
	view         ViewState
	width        int
	height       int
	total        int
	progressChan chan tasks.ProgressUpdate
	done         chan runResult
	progress     tasks.ProgressUpdate
	counts       map[models.Status]int
	recent       []models.Outcome
	cancelling   bool
	report       *models.Report
	err          error
	spinner      spinner.Model
	outcomes     list.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI model that runs a batch of total entries with run.
func NewModel(ctx context.Context, run RunFunc, total int) *Model {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
		view:    RunView,
		total:   total,
		counts:  make(map[models.Status]int),
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Report returns the batch report once the run has finished, partial when cancelled.
func (m *Model) Report() *models.Report {
	return m.report
}

// Err returns the error the batch ended with.
func (m *Model) Err() error {
	return m.err
}

// Init starts the batch and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ResultView {
			m.outcomes.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RunView:
			return m.handleRunKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != RunView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.observe(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgRunComplete:
			result := msg.data.(runResult)
			m.finish(result.report, result.err)
			return m, nil
		}
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.outcomes, cmd = m.outcomes.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleRunKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) && !m.cancelling {
		m.cancelling = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.outcomes.FilterState() != list.Filtering && key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.outcomes, cmd = m.outcomes.Update(msg)
	return m, cmd
}

func (m *Model) observe(update tasks.ProgressUpdate) {
	m.progress = update
	if update.Outcome == nil {
		return
	}

	m.counts[update.Outcome.Status]++
	m.recent = append(m.recent, *update.Outcome)
	if len(m.recent) > recentLimit {
		m.recent = m.recent[len(m.recent)-recentLimit:]
	}
}

func (m *Model) finish(report *models.Report, err error) {
	m.report = report
	m.err = err
	m.view = ResultView
	m.cancel()

	var outcomes []models.Outcome
	if report != nil {
		outcomes = report.Outcomes
		m.recount(outcomes)
	}
	width, height := m.listSize()
	m.outcomes = list.New(outcomeItems(outcomes), list.NewDefaultDelegate(), width, height)
	m.outcomes.Title = "Outcomes"
}

// recount rebuilds the status counters from the final outcomes, since progress updates may have been dropped.
func (m *Model) recount(outcomes []models.Outcome) {
	m.counts = make(map[models.Status]int, len(m.counts))
	for _, o := range outcomes {
		m.counts[o.Status]++
	}
}

func (m *Model) listSize() (int, int) {
	width, height := m.width, m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	return width - 4, height - 8
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.done = make(chan runResult, 1)

	progress, done := m.progressChan, m.done
	go func() {
		report, err := m.run(m.ctx, tasks.ChannelObserver(progress))
		done <- runResult{report: report, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			result := <-done
			return runCompleteMsg(result.report, result.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRun() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Fetching lyrics for %d entries", m.total)))
	b.WriteString("\n")

	message := "Starting..."
	if m.progress.Message != "" {
		message = m.progress.Message
	}
	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), message)

	fmt.Fprintf(&b, "%s  %s  %s  %s\n",
		styles.Status(models.StatusWritten).Render(fmt.Sprintf("written %d", m.counts[models.StatusWritten])),
		styles.Status(models.StatusSkipped).Render(fmt.Sprintf("skipped %d", m.counts[models.StatusSkipped])),
		styles.Status(models.StatusUnresolved).Render(fmt.Sprintf("unresolved %d", m.counts[models.StatusUnresolved])),
		styles.Status(models.StatusFetchFailed).Render(fmt.Sprintf("failed %d", m.counts[models.StatusFetchFailed]+m.counts[models.StatusWriteFailed])),
	)

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, o := range m.recent {
			fmt.Fprintf(&b, "  %s\n", styles.Status(o.Status).Render(formatter.OutcomeLine(o, m.total)))
		}
	}

	b.WriteString("\n")
	if m.cancelling {
		b.WriteString(styles.warn.Render("Cancelling after the current entry..."))
	} else {
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.cancel}))
	}
	return b.String()
}

func (m *Model) renderResult() string {
	if m.report == nil {
		return styles.err.Render(fmt.Sprintf("Batch failed: %v\n\nPress q to quit", m.err))
	}

	var header string
	if m.report.Cancelled {
		header = styles.warn.Render(fmt.Sprintf("Cancelled with %d entries pending", m.report.Pending()))
	} else {
		header = styles.ok.Render("✓ Batch complete")
	}
	summary := formatter.SummaryLine(m.report)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.filter, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, summary, m.outcomes.View(), helpView)
}
