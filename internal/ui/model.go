// Package ui renders the counter panel.
//
// The panel is a read-only view over the counter store: every refresh event
// triggers a fresh read, and nothing in here caches a count across events.
// Counting works exactly the same with the panel absent.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/slaytrack/internal/bus"
	"github.com/abelbrown/slaytrack/internal/config"
	"github.com/abelbrown/slaytrack/internal/counter"
	"github.com/abelbrown/slaytrack/internal/tracker"
)

// RefreshMsg tells the panel one display category changed. It carries no
// values; the panel re-reads the store.
type RefreshMsg struct {
	Category bus.Category
}

// NoticeMsg appends a confirmation notice to the feed.
type NoticeMsg struct {
	Text string
}

// Model is the Bubble Tea model for the counter panel.
type Model struct {
	store   *counter.Store
	cfg     *config.Config
	tracker *tracker.Tracker

	tasks       int64
	slaughter   int64
	expeditious int64
	cannon      int64

	notices []string
	input   textinput.Model
	width   int
	height  int
}

// New creates the panel model with counts read from the store.
func New(store *counter.Store, cfg *config.Config, tr *tracker.Tracker) Model {
	ti := textinput.New()
	ti.Placeholder = "!tasks"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()

	m := Model{
		store:   store,
		cfg:     cfg,
		tracker: tr,
		input:   ti,
	}
	m.refreshAll()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RefreshMsg:
		m.refresh(msg.Category)
		return m, nil

	case NoticeMsg:
		m.pushNotice(noticeStyle.Render(msg.Text))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the command line through the command handler. The response
// replaces the triggering input in the feed, mirroring how the in-game
// command replaces the chat message.
func (m *Model) submit() {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return
	}

	if response, ok := m.tracker.HandleCommand(text); ok {
		m.pushNotice(summaryStyle.Render(response))
		return
	}
	m.pushNotice(helpStyle.Render(fmt.Sprintf("unknown command %q", text)))
}

// refresh re-reads the counters behind one display category.
func (m *Model) refresh(c bus.Category) {
	switch c {
	case bus.CategoryTasks:
		m.tasks = m.store.Get(tracker.CounterTasks)
	case bus.CategoryBracelets:
		m.slaughter = m.store.Get(tracker.CounterSlaughter)
		m.expeditious = m.store.Get(tracker.CounterExpeditious)
	case bus.CategoryCannon:
		m.cannon = m.store.Get(tracker.CounterCannon)
	}
}

func (m *Model) refreshAll() {
	m.refresh(bus.CategoryTasks)
	m.refresh(bus.CategoryBracelets)
	m.refresh(bus.CategoryCannon)
}

func (m *Model) pushNotice(line string) {
	m.notices = append(m.notices, line)
	limit := m.cfg.UI.NoticeLimit
	if limit <= 0 {
		limit = 50
	}
	if len(m.notices) > limit {
		m.notices = m.notices[len(m.notices)-limit:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Slayer Task Counter"))
	b.WriteString("\n")

	b.WriteString(counterLine("Tasks completed", humanize.Comma(m.tasks)))
	if m.cfg.TrackBracelets {
		b.WriteString(counterLine("Slaughter used", fmt.Sprintf("%d", m.slaughter)))
		b.WriteString(counterLine("Expeditious used", fmt.Sprintf("%d", m.expeditious)))
	}
	if m.cfg.TrackCannon {
		b.WriteString(counterLine("Cannon breaks", fmt.Sprintf("%d", m.cannon)))
	}

	if len(m.notices) > 0 {
		b.WriteString("\n")
		// Show the most recent notices that fit
		visible := m.notices
		if max := m.noticeRows(); len(visible) > max {
			visible = visible[len(visible)-max:]
		}
		b.WriteString(strings.Join(visible, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type !tasks for a summary • esc to quit"))

	return panelStyle.Render(b.String())
}

// noticeRows returns how many notice lines fit under the counters.
func (m Model) noticeRows() int {
	rows := m.height - 12
	if rows < 3 {
		rows = 3
	}
	return rows
}

func counterLine(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		sectionStyle.Width(18).Render(label),
		valueStyle.Render(value),
	) + "\n"
}
