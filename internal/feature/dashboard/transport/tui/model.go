// Package tui is the terminal dashboard.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stock_forecast/internal/feature/dashboard/card"
	"stock_forecast/internal/feature/dashboard/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

// Controller is the view controller the terminal dashboard drives.
type Controller interface {
	Refresh() <-chan struct{}
	Snapshot() domain.ViewState
	SetQuery(q string)
	Visible() []entity.Instrument
	Subscribe() (<-chan struct{}, func())
}

// stateChangedMsg is sent after the controller signals a transition.
type stateChangedMsg struct{}

// Model is the main TUI application model.
type Model struct {
	ctrl        Controller
	updates     <-chan struct{}
	unsubscribe func()

	state domain.ViewState

	spinner  spinner.Model
	search   textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	// Window dimensions
	width  int
	height int
	ready  bool

	// configErr blocks the whole screen; only quitting is possible.
	configErr error
}

// NewModel creates a dashboard model bound to ctrl.
func NewModel(ctrl Controller) *Model {
	m := newBaseModel()
	m.ctrl = ctrl
	m.updates, m.unsubscribe = ctrl.Subscribe()
	m.state = ctrl.Snapshot()
	return m
}

// NewConfigErrorModel creates a model that only shows err.
func NewConfigErrorModel(err error) *Model {
	m := newBaseModel()
	m.configErr = err
	return m
}

func newBaseModel() *Model {
	search := textinput.New()
	search.Placeholder = card.SearchPlaceholder
	search.Prompt = "/ "
	search.CharLimit = 64

	return &Model{
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(AccentStyle)),
		search:   search,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
		state:    domain.Initial(),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	if m.configErr != nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

// Close releases the controller subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.configErr != nil {
		if msg, ok := msg.(tea.KeyMsg); ok && (key.Matches(msg, m.keys.Quit) || msg.Type == tea.KeyEsc) {
			return m, tea.Quit
		}
		if msg, ok := msg.(tea.WindowSizeMsg); ok {
			m.width, m.height = msg.Width, msg.Height
		}
		return m, nil
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.search.Focused() {
			return m, m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Search):
			return m, m.search.Focus()
		case key.Matches(msg, m.keys.Refresh):
			m.ctrl.Refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.renderContent()

	case stateChangedMsg:
		m.state = m.ctrl.Snapshot()
		m.renderContent()
		cmds = append(cmds, m.waitForUpdate())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return tea.Quit
	case key.Matches(msg, m.keys.Leave):
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetQuery(m.search.Value())
	m.viewport.GotoTop()
	m.renderContent()
	return cmd
}

// waitForUpdate blocks on the subscription until the controller signals.
func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

func (m *Model) resize() {
	m.search.Width = max(m.width-4, 10)
	m.help.Width = m.width
	bodyHeight := m.height - lipgloss.Height(m.headerView()) - lipgloss.Height(m.footerView())
	m.viewport.Width = m.width
	m.viewport.Height = max(bodyHeight, 1)
}

func (m *Model) renderContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.bodyView())
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.configErr != nil {
		return m.configErrorView()
	}
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.viewport.View(), m.footerView())
}

func (m *Model) headerView() string {
	title := TitleStyle.Render("BULLSEYE") + AccentStyle.Render("AI")
	var status string
	switch m.state.Mode() {
	case domain.ModeLoading:
		status = m.spinner.View() + MutedStyle.Render(" syncing")
	case domain.ModeSuccess:
		status = AccentStyle.Render("● "+card.LiveLabel) + "  " + MutedStyle.Render(card.SyncLabel(m.state.LastUpdated))
	default:
		status = ErrorTitleStyle.Render("● offline")
	}
	return HeaderStyle.Width(max(m.width, 1)).Render(lipgloss.JoinVertical(lipgloss.Left,
		title+"  "+status,
		TaglineStyle.Render(strings.ToUpper(card.Tagline)),
		m.search.View(),
	))
}

func (m *Model) footerView() string {
	return FooterStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.help.View(m.keys),
		card.Disclaimer,
	))
}

func (m *Model) bodyView() string {
	var b strings.Builder
	switch m.state.Mode() {
	case domain.ModeLoading:
		b.WriteString(TitleStyle.Render(card.LoadingTitle) + "\n")
		b.WriteString(MutedStyle.Render(card.LoadingDetail) + "\n")
	case domain.ModeFailed:
		b.WriteString(ErrorTitleStyle.Render(card.ErrorTitle) + "\n")
		b.WriteString(m.state.Error + "\n\n")
		b.WriteString(MutedStyle.Render("press r to "+strings.ToLower(card.RetryLabel)) + "\n")
		// 直近の成功データはエラーの下に残す
		for _, c := range card.RenderAll(m.ctrl.Visible()) {
			b.WriteString("\n" + m.cardView(c))
		}
	default:
		visible := m.ctrl.Visible()
		if len(visible) == 0 {
			b.WriteString(MutedStyle.Render(card.NoResultsLabel(m.search.Value())) + "\n")
		}
		for _, c := range card.RenderAll(visible) {
			b.WriteString(m.cardView(c) + "\n")
		}
		if sources := card.RenderSources(m.state.Sources); len(sources) > 0 {
			b.WriteString("\n" + MutedStyle.Render(strings.ToUpper(card.SourcesTitle)) + "\n")
			for _, s := range sources {
				b.WriteString(fmt.Sprintf("  %s  %s\n", s.Title, MutedStyle.Render(s.URI)))
			}
		}
	}
	return b.String()
}

func (m *Model) cardView(c card.Card) string {
	width := max(m.width-2, 20)
	head := fmt.Sprintf("%s %s  %s  %s",
		MutedStyle.Render(c.RankLabel), TitleStyle.Render(c.Symbol), c.Name, MutedStyle.Render(c.Sector))
	prices := fmt.Sprintf("%s %s → %s %s  %s",
		c.CurrentPrice, MutedStyle.Render(c.CurrentPriceDate),
		c.TargetPrice, MutedStyle.Render(card.ExpectedLabel+" · "+c.TargetPriceDate),
		GainTreatment(c.Positive).Render(c.GainLabel))
	return CardStyle.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, head, prices, MutedStyle.Render(c.Reason)))
}

func (m *Model) configErrorView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ErrorTitleStyle.Render("Configuration error"),
		m.configErr.Error(),
		"",
		MutedStyle.Render("Set GEMINI_API_KEY and restart. press q to quit"),
	)
}
