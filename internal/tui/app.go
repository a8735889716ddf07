package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"modelmind/internal/charts"
	"modelmind/internal/models"
	"modelmind/internal/service"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// streamCursor is drawn after the text of a provider that is still streaming.
const streamCursor = "▌"

// visibleLines is how much of each response is shown while streaming.
const visibleLines = 6

// App represents the TUI application
type App struct {
	service     *service.ComparisonService
	prompt      string
	temperature float64
	providers   []models.ProviderSpec
}

// NewApp creates a new TUI application. prompt pre-fills the prompt editor.
func NewApp(svc *service.ComparisonService, prompt string, temperature float64, providers []models.ProviderSpec) *App {
	return &App{
		service:     svc,
		prompt:      prompt,
		temperature: temperature,
		providers:   providers,
	}
}

// Run starts the TUI application
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newModel(ctx, a.service, a.prompt, a.temperature, a.providers)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// State represents the current state of the application
type State int

const (
	StateMenu State = iota
	StatePrompt
	StateConnectionTest
	StateComparing
	StateResults
	StateError
)

const (
	menuRunComparison = iota
	menuTestConnections
	menuQuit
)

// panel is the live view of one provider during a comparison.
type panel struct {
	provider string
	model    string
	text     string
	failed   bool
	metrics  *models.RunMetrics
}

func (p panel) done() bool { return p.metrics != nil }

// Model represents the TUI model
type Model struct {
	ctx         context.Context
	state       State
	service     *service.ComparisonService
	temperature float64
	providers   []models.ProviderSpec

	// Menu
	menuCursor int
	menuItems  []string

	// Prompt
	input   textinput.Model
	warning string

	// Connection test
	connectionResults []service.ConnectionResult
	connectionDone    bool

	// Comparison
	events  <-chan tea.Msg
	panels  []panel
	result  models.ComparisonResult
	winners []models.Winner
	charts  bool
	err     error

	// UI
	width  int
	height int
}

// newModel creates a new model
func newModel(ctx context.Context, svc *service.ComparisonService, prompt string, temperature float64, providers []models.ProviderSpec) Model {
	input := textinput.New()
	input.Placeholder = "Type a prompt to send to every selected model"
	input.SetValue(prompt)
	input.Width = 60

	return Model{
		ctx:         ctx,
		state:       StateMenu,
		service:     svc,
		temperature: temperature,
		providers:   providers,
		menuItems: []string{
			"Run Comparison",
			"Test Connections",
			"Quit",
		},
		input: input,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 20 {
			m.input.Width = msg.Width - 20
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case connectionTestMsg:
		m.connectionResults = msg.results
		m.connectionDone = true
		return m, nil

	case compareStartedMsg:
		m.events = msg.events
		return m, waitForEvent(m.events)

	case compareEventMsg:
		m.applyEvent(msg.event)
		return m, waitForEvent(m.events)

	case compareDoneMsg:
		m.result = msg.result
		m.winners = nil
		if len(msg.result.Runs) > 0 {
			m.winners = service.ComputeWinners(msg.result.Runs)
		}
		m.events = nil
		m.state = StateResults
		return m, nil

	case compareErrorMsg:
		m.err = msg.err
		m.events = nil
		m.state = StateError
		return m, nil
	}

	if m.state == StatePrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyEvent(ev service.Event) {
	if ev.Index < 0 || ev.Index >= len(m.panels) {
		return
	}
	p := &m.panels[ev.Index]
	switch ev.Item.Kind {
	case models.ItemFragment:
		p.text += ev.Item.Text
	case models.ItemError:
		p.text += ev.Item.Text
		p.failed = true
	case models.ItemMetrics:
		p.metrics = ev.Item.Metrics
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case StateMenu:
		return m.handleMenuKeys(msg)
	case StatePrompt:
		return m.handlePromptKeys(msg)
	case StateConnectionTest:
		return m.handleConnectionTestKeys(msg)
	case StateComparing:
		return m.handleComparingKeys(msg)
	case StateResults:
		return m.handleResultsKeys(msg)
	case StateError:
		return m.handleErrorKeys(msg)
	}
	return m, nil
}

// handleMenuKeys handles menu navigation
func (m Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(m.menuItems)-1 {
			m.menuCursor++
		}
	case "enter", " ":
		switch m.menuCursor {
		case menuRunComparison:
			m.state = StatePrompt
			m.warning = ""
			cmd := m.input.Focus()
			return m, cmd
		case menuTestConnections:
			m.state = StateConnectionTest
			m.connectionDone = false
			m.connectionResults = nil
			return m, testConnections(m.ctx, m.service)
		case menuQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

// handlePromptKeys edits the prompt and starts the comparison on enter
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.state = StateMenu
		return m, nil
	case "enter":
		prompt := service.NormalizePrompt(m.input.Value())
		if err := service.ValidateInput(prompt, m.providers); err != nil {
			m.warning = err.Error()
			return m, nil
		}
		m.input.Blur()
		m.warning = ""
		m.state = StateComparing
		m.charts = false
		m.panels = make([]panel, len(m.providers))
		for i, p := range m.providers {
			m.panels[i] = panel{provider: p.Name, model: p.Model}
		}
		return m, startComparison(m.ctx, m.service, prompt, m.temperature, m.providers)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleConnectionTestKeys handles connection test screen
func (m Model) handleConnectionTestKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "b":
		if m.connectionDone {
			m.state = StateMenu
		}
	}
	return m, nil
}

// handleComparingKeys handles the live comparison screen
func (m Model) handleComparingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m, tea.Quit
	}
	return m, nil
}

// handleResultsKeys handles results screen
func (m Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "c":
		m.charts = !m.charts
	case "esc", "b":
		m.state = StateMenu
	}
	return m, nil
}

// handleErrorKeys handles error screen
func (m Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "b":
		m.state = StateMenu
	}
	return m, nil
}

// View renders the current view
func (m Model) View() string {
	switch m.state {
	case StateMenu:
		return m.renderMenu()
	case StatePrompt:
		return m.renderPrompt()
	case StateConnectionTest:
		return m.renderConnectionTest()
	case StateComparing:
		return m.renderComparison()
	case StateResults:
		return m.renderResults()
	case StateError:
		return m.renderError()
	}
	return ""
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A56E0"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#5A56E0")).
			Padding(0, 1)
)

// renderMenu renders the main menu
func (m Model) renderMenu() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ModelMind"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Selected models: %d (temperature %.1f)\n", len(m.providers), m.temperature))
	for _, p := range m.providers {
		b.WriteString(fmt.Sprintf("  • %s (%s)\n", p.Name, p.Model))
	}
	b.WriteString("\n")

	b.WriteString("Choose an option:\n\n")

	for i, item := range m.menuItems {
		if m.menuCursor == i {
			b.WriteString(selectedStyle.Render("> " + item))
		} else {
			b.WriteString(normalStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render("Use ↑/↓ to navigate, Enter to select, q to quit"))

	return boxStyle.Render(b.String())
}

// renderPrompt renders the prompt editor
func (m Model) renderPrompt() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Enter Your Prompt"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.warning != "" {
		b.WriteString(warningStyle.Render("⚠️  " + m.warning))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Enter to run, Esc to go back"))
	return boxStyle.Render(b.String())
}

// renderConnectionTest renders the connection test screen
func (m Model) renderConnectionTest() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Connection Test"))
	b.WriteString("\n\n")

	if !m.connectionDone {
		b.WriteString("Testing connections to providers...\n\n")
		b.WriteString("⏳ Please wait...")
		return boxStyle.Render(b.String())
	}

	if len(m.connectionResults) == 0 {
		b.WriteString(warningStyle.Render("No provider has an API key configured."))
	} else {
		b.WriteString("Connection test results:\n\n")

		successCount := 0
		for _, res := range m.connectionResults {
			if res.Err != nil {
				b.WriteString(errorStyle.Render(fmt.Sprintf("❌ %s: %v", res.Provider, res.Err)))
			} else {
				b.WriteString(successStyle.Render(fmt.Sprintf("✅ %s: Connected (%v)", res.Provider, res.Latency.Round(time.Millisecond))))
				successCount++
			}
			b.WriteString("\n")
		}

		b.WriteString("\n")
		total := len(m.connectionResults)
		if successCount == total {
			b.WriteString(successStyle.Render(fmt.Sprintf("🎉 All %d providers connected successfully!", total)))
		} else {
			b.WriteString(errorStyle.Render(fmt.Sprintf("⚠️  %d/%d providers failed connection test", total-successCount, total)))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render("Press 'b' or Esc to go back, q to quit"))
	return boxStyle.Render(b.String())
}

// renderComparison renders one live panel per provider
func (m Model) renderComparison() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Model Responses"))
	b.WriteString("\n\n")

	width := 70
	if m.width > 10 {
		width = m.width - 10
	}

	for _, p := range m.panels {
		b.WriteString(panelStyle.Width(width).Render(renderPanel(p)))
		b.WriteString("\n")
	}

	b.WriteString(infoStyle.Render("Streaming... press Ctrl+C to cancel"))
	return b.String()
}

func renderPanel(p panel) string {
	header := selectedStyle.Render(fmt.Sprintf("%s (%s)", p.provider, p.model))

	body := tail(p.text, visibleLines)
	switch {
	case p.failed:
		body = errorStyle.Render(body)
	case !p.done():
		body += streamCursor
	}

	footer := infoStyle.Render("waiting for metrics...")
	if p.done() {
		footer = formatMetrics(*p.metrics)
	}
	return header + "\n" + body + "\n" + footer
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

func formatMetrics(m models.RunMetrics) string {
	if m.Failed {
		return errorStyle.Render(fmt.Sprintf("Failed after %.2fs", m.TotalTime.Seconds()))
	}
	ttft := "n/a"
	if m.HasFirstFragment() {
		ttft = fmt.Sprintf("%.2fs", m.TimeToFirstFragment.Seconds())
	}
	return successStyle.Render(fmt.Sprintf("TTFT %s | Total %.2fs | %d chars | %.1f chars/s",
		ttft, m.TotalTime.Seconds(), m.OutputChars, m.Throughput))
}

// renderResults renders the results screen
func (m Model) renderResults() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Performance Metrics"))
	b.WriteString("\n\n")

	for _, run := range m.result.Runs {
		b.WriteString(fmt.Sprintf("📊 %s (%s)\n", run.Provider, run.Model))
		b.WriteString(strings.Repeat("-", 30) + "\n")
		b.WriteString(formatMetrics(run.Metrics))
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Winners"))
	b.WriteString("\n\n")
	if len(m.winners) == 0 {
		b.WriteString(warningStyle.Render("No successful runs to rank."))
		b.WriteString("\n")
	}
	for _, w := range m.winners {
		b.WriteString(fmt.Sprintf("🏆 %-24s %s (%s)\n", w.Category.Title()+":", w.Provider, formatWinnerValue(w)))
	}

	if m.charts {
		b.WriteString("\n")
		b.WriteString(charts.NewChartGenerator(60, 12).GenerateAllCharts(m.result))
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render("Press 'c' to toggle charts, 'b' or Esc to go back, q to quit"))
	return boxStyle.Render(b.String())
}

func formatWinnerValue(w models.Winner) string {
	switch w.Category {
	case models.CategoryTTFT, models.CategoryTotalTime:
		return fmt.Sprintf("%.2fs", w.Value)
	case models.CategoryOutputChars:
		return fmt.Sprintf("%.0f chars", w.Value)
	default:
		return fmt.Sprintf("%.1f chars/s", w.Value)
	}
}

// renderError renders the error screen
func (m Model) renderError() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Error"))
	b.WriteString("\n\n")

	b.WriteString(errorStyle.Render(fmt.Sprintf("❌ %v", m.err)))
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render("Press 'b' or Esc to go back, q to quit"))

	return boxStyle.Render(b.String())
}
