// Package tui shows a rendered resolution report in a scrollable viewer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/hdldep/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)
	ruleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Top  key.Binding
	End  key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Top, k.End, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Top:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	End:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// App is the bubbletea model for the report viewer.
type App struct {
	title   string
	status  string
	content string

	viewport viewport.Model
	help     help.Model
	ready    bool

	width  int
	height int
}

// NewApp builds a viewer over the formatter's full report.
func NewApp(title string, f *report.Formatter) *App {
	return &App{
		title:   title,
		status:  f.Status(),
		content: f.Render(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		bodyHeight := msg.Height - lipgloss.Height(a.header()) - lipgloss.Height(a.footer())
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		if !a.ready {
			a.viewport = viewport.New(msg.Width, bodyHeight)
			a.viewport.SetContent(a.content)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = bodyHeight
		}
		return a, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Top):
			a.viewport.GotoTop()
			return a, nil
		case key.Matches(msg, keys.End):
			a.viewport.GotoBottom()
			return a, nil
		}
	}
	if !a.ready {
		return a, nil
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "\n  Loading report..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.header(), a.viewport.View(), a.footer())
}

func (a *App) header() string {
	title := titleStyle.Render("⬡ " + a.title)
	return lipgloss.JoinVertical(lipgloss.Left, title, a.rule())
}

func (a *App) footer() string {
	percent := 100.0
	if a.ready {
		percent = a.viewport.ScrollPercent() * 100
	}
	info := fmt.Sprintf("%s  %3.f%%", a.status, percent)
	return lipgloss.JoinVertical(lipgloss.Left, a.rule(), footerStyle.Render(info), footerStyle.Render(a.help.View(keys)))
}

func (a *App) rule() string {
	width := a.width
	if width <= 0 {
		width = 40
	}
	return ruleStyle.Render(strings.Repeat("─", width))
}
