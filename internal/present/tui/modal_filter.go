package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// searchModal is a foreground modal with a single fuzzy-search input.
type searchModal struct {
	query  textinput.Model
	width  int
	height int
	padX   int
	padY   int
	box    lipglossv2.Style
}

func newSearchModal(query string, termW, termH int) *searchModal {
	m := &searchModal{padX: 2, padY: 1}
	m.query = textinput.New()
	m.query.Prompt = "search: "
	m.query.Placeholder = "color, pet, nature"
	m.query.SetValue(query)
	m.query.Focus()
	m.resizeForTerm(termW, termH)
	return m
}

func (m *searchModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * 0.6)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(36, termW-2)
	}
	if w > 72 {
		w = 72
	}
	m.width, m.height = w, 7
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(m.height).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := w - 2 - m.padX*2
	m.query.Width = max(12, innerW-lipgloss.Width(m.query.Prompt))
}

func (m *searchModal) value() string { return strings.TrimSpace(m.query.Value()) }

func (m *searchModal) update(msg tea.Msg) (*searchModal, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.resizeForTerm(x.Width, x.Height)
		return m, nil
	case tea.KeyMsg:
		if x.String() == "ctrl+x" {
			m.query.SetValue("")
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *searchModal) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Search articles")
	help := lipgloss.NewStyle().Faint(true).Render("enter=apply • esc=cancel • ctrl+x=clear")
	return m.box.Render(strings.Join([]string{header, "", m.query.View(), "", help}, "\n"))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
