package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/pkg/api"
)

// BrowseOptions tunes the article browser.
type BrowseOptions struct {
	Headers bool
	Status  string
}

// Browse opens an interactive Bubble Tea table of articles. It returns the
// article chosen with enter, or ok=false when the user quit without choosing.
func Browse(ctx context.Context, articles []api.Article, opts BrowseOptions) (api.Article, bool, error) {
	m := newModel(articles, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return api.Article{}, false, err
	}
	fm, ok := final.(model)
	if !ok || fm.chosen == nil {
		return api.Article{}, false, nil
	}
	return *fm.chosen, true, nil
}

type model struct {
	table    table.Model
	all      []api.Article
	visible  []api.Article
	category int
	query    string
	search   *searchModal
	chosen   *api.Article
	headers  bool
	width    int
	height   int
	status   string
}

func newModel(articles []api.Article, opts BrowseOptions) model {
	m := model{all: articles, headers: opts.Headers, status: opts.Status}
	m.initTable()
	m.applyFilter()
	return m
}

func (m *model) initTable() {
	m.table = table.New(table.WithColumns(m.columnsFor(6, 36, 14, 10, 8)), table.WithFocused(true))
	m.applyStyles()
}

// applyFilter recomputes the visible rows from the category and search query.
func (m *model) applyFilter() {
	cat := content.Categories[m.category].Value
	m.visible = content.SearchArticles(content.FilterArticles(m.all, cat), m.query)
	rows := make([]table.Row, 0, len(m.visible))
	for _, a := range m.visible {
		rows = append(rows, table.Row{
			fmt.Sprint(a.ID),
			a.Image + " " + a.Title,
			a.Category,
			a.ReadTime,
			a.Date,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.applyLayout()
		if m.search != nil {
			m.search, _ = m.search.update(msg)
		}
		return m, nil
	}
	if m.search != nil {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				m.query = m.search.value()
				m.search = nil
				m.applyFilter()
				return m, nil
			case "esc", "ctrl+c":
				m.search = nil
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.update(msg)
		return m, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.visible) {
				a := m.visible[idx]
				m.chosen = &a
			}
			return m, tea.Quit
		case "c":
			m.category = (m.category + 1) % len(content.Categories)
			m.applyFilter()
			return m, nil
		case "/":
			m.search = newSearchModal(m.query, m.width, m.height)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) renderFooter() string {
	left := "↑/↓ navigate • enter=read • c=category • /=search • q=exit"

	cat := content.Categories[m.category]
	right := fmt.Sprintf("%s %s", cat.Icon, cat.Label)
	if m.query != "" {
		right += fmt.Sprintf(" • %q", m.query)
	}
	if m.status != "" {
		right += " • " + m.status
	}
	right += fmt.Sprintf(" • %d articles ", len(m.visible))

	width := max(m.table.Width(), m.width)
	space := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	var base string
	if len(m.visible) == 0 {
		base = "(no articles)\n\n" + m.renderFooter() + "\n"
	} else {
		base = m.table.View() + "\n" + m.renderFooter() + "\n"
	}
	if m.search == nil {
		return base
	}
	fg := m.search.View()
	return m.renderOverlay(base, fg, lipgloss.Width(fg), lipgloss.Height(fg))
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-1))
	m.table.SetWidth(m.width)
	avail := m.width - 6
	if avail < 40 {
		return
	}
	idW, catW, readW, dateW := 4, 12, 10, 7
	titleW := max(12, avail-idW-catW-readW-dateW)
	m.table.SetColumns(m.columnsFor(idW, titleW, catW, readW, dateW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

// columnsFor returns columns with or without titles based on the headers flag.
func (m *model) columnsFor(idW, titleW, catW, readW, dateW int) []table.Column {
	titles := []string{"ID", "Title", "Category", "Read", "Date"}
	if !m.headers {
		titles = []string{"", "", "", "", ""}
	}
	widths := []int{idW, titleW, catW, readW, dateW}
	cols := make([]table.Column, len(titles))
	for i := range titles {
		cols[i] = table.Column{Title: titles[i], Width: widths[i]}
	}
	return cols
}
