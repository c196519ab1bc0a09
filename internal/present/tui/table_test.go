package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/pkg/api"
)

func bundledArticles(t *testing.T) []api.Article {
	t.Helper()
	return content.NewLoader(nil, nil).Load(context.Background()).Articles
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestBrowseChoosesArticle(t *testing.T) {
	m := newModel(bundledArticles(t), BrowseOptions{Headers: true})
	require.Len(t, m.visible, 4)

	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 20}, key("down"), key("enter"))
	require.NotNil(t, m.chosen)
	assert.Equal(t, "Drawing Your Pet", m.chosen.Title)
}

func TestBrowseCategoryCycle(t *testing.T) {
	m := newModel(bundledArticles(t), BrowseOptions{})
	m = send(m, key("c"))
	assert.Equal(t, "tips", content.Categories[m.category].Value)
	assert.Len(t, m.visible, 2)
	assert.Contains(t, m.View(), "2 articles")

	for i := 0; i < len(content.Categories)-1; i++ {
		m = send(m, key("c"))
	}
	assert.Equal(t, content.FilterAll, content.Categories[m.category].Value)
	assert.Len(t, m.visible, 4)
}

func TestBrowseSearchModal(t *testing.T) {
	m := newModel(bundledArticles(t), BrowseOptions{})
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 30}, key("/"))
	require.NotNil(t, m.search)
	assert.Contains(t, m.View(), "Search articles")

	m = send(m, key("nature"), key("enter"))
	assert.Nil(t, m.search)
	assert.Equal(t, "nature", m.query)
	require.NotEmpty(t, m.visible)
	assert.Equal(t, "Make Art with Nature", m.visible[0].Title)

	m = send(m, key("/"), key("esc"))
	assert.Nil(t, m.search)
	assert.Equal(t, "nature", m.query, "esc keeps the previous query")
}

func TestBrowseQuitWithoutChoice(t *testing.T) {
	m := newModel(bundledArticles(t), BrowseOptions{})
	m = send(m, key("q"))
	assert.Nil(t, m.chosen)
}

func TestBrowseEmpty(t *testing.T) {
	m := newModel(nil, BrowseOptions{})
	m = send(m, key("enter"))
	assert.Nil(t, m.chosen)
	assert.Contains(t, m.View(), "(no articles)")
}
