// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sidebar renders the conversation list with new-chat and
// sign-out actions.
package sidebar

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

// SelectThreadMsg is emitted when the user opens a conversation.
type SelectThreadMsg struct{ ThreadID string }

// NewChatMsg is emitted when the user starts a new conversation.
type NewChatMsg struct{}

// SignOutMsg is emitted when the user signs out.
type SignOutMsg struct{}

// KeyMap defines the sidebar bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	NewChat key.Binding
	SignOut key.Binding
}

// DefaultKeyMap returns the default sidebar bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new chat"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "sign out"),
		),
	}
}

// Model is the sidebar component.
type Model struct {
	theme   *styles.Theme
	keys    KeyMap
	threads []store.Thread
	cursor  int
	active  string
	width   int
	height  int
}

// New builds a sidebar.
func New(theme *styles.Theme) Model {
	return Model{theme: theme, keys: DefaultKeyMap()}
}

// SetSize resizes the sidebar.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetThreads replaces the listed conversations, newest first.
func (m *Model) SetThreads(threads []store.Thread) {
	m.threads = threads
	if m.cursor >= len(threads) {
		m.cursor = len(threads) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetActive marks the open conversation.
func (m *Model) SetActive(threadID string) { m.active = threadID }

// Cursor returns the highlighted thread, if any.
func (m Model) Cursor() (store.Thread, bool) {
	if len(m.threads) == 0 {
		return store.Thread{}, false
	}
	return m.threads[m.cursor], true
}

// Update handles sidebar input when the sidebar is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.threads)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Open):
		if th, ok := m.Cursor(); ok {
			return m, func() tea.Msg { return SelectThreadMsg{ThreadID: th.ID} }
		}
	case key.Matches(keyMsg, m.keys.NewChat):
		return m, func() tea.Msg { return NewChatMsg{} }
	case key.Matches(keyMsg, m.keys.SignOut):
		return m, func() tea.Msg { return SignOutMsg{} }
	}
	return m, nil
}

// View renders the sidebar.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n")
	b.WriteString(m.theme.NewChatButton.Render("+ New chat"))
	b.WriteString("\n\n")

	if len(m.threads) == 0 {
		b.WriteString(m.theme.ThreadDate.Render("No conversations yet"))
	}

	visible := m.height - 5
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	for i := start; i < len(m.threads) && i < start+visible; i++ {
		th := m.threads[i]
		title := runewidth.Truncate(th.Title, maxInt(m.width-4, 8), "…")
		line := title
		if th.ID == m.active {
			line = "* " + line
		}
		if i == m.cursor {
			b.WriteString(m.theme.ThreadItemSelected.Render(line))
		} else {
			b.WriteString(m.theme.ThreadItem.Render(line))
		}
		b.WriteString("\n")
	}

	return m.theme.Sidebar.Width(m.width).Height(m.height).Render(b.String())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
