// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package adminview renders the admin landing screen: an all-users
// activity table from which an admin picks a user to view as.
package adminview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

// ImpersonateMsg is emitted when the admin picks a user to view as.
type ImpersonateMsg struct{ UserID string }

// KeyMap defines the admin view bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

// DefaultKeyMap returns the default admin view bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous user"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next user"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "view as user"),
		),
	}
}

// Model is the admin landing component.
type Model struct {
	theme    *styles.Theme
	keys     KeyMap
	activity []store.UserActivity
	cursor   int
	width    int
	height   int
}

// New builds an admin landing view.
func New(theme *styles.Theme) Model {
	return Model{theme: theme, keys: DefaultKeyMap()}
}

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetActivity replaces the listed users, most recently active first.
func (m *Model) SetActivity(rows []store.UserActivity) {
	m.activity = rows
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles input when the admin view is focused.
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
		if m.cursor < len(m.activity)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Select):
		if len(m.activity) > 0 {
			id := m.activity[m.cursor].UserID
			return m, func() tea.Msg { return ImpersonateMsg{UserID: id} }
		}
	}
	return m, nil
}

// View renders the activity table.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.SidebarTitle.Render("User activity"))
	b.WriteString("\n\n")

	if len(m.activity) == 0 {
		b.WriteString(m.theme.ThreadDate.Render("No user activity recorded"))
		return b.String()
	}

	idWidth := maxInt(m.width/3, 12)
	header := fmt.Sprintf("%s  %-24s  %s",
		runewidth.FillRight("User", idWidth), "Last active", "Threads")
	b.WriteString(m.theme.AdminTableHeader.Render(header))
	b.WriteString("\n")

	for i, row := range m.activity {
		line := fmt.Sprintf("%s  %-24s  %d",
			runewidth.FillRight(runewidth.Truncate(row.UserID, idWidth, "…"), idWidth),
			row.LastActive, row.ThreadCount)
		if i == m.cursor {
			b.WriteString(m.theme.AdminRowSelected.Render(line))
		} else {
			b.WriteString(m.theme.AdminRow.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutKey.Render("Enter") + m.theme.ShortcutDesc.Render(" view as user"))

	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
