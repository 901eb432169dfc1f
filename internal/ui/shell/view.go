// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

// View renders the full application frame.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	if m.focus == focusAdmin {
		return m.adminView.View() + "\n" + m.statusBar()
	}

	var columns []string
	mode := m.theme.GetLayoutMode()

	if mode != styles.LayoutNarrow {
		columns = append(columns, m.sidebarView.View())
	}
	columns = append(columns, m.chatView.View())
	if mode == styles.LayoutWide {
		if m.panel == panelResources {
			columns = append(columns, m.resourceView.View())
		} else {
			columns = append(columns, m.tasksView.View())
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return body + "\n" + m.statusBar()
}

func (m *Model) statusBar() string {
	var parts []string

	if m.actor.Impersonating() {
		parts = append(parts, m.theme.ImpersonationBadge.Render("viewing as "+m.actor.TargetID()))
	}
	if m.statusErr != "" {
		parts = append(parts, m.theme.ErrorTitle.Render(m.statusErr))
	}

	help := []string{
		m.shortcut("C-b", "chats"),
		m.shortcut("C-t", "tasks"),
		m.shortcut("C-e", "resources"),
	}
	if m.actor.IsPrivileged() {
		help = append(help, m.shortcut("C-g", "admin"))
	}
	help = append(help, m.shortcut("C-q", "quit"))
	parts = append(parts, strings.Join(help, "  "))

	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m *Model) shortcut(keyLabel, desc string) string {
	return m.theme.ShortcutKey.Render(keyLabel) + " " + m.theme.ShortcutDesc.Render(desc)
}
