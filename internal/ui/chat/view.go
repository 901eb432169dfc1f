// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hanuai/hanu-tui/internal/session"
)

// View renders the chat panel.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.showOfferings && len(m.messages) <= 1 {
		b.WriteString(m.offeringsView())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.inputView())

	return b.String()
}

func (m Model) headerView() string {
	if m.editingTitle {
		return m.theme.InputPrompt.Render("Rename: ") + m.titleInput.View()
	}
	title := m.title
	if title == "" {
		title = "New conversation"
	}
	title = runewidth.Truncate(title, maxInt(m.width-4, 10), "…")
	return m.theme.Header.Render(title)
}

func (m Model) inputView() string {
	if m.sending {
		return m.theme.InputContainer.Render(
			m.spin.View() + " " + m.theme.ThinkingText.Render("Thinking..."),
		)
	}
	return m.theme.InputContainer.Render(
		m.theme.InputPrompt.Render("> ") + m.input.View(),
	)
}

// refreshTranscript re-renders all messages into the viewport.
func (m *Model) refreshTranscript() {
	var parts []string
	for _, msg := range m.messages {
		parts = append(parts, m.renderMessage(msg))
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
}

func (m Model) renderMessage(msg session.DisplayMessage) string {
	bubbleWidth := maxInt(m.width-10, 24)
	if msg.Role == session.RoleUser {
		content := msg.Content
		rendered := m.theme.UserBubble.MaxWidth(bubbleWidth).Render(content)
		return lipgloss.PlaceHorizontal(maxInt(m.width, bubbleWidth), lipgloss.Right, rendered)
	}
	content := m.renderer.Markdown(msg.Content)
	return m.theme.AssistantBubble.MaxWidth(bubbleWidth).Render(content)
}

func (m Model) offeringsView() string {
	var b strings.Builder

	b.WriteString(m.theme.Header.Render("Welcome to Hanu.ai"))
	b.WriteString("\n")
	b.WriteString(m.theme.ThinkingText.Render("Choose a category to get started with AI-powered business solutions"))
	b.WriteString("\n\n")

	// Tab row
	var tabs []string
	for i, tab := range OfferingTabs {
		if i == m.offeringTab {
			tabs = append(tabs, m.theme.OfferingCardSelected.Render(tab.Label))
		} else {
			tabs = append(tabs, m.theme.OfferingCard.Render(tab.Label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	// Cards of the active tab
	for i, o := range OfferingTabs[m.offeringTab].Offerings {
		style := m.theme.OfferingCard
		if i == m.offeringCard {
			style = m.theme.OfferingCardSelected
		}
		label := o.Title
		if o.ComingSoon {
			label += "  " + m.theme.ShortcutDesc.Render("(coming soon)")
		}
		card := label + "\n" + m.theme.ShortcutDesc.Render(o.Description)
		b.WriteString(style.Width(maxInt(m.width-6, 30)).Render(card))
		b.WriteString("\n")
	}

	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
