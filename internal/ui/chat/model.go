// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view: the message transcript,
// the input line, the title editor, and the topic-picker grid shown
// before the first message of a new conversation.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/session"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

// =============================================================================
// EMITTED MESSAGES
// =============================================================================

// SubmitMsg carries a user message ready to send.
type SubmitMsg struct{ Query string }

// RenameMsg carries a confirmed thread title edit.
type RenameMsg struct{ Title string }

// PickOfferingMsg carries the query of a selected topic card.
type PickOfferingMsg struct{ Query string }

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view component.
type Model struct {
	theme    *styles.Theme
	keys     KeyMap
	renderer *Renderer

	viewport   viewport.Model
	input      textinput.Model
	titleInput textinput.Model
	spin       spinner.Model

	width  int
	height int

	messages []session.DisplayMessage
	title    string
	sending  bool

	editingTitle  bool
	showOfferings bool
	offeringTab   int
	offeringCard  int
}

// New builds a chat view.
func New(theme *styles.Theme) Model {
	in := textinput.New()
	in.Placeholder = "Ask anything about your business..."
	in.CharLimit = 4000
	in.Focus()

	ti := textinput.New()
	ti.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	vp := viewport.New(80, 20)

	return Model{
		theme:      theme,
		keys:       DefaultKeyMap(),
		renderer:   NewRenderer(76),
		viewport:   vp,
		input:      in,
		titleInput: ti,
		spin:       sp,
	}
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd { return m.spin.Tick }

// =============================================================================
// STATE SETTERS
// =============================================================================

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 4 // header + input rows
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	wrap := width - 8
	if wrap < 20 {
		wrap = 20
	}
	m.renderer = NewRenderer(wrap)
	m.refreshTranscript()
}

// SetMessages replaces the rendered transcript.
func (m *Model) SetMessages(msgs []session.DisplayMessage) {
	m.messages = msgs
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

// SetTitle sets the thread title shown in the view header.
func (m *Model) SetTitle(title string) { m.title = title }

// Title returns the current header title.
func (m Model) Title() string { return m.title }

// SetSending toggles the in-flight indicator and input lock.
func (m *Model) SetSending(sending bool) { m.sending = sending }

// SetShowOfferings toggles the topic-picker grid for the empty state.
func (m *Model) SetShowOfferings(show bool) {
	m.showOfferings = show
	if show {
		m.offeringTab = 0
		m.offeringCard = 0
	}
}

// InputValue returns the current input text.
func (m Model) InputValue() string { return m.input.Value() }

// ResetInput clears the input line.
func (m *Model) ResetInput() { m.input.Reset() }

// InsertText appends text to the input line, separated by a space when
// needed. Used by the resource panel's insert action.
func (m *Model) InsertText(text string) {
	cur := m.input.Value()
	if cur != "" && !strings.HasSuffix(cur, " ") {
		cur += " "
	}
	m.input.SetValue(cur + text)
	m.input.CursorEnd()
}

// EditingTitle reports whether the title editor is open.
func (m Model) EditingTitle() bool { return m.editingTitle }

// StartTitleEdit opens the title editor pre-filled with the current title.
func (m *Model) StartTitleEdit() {
	m.editingTitle = true
	m.titleInput.SetValue(m.title)
	m.titleInput.Focus()
	m.input.Blur()
}

func (m *Model) stopTitleEdit() {
	m.editingTitle = false
	m.titleInput.Blur()
	m.input.Focus()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles chat-view input when the view is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.editingTitle {
		switch {
		case key.Matches(msg, m.keys.Submit):
			title := strings.TrimSpace(m.titleInput.Value())
			m.stopTitleEdit()
			if title == "" || title == m.title {
				return m, nil
			}
			m.title = title
			return m, func() tea.Msg { return RenameMsg{Title: title} }
		case key.Matches(msg, m.keys.Cancel):
			m.stopTitleEdit()
			return m, nil
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}

	if m.showOfferings && m.input.Value() == "" {
		if handled, next, cmd := m.updateOfferingKey(msg); handled {
			return next, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		query := m.input.Value()
		if strings.TrimSpace(query) == "" || m.sending {
			return m, nil
		}
		m.input.Reset()
		return m, func() tea.Msg { return SubmitMsg{Query: query} }

	case key.Matches(msg, m.keys.RenameTitle):
		if m.title != "" {
			m.StartTitleEdit()
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	if m.sending {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateOfferingKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	tab := OfferingTabs[m.offeringTab]
	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.offeringTab = (m.offeringTab + 1) % len(OfferingTabs)
		m.offeringCard = 0
		return true, m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.offeringTab = (m.offeringTab + len(OfferingTabs) - 1) % len(OfferingTabs)
		m.offeringCard = 0
		return true, m, nil
	case key.Matches(msg, m.keys.NextCard):
		m.offeringCard = (m.offeringCard + 1) % len(tab.Offerings)
		return true, m, nil
	case key.Matches(msg, m.keys.PrevCard):
		m.offeringCard = (m.offeringCard + len(tab.Offerings) - 1) % len(tab.Offerings)
		return true, m, nil
	case key.Matches(msg, m.keys.Submit):
		o := tab.Offerings[m.offeringCard]
		query := o.Query()
		return true, m, func() tea.Msg { return PickOfferingMsg{Query: query} }
	}
	return false, m, nil
}
