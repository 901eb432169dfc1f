// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resourcepanel renders the user's saved resources: links and
// uploaded files that can be inserted into a message.
package resourcepanel

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

// AddLinkMsg asks the shell to save a new link resource.
type AddLinkMsg struct {
	Title string
	URL   string
}

// UploadFileMsg asks the shell to upload a local file and save it as a
// file resource.
type UploadFileMsg struct {
	Title string
	Path  string
}

// InsertResourceMsg asks the shell to insert the resource URL into the
// chat input and refresh its last-used time.
type InsertResourceMsg struct{ Resource store.Resource }

// promptState is the two-step add flow: title first, then URL or path.
type promptState int

const (
	promptNone promptState = iota
	promptLinkTitle
	promptLinkURL
	promptFileTitle
	promptFilePath
)

// KeyMap defines the resource panel bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Insert  key.Binding
	AddLink key.Binding
	Upload  key.Binding
	Cancel  key.Binding
	Confirm key.Binding
}

// DefaultKeyMap returns the default resource panel bindings.
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
		Insert: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "insert into message"),
		),
		AddLink: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add link"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload file"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "confirm"),
		),
	}
}

// Model is the resource panel component.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	resources []store.Resource
	cursor    int

	prompt promptState
	title  string
	input  textinput.Model
	status string

	width  int
	height int
}

// New builds a resource panel.
func New(theme *styles.Theme) Model {
	in := textinput.New()
	in.CharLimit = 2000
	return Model{theme: theme, keys: DefaultKeyMap(), input: in}
}

// SetSize resizes the panel.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetResources replaces the listed resources, most recently used first.
func (m *Model) SetResources(rs []store.Resource) {
	m.resources = rs
	if m.cursor >= len(rs) {
		m.cursor = len(rs) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetStatus shows a one-line status or error under the list.
func (m *Model) SetStatus(status string) { m.status = status }

// Update handles panel input when the panel is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.prompt != promptNone {
		return m.updatePrompt(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.resources)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Insert):
		if len(m.resources) > 0 {
			r := m.resources[m.cursor]
			return m, func() tea.Msg { return InsertResourceMsg{Resource: r} }
		}
	case key.Matches(keyMsg, m.keys.AddLink):
		m.startPrompt(promptLinkTitle)
	case key.Matches(keyMsg, m.keys.Upload):
		m.startPrompt(promptFileTitle)
	}
	return m, nil
}

func (m *Model) startPrompt(p promptState) {
	m.prompt = p
	m.status = ""
	m.input.Reset()
	m.input.Focus()
}

func (m Model) updatePrompt(keyMsg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case key.Matches(keyMsg, m.keys.Confirm):
		return m.confirmPrompt()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

func (m Model) confirmPrompt() (Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	switch m.prompt {
	case promptLinkTitle:
		m.title = value
		m.startPrompt(promptLinkURL)
		return m, nil
	case promptFileTitle:
		m.title = value
		m.startPrompt(promptFilePath)
		return m, nil
	case promptLinkURL:
		title := m.title
		m.prompt = promptNone
		m.input.Blur()
		return m, func() tea.Msg { return AddLinkMsg{Title: title, URL: value} }
	case promptFilePath:
		title := m.title
		m.prompt = promptNone
		m.input.Blur()
		return m, func() tea.Msg { return UploadFileMsg{Title: title, Path: value} }
	}
	return m, nil
}

// View renders the resource panel.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.SidebarTitle.Render("Resources"))
	b.WriteString("\n\n")

	if len(m.resources) == 0 {
		b.WriteString(m.theme.ThreadDate.Render("No resources yet"))
		b.WriteString("\n")
	}

	for i, r := range m.resources {
		badge := m.theme.ResourceTypeLink.Render("[link]")
		if r.Type == store.ResourceFile {
			badge = m.theme.ResourceTypeFile.Render("[file]")
		}
		line := badge + " " + runewidth.Truncate(r.Title, maxInt(m.width-12, 8), "…")
		if i == m.cursor {
			b.WriteString(m.theme.ResourceItemSelected.Render(line))
		} else {
			b.WriteString(m.theme.ResourceItem.Render(line))
		}
		b.WriteString("\n")
	}

	if m.prompt != promptNone {
		b.WriteString("\n")
		b.WriteString(m.theme.InputPrompt.Render(m.promptLabel()) + m.input.View())
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorTitle.Render(m.status))
	}

	return b.String()
}

func (m Model) promptLabel() string {
	switch m.prompt {
	case promptLinkTitle, promptFileTitle:
		return "Title: "
	case promptLinkURL:
		return "URL: "
	case promptFilePath:
		return "File path: "
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
