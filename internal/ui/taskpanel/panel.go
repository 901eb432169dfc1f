// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package taskpanel renders the agent task cards for the open
// conversation and, for privileged users, an edit mode over them.
package taskpanel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/task"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

// SaveTasksMsg asks the shell to push the edited mapping to the backend.
type SaveTasksMsg struct{}

// UploadMediaMsg asks the shell to upload a local file and attach the
// resulting URL to a result's media list.
type UploadMediaMsg struct {
	TaskID   string
	ResultID string
	Kind     task.MediaKind
	Path     string
}

// editAction is a pending single-line edit started from a key press.
type editAction int

const (
	editNone editAction = iota
	editResultTitle
	editResultBody
	editResultCTA
	editAddMedia
	editSetMedia
	editRemoveMedia
	editUploadMedia
)

// KeyMap defines the task panel bindings.
type KeyMap struct {
	NextTask     key.Binding
	PrevTask     key.Binding
	NextResult   key.Binding
	Toggle       key.Binding
	AddResult    key.Binding
	DeleteResult key.Binding
	EditTitle    key.Binding
	EditBody     key.Binding
	EditCTA      key.Binding
	AddMedia     key.Binding
	SetMedia     key.Binding
	RemoveMedia  key.Binding
	UploadMedia  key.Binding
	Save         key.Binding
	Cancel       key.Binding
	Confirm      key.Binding
}

// DefaultKeyMap returns the default task panel bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTask: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next task"),
		),
		PrevTask: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous task"),
		),
		NextResult: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next result"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "toggle status"),
		),
		AddResult: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add result"),
		),
		DeleteResult: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete result"),
		),
		EditTitle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit title"),
		),
		EditBody: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "edit body"),
		),
		EditCTA: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "edit CTA"),
		),
		AddMedia: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "add media (kind url)"),
		),
		SetMedia: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "edit media (kind index url)"),
		),
		RemoveMedia: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove media (kind index)"),
		),
		UploadMedia: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "upload media (kind path)"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save tasks"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel edit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "confirm"),
		),
	}
}

// Model is the task panel component.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	tasks    map[string]api.Task
	order    []string
	editor   *task.Editor
	editable bool

	taskCursor   int
	resultCursor int

	pending editAction
	input   textinput.Model
	status  string
	saving  bool

	width  int
	height int
}

// New builds a task panel.
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

// SetTasks installs a read-only task mapping.
func (m *Model) SetTasks(tasks map[string]api.Task) {
	m.tasks = tasks
	m.editor = nil
	m.reindex()
}

// SetEditor installs an editable working copy. Nil disables edit mode.
func (m *Model) SetEditor(e *task.Editor) {
	m.editor = e
	if e != nil {
		m.tasks = e.Tasks()
	}
	m.reindex()
}

// SetEditable toggles whether edit keys are honored.
func (m *Model) SetEditable(editable bool) { m.editable = editable }

// SetSaving locks the working copy while a save is in flight. Edit keys
// are ignored until the save outcome arrives.
func (m *Model) SetSaving(saving bool) { m.saving = saving }

// SetStatus replaces the panel's status line.
func (m *Model) SetStatus(status string) { m.status = status }

// Dirty reports whether unsaved task edits exist.
func (m Model) Dirty() bool { return m.editor != nil && m.editor.Dirty() }

func (m *Model) reindex() {
	m.order = m.order[:0]
	for id := range m.tasks {
		m.order = append(m.order, id)
	}
	sort.Strings(m.order)
	if m.taskCursor >= len(m.order) {
		m.taskCursor = len(m.order) - 1
	}
	if m.taskCursor < 0 {
		m.taskCursor = 0
	}
	m.resultCursor = 0
}

func (m *Model) refresh() {
	if m.editor != nil {
		m.tasks = m.editor.Tasks()
	}
	// Keep cursors in place across refreshes so edits don't jump focus.
	ids := make([]string, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	m.order = ids
	if m.taskCursor >= len(m.order) {
		m.taskCursor = len(m.order) - 1
	}
	if m.taskCursor < 0 {
		m.taskCursor = 0
	}
}

// selected returns the task and result under the cursors.
func (m Model) selected() (api.Task, *api.TaskResult, bool) {
	if len(m.order) == 0 {
		return api.Task{}, nil, false
	}
	t := m.tasks[m.order[m.taskCursor]]
	if len(t.Results) == 0 {
		return t, nil, true
	}
	rc := m.resultCursor
	if rc >= len(t.Results) {
		rc = len(t.Results) - 1
	}
	return t, &t.Results[rc], true
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles panel input when the panel is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.pending != editNone {
		return m.updatePendingEdit(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.NextTask):
		if m.taskCursor < len(m.order)-1 {
			m.taskCursor++
			m.resultCursor = 0
		}
	case key.Matches(keyMsg, m.keys.PrevTask):
		if m.taskCursor > 0 {
			m.taskCursor--
			m.resultCursor = 0
		}
	case key.Matches(keyMsg, m.keys.NextResult):
		if t, _, ok := m.selected(); ok && len(t.Results) > 0 {
			m.resultCursor = (m.resultCursor + 1) % len(t.Results)
		}
	default:
		if m.editable && m.editor != nil && !m.saving {
			return m.updateEditKey(keyMsg)
		}
	}
	return m, nil
}

func (m Model) updateEditKey(keyMsg tea.KeyMsg) (Model, tea.Cmd) {
	t, r, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Toggle):
		m.applyEdit(m.editor.ToggleStatus(t.ID))
	case key.Matches(keyMsg, m.keys.AddResult):
		_, err := m.editor.AddResult(t.ID)
		m.applyEdit(err)
	case key.Matches(keyMsg, m.keys.DeleteResult):
		if r != nil {
			m.applyEdit(m.editor.RemoveResult(t.ID, r.ID))
		}
	case key.Matches(keyMsg, m.keys.EditTitle):
		if r != nil {
			m.startEdit(editResultTitle, r.Title)
		}
	case key.Matches(keyMsg, m.keys.EditBody):
		if r != nil {
			m.startEdit(editResultBody, r.Body)
		}
	case key.Matches(keyMsg, m.keys.EditCTA):
		if r != nil {
			m.startEdit(editResultCTA, r.CTA)
		}
	case key.Matches(keyMsg, m.keys.AddMedia):
		if r != nil {
			m.startEdit(editAddMedia, "")
		}
	case key.Matches(keyMsg, m.keys.SetMedia):
		if r != nil {
			m.startEdit(editSetMedia, "")
		}
	case key.Matches(keyMsg, m.keys.RemoveMedia):
		if r != nil {
			m.startEdit(editRemoveMedia, "")
		}
	case key.Matches(keyMsg, m.keys.UploadMedia):
		if r != nil {
			m.startEdit(editUploadMedia, "")
		}
	case key.Matches(keyMsg, m.keys.Save):
		if m.editor.Dirty() {
			return m, func() tea.Msg { return SaveTasksMsg{} }
		}
	}
	return m, nil
}

func (m *Model) startEdit(action editAction, initial string) {
	m.pending = action
	m.status = ""
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) updatePendingEdit(keyMsg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.pending = editNone
		m.input.Blur()
		return m, nil
	case key.Matches(keyMsg, m.keys.Confirm):
		return m, m.commitPendingEdit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

func (m *Model) commitPendingEdit() tea.Cmd {
	t, r, ok := m.selected()
	action, value := m.pending, m.input.Value()
	m.pending = editNone
	m.input.Blur()
	if !ok || r == nil {
		return nil
	}

	switch action {
	case editResultTitle:
		m.applyEdit(m.editor.SetResultTitle(t.ID, r.ID, value))
	case editResultBody:
		m.applyEdit(m.editor.SetResultBody(t.ID, r.ID, value))
	case editResultCTA:
		m.applyEdit(m.editor.SetResultCTA(t.ID, r.ID, value))
	case editAddMedia:
		kind, rest, err := parseMediaArgs(value, 1)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.applyEdit(m.editor.AddMediaURL(t.ID, r.ID, kind, rest[0]))
	case editSetMedia:
		kind, rest, err := parseMediaArgs(value, 2)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		idx, err := strconv.Atoi(rest[0])
		if err != nil {
			m.status = "index must be a number"
			return nil
		}
		m.applyEdit(m.editor.EditMediaURL(t.ID, r.ID, kind, idx, rest[1]))
	case editRemoveMedia:
		kind, rest, err := parseMediaArgs(value, 1)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		idx, err := strconv.Atoi(rest[0])
		if err != nil {
			m.status = "index must be a number"
			return nil
		}
		m.applyEdit(m.editor.RemoveMediaURL(t.ID, r.ID, kind, idx))
	case editUploadMedia:
		kind, rest, err := parseMediaArgs(value, 1)
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.status = "uploading..."
		msg := UploadMediaMsg{TaskID: t.ID, ResultID: r.ID, Kind: kind, Path: rest[0]}
		return func() tea.Msg { return msg }
	}
	return nil
}

func (m *Model) applyEdit(err error) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refresh()
}

// parseMediaArgs splits "kind arg..." input for media edits.
func parseMediaArgs(value string, wantArgs int) (task.MediaKind, []string, error) {
	fields := strings.Fields(value)
	if len(fields) != wantArgs+1 {
		return "", nil, fmt.Errorf("expected kind plus %d argument(s)", wantArgs)
	}
	switch fields[0] {
	case "images", "i":
		return task.MediaImages, fields[1:], nil
	case "videos", "v":
		return task.MediaVideos, fields[1:], nil
	case "documents", "d":
		return task.MediaDocuments, fields[1:], nil
	}
	return "", nil, fmt.Errorf("kind must be images, videos, or documents")
}
