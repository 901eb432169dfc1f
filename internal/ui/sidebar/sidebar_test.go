// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package sidebar

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

func newTestSidebar() Model {
	m := New(styles.NewTheme())
	m.SetSize(30, 20)
	m.SetThreads([]store.Thread{
		{ID: "a", Title: "Instagram campaign"},
		{ID: "b", Title: "Quarterly numbers"},
		{ID: "c", Title: "Hiring plan"},
	})
	return m
}

func TestCursorMovesWithinBounds(t *testing.T) {
	m := newTestSidebar()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if th, _ := m.Cursor(); th.ID != "a" {
		t.Fatalf("cursor moved above first item: %q", th.ID)
	}

	for i := 0; i < 10; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if th, _ := m.Cursor(); th.ID != "c" {
		t.Fatalf("cursor moved past last item: %q", th.ID)
	}
}

func TestOpenEmitsSelection(t *testing.T) {
	m := newTestSidebar()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no selection emitted")
	}
	msg, ok := cmd().(SelectThreadMsg)
	if !ok || msg.ThreadID != "b" {
		t.Fatalf("emitted %v", cmd())
	}
}

func TestNewChatAndSignOut(t *testing.T) {
	m := newTestSidebar()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if _, ok := cmd().(NewChatMsg); !ok {
		t.Fatalf("emitted %T, want NewChatMsg", cmd())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if _, ok := cmd().(SignOutMsg); !ok {
		t.Fatalf("emitted %T, want SignOutMsg", cmd())
	}
}

func TestSetThreadsClampsCursor(t *testing.T) {
	m := newTestSidebar()
	for i := 0; i < 2; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	m.SetThreads([]store.Thread{{ID: "only", Title: "One left"}})
	if th, ok := m.Cursor(); !ok || th.ID != "only" {
		t.Fatalf("cursor not clamped: %v %v", th, ok)
	}
}
