// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package adminview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

func newTestView() Model {
	m := New(styles.NewTheme())
	m.SetSize(80, 24)
	m.SetActivity([]store.UserActivity{
		{UserID: "user-a", LastActive: "2025-03-02T10:00:00.000Z", ThreadCount: 5},
		{UserID: "user-b", LastActive: "2025-03-01T09:00:00.000Z", ThreadCount: 2},
	})
	return m
}

func TestSelectEmitsImpersonation(t *testing.T) {
	m := newTestView()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no impersonation emitted")
	}
	msg, ok := cmd().(ImpersonateMsg)
	if !ok || msg.UserID != "user-b" {
		t.Fatalf("emitted %v", cmd())
	}
}

func TestEmptyActivitySelectIsNoop(t *testing.T) {
	m := New(styles.NewTheme())
	m.SetActivity(nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("empty table emitted a command")
	}
}

func TestViewListsUsersAndCounts(t *testing.T) {
	m := newTestView()
	out := m.View()
	for _, want := range []string{"user-a", "user-b", "5", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
