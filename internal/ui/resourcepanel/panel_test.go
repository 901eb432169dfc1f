// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package resourcepanel

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

func newTestPanel() Model {
	m := New(styles.NewTheme())
	m.SetSize(40, 20)
	m.SetResources([]store.Resource{
		{ID: "1", Title: "Brand guide", URL: "https://x.s3.amazonaws.com/uploads/b.pdf", Type: store.ResourceFile},
		{ID: "2", Title: "Competitor site", URL: "https://rival.example.com", Type: store.ResourceLink},
	})
	return m
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }
func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInsertEmitsSelectedResource(t *testing.T) {
	m := newTestPanel()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(enter())
	if cmd == nil {
		t.Fatal("no insert emitted")
	}
	msg, ok := cmd().(InsertResourceMsg)
	if !ok || msg.Resource.ID != "2" {
		t.Fatalf("emitted %v", cmd())
	}
}

func TestAddLinkTwoStepPrompt(t *testing.T) {
	m := newTestPanel()

	m, _ = m.Update(runes("a"))
	m.input.SetValue("Pricing page")
	m, _ = m.Update(enter())

	m.input.SetValue("https://example.com/pricing")
	_, cmd := m.Update(enter())
	if cmd == nil {
		t.Fatal("no add emitted")
	}
	msg, ok := cmd().(AddLinkMsg)
	if !ok || msg.Title != "Pricing page" || msg.URL != "https://example.com/pricing" {
		t.Fatalf("emitted %+v", cmd())
	}
}

func TestUploadPromptEmitsPath(t *testing.T) {
	m := newTestPanel()

	m, _ = m.Update(runes("u"))
	m.input.SetValue("Deck")
	m, _ = m.Update(enter())
	m.input.SetValue("/tmp/deck.pdf")
	_, cmd := m.Update(enter())

	msg, ok := cmd().(UploadFileMsg)
	if !ok || msg.Title != "Deck" || msg.Path != "/tmp/deck.pdf" {
		t.Fatalf("emitted %+v", cmd())
	}
}

func TestEscCancelsPrompt(t *testing.T) {
	m := newTestPanel()
	m, _ = m.Update(runes("a"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.prompt != promptNone {
		t.Fatal("prompt still open after esc")
	}
	// Enter should insert again, not confirm a prompt.
	_, cmd := m.Update(enter())
	if _, ok := cmd().(InsertResourceMsg); !ok {
		t.Fatalf("emitted %T after cancel", cmd())
	}
}

func TestViewShowsTypeBadges(t *testing.T) {
	m := newTestPanel()
	out := m.View()
	if !strings.Contains(out, "[file]") || !strings.Contains(out, "[link]") {
		t.Fatalf("badges missing from view:\n%s", out)
	}
}
