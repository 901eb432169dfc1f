// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/ui/styles"
)

func newTestModel() Model {
	m := New(styles.NewTheme())
	m.SetSize(100, 40)
	return m
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	if s == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	if s == "right" {
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSubmitEmitsQuery(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("hello there")

	m, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("no command emitted")
	}
	msg, ok := cmd().(SubmitMsg)
	if !ok {
		t.Fatalf("emitted %T, want SubmitMsg", cmd())
	}
	if msg.Query != "hello there" {
		t.Fatalf("query = %q", msg.Query)
	}
	if m.InputValue() != "" {
		t.Fatal("input not cleared after submit")
	}
}

func TestBlankSubmitIgnored(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("   ")

	_, cmd := m.Update(keyMsg("enter"))
	if cmd != nil {
		t.Fatal("blank input emitted a command")
	}
}

func TestSubmitBlockedWhileSending(t *testing.T) {
	m := newTestModel()
	m.SetSending(true)
	m.input.SetValue("hello")

	_, cmd := m.Update(keyMsg("enter"))
	if cmd != nil {
		t.Fatal("submit accepted while sending")
	}
}

func TestTitleEditEmitsRename(t *testing.T) {
	m := newTestModel()
	m.SetTitle("Old title")
	m.StartTitleEdit()
	if !m.EditingTitle() {
		t.Fatal("title editor not open")
	}

	m.titleInput.SetValue("New title")
	m, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("no rename emitted")
	}
	msg, ok := cmd().(RenameMsg)
	if !ok || msg.Title != "New title" {
		t.Fatalf("emitted %v", cmd())
	}
	if m.EditingTitle() {
		t.Fatal("editor still open after confirm")
	}
}

func TestTitleEditEscCancels(t *testing.T) {
	m := newTestModel()
	m.SetTitle("Old title")
	m.StartTitleEdit()
	m.titleInput.SetValue("Changed")

	m, cmd := m.Update(keyMsg("esc"))
	if cmd != nil {
		t.Fatal("cancel emitted a command")
	}
	if m.EditingTitle() || m.Title() != "Old title" {
		t.Fatalf("cancel did not restore: editing=%v title=%q", m.EditingTitle(), m.Title())
	}
}

func TestOfferingNavigationAndPick(t *testing.T) {
	m := newTestModel()
	m.SetShowOfferings(true)

	// Tab to Operations, pick first card (coming soon → "general").
	m, _ = m.Update(keyMsg("tab"))
	m, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("no pick emitted")
	}
	msg, ok := cmd().(PickOfferingMsg)
	if !ok {
		t.Fatalf("emitted %T", cmd())
	}
	if msg.Query != "general" {
		t.Fatalf("query = %q, want general for coming-soon topic", msg.Query)
	}
}

func TestOfferingPickLiveTopic(t *testing.T) {
	m := newTestModel()
	m.SetShowOfferings(true)

	m, _ = m.Update(keyMsg("right")) // Facebook Ads
	_, cmd := m.Update(keyMsg("enter"))
	msg, ok := cmd().(PickOfferingMsg)
	if !ok || msg.Query != "Facebook Ads" {
		t.Fatalf("emitted %v", cmd())
	}
}

func TestInsertTextAddsSeparator(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("check this:")
	m.InsertText("https://example.com/doc")

	if got := m.InputValue(); got != "check this: https://example.com/doc" {
		t.Fatalf("input = %q", got)
	}
}

func TestRendererFallsBackToRawText(t *testing.T) {
	r := &Renderer{} // no glamour renderer configured
	if got := r.Markdown("**bold**"); got != "**bold**" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestRendererFallbackHighlightsFences(t *testing.T) {
	r := &Renderer{}
	in := "intro\n```go\npackage main\n```\noutro"
	got := r.Markdown(in)
	if !strings.Contains(got, "intro") || !strings.Contains(got, "outro") {
		t.Fatalf("prose lost: %q", got)
	}
	if !strings.Contains(got, "package") || !strings.Contains(got, "main") {
		t.Fatalf("code lost: %q", got)
	}
	if strings.Contains(got, "```") {
		t.Fatalf("fence markers kept: %q", got)
	}

	// An unterminated fence is emitted untouched.
	in = "text\n```go\npackage main"
	if got := r.Markdown(in); got != in {
		t.Fatalf("unterminated fence rewritten: %q", got)
	}
}

func TestHighlightCodeNeverEmpty(t *testing.T) {
	out := HighlightCode("package main\n\nfunc main() {}", "go")
	if strings.TrimSpace(out) == "" {
		t.Fatal("highlighting produced empty output")
	}
	// Unknown language still returns the code.
	out = HighlightCode("hello world", "nosuchlang")
	if !strings.Contains(out, "hello world") {
		t.Fatalf("unknown language mangled code: %q", out)
	}
}
