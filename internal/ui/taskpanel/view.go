// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package taskpanel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/hanuai/hanu-tui/internal/api"
)

// View renders the task panel.
func (m Model) View() string {
	var b strings.Builder

	header := "Tasks"
	if m.Dirty() {
		header += " " + m.theme.EditBadge.Render("unsaved")
	}
	b.WriteString(m.theme.SidebarTitle.Render(header))
	b.WriteString("\n\n")

	if len(m.order) == 0 {
		b.WriteString(m.theme.ThreadDate.Render("No tasks yet"))
		return b.String()
	}

	for i, id := range m.order {
		b.WriteString(m.renderCard(m.tasks[id], i == m.taskCursor))
		b.WriteString("\n")
	}

	if m.pending != editNone {
		b.WriteString("\n")
		b.WriteString(m.theme.InputPrompt.Render(m.pendingPrompt()) + m.input.View())
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorTitle.Render(m.status))
	}

	return b.String()
}

func (m Model) pendingPrompt() string {
	switch m.pending {
	case editResultTitle:
		return "Title: "
	case editResultBody:
		return "Body: "
	case editResultCTA:
		return "CTA: "
	case editAddMedia:
		return "Add media (kind url): "
	case editSetMedia:
		return "Edit media (kind index url): "
	case editRemoveMedia:
		return "Remove media (kind index): "
	case editUploadMedia:
		return "Upload media (kind path): "
	}
	return ""
}

func (m Model) renderCard(t api.Task, selected bool) string {
	var b strings.Builder

	status := m.theme.TaskProcessing.Render("processing")
	if t.Status == api.TaskCompleted {
		status = m.theme.TaskCompleted.Render("completed")
	}
	b.WriteString(m.theme.TaskType.Render(t.Type) + "  " + status)
	b.WriteString("\n")

	// Args in stable order, values stringified for display.
	argKeys := make([]string, 0, len(t.Args))
	for k := range t.Args {
		argKeys = append(argKeys, k)
	}
	sort.Strings(argKeys)
	for _, k := range argKeys {
		line := m.theme.TaskArgKey.Render(k+": ") + m.theme.TaskArgValue.Render(formatArg(t.Args[k]))
		b.WriteString(runewidth.Truncate(line, maxInt(m.width-4, 16), "…"))
		b.WriteString("\n")
	}

	for ri, r := range t.Results {
		marker := "  "
		if selected && ri == m.clampedResultCursor(t) {
			marker = "> "
		}
		b.WriteString(marker + m.theme.ResultTitle.Render(r.Title))
		b.WriteString("\n")
		if r.Body != "" {
			b.WriteString("  " + runewidth.Truncate(m.theme.ResultBody.Render(r.Body), maxInt(m.width-6, 16), "…"))
			b.WriteString("\n")
		}
		if r.CTA != "" {
			b.WriteString("  " + m.theme.ResultCTA.Render(r.CTA))
			b.WriteString("\n")
		}
		b.WriteString(m.renderMediaList("images", r.ImagesURL))
		b.WriteString(m.renderMediaList("videos", r.VideosURL))
		b.WriteString(m.renderMediaList("documents", r.DocumentsURL))
	}

	style := m.theme.TaskCard
	if selected {
		style = m.theme.TaskCardSelected
	}
	return style.Width(maxInt(m.width-2, 20)).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) clampedResultCursor(t api.Task) int {
	if m.resultCursor >= len(t.Results) {
		return len(t.Results) - 1
	}
	return m.resultCursor
}

func (m Model) renderMediaList(label string, urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	var b strings.Builder
	for i, u := range urls {
		line := fmt.Sprintf("  %s[%d] %s", label, i, u)
		b.WriteString(m.theme.MediaEntry.Render(runewidth.Truncate(line, maxInt(m.width-4, 16), "…")))
		b.WriteString("\n")
	}
	return b.String()
}

// formatArg stringifies an arbitrary task argument for display.
func formatArg(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
