// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeInitializesStyles(t *testing.T) {
	th := NewTheme()
	if th == nil {
		t.Fatal("nil theme")
	}
	// Spot-check a few styles render without panicking.
	_ = th.UserBubble.Render("hi")
	_ = th.TaskCompleted.Render("completed")
	_ = th.ImpersonationBadge.Render("viewing as")
}

func TestLayoutModeBreakpoints(t *testing.T) {
	th := NewTheme()

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{79, LayoutNarrow},
		{80, LayoutMedium},
		{119, LayoutMedium},
		{120, LayoutWide},
		{200, LayoutWide},
	}
	for _, tt := range tests {
		th.SetSize(tt.width, 40)
		if got := th.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: mode = %v, want %v", tt.width, got, tt.want)
		}
	}
}
