// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Header    lipgloss.Style
	StatusBar lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar            lipgloss.Style
	SidebarTitle       lipgloss.Style
	ThreadItem         lipgloss.Style
	ThreadItemSelected lipgloss.Style
	ThreadDate         lipgloss.Style
	NewChatButton      lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// TASK CARD STYLES
	// ==========================================================================

	TaskCard         lipgloss.Style
	TaskCardSelected lipgloss.Style
	TaskType         lipgloss.Style
	TaskProcessing   lipgloss.Style
	TaskCompleted    lipgloss.Style
	TaskArgKey       lipgloss.Style
	TaskArgValue     lipgloss.Style
	ResultTitle      lipgloss.Style
	ResultBody       lipgloss.Style
	ResultCTA        lipgloss.Style
	MediaEntry       lipgloss.Style
	EditBadge        lipgloss.Style

	// ==========================================================================
	// RESOURCE PANEL STYLES
	// ==========================================================================

	ResourceItem         lipgloss.Style
	ResourceItemSelected lipgloss.Style
	ResourceTypeFile     lipgloss.Style
	ResourceTypeLink     lipgloss.Style

	// ==========================================================================
	// OFFERING GRID STYLES
	// ==========================================================================

	OfferingCard         lipgloss.Style
	OfferingCardSelected lipgloss.Style

	// ==========================================================================
	// ADMIN VIEW STYLES
	// ==========================================================================

	AdminTableHeader   lipgloss.Style
	AdminRow           lipgloss.Style
	AdminRowSelected   lipgloss.Style
	ImpersonationBadge lipgloss.Style

	// ==========================================================================
	// STATES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Background(SurfaceDim).
		Padding(0, 2)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.ThreadItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ThreadItemSelected = lipgloss.NewStyle().
		Background(Indigo).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.ThreadDate = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.NewChatButton = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true).
		Padding(0, 1)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Task cards
	t.TaskCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.TaskCardSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(0, 1)

	t.TaskType = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.TaskProcessing = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.TaskCompleted = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.TaskArgKey = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TaskArgValue = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ResultTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.ResultBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ResultCTA = lipgloss.NewStyle().
		Foreground(Indigo).
		Underline(true)

	t.MediaEntry = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.EditBadge = lipgloss.NewStyle().
		Background(Amber).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	// Resource panel
	t.ResourceItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ResourceItemSelected = lipgloss.NewStyle().
		Background(Indigo).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.ResourceTypeFile = lipgloss.NewStyle().
		Foreground(Amber)

	t.ResourceTypeLink = lipgloss.NewStyle().
		Foreground(Teal)

	// Offerings
	t.OfferingCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.OfferingCardSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Foreground(Indigo).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	// Admin
	t.AdminTableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.AdminRow = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.AdminRowSelected = lipgloss.NewStyle().
		Background(Indigo).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.ImpersonationBadge = lipgloss.NewStyle().
		Background(Rose).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	// States
	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 80 columns: chat only
	LayoutMedium                   // 80-120 columns: sidebar + chat
	LayoutWide                     // > 120 columns: sidebar + chat + side panel
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 80 {
		return LayoutNarrow
	}
	if t.Width < 120 {
		return LayoutMedium
	}
	return LayoutWide
}
