// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the hanu client.
package util

import "strings"

// UNICODE: Rune-aware truncation preserves multi-byte characters.
// These helpers count characters, not bytes, so UTF-8 strings are never
// cut mid-character.

// TruncateRunes truncates a string to a maximum number of runes.
// If the string is truncated, "..." replaces the tail so the result
// never exceeds maxRunes.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// Ellipsize shortens a string to maxRunes runes and appends "..." when
// anything was cut. Unlike TruncateRunes the ellipsis is appended after
// the cut point, so the result may be up to maxRunes+3 runes long.
// Thread titles derived from the first user message use this rule.
func Ellipsize(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// CollapseLine flattens a string onto a single line for list display.
func CollapseLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}
