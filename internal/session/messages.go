// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/hanuai/hanu-tui/internal/api"
)

// DefaultWelcomeText is the greeting shown as the first message of every
// conversation.
const DefaultWelcomeText = "Hello! 👋 I'm your AI assistant. How can I help you today?"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DisplayMessage is one rendered message. IDs are positional within the
// current transcript: the welcome message is always 0, backend messages
// are numbered 1..N in response order. IDs are stable only until the next
// state fetch.
type DisplayMessage struct {
	ID      int
	Role    string
	Content string
}

// Welcome builds the fixed first message. An empty text falls back to the
// default greeting.
func Welcome(text string) DisplayMessage {
	if text == "" {
		text = DefaultWelcomeText
	}
	return DisplayMessage{ID: 0, Role: RoleAssistant, Content: text}
}

// buildTranscript renders a backend message list: the welcome message
// first, then every non-blank backend message numbered by position.
// Messages whose content is empty or whitespace (tool chatter) are
// dropped before numbering.
func buildTranscript(welcome DisplayMessage, msgs []api.Message) []DisplayMessage {
	out := make([]DisplayMessage, 0, len(msgs)+1)
	out = append(out, welcome)
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, DisplayMessage{
			ID:      len(out),
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
