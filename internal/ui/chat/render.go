// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

// markdownWrap is the word-wrap width used when no terminal width is known.
const markdownWrap = 80

// Renderer turns assistant markdown into styled terminal output. Glamour
// handles the markdown; fenced code blocks that glamour cannot style get
// a chroma pass as a fallback.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
}

// NewRenderer builds a renderer wrapping at the given width. width <= 0
// uses a default.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = markdownWrap
	}
	r := &Renderer{width: width}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.glamour = tr
	}
	return r
}

// Width returns the configured wrap width.
func (r *Renderer) Width() int { return r.width }

// Markdown renders assistant message content. When the glamour renderer
// is unavailable or fails, the raw text is returned with fenced code
// blocks run through chroma so code stays readable.
func (r *Renderer) Markdown(content string) string {
	if r.glamour == nil {
		return highlightFences(content)
	}
	out, err := r.glamour.Render(content)
	if err != nil {
		return highlightFences(content)
	}
	return strings.TrimRight(out, "\n")
}

// highlightFences styles ``` fenced blocks in otherwise-raw text. The
// surrounding prose is left untouched; an unterminated fence is emitted
// as-is.
func highlightFences(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var block []string
	lang := ""
	inFence := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				code := strings.Join(block, "\n")
				out = append(out, strings.TrimRight(HighlightCode(code, lang), "\n"))
				block = block[:0]
				inFence = false
			} else {
				lang = strings.TrimPrefix(trimmed, "```")
				inFence = true
			}
			continue
		}
		if inFence {
			block = append(block, line)
		} else {
			out = append(out, line)
		}
	}
	if inFence {
		out = append(out, "```"+lang)
		out = append(out, block...)
	}
	return strings.Join(out, "\n")
}

// HighlightCode applies chroma syntax highlighting to a code snippet.
// Unknown languages fall back to plain text; any failure returns the
// input unchanged.
func HighlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := chromaStyles.Get("catppuccin-mocha")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return code
	}
	return sb.String()
}
