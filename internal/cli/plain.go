// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the plain-mode chat REPL used when the full
// TUI is unwanted (--plain) or the terminal cannot host it.
//
// Interactive commands:
//
//	/threads            List conversations
//	/open N             Open conversation N from the listing
//	/new                Start a new conversation
//	/rename TITLE       Rename the open conversation
//	/tasks              Show the open conversation's tasks
//	/resources          List saved resources
//	/quit               Exit
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/hanuai/hanu-tui/internal/admin"
	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/session"
	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/chat"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
	"github.com/hanuai/hanu-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	taskStyle = lipgloss.NewStyle().
			Foreground(styles.Teal)
)

// =============================================================================
// INPUT
// =============================================================================

// input wraps liner with persistent history.
type input struct {
	line        *liner.State
	historyFile string
}

func newInput(stateDir string) *input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &input{
		line:        line,
		historyFile: filepath.Join(stateDir, "chat_history"),
	}
	if f, err := os.Open(in.historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (in *input) read(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

func (in *input) close() {
	if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		in.line.WriteHistory(f)
		f.Close()
	}
	in.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// Deps bundles the collaborators the REPL needs.
type Deps struct {
	Store    *store.Store
	Actor    *admin.Actor
	Client   *api.Client
	Session  *session.Session
	StateDir string
	Logger   *log.Logger
}

// RunPlain runs the plain-mode chat loop until /quit or EOF.
func RunPlain(ctx context.Context, deps Deps) error {
	in := newInput(deps.StateDir)
	defer in.close()

	r := &repl{
		deps:     deps,
		in:       in,
		renderer: chat.NewRenderer(100),
	}

	fmt.Println(promptStyle.Render("hanu") + infoStyle.Render(" - your AI business assistant"))
	fmt.Println(infoStyle.Render("Type /help for commands."))
	fmt.Println()
	r.printTranscript()

	for {
		text, err := in.read(promptStyle.Render("hanu> "))
		if err != nil {
			// Ctrl+C or Ctrl+D exits.
			fmt.Println()
			return nil
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if !r.handleCommand(ctx, text) {
				return nil
			}
			continue
		}

		r.send(ctx, text)
	}
}

type repl struct {
	deps     Deps
	in       *input
	renderer *chat.Renderer
	listing  []store.Thread
}

func (r *repl) handleCommand(ctx context.Context, text string) bool {
	fields := strings.Fields(text)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/q", "/exit":
		return false
	case "/help", "/h":
		r.printHelp()
	case "/threads", "/t":
		r.printThreads(ctx)
	case "/open", "/o":
		r.openThread(ctx, args)
	case "/new", "/n":
		r.deps.Session.SelectNone()
		fmt.Println(infoStyle.Render("Started a new conversation."))
	case "/rename":
		r.rename(ctx, strings.TrimSpace(strings.TrimPrefix(text, cmd)))
	case "/tasks":
		r.printTasks()
	case "/resources", "/r":
		r.printResources(ctx)
	default:
		fmt.Println(errorStyle.Render("Unknown command: " + cmd))
	}
	return true
}

func (r *repl) printHelp() {
	fmt.Println(infoStyle.Render(`  /threads        list conversations
  /open N         open conversation N
  /new            start a new conversation
  /rename TITLE   rename the open conversation
  /tasks          show tasks for the open conversation
  /resources      list saved resources
  /quit           exit`))
}

func (r *repl) printThreads(ctx context.Context) {
	threads, err := r.deps.Store.ListThreads(ctx, r.deps.Actor.ActingUserID())
	if err != nil {
		fmt.Println(errorStyle.Render("Could not list conversations: " + err.Error()))
		return
	}
	r.listing = threads
	if len(threads) == 0 {
		fmt.Println(infoStyle.Render("No conversations yet."))
		return
	}
	for i, th := range threads {
		title := util.TruncateRunes(util.CollapseLine(th.Title), 60)
		fmt.Printf("  %2d. %s  %s\n", i+1, title, infoStyle.Render(th.Date))
	}
}

func (r *repl) openThread(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println(errorStyle.Render("Usage: /open N"))
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(r.listing) {
		fmt.Println(errorStyle.Render("No such conversation; run /threads first."))
		return
	}
	th := r.listing[n-1]

	gen := r.deps.Session.SelectThread(th.ID)
	resp, err := r.deps.Session.Load(ctx, th.ID)
	if err != nil {
		r.deps.Session.ApplyLoadFailure(gen, err)
		fmt.Println(errorStyle.Render("Could not load the conversation: " + err.Error()))
		return
	}
	r.deps.Session.ApplyState(gen, resp)
	fmt.Println(infoStyle.Render("Opened: " + th.Title))
	r.printTranscript()
}

func (r *repl) rename(ctx context.Context, title string) {
	id := r.deps.Session.ThreadID()
	if id == "" || title == "" {
		fmt.Println(errorStyle.Render("Open a conversation and give a title."))
		return
	}
	if err := r.deps.Store.RenameThread(ctx, id, title); err != nil {
		fmt.Println(errorStyle.Render("Rename failed: " + err.Error()))
		return
	}
	fmt.Println(infoStyle.Render("Renamed."))
}

func (r *repl) send(ctx context.Context, text string) {
	sess := r.deps.Session
	userID := r.deps.Actor.ActingUserID()

	if sess.ThreadID() == "" {
		query, gen, err := sess.BeginNewThread(text, userID)
		if err != nil {
			fmt.Println(errorStyle.Render("Cannot send: " + err.Error()))
			return
		}
		th, resp, err := sess.CreateAndExchange(ctx, userID, query)
		if err != nil {
			sess.ApplySendFailure(gen, err)
			fmt.Println(errorStyle.Render("Send failed: " + err.Error()))
			return
		}
		sess.ApplyNewThread(gen, th, resp)
		r.printLastReply()
		return
	}

	query, gen, err := sess.BeginSend(text, userID)
	if err != nil {
		fmt.Println(errorStyle.Render("Cannot send: " + err.Error()))
		return
	}
	resp, err := sess.Exchange(ctx, sess.ThreadID(), query)
	if err != nil {
		sess.ApplySendFailure(gen, err)
		fmt.Println(errorStyle.Render("Send failed: " + err.Error()))
		return
	}
	sess.ApplyState(gen, resp)
	r.printLastReply()
}

func (r *repl) printTranscript() {
	for _, msg := range r.deps.Session.Messages() {
		r.printMessage(msg)
	}
}

// printLastReply prints everything after the user's own echoed message.
func (r *repl) printLastReply() {
	msgs := r.deps.Session.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == session.RoleUser {
			for _, msg := range msgs[i+1:] {
				r.printMessage(msg)
			}
			return
		}
	}
	r.printTranscript()
}

func (r *repl) printMessage(msg session.DisplayMessage) {
	if msg.Role == session.RoleUser {
		fmt.Println(promptStyle.Render("you: ") + msg.Content)
		return
	}
	fmt.Println(r.renderer.Markdown(msg.Content))
}

func (r *repl) printTasks() {
	tasks := r.deps.Session.Tasks()
	if len(tasks) == 0 {
		fmt.Println(infoStyle.Render("No tasks for this conversation."))
		return
	}
	for id, t := range tasks {
		fmt.Printf("  %s %s %s\n", taskStyle.Render(t.Type), t.Status, infoStyle.Render(id))
		for _, res := range t.Results {
			fmt.Printf("    - %s\n", res.Title)
		}
	}
}

func (r *repl) printResources(ctx context.Context) {
	rs := r.deps.Store.ListResources(ctx, r.deps.Actor.ActingUserID())
	if len(rs) == 0 {
		fmt.Println(infoStyle.Render("No resources saved."))
		return
	}
	for _, res := range rs {
		fmt.Printf("  [%s] %s  %s\n", res.Type, res.Title, infoStyle.Render(res.URL))
	}
}
