// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the conversation state machine for the selected
// thread: the rendered transcript, the task mapping, and the send/load
// lifecycle.
//
// The session is mutated only from the UI event loop. Network work runs
// in background commands; their results come back through the Apply*
// methods, which carry the generation the work was started under so a
// response for a thread the user has since left is discarded.
package session

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/store"
)

// Phase is the lifecycle state of the selected conversation.
type Phase int

const (
	// PhaseEmpty means no thread is selected.
	PhaseEmpty Phase = iota
	// PhaseCreating means a first send is creating a new thread.
	PhaseCreating
	// PhaseLoading means an existing thread's state is being fetched.
	PhaseLoading
	// PhaseActive means the transcript is rendered and input is live.
	PhaseActive
	// PhaseError means the selected thread failed to load.
	PhaseError
)

// ErrCannotSend is returned when a send is rejected locally: blank input,
// no signed-in user, or a send already in flight. No network call is made
// and no state changes.
var ErrCannotSend = errors.New("cannot send")

// Backend is the slice of the api client the session uses.
type Backend interface {
	Chat(ctx context.Context, threadID, query string) (*api.StateResponse, error)
	FetchState(ctx context.Context, threadID string) (*api.StateResponse, error)
}

// ThreadDirectory is the slice of the thread store the session uses.
type ThreadDirectory interface {
	CreateThread(ctx context.Context, userID, titleSeed string) (store.Thread, error)
	TouchThread(ctx context.Context, threadID string) error
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the per-selection conversation state.
type Session struct {
	backend Backend
	threads ThreadDirectory
	logger  *log.Logger
	welcome DisplayMessage

	phase    Phase
	threadID string
	gen      uint64
	sending  bool
	messages []DisplayMessage
	tasks    map[string]api.Task
	lastErr  error
}

// New builds an empty session. welcomeText of "" uses the default
// greeting. logger may be nil.
func New(backend Backend, threads ThreadDirectory, welcomeText string, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	w := Welcome(welcomeText)
	return &Session{
		backend:  backend,
		threads:  threads,
		logger:   logger,
		welcome:  w,
		phase:    PhaseEmpty,
		messages: []DisplayMessage{w},
	}
}

func (s *Session) Phase() Phase        { return s.phase }
func (s *Session) ThreadID() string    { return s.threadID }
func (s *Session) Generation() uint64  { return s.gen }
func (s *Session) Sending() bool       { return s.sending }
func (s *Session) Err() error          { return s.lastErr }
func (s *Session) WelcomeText() string { return s.welcome.Content }

// Messages returns the rendered transcript. The slice is owned by the
// session; callers must not mutate it.
func (s *Session) Messages() []DisplayMessage { return s.messages }

// Tasks returns a deep copy of the current task mapping.
func (s *Session) Tasks() map[string]api.Task { return api.CloneTasks(s.tasks) }

// =============================================================================
// SELECTION
// =============================================================================

// SelectThread switches to an existing thread and returns the new
// generation. The caller then runs Load in the background and delivers
// the result through ApplyState or ApplyLoadFailure with that generation.
func (s *Session) SelectThread(threadID string) uint64 {
	s.gen++
	s.threadID = threadID
	s.phase = PhaseLoading
	s.sending = false
	s.lastErr = nil
	s.messages = []DisplayMessage{s.welcome}
	s.tasks = nil
	return s.gen
}

// SelectNone clears the selection, returning to the empty state.
func (s *Session) SelectNone() {
	s.gen++
	s.threadID = ""
	s.phase = PhaseEmpty
	s.sending = false
	s.lastErr = nil
	s.messages = []DisplayMessage{s.welcome}
	s.tasks = nil
}

// =============================================================================
// SENDING
// =============================================================================

// CanSend reports whether a send would be accepted: non-blank input, a
// signed-in user, and no send already in flight.
func (s *Session) CanSend(input, userID string) bool {
	return !s.sending && userID != "" && strings.TrimSpace(input) != ""
}

// BeginSend starts a send on the selected thread. The user's message is
// appended to the transcript immediately; the returned query (trimmed,
// NFC-normalized) and generation are handed to Exchange in the
// background. Rejected sends return ErrCannotSend and change nothing.
func (s *Session) BeginSend(input, userID string) (query string, gen uint64, err error) {
	if !s.CanSend(input, userID) || s.threadID == "" {
		return "", 0, ErrCannotSend
	}
	query = normalizeQuery(input)
	s.sending = true
	s.lastErr = nil
	s.messages = append(s.messages, DisplayMessage{
		ID:      len(s.messages),
		Role:    RoleUser,
		Content: query,
	})
	return query, s.gen, nil
}

// BeginNewThread starts a first send with no thread selected. A new
// generation is returned; the caller runs CreateAndExchange in the
// background and delivers through ApplyNewThread or ApplySendFailure.
func (s *Session) BeginNewThread(input, userID string) (query string, gen uint64, err error) {
	if !s.CanSend(input, userID) {
		return "", 0, ErrCannotSend
	}
	query = normalizeQuery(input)
	s.gen++
	s.threadID = ""
	s.phase = PhaseCreating
	s.sending = true
	s.lastErr = nil
	s.messages = []DisplayMessage{s.welcome, {ID: 1, Role: RoleUser, Content: query}}
	s.tasks = nil
	return query, s.gen, nil
}

func normalizeQuery(input string) string {
	return norm.NFC.String(strings.TrimSpace(input))
}

// =============================================================================
// BACKGROUND OPERATIONS
// =============================================================================
//
// These run off the event loop and touch no session state.

// Load fetches the current state of a thread.
func (s *Session) Load(ctx context.Context, threadID string) (*api.StateResponse, error) {
	return s.backend.FetchState(ctx, threadID)
}

// Exchange sends a query on an existing thread. After a successful chat
// the thread's activity date is refreshed; that touch is best-effort and
// a failure is only logged.
func (s *Session) Exchange(ctx context.Context, threadID, query string) (*api.StateResponse, error) {
	resp, err := s.backend.Chat(ctx, threadID, query)
	if err != nil {
		return nil, err
	}
	if err := s.threads.TouchThread(ctx, threadID); err != nil {
		s.logger.Printf("session: touch thread %s: %v", threadID, err)
	}
	return resp, nil
}

// CreateAndExchange creates a thread titled from the first query, then
// sends that query on it. Exactly one create and one chat call are made.
// If either fails the error is returned and the session never navigates
// to a partial thread.
func (s *Session) CreateAndExchange(ctx context.Context, userID, query string) (store.Thread, *api.StateResponse, error) {
	th, err := s.threads.CreateThread(ctx, userID, query)
	if err != nil {
		return store.Thread{}, nil, err
	}
	resp, err := s.backend.Chat(ctx, th.ID, query)
	if err != nil {
		return store.Thread{}, nil, err
	}
	return th, resp, nil
}

// =============================================================================
// RESULT DELIVERY
// =============================================================================

// stale reports whether a delivered result belongs to an abandoned
// generation.
func (s *Session) stale(gen uint64) bool { return gen != s.gen }

// ApplyState installs a fetched or exchanged state. Returns false when
// the result is stale and was discarded.
func (s *Session) ApplyState(gen uint64, resp *api.StateResponse) bool {
	if s.stale(gen) {
		return false
	}
	s.messages = buildTranscript(s.welcome, resp.Messages)
	s.tasks = api.CloneTasks(resp.Tasks)
	s.phase = PhaseActive
	s.sending = false
	s.lastErr = nil
	return true
}

// ApplyNewThread installs the result of a successful first send and
// navigates to the created thread.
func (s *Session) ApplyNewThread(gen uint64, th store.Thread, resp *api.StateResponse) bool {
	if s.stale(gen) {
		return false
	}
	s.threadID = th.ID
	return s.ApplyState(gen, resp)
}

// ApplySendFailure records a failed send. The transcript resets to the
// one-element welcome sequence; the selection is kept so the user can
// retry. Returns false when stale.
func (s *Session) ApplySendFailure(gen uint64, err error) bool {
	if s.stale(gen) {
		return false
	}
	s.logger.Printf("session: send failed: %v", err)
	s.messages = []DisplayMessage{s.welcome}
	s.sending = false
	s.lastErr = err
	if s.phase == PhaseCreating {
		s.threadID = ""
		s.phase = PhaseEmpty
	} else {
		s.phase = PhaseActive
	}
	return true
}

// ApplyLoadFailure records a failed thread load.
func (s *Session) ApplyLoadFailure(gen uint64, err error) bool {
	if s.stale(gen) {
		return false
	}
	s.logger.Printf("session: load thread %s: %v", s.threadID, err)
	s.phase = PhaseError
	s.sending = false
	s.lastErr = err
	return true
}
