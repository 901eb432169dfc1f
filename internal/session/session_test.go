// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/store"
)

type fakeBackend struct {
	chatCalls  int
	fetchCalls int
	lastThread string
	lastQuery  string
	resp       *api.StateResponse
	err        error
}

func (f *fakeBackend) Chat(_ context.Context, threadID, query string) (*api.StateResponse, error) {
	f.chatCalls++
	f.lastThread = threadID
	f.lastQuery = query
	return f.resp, f.err
}

func (f *fakeBackend) FetchState(_ context.Context, threadID string) (*api.StateResponse, error) {
	f.fetchCalls++
	f.lastThread = threadID
	return f.resp, f.err
}

type fakeThreads struct {
	createCalls int
	touchCalls  int
	touched     string
	createErr   error
	touchErr    error
}

func (f *fakeThreads) CreateThread(_ context.Context, userID, titleSeed string) (store.Thread, error) {
	f.createCalls++
	if f.createErr != nil {
		return store.Thread{}, f.createErr
	}
	return store.Thread{ID: "new-thread", UserID: userID, Title: titleSeed}, nil
}

func (f *fakeThreads) TouchThread(_ context.Context, threadID string) error {
	f.touchCalls++
	f.touched = threadID
	return f.touchErr
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newTestSession(b Backend, th ThreadDirectory) *Session {
	return New(b, th, "", quietLogger())
}

func TestEmptySessionShowsWelcome(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})

	if s.Phase() != PhaseEmpty {
		t.Fatalf("phase = %v, want empty", s.Phase())
	}
	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want welcome only", len(msgs))
	}
	if msgs[0].ID != 0 || msgs[0].Role != RoleAssistant || msgs[0].Content != DefaultWelcomeText {
		t.Fatalf("welcome = %+v", msgs[0])
	}
}

func TestTranscriptFiltersAndNumbers(t *testing.T) {
	resp := &api.StateResponse{Messages: []api.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "   "},
		{Role: "assistant", Content: ""},
		{Role: "assistant", Content: "hi there"},
	}}
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")

	if !s.ApplyState(gen, resp) {
		t.Fatal("fresh result discarded")
	}
	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want welcome + 2", len(msgs))
	}
	if msgs[1].ID != 1 || msgs[1].Content != "hello" {
		t.Fatalf("msg 1 = %+v", msgs[1])
	}
	if msgs[2].ID != 2 || msgs[2].Content != "hi there" {
		t.Fatalf("msg 2 = %+v", msgs[2])
	}
	if s.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want active", s.Phase())
	}
}

func TestEmptyResponseStillShowsWelcome(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")
	s.ApplyState(gen, &api.StateResponse{})

	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].ID != 0 {
		t.Fatalf("messages = %+v, want welcome only", msgs)
	}
}

func TestCanSendGuards(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")
	s.ApplyState(gen, &api.StateResponse{})

	if s.CanSend("   ", "u1") {
		t.Fatal("blank input accepted")
	}
	if s.CanSend("hello", "") {
		t.Fatal("unauthenticated send accepted")
	}
	if !s.CanSend("hello", "u1") {
		t.Fatal("valid send rejected")
	}

	if _, _, err := s.BeginSend("  ", "u1"); !errors.Is(err, ErrCannotSend) {
		t.Fatalf("err = %v, want ErrCannotSend", err)
	}
	// A rejected send leaves the transcript alone.
	if len(s.Messages()) != 1 {
		t.Fatalf("rejected send changed transcript: %+v", s.Messages())
	}
}

func TestBeginSendAppendsOptimisticallyAndBlocksSecondSend(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")
	s.ApplyState(gen, &api.StateResponse{})

	query, sendGen, err := s.BeginSend("  what's my revenue?  ", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if query != "what's my revenue?" {
		t.Fatalf("query = %q, want trimmed", query)
	}
	if sendGen != s.Generation() {
		t.Fatalf("gen = %d, want current %d", sendGen, s.Generation())
	}
	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != RoleUser || last.Content != "what's my revenue?" {
		t.Fatalf("optimistic message = %+v", last)
	}

	if s.CanSend("again", "u1") {
		t.Fatal("send accepted while one is in flight")
	}
}

func TestExchangeTouchesThreadBestEffort(t *testing.T) {
	b := &fakeBackend{resp: &api.StateResponse{}}
	th := &fakeThreads{touchErr: errors.New("db locked")}
	s := newTestSession(b, th)

	resp, err := s.Exchange(context.Background(), "th-1", "hi")
	if err != nil || resp == nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if th.touchCalls != 1 || th.touched != "th-1" {
		t.Fatalf("touch calls = %d (%q)", th.touchCalls, th.touched)
	}
}

func TestExchangeFailureSkipsTouch(t *testing.T) {
	b := &fakeBackend{err: errors.New("backend down")}
	th := &fakeThreads{}
	s := newTestSession(b, th)

	if _, err := s.Exchange(context.Background(), "th-1", "hi"); err == nil {
		t.Fatal("want error")
	}
	if th.touchCalls != 0 {
		t.Fatal("touched thread after failed chat")
	}
}

func TestSendFailureResetsToWelcome(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")
	s.ApplyState(gen, &api.StateResponse{Messages: []api.Message{
		{Role: "assistant", Content: "earlier reply"},
	}})
	_, sendGen, err := s.BeginSend("hello", "u1")
	if err != nil {
		t.Fatal(err)
	}

	if !s.ApplySendFailure(sendGen, errors.New("boom")) {
		t.Fatal("fresh failure discarded")
	}
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].ID != 0 {
		t.Fatalf("messages = %+v, want welcome only", msgs)
	}
	if s.Sending() {
		t.Fatal("still sending after failure")
	}
	if s.Phase() != PhaseActive || s.ThreadID() != "th-1" {
		t.Fatalf("selection lost: phase=%v thread=%q", s.Phase(), s.ThreadID())
	}
	if s.Err() == nil {
		t.Fatal("error not recorded")
	}
}

func TestNewThreadSendMakesOneCreateOneChat(t *testing.T) {
	b := &fakeBackend{resp: &api.StateResponse{Messages: []api.Message{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "answer"},
	}}}
	th := &fakeThreads{}
	s := newTestSession(b, th)

	query, gen, err := s.BeginNewThread("first question", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseCreating {
		t.Fatalf("phase = %v, want creating", s.Phase())
	}

	created, resp, err := s.CreateAndExchange(context.Background(), "u1", query)
	if err != nil {
		t.Fatal(err)
	}
	if th.createCalls != 1 || b.chatCalls != 1 {
		t.Fatalf("create=%d chat=%d, want exactly one each", th.createCalls, b.chatCalls)
	}
	if b.lastThread != created.ID {
		t.Fatalf("chat sent to %q, want created thread %q", b.lastThread, created.ID)
	}

	if !s.ApplyNewThread(gen, created, resp) {
		t.Fatal("fresh result discarded")
	}
	if s.ThreadID() != "new-thread" || s.Phase() != PhaseActive {
		t.Fatalf("did not navigate: thread=%q phase=%v", s.ThreadID(), s.Phase())
	}
	if len(s.Messages()) != 3 {
		t.Fatalf("transcript = %+v", s.Messages())
	}
}

func TestNewThreadCreateFailureDoesNotChat(t *testing.T) {
	b := &fakeBackend{}
	th := &fakeThreads{createErr: errors.New("no space")}
	s := newTestSession(b, th)

	_, gen, _ := s.BeginNewThread("hello", "u1")
	_, _, err := s.CreateAndExchange(context.Background(), "u1", "hello")
	if err == nil {
		t.Fatal("want error")
	}
	if b.chatCalls != 0 {
		t.Fatal("chat called after failed create")
	}

	s.ApplySendFailure(gen, err)
	if s.Phase() != PhaseEmpty || s.ThreadID() != "" {
		t.Fatalf("navigated to partial thread: phase=%v thread=%q", s.Phase(), s.ThreadID())
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	oldGen := s.SelectThread("th-1")
	s.SelectThread("th-2") // user moved on

	resp := &api.StateResponse{Messages: []api.Message{
		{Role: "assistant", Content: "late reply for th-1"},
	}}
	if s.ApplyState(oldGen, resp) {
		t.Fatal("stale state applied")
	}
	if s.ApplySendFailure(oldGen, errors.New("late failure")) {
		t.Fatal("stale failure applied")
	}
	if len(s.Messages()) != 1 || s.ThreadID() != "th-2" {
		t.Fatalf("stale delivery mutated session: %+v", s.Messages())
	}
}

func TestLoadFailureEntersErrorPhase(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")

	if !s.ApplyLoadFailure(gen, errors.New("timeout")) {
		t.Fatal("fresh failure discarded")
	}
	if s.Phase() != PhaseError || s.Err() == nil {
		t.Fatalf("phase = %v err = %v", s.Phase(), s.Err())
	}
}

func TestTasksReplacedWholesale(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")
	s.ApplyState(gen, &api.StateResponse{Tasks: map[string]api.Task{
		"a": {ID: "a", Status: api.TaskProcessing},
		"b": {ID: "b", Status: api.TaskProcessing},
	}})

	s.ApplyState(gen, &api.StateResponse{Tasks: map[string]api.Task{
		"b": {ID: "b", Status: api.TaskCompleted},
	}})
	tasks := s.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("tasks = %+v, want wholesale replacement", tasks)
	}
	if tasks["b"].Status != api.TaskCompleted {
		t.Fatalf("task b = %+v", tasks["b"])
	}
}

func TestCustomWelcomeText(t *testing.T) {
	s := New(&fakeBackend{}, &fakeThreads{}, "Welcome to Hanu!", quietLogger())
	if s.Messages()[0].Content != "Welcome to Hanu!" {
		t.Fatalf("welcome = %q", s.Messages()[0].Content)
	}
}

func TestQueryNFCNormalized(t *testing.T) {
	s := newTestSession(&fakeBackend{}, &fakeThreads{})
	gen := s.SelectThread("th-1")
	s.ApplyState(gen, &api.StateResponse{})

	// "é" as e + combining acute should normalize to the precomposed form.
	query, _, err := s.BeginSend("café", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if query != "café" {
		t.Fatalf("query = %q, want NFC form", query)
	}
}
