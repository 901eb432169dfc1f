// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/admin"
	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/auth"
	"github.com/hanuai/hanu-tui/internal/config"
	"github.com/hanuai/hanu-tui/internal/objstore"
	"github.com/hanuai/hanu-tui/internal/session"
	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/task"
	"github.com/hanuai/hanu-tui/internal/ui/chat"
	"github.com/hanuai/hanu-tui/internal/ui/sidebar"
	"github.com/hanuai/hanu-tui/internal/ui/taskpanel"
)

// newTestShell wires a shell against a temp store and a stub backend.
func newTestShell(t *testing.T, actor *admin.Actor) (*Model, *store.Store) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := api.StateResponse{
			Messages: []api.Message{
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "hi, how can I help?"},
			},
			Tasks: map[string]api.Task{
				"t1": {ID: "t1", Type: "general", Status: api.TaskProcessing},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(backend.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "hanu.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	m := New(Deps{
		Config:   cfg,
		Store:    st,
		Auth:     auth.New(st.DB(), false),
		Actor:    actor,
		Client:   api.NewClient(backend.URL),
		Uploader: objstore.NewClient("", "", cfg.Upload.HostPattern),
		Logger:   log.New(io.Discard, "", 0),
	})
	m.resize(150, 40)
	return m, st
}

// drain runs a command tree synchronously and feeds every message back.
// Spinner ticks reschedule themselves forever, so they are dropped
// instead of followed.
func drain(t *testing.T, m *Model, cmd tea.Cmd) *Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if _, ok := msg.(spinner.TickMsg); ok {
		return m
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c)
		}
		return m
	}
	next, nextCmd := m.Update(msg)
	return drain(t, next.(*Model), nextCmd)
}

func TestFirstSendCreatesThreadAndNavigates(t *testing.T) {
	m, _ := newTestShell(t, admin.NewActor("u1", nil))

	next, cmd := m.Update(chat.SubmitMsg{Query: "Instagram Marketing"})
	m = next.(*Model)
	if m.session.Phase() != session.PhaseCreating {
		t.Fatalf("phase = %v, want creating", m.session.Phase())
	}
	m = drain(t, m, cmd)

	if m.session.ThreadID() == "" || m.session.Phase() != session.PhaseActive {
		t.Fatalf("did not navigate: phase=%v thread=%q", m.session.Phase(), m.session.ThreadID())
	}
	if m.threadList.Len() != 1 {
		t.Fatalf("thread list has %d entries", m.threadList.Len())
	}
	th := m.threadList.All()[0]
	if th.Title != "Instagram Marketing" {
		t.Fatalf("title = %q", th.Title)
	}
	// Transcript: welcome + 2 backend messages.
	if got := len(m.session.Messages()); got != 3 {
		t.Fatalf("transcript length = %d", got)
	}
	if len(m.session.Tasks()) != 1 {
		t.Fatalf("tasks = %v", m.session.Tasks())
	}
}

func TestOpenThreadLoadsState(t *testing.T) {
	m, _ := newTestShell(t, admin.NewActor("u1", nil))
	m = drain(t, m, m.Init())

	next, cmd := m.Update(sidebar.SelectThreadMsg{ThreadID: "th-x"})
	m = next.(*Model)
	if m.session.Phase() != session.PhaseLoading {
		t.Fatalf("phase = %v, want loading", m.session.Phase())
	}
	m = drain(t, m, cmd)

	if m.session.Phase() != session.PhaseActive {
		t.Fatalf("phase = %v, want active", m.session.Phase())
	}
}

func TestUnprivilegedUserGetsReadOnlyTasks(t *testing.T) {
	m, _ := newTestShell(t, admin.NewActor("u1", nil))
	m = drain(t, m, mustCmd(t, m, chat.SubmitMsg{Query: "hello"}))

	if m.editor != nil {
		t.Fatal("unprivileged user got a task editor")
	}
}

func TestPrivilegedUserGetsEditor(t *testing.T) {
	m, _ := newTestShell(t, admin.NewActor("admin1", []string{"admin1"}))
	// Admin starts on the landing screen; picking a target moves to chat.
	if m.focus != focusAdmin {
		t.Fatalf("focus = %v, want admin landing", m.focus)
	}

	next, cmd := m.impersonate("u2")
	m = drain(t, next.(*Model), cmd)
	if m.actor.ActingUserID() != "u2" {
		t.Fatalf("acting user = %q", m.actor.ActingUserID())
	}

	m = drain(t, m, mustCmd(t, m, chat.SubmitMsg{Query: "hello"}))
	if m.editor == nil {
		t.Fatal("privileged user did not get a task editor")
	}

	// Threads created while impersonating belong to the target.
	if th := m.threadList.All()[0]; th.UserID != "u2" {
		t.Fatalf("thread owner = %q, want u2", th.UserID)
	}
}

func TestAdminHomeKeyIgnoredForUnprivileged(t *testing.T) {
	m, _ := newTestShell(t, admin.NewActor("u1", nil))
	before := m.focus

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(*Model)
	if m.focus != before {
		t.Fatalf("focus changed to %v for unprivileged user", m.focus)
	}
}

func TestThreadsLoadErrorSetsStatus(t *testing.T) {
	m, st := newTestShell(t, admin.NewActor("u1", nil))
	st.Close() // force the store error path

	next, _ := m.Update(ThreadsLoadedMsg{Err: io.ErrClosedPipe})
	m = next.(*Model)
	if m.statusErr == "" {
		t.Fatal("status not set on load failure")
	}
}

func TestStaleSendLeavesThreadListAlone(t *testing.T) {
	m, _ := newTestShell(t, admin.NewActor("u1", nil))

	next, _ := m.Update(ThreadsLoadedMsg{Threads: []store.Thread{
		{ID: "a", UserID: "u1", Title: "A", Date: "2026-08-01T00:00:00.000Z"},
		{ID: "b", UserID: "u1", Title: "B", Date: "2026-08-02T00:00:00.000Z"},
	}})
	m = next.(*Model)

	// Open A and start a send, holding its completion.
	next, _ = m.Update(sidebar.SelectThreadMsg{ThreadID: "a"})
	m = next.(*Model)
	next, cmd := m.Update(chat.SubmitMsg{Query: "hello"})
	m = next.(*Model)
	if cmd == nil {
		t.Fatal("no send command")
	}
	genA := m.session.Generation()

	// Switch to B before the send comes back.
	next, _ = m.Update(sidebar.SelectThreadMsg{ThreadID: "b"})
	m = next.(*Model)
	dateA := mustThread(t, m, "a").Date
	dateB := mustThread(t, m, "b").Date

	// The late success lands: the session discards it and the thread
	// list must stay untouched.
	next, _ = m.Update(SendDoneMsg{Gen: genA, ThreadID: "a", Resp: &api.StateResponse{}})
	m = next.(*Model)
	if got := mustThread(t, m, "b").Date; got != dateB {
		t.Fatalf("stale send bumped the displayed thread's date: %q -> %q", dateB, got)
	}
	if got := mustThread(t, m, "a").Date; got != dateA {
		t.Fatalf("stale send bumped the originating thread's date: %q -> %q", dateA, got)
	}

	// A late failure is equally silent.
	next, _ = m.Update(SendDoneMsg{Gen: genA, ThreadID: "a", Err: io.ErrClosedPipe})
	m = next.(*Model)
	if m.statusErr != "" {
		t.Fatalf("stale send failure set status %q", m.statusErr)
	}
}

func TestSaveTasksSingleFlight(t *testing.T) {
	m := newEditingShell(t)
	if err := m.editor.ToggleStatus("t1"); err != nil {
		t.Fatal(err)
	}

	next, saveCmd := m.Update(taskpanel.SaveTasksMsg{})
	m = next.(*Model)
	if saveCmd == nil {
		t.Fatal("no save command")
	}
	if !m.savingTasks {
		t.Fatal("save lock not taken")
	}

	// A second save while one is in flight is ignored.
	next, second := m.Update(taskpanel.SaveTasksMsg{})
	m = next.(*Model)
	if second != nil {
		t.Fatal("second save started while one is in flight")
	}

	m = drain(t, m, saveCmd)
	if m.savingTasks {
		t.Fatal("save lock not released")
	}
	if m.editor.Dirty() {
		t.Fatal("authoritative response did not replace the working copy")
	}
}

func TestMediaUploadOutcome(t *testing.T) {
	m := newEditingShell(t)
	resultID, err := m.editor.AddResult("t1")
	if err != nil {
		t.Fatal(err)
	}

	// The test uploader is unconfigured: the intent is rejected up
	// front with a status message.
	next, cmd := m.Update(taskpanel.UploadMediaMsg{
		TaskID: "t1", ResultID: resultID, Kind: task.MediaImages, Path: "/tmp/x.png",
	})
	m = next.(*Model)
	if cmd != nil {
		t.Fatal("upload started without a configured uploader")
	}

	// A failed upload leaves the media list untouched.
	next, _ = m.Update(MediaUploadedMsg{
		TaskID: "t1", ResultID: resultID, Kind: task.MediaImages, Err: io.ErrClosedPipe,
	})
	m = next.(*Model)
	if urls := mediaURLs(t, m, resultID); len(urls) != 0 {
		t.Fatalf("failed upload touched the media list: %v", urls)
	}

	// A successful upload appends the returned URL.
	next, _ = m.Update(MediaUploadedMsg{
		TaskID: "t1", ResultID: resultID, Kind: task.MediaImages, URL: "https://cdn.hanu.ai/x.png",
	})
	m = next.(*Model)
	urls := mediaURLs(t, m, resultID)
	if len(urls) != 1 || urls[0] != "https://cdn.hanu.ai/x.png" {
		t.Fatalf("media list = %v", urls)
	}
}

// newEditingShell returns a shell with an editable working copy holding
// the backend's single task.
func newEditingShell(t *testing.T) *Model {
	t.Helper()
	m, _ := newTestShell(t, admin.NewActor("admin1", []string{"admin1"}))
	next, cmd := m.impersonate("u2")
	m = drain(t, next.(*Model), cmd)
	m = drain(t, m, mustCmd(t, m, chat.SubmitMsg{Query: "hello"}))
	if m.editor == nil {
		t.Fatal("no editor")
	}
	return m
}

func mustThread(t *testing.T, m *Model, id string) store.Thread {
	t.Helper()
	th, ok := m.threadList.Get(id)
	if !ok {
		t.Fatalf("thread %s missing from the list", id)
	}
	return th
}

func mediaURLs(t *testing.T, m *Model, resultID string) []string {
	t.Helper()
	tk, err := m.editor.Task("t1")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range tk.Results {
		if r.ID == resultID {
			return r.ImagesURL
		}
	}
	t.Fatalf("result %s missing", resultID)
	return nil
}

func mustCmd(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("no command returned")
	}
	return cmd
}
