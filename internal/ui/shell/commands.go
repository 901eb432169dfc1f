// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/task"
	"github.com/hanuai/hanu-tui/internal/ui/taskpanel"
)

const (
	storeTimeout = 10 * time.Second
	chatTimeout  = 120 * time.Second
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func (m *Model) loadThreadsCmd() tea.Cmd {
	userID := m.actor.ActingUserID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		threads, err := m.store.ListThreads(ctx, userID)
		return ThreadsLoadedMsg{Threads: threads, Err: err}
	}
}

func (m *Model) loadStateCmd(gen uint64, threadID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		resp, err := m.session.Load(ctx, threadID)
		return StateLoadedMsg{Gen: gen, Resp: resp, Err: err}
	}
}

func (m *Model) sendCmd(gen uint64, threadID, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		resp, err := m.session.Exchange(ctx, threadID, query)
		return SendDoneMsg{Gen: gen, ThreadID: threadID, Resp: resp, Err: err}
	}
}

func (m *Model) newThreadCmd(gen uint64, query string) tea.Cmd {
	userID := m.actor.ActingUserID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		th, resp, err := m.session.CreateAndExchange(ctx, userID, query)
		return NewThreadDoneMsg{Gen: gen, Thread: th, Resp: resp, Err: err}
	}
}

func (m *Model) renameCmd(threadID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := m.store.RenameThread(ctx, threadID, title)
		return RenameDoneMsg{ThreadID: threadID, Title: title, Err: err}
	}
}

// saveTasksCmd pushes a detached copy of the working mapping. The live
// editor is only touched on the update loop when TasksSavedMsg arrives,
// so panel edits never race the upload.
func (m *Model) saveTasksCmd() tea.Cmd {
	snapshot := task.NewEditor(m.editor.ThreadID(), m.editor.Tasks())
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		if err := snapshot.Save(ctx, client); err != nil {
			return TasksSavedMsg{ThreadID: snapshot.ThreadID(), Err: err}
		}
		return TasksSavedMsg{ThreadID: snapshot.ThreadID(), Resp: &api.StateResponse{Tasks: snapshot.Tasks()}}
	}
}

func (m *Model) loadResourcesCmd() tea.Cmd {
	userID := m.actor.ActingUserID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return ResourcesLoadedMsg{Resources: m.store.ListResources(ctx, userID)}
	}
}

func (m *Model) addResourceCmd(title, url string, typ store.ResourceType) tea.Cmd {
	userID := m.actor.ActingUserID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		_, err := m.store.CreateResource(ctx, userID, title, url, typ)
		return ResourceSavedMsg{Err: err}
	}
}

func (m *Model) uploadFileCmd(title, path string) tea.Cmd {
	uploader := m.uploader
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return UploadDoneMsg{Title: title, Err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		url, err := uploader.Upload(ctx, filepath.Base(path), f)
		return UploadDoneMsg{Title: title, URL: url, Err: err}
	}
}

func (m *Model) uploadMediaCmd(req taskpanel.UploadMediaMsg) tea.Cmd {
	uploader := m.uploader
	return func() tea.Msg {
		f, err := os.Open(req.Path)
		if err != nil {
			return MediaUploadedMsg{TaskID: req.TaskID, ResultID: req.ResultID, Kind: req.Kind, Err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		url, err := uploader.Upload(ctx, filepath.Base(req.Path), f)
		return MediaUploadedMsg{TaskID: req.TaskID, ResultID: req.ResultID, Kind: req.Kind, URL: url, Err: err}
	}
}

// touchResourceCmd refreshes a resource's last-used time; failures are
// logged and swallowed, the insert already happened.
func (m *Model) touchResourceCmd(resourceID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := m.store.TouchResourceLastUsed(ctx, resourceID); err != nil {
			m.logger.Printf("shell: touch resource %s: %v", resourceID, err)
		}
		return ResourcesLoadedMsg{Resources: m.store.ListResources(ctx, m.actor.ActingUserID())}
	}
}

func (m *Model) loadActivityCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		rows, err := m.store.ListUserActivity(ctx)
		return ActivityLoadedMsg{Rows: rows, Err: err}
	}
}
