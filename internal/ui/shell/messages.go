// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell composes the application: sidebar, chat view, task and
// resource panels, and the admin landing screen.
//
// This file defines the Bubble Tea messages delivered by background
// commands. State-carrying results include the session generation they
// were started under; the update loop lets the session discard stale
// ones.
package shell

import (
	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/config"
	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/task"
)

// ThreadsLoadedMsg delivers the acting user's thread listing.
type ThreadsLoadedMsg struct {
	Threads []store.Thread
	Err     error
}

// StateLoadedMsg delivers a fetched thread state.
type StateLoadedMsg struct {
	Gen  uint64
	Resp *api.StateResponse
	Err  error
}

// SendDoneMsg delivers the outcome of a send on an existing thread.
// ThreadID is the thread the send was started on; a stale response must
// not touch whatever thread is displayed by the time it lands.
type SendDoneMsg struct {
	Gen      uint64
	ThreadID string
	Resp     *api.StateResponse
	Err      error
}

// NewThreadDoneMsg delivers the outcome of a first send.
type NewThreadDoneMsg struct {
	Gen    uint64
	Thread store.Thread
	Resp   *api.StateResponse
	Err    error
}

// RenameDoneMsg delivers the outcome of a thread rename.
type RenameDoneMsg struct {
	ThreadID string
	Title    string
	Err      error
}

// TasksSavedMsg delivers the outcome of pushing edited tasks.
type TasksSavedMsg struct {
	ThreadID string
	Resp     *api.StateResponse
	Err      error
}

// ResourcesLoadedMsg delivers the acting user's resources.
type ResourcesLoadedMsg struct{ Resources []store.Resource }

// ResourceSavedMsg delivers the outcome of adding a resource.
type ResourceSavedMsg struct{ Err error }

// UploadDoneMsg delivers the outcome of a file upload.
type UploadDoneMsg struct {
	Title string
	URL   string
	Err   error
}

// MediaUploadedMsg delivers the outcome of a task-media file upload.
type MediaUploadedMsg struct {
	TaskID   string
	ResultID string
	Kind     task.MediaKind
	URL      string
	Err      error
}

// ActivityLoadedMsg delivers the all-users activity listing.
type ActivityLoadedMsg struct {
	Rows []store.UserActivity
	Err  error
}

// ConfigChangedMsg delivers a live-reloaded configuration.
type ConfigChangedMsg struct{ Config *config.Config }
