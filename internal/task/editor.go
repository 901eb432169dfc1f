// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package task holds the client-side view of a thread's task mapping and,
// for privileged sessions, an editable working copy of it.
//
// The backend is authoritative: every successful /chat or /update_state
// response replaces the mapping wholesale. Local edits live only in the
// working copy until an explicit Save pushes the entire mapping back.
package task

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hanuai/hanu-tui/internal/api"
)

// MediaKind selects one of a result's three URL lists.
type MediaKind string

const (
	MediaImages    MediaKind = "images"
	MediaVideos    MediaKind = "videos"
	MediaDocuments MediaKind = "documents"
)

var (
	// ErrTaskNotFound indicates the task id is not in the working copy.
	ErrTaskNotFound = errors.New("task not found")

	// ErrResultNotFound indicates the result id is not on the task.
	ErrResultNotFound = errors.New("result not found")

	// ErrIndexOutOfRange indicates a media index beyond the list.
	ErrIndexOutOfRange = errors.New("media index out of range")

	// ErrBadMediaKind indicates an unknown media kind.
	ErrBadMediaKind = errors.New("unknown media kind")
)

// Saver pushes a full task mapping to the backend. *api.Client satisfies
// this.
type Saver interface {
	UpdateState(ctx context.Context, threadID string, tasks map[string]api.Task) (*api.StateResponse, error)
}

// =============================================================================
// EDITOR
// =============================================================================

// Editor is the in-memory working copy of one thread's task mapping.
type Editor struct {
	threadID string
	tasks    map[string]api.Task
	dirty    bool
}

// NewEditor copies the given mapping into a fresh working copy.
func NewEditor(threadID string, tasks map[string]api.Task) *Editor {
	return &Editor{
		threadID: threadID,
		tasks:    api.CloneTasks(tasks),
	}
}

// ThreadID returns the thread the working copy belongs to.
func (e *Editor) ThreadID() string { return e.threadID }

// Dirty reports whether unsaved edits exist.
func (e *Editor) Dirty() bool { return e.dirty }

// Tasks returns a deep copy of the working mapping.
func (e *Editor) Tasks() map[string]api.Task {
	return api.CloneTasks(e.tasks)
}

// TaskIDs returns the task ids in stable (sorted) order for display.
func (e *Editor) TaskIDs() []string {
	ids := make([]string, 0, len(e.tasks))
	for id := range e.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Task returns a copy of one task.
func (e *Editor) Task(taskID string) (api.Task, error) {
	t, ok := e.tasks[taskID]
	if !ok {
		return api.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return t.Clone(), nil
}

// Replace swaps in a fresh authoritative mapping, discarding the working
// copy. Called on every successful backend state response.
func (e *Editor) Replace(tasks map[string]api.Task) {
	e.tasks = api.CloneTasks(tasks)
	e.dirty = false
}

// =============================================================================
// TASK EDITS
// =============================================================================

// ToggleStatus flips a task between processing and completed.
func (e *Editor) ToggleStatus(taskID string) error {
	t, ok := e.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if t.Status == api.TaskCompleted {
		t.Status = api.TaskProcessing
	} else {
		t.Status = api.TaskCompleted
	}
	e.tasks[taskID] = t
	e.dirty = true
	return nil
}

// AddResult appends an empty result to a task and returns its id.
func (e *Editor) AddResult(taskID string) (string, error) {
	t, ok := e.tasks[taskID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	r := api.TaskResult{
		ID:           uuid.NewString(),
		ImagesURL:    []string{},
		VideosURL:    []string{},
		DocumentsURL: []string{},
	}
	t.Results = append(t.Results, r)
	e.tasks[taskID] = t
	e.dirty = true
	return r.ID, nil
}

// RemoveResult deletes a result from a task.
func (e *Editor) RemoveResult(taskID, resultID string) error {
	t, ok := e.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	for i, r := range t.Results {
		if r.ID == resultID {
			t.Results = append(t.Results[:i], t.Results[i+1:]...)
			e.tasks[taskID] = t
			e.dirty = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrResultNotFound, resultID)
}

// SetResultTitle edits a result's title.
func (e *Editor) SetResultTitle(taskID, resultID, title string) error {
	return e.editResult(taskID, resultID, func(r *api.TaskResult) { r.Title = title })
}

// SetResultBody edits a result's body text.
func (e *Editor) SetResultBody(taskID, resultID, body string) error {
	return e.editResult(taskID, resultID, func(r *api.TaskResult) { r.Body = body })
}

// SetResultCTA edits a result's call-to-action URL.
func (e *Editor) SetResultCTA(taskID, resultID, cta string) error {
	return e.editResult(taskID, resultID, func(r *api.TaskResult) { r.CTA = cta })
}

func (e *Editor) editResult(taskID, resultID string, edit func(*api.TaskResult)) error {
	t, ok := e.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	for i := range t.Results {
		if t.Results[i].ID == resultID {
			edit(&t.Results[i])
			e.tasks[taskID] = t
			e.dirty = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrResultNotFound, resultID)
}

// =============================================================================
// MEDIA LIST EDITS
// =============================================================================
//
// Standard ordered-sequence semantics: an edit at index i touches only
// index i, a removal at i shifts later entries down by one, an add
// appends. Sibling lists are never reordered.

// AddMediaURL appends url to the chosen media list.
func (e *Editor) AddMediaURL(taskID, resultID string, kind MediaKind, url string) error {
	return e.editMedia(taskID, resultID, kind, func(list []string) ([]string, error) {
		return append(list, url), nil
	})
}

// EditMediaURL replaces the entry at index.
func (e *Editor) EditMediaURL(taskID, resultID string, kind MediaKind, index int, url string) error {
	return e.editMedia(taskID, resultID, kind, func(list []string) ([]string, error) {
		if index < 0 || index >= len(list) {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		list[index] = url
		return list, nil
	})
}

// RemoveMediaURL deletes the entry at index.
func (e *Editor) RemoveMediaURL(taskID, resultID string, kind MediaKind, index int) error {
	return e.editMedia(taskID, resultID, kind, func(list []string) ([]string, error) {
		if index < 0 || index >= len(list) {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		return append(list[:index], list[index+1:]...), nil
	})
}

func (e *Editor) editMedia(taskID, resultID string, kind MediaKind, edit func([]string) ([]string, error)) error {
	t, ok := e.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	for i := range t.Results {
		if t.Results[i].ID != resultID {
			continue
		}
		r := &t.Results[i]
		var list []string
		switch kind {
		case MediaImages:
			list = r.ImagesURL
		case MediaVideos:
			list = r.VideosURL
		case MediaDocuments:
			list = r.DocumentsURL
		default:
			return fmt.Errorf("%w: %s", ErrBadMediaKind, kind)
		}
		edited, err := edit(list)
		if err != nil {
			return err
		}
		switch kind {
		case MediaImages:
			r.ImagesURL = edited
		case MediaVideos:
			r.VideosURL = edited
		case MediaDocuments:
			r.DocumentsURL = edited
		}
		e.tasks[taskID] = t
		e.dirty = true
		return nil
	}
	return fmt.Errorf("%w: %s", ErrResultNotFound, resultID)
}

// =============================================================================
// SAVE
// =============================================================================

// Save pushes the entire working mapping to the backend. On success the
// response's mapping (authoritative) replaces the working copy. On
// failure the unsaved edits are kept; there is no rollback.
func (e *Editor) Save(ctx context.Context, saver Saver) error {
	resp, err := saver.UpdateState(ctx, e.threadID, e.tasks)
	if err != nil {
		return err
	}
	e.Replace(resp.Tasks)
	return nil
}
