// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the client for the hanu agent backend.
//
// The backend exposes two endpoints. POST /chat takes a user query and a
// thread id and returns the thread's full message history plus the current
// task mapping; an empty query is a valid "fetch current state" call.
// POST /update_state refreshes state without a user message and, for
// privileged callers, persists an edited task mapping.
package api

import "encoding/json"

// =============================================================================
// MESSAGES
// =============================================================================

// Message is one message in a thread as reported by the backend.
type Message struct {
	Role    string `json:"role"` // "assistant" or "user"
	Content string `json:"content"`

	// Tool plumbing the backend may attach; carried opaquely.
	ToolCalls  json.RawMessage `json:"tool_calls,omitempty"`
	Name       string          `json:"name,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
}

// =============================================================================
// TASKS
// =============================================================================

// TaskStatus is the backend-reported state of an agent task.
type TaskStatus string

const (
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
)

// Task is one asynchronous unit of agent work tied to a thread.
//
// Args is intentionally open-ended; the backend contract does not fix a
// schema, so values are kept as an opaque key-value bag and stringified
// only at display time.
type Task struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Status  TaskStatus     `json:"status"`
	Args    map[string]any `json:"args"`
	Results []TaskResult   `json:"results,omitempty"`
}

// TaskResult is one deliverable produced by a task. Each media list may be
// empty; a result with no media at all still renders.
type TaskResult struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	CTA          string   `json:"cta"`
	ImagesURL    []string `json:"images_url"`
	VideosURL    []string `json:"videos_url"`
	DocumentsURL []string `json:"documents_url"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Args != nil {
		out.Args = make(map[string]any, len(t.Args))
		for k, v := range t.Args {
			out.Args[k] = v
		}
	}
	if t.Results != nil {
		out.Results = make([]TaskResult, len(t.Results))
		for i, r := range t.Results {
			out.Results[i] = r.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the result.
func (r TaskResult) Clone() TaskResult {
	out := r
	out.ImagesURL = append([]string(nil), r.ImagesURL...)
	out.VideosURL = append([]string(nil), r.VideosURL...)
	out.DocumentsURL = append([]string(nil), r.DocumentsURL...)
	return out
}

// CloneTasks deep-copies a full task mapping.
func CloneTasks(tasks map[string]Task) map[string]Task {
	if tasks == nil {
		return nil
	}
	out := make(map[string]Task, len(tasks))
	for id, t := range tasks {
		out[id] = t.Clone()
	}
	return out
}

// =============================================================================
// WIRE SHAPES
// =============================================================================

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id"`
}

// updateStateRequest is the body of POST /update_state.
type updateStateRequest struct {
	ThreadID string          `json:"thread_id"`
	Tasks    map[string]Task `json:"tasks,omitempty"`
}

// StateResponse is the shared response shape of both endpoints: the full
// message history and the authoritative task mapping for the thread.
type StateResponse struct {
	Messages []Message       `json:"messages"`
	Tasks    map[string]Task `json:"tasks"`
}

// apiErrorResponse is the error envelope some backend errors carry.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
