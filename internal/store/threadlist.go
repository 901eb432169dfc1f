// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "sort"

// ThreadList is the in-memory mirror of one user's thread list. Successful
// remote writes are reflected here immediately so the sidebar never waits
// for a re-fetch to show a rename or a recency bump.
//
// The list is owned by the UI shell and mutated only through these
// methods; ordering (newest date first) is re-established on every
// mutation.
type ThreadList struct {
	threads []Thread
}

// NewThreadList returns an empty mirror.
func NewThreadList() *ThreadList { return &ThreadList{} }

// Set replaces the whole list, e.g. after a fresh ListThreads.
func (l *ThreadList) Set(threads []Thread) {
	l.threads = append([]Thread(nil), threads...)
	l.sort()
}

// Add inserts a newly created thread.
func (l *ThreadList) Add(t Thread) {
	l.threads = append(l.threads, t)
	l.sort()
}

// Update applies a title and/or date change to the thread with the given
// id. Empty fields are left untouched.
func (l *ThreadList) Update(threadID, title, date string) {
	for i := range l.threads {
		if l.threads[i].ID != threadID {
			continue
		}
		if title != "" {
			l.threads[i].Title = title
		}
		if date != "" {
			l.threads[i].Date = date
		}
		break
	}
	l.sort()
}

// Get returns the thread with the given id, if present.
func (l *ThreadList) Get(threadID string) (Thread, bool) {
	for _, t := range l.threads {
		if t.ID == threadID {
			return t, true
		}
	}
	return Thread{}, false
}

// All returns the threads, newest date first. The returned slice is a copy.
func (l *ThreadList) All() []Thread {
	return append([]Thread(nil), l.threads...)
}

// Len returns the number of threads.
func (l *ThreadList) Len() int {
	return len(l.threads)
}

func (l *ThreadList) sort() {
	sort.SliceStable(l.threads, func(i, j int) bool {
		return l.threads[i].Date > l.threads[j].Date
	})
}
