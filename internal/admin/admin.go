// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin implements privileged impersonation.
//
// A privileged actor (static allow-list, checked once per authenticated
// session) can select a target user; thread, task and resource operations
// then run against the target's data. Impersonation never changes who is
// authenticated, only whose data is read and written.
package admin

import "sync"

// Actor tracks the authenticated user and the optional impersonation
// target for one session.
type Actor struct {
	mu sync.Mutex

	// authedID is the authenticated user; fixed for the session.
	authedID string

	// privileged is computed once from the allow-list at session start.
	privileged bool

	// targetID is the impersonated user ("" = no selection).
	targetID string
}

// NewActor creates the acting context for an authenticated user. allowed
// is the static admin allow-list from configuration.
func NewActor(userID string, allowed []string) *Actor {
	a := &Actor{authedID: userID}
	for _, id := range allowed {
		if id == userID {
			a.privileged = true
			break
		}
	}
	return a
}

// NewActorFor is NewActor for a user whose allow-list entry may be
// either the user id or the account email.
func NewActorFor(userID, email string, allowed []string) *Actor {
	a := NewActor(userID, allowed)
	if !a.privileged && email != "" {
		for _, id := range allowed {
			if id == email {
				a.privileged = true
				break
			}
		}
	}
	return a
}

// IsPrivileged reports whether the authenticated user is on the
// allow-list.
func (a *Actor) IsPrivileged() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.privileged
}

// AuthedID returns the authenticated user id. Never changes.
func (a *Actor) AuthedID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authedID
}

// SelectTarget sets the impersonation target. A no-op for unprivileged
// actors.
func (a *Actor) SelectTarget(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.privileged {
		return
	}
	a.targetID = userID
}

// ClearTarget drops the impersonation selection, returning a privileged
// actor to the admin landing view.
func (a *Actor) ClearTarget() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.targetID = ""
}

// TargetID returns the impersonated user id, or "".
func (a *Actor) TargetID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.targetID
}

// ActingUserID returns whose data operations should run against: the
// impersonation target when one is selected, the authenticated user
// otherwise.
func (a *Actor) ActingUserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.privileged && a.targetID != "" {
		return a.targetID
	}
	return a.authedID
}

// Impersonating reports whether a target is currently selected.
func (a *Actor) Impersonating() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.privileged && a.targetID != ""
}
