// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
)

// UserActivity summarizes one user's thread activity for the admin landing
// view.
type UserActivity struct {
	UserID      string
	LastActive  string // stored timestamp-string of the most recent thread
	ThreadCount int
}

// ListUserActivity scans all threads and groups them by owner, most
// recently active user first. Privileged callers use this to pick an
// impersonation target.
func (s *Store) ListUserActivity(ctx context.Context) ([]UserActivity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, MAX(date), COUNT(*)
		 FROM threads
		 GROUP BY user_id
		 ORDER BY MAX(date) DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var activity []UserActivity
	for rows.Next() {
		var a UserActivity
		if err := rows.Scan(&a.UserID, &a.LastActive, &a.ThreadCount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return activity, nil
}
