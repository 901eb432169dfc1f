// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hanuai/hanu-tui/internal/util"
)

// TitleMaxRunes bounds thread titles derived from the first user message.
const TitleMaxRunes = 30

// Thread is a persisted conversation owned by a user. Messages are NOT
// stored here; the backend reconstructs them on every fetch. Only the
// navigable metadata lives in the document store.
type Thread struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Title  string `json:"title"`
	Date   string `json:"date"` // stored timestamp-string, see Now()
}

// =============================================================================
// THREAD OPERATIONS
// =============================================================================

// ListThreads returns all threads owned by userID, newest date first.
// Returns ErrStoreUnavailable when the backing query cannot complete.
func (s *Store) ListThreads(ctx context.Context, userID string) ([]Thread, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId", ErrMissingField)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, date FROM threads WHERE user_id = ? ORDER BY date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return threads, nil
}

// CreateThread inserts a new thread for userID. The title seed (normally
// the first user message) is bounded to TitleMaxRunes runes plus an
// ellipsis when cut.
func (s *Store) CreateThread(ctx context.Context, userID, titleSeed string) (Thread, error) {
	if userID == "" {
		return Thread{}, fmt.Errorf("%w: userId", ErrMissingField)
	}

	t := Thread{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  util.Ellipsize(util.CollapseLine(titleSeed), TitleMaxRunes),
		Date:   Now(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO threads (id, user_id, title, date) VALUES (?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Date)
	if err != nil {
		return Thread{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return t, nil
}

// RenameThread updates a thread's title and refreshes its date.
func (s *Store) RenameThread(ctx context.Context, threadID, newTitle string) error {
	if threadID == "" {
		return fmt.Errorf("%w: threadId", ErrMissingField)
	}
	if newTitle == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	return s.updateThread(ctx,
		`UPDATE threads SET title = ?, date = ? WHERE id = ?`,
		newTitle, Now(), threadID)
}

// TouchThread refreshes a thread's date without changing the title. Called
// after every successful message exchange so recency ordering reflects
// conversation activity, not creation time.
func (s *Store) TouchThread(ctx context.Context, threadID string) error {
	if threadID == "" {
		return fmt.Errorf("%w: threadId", ErrMissingField)
	}
	return s.updateThread(ctx,
		`UPDATE threads SET date = ? WHERE id = ?`,
		Now(), threadID)
}

func (s *Store) updateThread(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		return ErrThreadNotFound
	}
	return nil
}
