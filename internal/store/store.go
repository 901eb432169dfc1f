// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides thread and resource persistence for the hanu
// client.
//
// The backing document store is an embedded SQLite database, but the
// surface is deliberately narrow: read-all-by-owner, insert-one, and
// update-named-fields-by-id. Nothing above this package knows it is
// talking to SQL.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStoreUnavailable indicates the backing query could not complete.
	// Callers degrade to an empty-with-error view, never crash.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrThreadNotFound indicates no thread exists with the given id.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrResourceNotFound indicates no resource exists with the given id.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrMissingField indicates a required argument was empty.
	ErrMissingField = errors.New("required field missing")
)

// timeLayout is the stored timestamp format. Millisecond precision with a
// fixed width so lexicographic order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Now returns the current time formatted as a stored timestamp-string.
func Now() string {
	return time.Now().UTC().Format(timeLayout)
}

// =============================================================================
// STORE
// =============================================================================

// Store wraps the document database shared by threads, resources and user
// credentials.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: database path", ErrMissingField)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The driver is safe for one writer; serialize access at the pool.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for collaborating packages that share the database
// (user credentials live alongside threads and resources).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS threads (
			id      TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title   TEXT NOT NULL,
			date    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_threads_user ON threads(user_id)`,
		`CREATE TABLE IF NOT EXISTS resources (
			id        TEXT PRIMARY KEY,
			user_id   TEXT NOT NULL,
			title     TEXT NOT NULL,
			url       TEXT NOT NULL,
			last_used TEXT NOT NULL,
			type      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_user ON resources(user_id)`,
		`CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			email       TEXT NOT NULL UNIQUE,
			salt        BLOB NOT NULL,
			pass_hash   BLOB NOT NULL,
			totp_secret TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
