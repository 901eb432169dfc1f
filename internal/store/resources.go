// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// ResourceType distinguishes uploaded files from plain links.
type ResourceType string

const (
	ResourceLink ResourceType = "link"
	ResourceFile ResourceType = "file"
)

// Resource is a user-saved reference insertable into a conversation.
type Resource struct {
	ID       string       `json:"id"`
	UserID   string       `json:"userId"`
	Title    string       `json:"title"`
	URL      string       `json:"url"`
	LastUsed string       `json:"lastUsed"`
	Type     ResourceType `json:"type"`
}

// ClassifyResourceURL returns ResourceFile when the URL points at the
// object-storage host, ResourceLink otherwise.
func ClassifyResourceURL(rawURL, hostPattern string) ResourceType {
	if hostPattern != "" && strings.Contains(rawURL, hostPattern) {
		return ResourceFile
	}
	return ResourceLink
}

// =============================================================================
// RESOURCE OPERATIONS
// =============================================================================

// ListResources returns all resources owned by userID, newest lastUsed
// first. It never returns an error to the caller: no user or a failed
// query both yield an empty list (the failure is logged).
func (s *Store) ListResources(ctx context.Context, userID string) []Resource {
	if userID == "" {
		return nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, url, last_used, type
		 FROM resources WHERE user_id = ? ORDER BY last_used DESC`,
		userID)
	if err != nil {
		log.Printf("failed to list resources for %s: %v", userID, err)
		return nil
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.URL, &r.LastUsed, &r.Type); err != nil {
			log.Printf("failed to scan resource: %v", err)
			return resources
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		log.Printf("failed to list resources for %s: %v", userID, err)
	}
	return resources
}

// CreateResource inserts a new resource. Title and url are required; the
// type is chosen by the caller (see ClassifyResourceURL).
func (s *Store) CreateResource(ctx context.Context, userID, title, url string, typ ResourceType) (Resource, error) {
	if userID == "" {
		return Resource{}, fmt.Errorf("%w: userId", ErrMissingField)
	}
	if title == "" {
		return Resource{}, fmt.Errorf("%w: title", ErrMissingField)
	}
	if url == "" {
		return Resource{}, fmt.Errorf("%w: url", ErrMissingField)
	}
	if typ != ResourceLink && typ != ResourceFile {
		typ = ResourceLink
	}

	r := Resource{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		URL:      url,
		LastUsed: Now(),
		Type:     typ,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (id, user_id, title, url, last_used, type) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Title, r.URL, r.LastUsed, r.Type)
	if err != nil {
		return Resource{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return r, nil
}

// TouchResourceLastUsed refreshes a resource's lastUsed timestamp. Called
// whenever the resource is inserted into a conversation; best-effort for
// callers, but the error is reported so they can decide to log it.
func (s *Store) TouchResourceLastUsed(ctx context.Context, resourceID string) error {
	if resourceID == "" {
		return fmt.Errorf("%w: resourceId", ErrMissingField)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET last_used = ? WHERE id = ?`,
		Now(), resourceID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrResourceNotFound
	}
	return nil
}
