// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package objstore uploads files to the object-storage collaborator.
//
// The contract is opaque: hand over a file body, get back a publicly
// fetchable URL. Object layout (uploads/<uuid>.<ext>) mirrors what the
// backend's own uploads use.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds one upload.
const DefaultTimeout = 120 * time.Second

// ErrNotConfigured indicates no upload endpoint is set.
var ErrNotConfigured = errors.New("object storage not configured")

// UploadError represents a non-2xx response from the storage endpoint.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed (HTTP %d): %s", e.Status, e.Body)
}

// Client uploads files and resolves their public URLs.
type Client struct {
	endpoint      string
	publicBaseURL string
	hostPattern   string
	httpClient    *http.Client
}

// NewClient creates an upload client. endpoint receives HTTP PUTs;
// publicBaseURL prefixes returned object URLs (defaults to endpoint);
// hostPattern is the substring that marks URLs as hosted files.
func NewClient(endpoint, publicBaseURL, hostPattern string) *Client {
	if publicBaseURL == "" {
		publicBaseURL = endpoint
	}
	return &Client{
		endpoint:      strings.TrimSuffix(endpoint, "/"),
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		hostPattern:   hostPattern,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
	}
}

// IsConfigured reports whether uploads can be attempted.
func (c *Client) IsConfigured() bool {
	return c.endpoint != ""
}

// IsHostedURL reports whether url points at the configured object host.
// Used to classify resources as file vs link.
func (c *Client) IsHostedURL(url string) bool {
	return c.hostPattern != "" && strings.Contains(url, c.hostPattern)
}

// Upload stores the body under a fresh object key derived from filename's
// extension and returns the public URL. The caller's pending state is
// untouched on failure; only the returned error reports it.
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	key := objectKey(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint+"/"+key, body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeFor(filename))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &UploadError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return c.publicBaseURL + "/" + key, nil
}

// objectKey builds uploads/<uuid>.<ext>, keeping the original extension so
// viewers can infer the media type from the URL.
func objectKey(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return "uploads/" + uuid.NewString()
	}
	return "uploads/" + uuid.NewString() + "." + ext
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
