/*
 * This file is part of Kokoro Serve (https://github.com/voxlabs/kokoro-serve).
 * Copyright (C) 2026 Voxlabs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package hub downloads model weight snapshots from a Hugging Face
// compatible model hub. A snapshot mirrors the remote repository's full
// file set into a local directory, overwriting prior content.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/voxlabs/kokoro-serve/internal/logging"
	"github.com/voxlabs/kokoro-serve/internal/security"
)

const defaultRevision = "main"

// Client talks to a model hub. The zero timeout on the HTTP client is
// deliberate: weight files are large and transfer time is unbounded; the
// caller's context controls cancellation instead.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a hub client. token may be empty for public models.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// repoInfo is the subset of the hub's model metadata the fetcher needs.
type repoInfo struct {
	Siblings []repoFile `json:"siblings"`
}

// repoFile is one file entry in a model repository.
type repoFile struct {
	Rfilename string `json:"rfilename"`
}

// Snapshot mirrors the complete file set of modelID into destination.
// Existing files are overwritten; files no longer present remotely are left
// in place. Re-running against a populated destination succeeds. There is
// no retry and no partial-success reporting: the first failing file aborts
// the operation with an error.
func (c *Client) Snapshot(ctx context.Context, modelID, destination string) error {
	start := time.Now()

	files, err := c.listFiles(ctx, modelID)
	if err != nil {
		return fmt.Errorf("failed to list files for %s: %w", modelID, err)
	}

	if len(files) == 0 {
		return fmt.Errorf("model %s has no files", modelID)
	}

	logging.LogDownloadOperation(modelID, "snapshot_start",
		zap.Int("file_count", len(files)),
		zap.String("destination", destination),
	)

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	for _, file := range files {
		if err := c.downloadFile(ctx, modelID, file, destination); err != nil {
			return fmt.Errorf("failed to download %s: %w", file, err)
		}
	}

	logging.LogDownloadOperation(modelID, "snapshot_complete",
		zap.Int("file_count", len(files)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// listFiles queries the hub's model metadata endpoint for the repository's
// file listing.
func (c *Client) listFiles(ctx context.Context, modelID string) ([]string, error) {
	url := fmt.Sprintf("%s/api/models/%s", c.baseURL, modelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var info repoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode model metadata: %w", err)
	}

	files := make([]string, 0, len(info.Siblings))
	for _, sibling := range info.Siblings {
		if err := security.ValidateSnapshotPath(sibling.Rfilename); err != nil {
			return nil, fmt.Errorf("remote file name %q: %w", sibling.Rfilename, err)
		}
		files = append(files, sibling.Rfilename)
	}

	return files, nil
}

// downloadFile fetches a single repository file into destination. The body
// streams to a temp file first so an interrupted transfer never leaves a
// truncated file under the final name.
func (c *Client) downloadFile(ctx context.Context, modelID, file, destination string) error {
	url := fmt.Sprintf("%s/%s/resolve/%s/%s", c.baseURL, modelID, defaultRevision, file)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	target := filepath.Join(destination, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", file, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("transfer failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	logging.LogDownloadOperation(modelID, "file_complete",
		zap.String("file", file),
		zap.Int64("bytes", written),
	)

	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("authentication failed with status %d (check your Hugging Face token)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("not found (status %d): check the model identifier", resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
}
