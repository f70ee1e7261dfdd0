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

package security

import (
	"errors"
	"path"
	"regexp"
	"strings"
)

var (
	// ErrInvalidSnapshotPath is returned when a remote file path could
	// escape the snapshot destination directory
	ErrInvalidSnapshotPath = errors.New("invalid snapshot path")

	// snapshotSegmentPattern validates each path segment of a snapshot file
	snapshotSegmentPattern = regexp.MustCompile(`^[a-zA-Z0-9._ +-]+$`)
)

// SanitizeLogInput removes newline characters to prevent log injection attacks
// This function should be used for all user-controlled data before logging
func SanitizeLogInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\n", "")
	sanitized = strings.ReplaceAll(sanitized, "\r", "")
	return sanitized
}

// ValidateSnapshotPath ensures a file path reported by the remote model hub
// is safe to join under the local snapshot directory. Relative sub-paths are
// allowed (model repositories contain nested directories) but absolute paths
// and parent directory references are rejected.
func ValidateSnapshotPath(filePath string) error {
	if filePath == "" {
		return ErrInvalidSnapshotPath
	}

	if strings.HasPrefix(filePath, "/") || strings.Contains(filePath, "\\") {
		return ErrInvalidSnapshotPath
	}

	cleaned := path.Clean(filePath)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ErrInvalidSnapshotPath
	}

	for _, segment := range strings.Split(cleaned, "/") {
		if segment == ".." || !snapshotSegmentPattern.MatchString(segment) {
			return ErrInvalidSnapshotPath
		}
	}

	return nil
}
